// Package runner executes room code through the Piston API. The core
// treats it as an opaque request/response collaborator; no sandboxing
// happens in this process.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://emkc.org/api/v2/piston"

type File struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

type ExecuteRequest struct {
	Language string `json:"language" binding:"required"`
	Version  string `json:"version" binding:"required"`
	Files    []File `json:"files" binding:"required,min=1"`
	Stdin    string `json:"stdin,omitempty"`
}

type ProcessResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
	Code   int    `json:"code"`
}

type ExecuteResult struct {
	Language string         `json:"language"`
	Version  string         `json:"version"`
	Run      ProcessResult  `json:"run"`
	Compile  *ProcessResult `json:"compile,omitempty"`
}

type Runtime struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Aliases  []string `json:"aliases,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Execute runs the given source and returns stdout/stderr verbatim.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("encode execute request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return ExecuteResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("execute: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ExecuteResult{}, fmt.Errorf("execute: unexpected status %d", resp.StatusCode)
	}

	var result ExecuteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ExecuteResult{}, fmt.Errorf("decode execute response: %w", err)
	}
	return result, nil
}

// Runtimes lists the languages the execution service supports.
func (c *Client) Runtimes(ctx context.Context) ([]Runtime, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/runtimes", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("runtimes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("runtimes: unexpected status %d", resp.StatusCode)
	}

	var runtimes []Runtime
	if err := json.NewDecoder(resp.Body).Decode(&runtimes); err != nil {
		return nil, fmt.Errorf("decode runtimes response: %w", err)
	}
	return runtimes, nil
}
