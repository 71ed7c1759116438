package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/execute", r.URL.Path)
		req.Equal("application/json", r.Header.Get("Content-Type"))

		var got ExecuteRequest
		req.NoError(json.NewDecoder(r.Body).Decode(&got))
		req.Equal("python", got.Language)
		req.Equal("3.10.0", got.Version)
		req.Len(got.Files, 1)

		json.NewEncoder(w).Encode(ExecuteResult{
			Language: "python",
			Version:  "3.10.0",
			Run:      ProcessResult{Stdout: "hello\n", Code: 0},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Execute(context.Background(), ExecuteRequest{
		Language: "python",
		Version:  "3.10.0",
		Files:    []File{{Content: `print("hello")`}},
	})
	req.NoError(err)
	req.Equal("hello\n", result.Run.Stdout)
	req.Equal(0, result.Run.Code)
}

func TestExecuteNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Execute(context.Background(), ExecuteRequest{
		Language: "python",
		Version:  "3.10.0",
		Files:    []File{{Content: "x"}},
	})
	require.ErrorContains(t, err, "unexpected status 429")
}

func TestRuntimes(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/runtimes", r.URL.Path)
		json.NewEncoder(w).Encode([]Runtime{
			{Language: "python", Version: "3.10.0", Aliases: []string{"py"}},
			{Language: "go", Version: "1.16.2"},
		})
	}))
	defer srv.Close()

	runtimes, err := NewClient(srv.URL).Runtimes(context.Background())
	req.NoError(err)
	req.Len(runtimes, 2)
	req.Equal("python", runtimes[0].Language)
	req.Contains(runtimes[0].Aliases, "py")
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).Runtimes(ctx)
	require.Error(t, err)
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewClient("")
	require.Equal(t, DefaultBaseURL, c.baseURL)
}
