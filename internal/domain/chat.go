package domain

// ChatMessage is relayed verbatim between room members and never stored
// server-side. The id is a client-generated unique token; the timestamp
// is whatever the sending client rendered.
type ChatMessage struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Username   string    `json:"username"`
	Timestamp  string    `json:"timestamp"`
	ReplyingTo *ReplyRef `json:"replyingTo,omitempty"`
}

// ReplyRef is a snapshot of the message being replied to, embedded so
// recipients can render the quote without a chat log lookup.
type ReplyRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}
