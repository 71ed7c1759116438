// Package domain contains entities without logic, just meta-data.
package domain

// ConnID identifies one live transport session. It is minted by the
// transport layer on connect and never reused. A user with two tabs
// open holds two distinct ConnIDs.
type ConnID string

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Member is one connection's participation record in a room.
// JSON keys follow the wire schema consumed by editor clients.
type Member struct {
	ConnID         ConnID  `json:"socketId"`
	Username       string  `json:"username"`
	RoomID         string  `json:"roomId"`
	Status         Status  `json:"status"`
	CursorPosition int     `json:"cursorPosition"`
	SelectionStart *int    `json:"selectionStart,omitempty"`
	SelectionEnd   *int    `json:"selectionEnd,omitempty"`
	Typing         bool    `json:"typing"`
	CurrentFile    *string `json:"currentFile"`
}

// NewMember avoids raw literals in transport code and pins the initial
// field values a freshly joined member must carry.
func NewMember(id ConnID, roomID, username string) Member {
	return Member{
		ConnID:   id,
		Username: username,
		RoomID:   roomID,
		Status:   StatusOnline,
	}
}
