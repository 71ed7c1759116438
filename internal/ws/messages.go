package ws

import (
	"encoding/json"

	"cosync/internal/domain"
)

// Event kinds accepted and emitted over the socket. Wire names are the
// contract with editor clients and must not change.
const (
	EventJoinRequest      = "join-request"
	EventJoinAccepted     = "join-accepted"
	EventUsernameExists   = "username-exists"
	EventUserJoined       = "user-joined"
	EventUserDisconnected = "user-disconnected"
	EventUserOnline       = "user-online"
	EventUserOffline      = "user-offline"

	EventSyncFileStructure = "sync-file-structure"
	EventDirectoryCreated  = "directory-created"
	EventDirectoryUpdated  = "directory-updated"
	EventDirectoryRenamed  = "directory-renamed"
	EventDirectoryDeleted  = "directory-deleted"
	EventFileCreated       = "file-created"
	EventFileUpdated       = "file-updated"
	EventFileRenamed       = "file-renamed"
	EventFileDeleted       = "file-deleted"

	EventTypingStart = "typing-start"
	EventTypingPause = "typing-pause"
	EventCursorMove  = "cursor-move"

	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"

	EventRequestDrawing = "request-drawing"
	EventSyncDrawing    = "sync-drawing"
	EventDrawingUpdate  = "drawing-update"

	EventOffer        = "webrtc-offer"
	EventAnswer       = "webrtc-answer"
	EventICECandidate = "webrtc-ice-candidate"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRequest is permissive about the room id: an empty string is an
// unusual but valid room name, matching upstream client behavior.
type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type JoinAccepted struct {
	User  domain.Member   `json:"user"`
	Users []domain.Member `json:"users"`
}

// UserEvent carries a member snapshot; used by user-joined,
// user-disconnected, typing-start, typing-pause and cursor-move.
type UserEvent struct {
	User domain.Member `json:"user"`
}

// ConnRef names a connection by id; used by user-online/user-offline
// (the client names itself) and the outbound request-drawing (the
// server names the requester).
type ConnRef struct {
	ConnID domain.ConnID `json:"socketId" validate:"required"`
}

// File-tree mutations are relayed opaque: the server holds no canonical
// tree, so node bodies stay raw JSON.
type DirectoryCreated struct {
	ParentDirID  string          `json:"parentDirId"`
	NewDirectory json.RawMessage `json:"newDirectory" validate:"required"`
}

type DirectoryUpdated struct {
	DirID    string          `json:"dirId" validate:"required"`
	Children json.RawMessage `json:"children"`
}

type DirectoryRenamed struct {
	DirID   string `json:"dirId" validate:"required"`
	NewName string `json:"newName"`
}

type DirectoryDeleted struct {
	DirID string `json:"dirId" validate:"required"`
}

type FileCreated struct {
	ParentDirID string          `json:"parentDirId"`
	NewFile     json.RawMessage `json:"newFile" validate:"required"`
}

type FileUpdated struct {
	FileID     string `json:"fileId" validate:"required"`
	NewContent string `json:"newContent"`
}

type FileRenamed struct {
	FileID  string `json:"fileId" validate:"required"`
	NewName string `json:"newName"`
}

type FileDeleted struct {
	FileID string `json:"fileId" validate:"required"`
}

// FileStructureSync routes a full tree snapshot to one late joiner. The
// target id is client-supplied and forwarded without a same-room check.
type FileStructureSync struct {
	FileStructure json.RawMessage `json:"fileStructure" validate:"required"`
	OpenFiles     json.RawMessage `json:"openFiles,omitempty"`
	ActiveFile    json.RawMessage `json:"activeFile,omitempty"`
	Target        domain.ConnID   `json:"socketId" validate:"required"`
}

// FileStructureState is the outbound half of FileStructureSync, with
// the routing id stripped.
type FileStructureState struct {
	FileStructure json.RawMessage `json:"fileStructure"`
	OpenFiles     json.RawMessage `json:"openFiles,omitempty"`
	ActiveFile    json.RawMessage `json:"activeFile,omitempty"`
}

type CursorChange struct {
	CursorPosition int  `json:"cursorPosition"`
	SelectionStart *int `json:"selectionStart,omitempty"`
	SelectionEnd   *int `json:"selectionEnd,omitempty"`
}

type ChatRelay struct {
	Message domain.ChatMessage `json:"message"`
}

type DrawingSync struct {
	DrawingData json.RawMessage `json:"drawingData"`
	Target      domain.ConnID   `json:"socketId" validate:"required"`
}

type DrawingState struct {
	DrawingData json.RawMessage `json:"drawingData"`
}

type DrawingUpdate struct {
	Snapshot json.RawMessage `json:"snapshot" validate:"required"`
}

// Signaling payloads: inbound names a target, outbound names the true
// sender. SDP and ICE bodies are never inspected.
type OfferIn struct {
	To    domain.ConnID   `json:"to" validate:"required"`
	Offer json.RawMessage `json:"offer" validate:"required"`
}

type OfferOut struct {
	From  domain.ConnID   `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerIn struct {
	To     domain.ConnID   `json:"to" validate:"required"`
	Answer json.RawMessage `json:"answer" validate:"required"`
}

type AnswerOut struct {
	From   domain.ConnID   `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

type CandidateIn struct {
	To        domain.ConnID   `json:"to" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

type CandidateOut struct {
	From      domain.ConnID   `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}
