package ws

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

type handlerFunc func(h *Hub, id domain.ConnID, data json.RawMessage)

// handlerTable is the protocol surface: one entry per inbound event
// kind. Handlers share one contract — resolve the sender's room via the
// registry, and if the sender is unknown, drop the event silently (it
// raced with a disconnect).
func handlerTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		EventJoinRequest: handleJoinRequest,
		EventUserOnline:  statusHandler(domain.StatusOnline, EventUserOnline),
		EventUserOffline: statusHandler(domain.StatusOffline, EventUserOffline),

		EventDirectoryCreated:  relay[DirectoryCreated](EventDirectoryCreated),
		EventDirectoryUpdated:  relay[DirectoryUpdated](EventDirectoryUpdated),
		EventDirectoryRenamed:  relay[DirectoryRenamed](EventDirectoryRenamed),
		EventDirectoryDeleted:  relay[DirectoryDeleted](EventDirectoryDeleted),
		EventFileCreated:       relay[FileCreated](EventFileCreated),
		EventFileUpdated:       relay[FileUpdated](EventFileUpdated),
		EventFileRenamed:       relay[FileRenamed](EventFileRenamed),
		EventFileDeleted:       relay[FileDeleted](EventFileDeleted),
		EventSyncFileStructure: handleSyncFileStructure,

		EventTypingStart: handleTypingStart,
		EventTypingPause: handleTypingPause,
		EventCursorMove:  handleCursorMove,

		EventSendMessage: relay[ChatRelay](EventReceiveMessage),

		EventRequestDrawing: handleRequestDrawing,
		EventSyncDrawing:    handleSyncDrawing,
		EventDrawingUpdate:  relay[DrawingUpdate](EventDrawingUpdate),

		EventOffer:        handleOffer,
		EventAnswer:       handleAnswer,
		EventICECandidate: handleICECandidate,
	}
}

func (h *Hub) dispatch(id domain.ConnID, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws.dispatch").Str("conn", string(id)).Msg("bad envelope")
		return
	}
	fn, ok := h.handlers[env.Type]
	if !ok {
		log.Warn().Str("module", "ws.dispatch").Str("conn", string(id)).Str("kind", env.Type).Msg("unknown event")
		return
	}
	fn(h, id, env.Payload)
}

// decode unmarshals and validates a payload before any handler logic
// runs. A missing payload decodes to the zero value so that kinds with
// optional bodies still pass through validation.
func decode(v *validator.Validate, data json.RawMessage, dst any) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, dst); err != nil {
			return err
		}
	}
	return v.Struct(dst)
}

// relay builds a handler that validates the payload as T and fans it
// back out unchanged to the sender's room, excluding the sender. Most
// kinds re-emit under their own name; chat re-emits send-message as
// receive-message.
func relay[T any](outKind string) handlerFunc {
	return func(h *Hub, id domain.ConnID, data json.RawMessage) {
		var p T
		if err := decode(h.validate, data, &p); err != nil {
			log.Warn().Err(err).Str("module", "ws.dispatch").Str("conn", string(id)).Str("kind", outKind).Msg("bad payload")
			return
		}
		m, ok := h.registry.Find(id)
		if !ok {
			return
		}
		h.toRoom(m.RoomID, id, outKind, p)
	}
}
