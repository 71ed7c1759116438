package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

// Typing and cursor events persist their fields onto the sender's
// member record before broadcasting, so future room snapshots carry
// the latest cursor state.

func handleTypingStart(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p CursorChange
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.cursor").Str("conn", string(id)).Msg("bad typing payload")
		return
	}
	m, ok := h.registry.Update(id, func(m *domain.Member) {
		m.Typing = true
		m.CursorPosition = p.CursorPosition
		m.SelectionStart = p.SelectionStart
		m.SelectionEnd = p.SelectionEnd
	})
	if !ok {
		return
	}
	h.toRoom(m.RoomID, id, EventTypingStart, UserEvent{User: m})
}

func handleTypingPause(h *Hub, id domain.ConnID, _ json.RawMessage) {
	m, ok := h.registry.Update(id, func(m *domain.Member) {
		m.Typing = false
	})
	if !ok {
		return
	}
	h.toRoom(m.RoomID, id, EventTypingPause, UserEvent{User: m})
}

func handleCursorMove(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p CursorChange
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.cursor").Str("conn", string(id)).Msg("bad cursor payload")
		return
	}
	m, ok := h.registry.Update(id, func(m *domain.Member) {
		m.CursorPosition = p.CursorPosition
		m.SelectionStart = p.SelectionStart
		m.SelectionEnd = p.SelectionEnd
	})
	if !ok {
		return
	}
	h.toRoom(m.RoomID, id, EventCursorMove, UserEvent{User: m})
}
