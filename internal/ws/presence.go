package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

// handleJoinRequest runs the join sequence: flood check, name-collision
// check against ONLINE members, registration, user-joined to the rest
// of the room, then join-accepted to the sender with a member list
// captured after insertion so the new member sees itself in it.
func handleJoinRequest(h *Hub, id domain.ConnID, data json.RawMessage) {
	if !h.joins.Allow(id) {
		log.Warn().Str("module", "ws.presence").Str("conn", string(id)).Msg("join flood, dropped")
		return
	}
	var p JoinRequest
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.presence").Str("conn", string(id)).Msg("bad join payload")
		return
	}

	for _, m := range h.registry.ListByRoom(p.RoomID) {
		if m.Username == p.Username && m.Status == domain.StatusOnline {
			log.Info().Str("module", "ws.presence").Str("conn", string(id)).Str("room", p.RoomID).Str("username", p.Username).Msg("username exists")
			h.toConn(id, EventUsernameExists, struct{}{})
			return
		}
	}

	member := domain.NewMember(id, p.RoomID, p.Username)
	h.registry.Add(member)
	log.Info().Str("module", "ws.presence").Str("conn", string(id)).Str("room", p.RoomID).Str("username", p.Username).Msg("join")

	h.toRoom(p.RoomID, id, EventUserJoined, UserEvent{User: member})
	h.toConn(id, EventJoinAccepted, JoinAccepted{
		User:  member,
		Users: h.registry.ListByRoom(p.RoomID),
	})
}

// handleDisconnect sequences an abrupt transport departure: notify the
// former room, then drop the record. A connection that never joined, or
// was already removed, is a no-op.
func (h *Hub) handleDisconnect(id domain.ConnID) {
	m, ok := h.registry.Find(id)
	if !ok {
		return
	}
	h.toRoom(m.RoomID, id, EventUserDisconnected, UserEvent{User: m})
	h.registry.Remove(id)
	log.Info().Str("module", "ws.presence").Str("conn", string(id)).Str("room", m.RoomID).Str("username", m.Username).Msg("disconnected")
}

// statusHandler builds the user-online/user-offline handler pair. The
// client names its own connection in the payload; the status flips on
// that record and the change is re-broadcast to its room, excluding
// the sending socket. The member is not removed.
func statusHandler(status domain.Status, outKind string) handlerFunc {
	return func(h *Hub, id domain.ConnID, data json.RawMessage) {
		var p ConnRef
		if err := decode(h.validate, data, &p); err != nil {
			log.Warn().Err(err).Str("module", "ws.presence").Str("conn", string(id)).Msg("bad status payload")
			return
		}
		m, ok := h.registry.Update(p.ConnID, func(m *domain.Member) {
			m.Status = status
		})
		if !ok {
			return
		}
		h.toRoom(m.RoomID, id, outKind, p)
	}
}
