package ws

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
	"cosync/internal/room"
)

type opKind int

const (
	opRegister opKind = iota
	opFrame
	opGone
)

type hubEvent struct {
	op     opKind
	id     domain.ConnID
	sender Sender
	data   []byte
}

// Hub owns event dispatch. Every inbound transport event funnels into
// one goroutine (Run) and is handled to completion before the next is
// dequeued; that serialization is what keeps registry read-modify-write
// sequences safe without handler-level locking. Outbound sends only
// enqueue into per-connection queues and never block the loop.
type Hub struct {
	registry *room.Registry
	joins    *JoinLimiter
	validate *validator.Validate
	handlers map[string]handlerFunc

	conns  map[domain.ConnID]Sender
	events chan hubEvent
}

func NewHub(reg *room.Registry, joins *JoinLimiter) *Hub {
	h := &Hub{
		registry: reg,
		joins:    joins,
		validate: validator.New(),
		conns:    make(map[domain.ConnID]Sender),
		events:   make(chan hubEvent, 256),
	}
	h.handlers = handlerTable()
	return h
}

// Registry exposes the membership registry for the REST surface.
func (h *Hub) Registry() *room.Registry { return h.registry }

// Run drains the event queue until the context is canceled. Exactly one
// Run per hub; transport goroutines only post.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "ws.hub").Msg("hub loop done")
			return
		case ev := <-h.events:
			h.process(ev)
		}
	}
}

func (h *Hub) process(ev hubEvent) {
	switch ev.op {
	case opRegister:
		h.conns[ev.id] = ev.sender
		log.Info().Str("module", "ws.hub").Str("conn", string(ev.id)).Msg("connection registered")
	case opFrame:
		h.dispatch(ev.id, ev.data)
	case opGone:
		h.handleDisconnect(ev.id)
		delete(h.conns, ev.id)
		h.joins.Forget(ev.id)
		log.Info().Str("module", "ws.hub").Str("conn", string(ev.id)).Msg("connection gone")
	}
}

// Register must be called before the connection's read pump starts so
// it precedes the connection's frames in queue order.
func (h *Hub) Register(s Sender) {
	h.events <- hubEvent{op: opRegister, id: s.ID(), sender: s}
}

func (h *Hub) Inbound(id domain.ConnID, data []byte) {
	h.events <- hubEvent{op: opFrame, id: id, data: data}
}

func (h *Hub) Disconnected(id domain.ConnID) {
	h.events <- hubEvent{op: opGone, id: id}
}

// toRoom fans an event out to every member of the room except exclude.
// Delivery is best-effort: a gone or saturated connection is a silent
// drop (logged for diagnostics only).
func (h *Hub) toRoom(roomID string, exclude domain.ConnID, kind string, payload any) {
	frame, err := encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Str("kind", kind).Msg("encode")
		return
	}
	for _, m := range h.registry.ListByRoom(roomID) {
		if m.ConnID == exclude {
			continue
		}
		h.deliver(m.ConnID, kind, frame)
	}
}

// toConn sends an event to a single connection if it is still here.
func (h *Hub) toConn(id domain.ConnID, kind string, payload any) {
	frame, err := encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Str("kind", kind).Msg("encode")
		return
	}
	h.deliver(id, kind, frame)
}

func (h *Hub) deliver(id domain.ConnID, kind string, frame []byte) {
	s, ok := h.conns[id]
	if !ok {
		log.Debug().Str("module", "ws.hub").Str("conn", string(id)).Str("kind", kind).Msg("target gone, dropped")
		return
	}
	if err := s.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "ws.hub").Str("conn", string(id)).Str("kind", kind).Msg("send dropped")
	}
}

func encode(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: kind, Payload: body})
}
