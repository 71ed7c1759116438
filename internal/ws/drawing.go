package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

// handleRequestDrawing asks the rest of the room for the current canvas
// state; whoever answers routes it back via sync-drawing. The outbound
// payload names the requester so the responder knows where to send.
func handleRequestDrawing(h *Hub, id domain.ConnID, _ json.RawMessage) {
	m, ok := h.registry.Find(id)
	if !ok {
		return
	}
	h.toRoom(m.RoomID, id, EventRequestDrawing, ConnRef{ConnID: id})
}

// handleSyncDrawing forwards a canvas snapshot to the single requesting
// connection. The target id is caller-supplied and trusted as-is; a
// gone target is a silent drop.
func handleSyncDrawing(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p DrawingSync
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.drawing").Str("conn", string(id)).Msg("bad sync payload")
		return
	}
	h.toConn(p.Target, EventSyncDrawing, DrawingState{DrawingData: p.DrawingData})
}

// handleSyncFileStructure is the file-tree counterpart: a full tree
// snapshot routed to one late joiner pulling initial state from an
// existing peer, not the server.
func handleSyncFileStructure(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p FileStructureSync
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.drawing").Str("conn", string(id)).Msg("bad structure sync payload")
		return
	}
	h.toConn(p.Target, EventSyncFileStructure, FileStructureState{
		FileStructure: p.FileStructure,
		OpenFiles:     p.OpenFiles,
		ActiveFile:    p.ActiveFile,
	})
}
