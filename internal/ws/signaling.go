package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

// The signaling relay is a store-less addressed pass-through for the
// WebRTC handshake. No SDP/ICE content is validated and no offer/answer
// correlation is kept; the negotiation state machine lives in each
// client (see internal/peer). The server's only job is not to lose or
// misroute a message: delivery is at-most-once, and a gone target means
// the initiating peer times out client-side, which is signal enough.

func handleOffer(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p OfferIn
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.signaling").Str("conn", string(id)).Msg("bad offer")
		return
	}
	log.Debug().Str("module", "ws.signaling").Str("from", string(id)).Str("to", string(p.To)).Msg("forwarding offer")
	h.toConn(p.To, EventOffer, OfferOut{From: id, Offer: p.Offer})
}

func handleAnswer(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p AnswerIn
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.signaling").Str("conn", string(id)).Msg("bad answer")
		return
	}
	log.Debug().Str("module", "ws.signaling").Str("from", string(id)).Str("to", string(p.To)).Msg("forwarding answer")
	h.toConn(p.To, EventAnswer, AnswerOut{From: id, Answer: p.Answer})
}

func handleICECandidate(h *Hub, id domain.ConnID, data json.RawMessage) {
	var p CandidateIn
	if err := decode(h.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws.signaling").Str("conn", string(id)).Msg("bad candidate")
		return
	}
	h.toConn(p.To, EventICECandidate, CandidateOut{From: id, Candidate: p.Candidate})
}
