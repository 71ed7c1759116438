// Package client is a programmatic room participant: it speaks the
// editor wire protocol over one WebSocket and negotiates direct peer
// links through the server's signaling relay.
package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"cosync/internal/domain"
	"cosync/internal/peer"
	"cosync/internal/ws"
)

const writeWait = 5 * time.Second

// Handlers are the application callbacks. Any nil handler is skipped.
// OnEvent receives every kind without a dedicated callback (file tree,
// drawing, typing), letting callers mirror state how they choose.
type Handlers struct {
	OnJoinAccepted     func(self domain.Member, users []domain.Member)
	OnUsernameExists   func()
	OnUserJoined       func(user domain.Member)
	OnUserDisconnected func(user domain.Member)
	OnChat             func(msg domain.ChatMessage)
	OnEvent            func(kind string, payload json.RawMessage)
}

type Client struct {
	conn     *websocket.Conn
	handlers Handlers

	writeMu sync.Mutex

	mu    sync.Mutex
	self  domain.Member
	peers *peer.Manager
}

// Dial connects to the server's WS endpoint. The connection id is
// server-minted; the client learns its own id from join-accepted.
func Dial(ctx context.Context, url string, handlers Handlers) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, handlers: handlers}, nil
}

// Join requests membership under a self-declared username. The reply
// arrives on the read loop as join-accepted or username-exists.
func (c *Client) Join(roomID, username string) error {
	return c.Emit(ws.EventJoinRequest, ws.JoinRequest{RoomID: roomID, Username: username})
}

// Emit sends one event envelope. Safe for concurrent use.
func (c *Client) Emit(kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(ws.Envelope{Type: kind, Payload: body})
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) SendChat(msg domain.ChatMessage) error {
	return c.Emit(ws.EventSendMessage, ws.ChatRelay{Message: msg})
}

func (c *Client) MoveCursor(pos int, selStart, selEnd *int) error {
	return c.Emit(ws.EventCursorMove, ws.CursorChange{
		CursorPosition: pos,
		SelectionStart: selStart,
		SelectionEnd:   selEnd,
	})
}

// Self returns the member record assigned at join, zero before then.
func (c *Client) Self() domain.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// Run reads events until the context is canceled or the socket closes,
// wiring presence and signaling into the peer manager.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()
	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		c.handle(data)
	}
}

// Close tears down every peer link and the socket.
func (c *Client) Close() {
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers != nil {
		peers.Close()
	}
	_ = c.conn.Close()
}

func (c *Client) handle(data []byte) {
	var env ws.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad envelope")
		return
	}
	switch env.Type {
	case ws.EventJoinAccepted:
		c.handleJoinAccepted(env.Payload)
	case ws.EventUsernameExists:
		if c.handlers.OnUsernameExists != nil {
			c.handlers.OnUsernameExists()
		}
	case ws.EventUserJoined:
		c.handleUserJoined(env.Payload)
	case ws.EventUserDisconnected:
		c.handleUserDisconnected(env.Payload)
	case ws.EventReceiveMessage:
		var p ws.ChatRelay
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("bad chat payload")
			return
		}
		if c.handlers.OnChat != nil {
			c.handlers.OnChat(p.Message)
		}
	case ws.EventOffer:
		c.handleOffer(env.Payload)
	case ws.EventAnswer:
		c.handleAnswer(env.Payload)
	case ws.EventICECandidate:
		c.handleCandidate(env.Payload)
	default:
		if c.handlers.OnEvent != nil {
			c.handlers.OnEvent(env.Type, env.Payload)
		}
	}
}

func (c *Client) handleJoinAccepted(payload json.RawMessage) {
	var p ws.JoinAccepted
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad join-accepted payload")
		return
	}
	c.mu.Lock()
	c.self = p.User
	c.peers = peer.NewManager(p.User.ConnID, c)
	peers := c.peers
	c.mu.Unlock()

	peers.SyncPeers(lo.Map(p.Users, func(m domain.Member, _ int) domain.ConnID {
		return m.ConnID
	}))
	if c.handlers.OnJoinAccepted != nil {
		c.handlers.OnJoinAccepted(p.User, p.Users)
	}
}

func (c *Client) handleUserJoined(payload json.RawMessage) {
	var p ws.UserEvent
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad user-joined payload")
		return
	}
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers != nil {
		if err := peers.EnsurePeer(p.User.ConnID); err != nil {
			log.Error().Err(err).Str("module", "client").Str("remote", string(p.User.ConnID)).Msg("ensure peer")
		}
	}
	if c.handlers.OnUserJoined != nil {
		c.handlers.OnUserJoined(p.User)
	}
}

func (c *Client) handleUserDisconnected(payload json.RawMessage) {
	var p ws.UserEvent
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad user-disconnected payload")
		return
	}
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers != nil {
		peers.RemovePeer(p.User.ConnID)
	}
	if c.handlers.OnUserDisconnected != nil {
		c.handlers.OnUserDisconnected(p.User)
	}
}

func (c *Client) handleOffer(payload json.RawMessage) {
	var p ws.OfferOut
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad offer payload")
		return
	}
	var sdp webrtc.SessionDescription
	if err := json.Unmarshal(p.Offer, &sdp); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad offer sdp")
		return
	}
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers == nil {
		return
	}
	if err := peers.HandleOffer(p.From, sdp); err != nil {
		log.Error().Err(err).Str("module", "client").Str("from", string(p.From)).Msg("handle offer")
	}
}

func (c *Client) handleAnswer(payload json.RawMessage) {
	var p ws.AnswerOut
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad answer payload")
		return
	}
	var sdp webrtc.SessionDescription
	if err := json.Unmarshal(p.Answer, &sdp); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad answer sdp")
		return
	}
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers == nil {
		return
	}
	if err := peers.HandleAnswer(p.From, sdp); err != nil {
		log.Error().Err(err).Str("module", "client").Str("from", string(p.From)).Msg("handle answer")
	}
}

func (c *Client) handleCandidate(payload json.RawMessage) {
	var p ws.CandidateOut
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad candidate payload")
		return
	}
	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(p.Candidate, &cand); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad candidate body")
		return
	}
	c.mu.Lock()
	peers := c.peers
	c.mu.Unlock()
	if peers == nil {
		return
	}
	if err := peers.HandleCandidate(p.From, cand); err != nil {
		log.Error().Err(err).Str("module", "client").Str("from", string(p.From)).Msg("handle candidate")
	}
}

// SendOffer, SendAnswer and SendCandidate implement peer.Signaler over
// the server relay.
func (c *Client) SendOffer(to domain.ConnID, offer webrtc.SessionDescription) error {
	body, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	return c.Emit(ws.EventOffer, ws.OfferIn{To: to, Offer: body})
}

func (c *Client) SendAnswer(to domain.ConnID, answer webrtc.SessionDescription) error {
	body, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return c.Emit(ws.EventAnswer, ws.AnswerIn{To: to, Answer: body})
}

func (c *Client) SendCandidate(to domain.ConnID, cand webrtc.ICECandidateInit) error {
	body, err := json.Marshal(cand)
	if err != nil {
		return err
	}
	return c.Emit(ws.EventICECandidate, ws.CandidateIn{To: to, Candidate: body})
}
