package peer

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

type link struct {
	pc      conn
	state   LinkState
	pending []webrtc.ICECandidateInit
}

// Manager keys peer links by remote connection id and drives the
// NONE → CONNECTING → CONNECTED|FAILED machine for each.
type Manager struct {
	self domain.ConnID
	sig  Signaler

	mu    sync.Mutex
	links map[domain.ConnID]*link

	newConn func() (conn, error)
}

func NewManager(self domain.ConnID, sig Signaler) *Manager {
	cfg := DefaultConfig()
	return &Manager{
		self:  self,
		sig:   sig,
		links: make(map[domain.ConnID]*link),
		newConn: func() (conn, error) {
			return webrtc.NewPeerConnection(cfg)
		},
	}
}

// EnsurePeer creates the link for a remote member if it does not exist
// yet, sending an offer only when the tie-break says this side
// initiates (own id compares less than the remote's).
func (m *Manager) EnsurePeer(remote domain.ConnID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remote == m.self {
		return nil
	}
	if _, ok := m.links[remote]; ok {
		return nil
	}
	l, err := m.createLink(remote)
	if err != nil {
		return err
	}
	if m.self < remote {
		return m.offerLocked(remote, l)
	}
	return nil
}

// HandleOffer answers a remote offer, creating the link if the remote
// beat us to it.
func (m *Manager) HandleOffer(from domain.ConnID, offer webrtc.SessionDescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[from]
	if !ok {
		var err error
		if l, err = m.createLink(from); err != nil {
			return err
		}
	}
	if err := l.pc.SetRemoteDescription(offer); err != nil {
		return err
	}
	m.flushPendingLocked(from, l)
	answer, err := l.pc.CreateAnswer(nil)
	if err != nil {
		return err
	}
	if err := l.pc.SetLocalDescription(answer); err != nil {
		return err
	}
	l.state = StateConnecting
	return m.sig.SendAnswer(from, answer)
}

// HandleAnswer completes a handshake this side initiated. An answer
// from an unknown peer is dropped: the link was torn down while the
// answer was in flight.
func (m *Manager) HandleAnswer(from domain.ConnID, answer webrtc.SessionDescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[from]
	if !ok {
		log.Warn().Str("module", "peer").Str("from", string(from)).Msg("answer for unknown peer, dropped")
		return nil
	}
	if err := l.pc.SetRemoteDescription(answer); err != nil {
		return err
	}
	m.flushPendingLocked(from, l)
	return nil
}

// HandleCandidate tolerates candidates arriving before the remote
// description: they are buffered and flushed once it lands. Add
// failures after that point are logged, never fatal.
func (m *Manager) HandleCandidate(from domain.ConnID, cand webrtc.ICECandidateInit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[from]
	if !ok {
		log.Warn().Str("module", "peer").Str("from", string(from)).Msg("candidate for unknown peer, dropped")
		return nil
	}
	if l.pc.RemoteDescription() == nil {
		l.pending = append(l.pending, cand)
		return nil
	}
	if err := l.pc.AddICECandidate(cand); err != nil {
		log.Warn().Err(err).Str("module", "peer").Str("from", string(from)).Msg("add candidate")
	}
	return nil
}

// RemovePeer tears the link down on a peer's departure. A link left
// lingering past its peer's departure is a defect.
func (m *Manager) RemovePeer(remote domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(remote)
}

// SyncPeers reconciles the link set against the current room member
// ids: missing links are created (with the tie-break deciding who
// offers) and links to departed members are torn down.
func (m *Manager) SyncPeers(members []domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	present := make(map[domain.ConnID]struct{}, len(members))
	for _, id := range members {
		if id == m.self {
			continue
		}
		present[id] = struct{}{}
		if _, ok := m.links[id]; ok {
			continue
		}
		l, err := m.createLink(id)
		if err != nil {
			log.Error().Err(err).Str("module", "peer").Str("remote", string(id)).Msg("create link")
			continue
		}
		if m.self < id {
			if err := m.offerLocked(id, l); err != nil {
				log.Error().Err(err).Str("module", "peer").Str("remote", string(id)).Msg("offer")
			}
		}
	}

	for id := range m.links {
		if _, ok := present[id]; !ok {
			m.removeLocked(id)
		}
	}
}

// State reports a link's current state; StateNone for unknown peers.
func (m *Manager) State(remote domain.ConnID) LinkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[remote]
	if !ok {
		return StateNone
	}
	return l.state
}

// Close tears down every link.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.links {
		m.removeLocked(id)
	}
}

func (m *Manager) createLink(remote domain.ConnID) (*link, error) {
	pc, err := m.newConn()
	if err != nil {
		return nil, err
	}
	l := &link{pc: pc}
	m.links[remote] = l

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		if err := m.sig.SendCandidate(remote, c.ToJSON()); err != nil {
			log.Warn().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("send candidate")
		}
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "peer").Str("remote", string(remote)).Str("state", s.String()).Msg("peer state")
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.links[remote]
		if !ok || cur != l {
			return
		}
		switch s {
		case webrtc.PeerConnectionStateConnected:
			cur.state = StateConnected
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			cur.state = StateFailed
		}
	})
	return l, nil
}

func (m *Manager) offerLocked(remote domain.ConnID, l *link) error {
	offer, err := l.pc.CreateOffer(nil)
	if err != nil {
		return err
	}
	if err := l.pc.SetLocalDescription(offer); err != nil {
		return err
	}
	l.state = StateConnecting
	log.Debug().Str("module", "peer").Str("remote", string(remote)).Msg("sending offer")
	return m.sig.SendOffer(remote, offer)
}

func (m *Manager) flushPendingLocked(remote domain.ConnID, l *link) {
	for _, cand := range l.pending {
		if err := l.pc.AddICECandidate(cand); err != nil {
			log.Warn().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("flush candidate")
		}
	}
	l.pending = nil
}

func (m *Manager) removeLocked(remote domain.ConnID) {
	l, ok := m.links[remote]
	if !ok {
		return
	}
	if err := l.pc.Close(); err != nil {
		log.Warn().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("close link")
	}
	delete(m.links, remote)
	log.Info().Str("module", "peer").Str("remote", string(remote)).Msg("peer removed")
}
