// Package peer implements the client half of the signaling contract:
// at most one peer connection per remote room member, negotiated over
// the server's webrtc-offer/answer/ice-candidate relay. The member
// whose own connection id compares less than the remote's initiates
// the offer; the other waits to receive one.
package peer

import (
	"github.com/pion/webrtc/v4"

	"cosync/internal/domain"
)

// LinkState tracks one peer link's lifecycle.
type LinkState int

const (
	StateNone LinkState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s LinkState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "none"
	}
}

// Signaler sends handshake messages toward a remote connection id. The
// room client implements it over the server relay.
type Signaler interface {
	SendOffer(to domain.ConnID, offer webrtc.SessionDescription) error
	SendAnswer(to domain.ConnID, answer webrtc.SessionDescription) error
	SendCandidate(to domain.ConnID, cand webrtc.ICECandidateInit) error
}

// conn is the slice of *webrtc.PeerConnection the manager needs;
// narrowed so tests can drive the state machine without ICE.
type conn interface {
	CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error)
	CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	SetRemoteDescription(webrtc.SessionDescription) error
	AddICECandidate(webrtc.ICECandidateInit) error
	RemoteDescription() *webrtc.SessionDescription
	OnICECandidate(func(*webrtc.ICECandidate))
	OnConnectionStateChange(func(webrtc.PeerConnectionState))
	Close() error
}

// DefaultConfig returns the STUN set the editor clients ship with.
func DefaultConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
			{URLs: []string{"stun:stun1.l.google.com:19302"}},
		},
	}
}
