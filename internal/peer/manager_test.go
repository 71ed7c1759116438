package peer

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"cosync/internal/domain"
)

type fakePC struct {
	remote     *webrtc.SessionDescription
	added      []webrtc.ICECandidateInit
	closed     bool
	onState    func(webrtc.PeerConnectionState)
	offerErr   error
	remoteErr  error
	localCalls int
}

func (f *fakePC) CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error) {
	if f.offerErr != nil {
		return webrtc.SessionDescription{}, f.offerErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "fake-offer"}, nil
}

func (f *fakePC) CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "fake-answer"}, nil
}

func (f *fakePC) SetLocalDescription(webrtc.SessionDescription) error {
	f.localCalls++
	return nil
}

func (f *fakePC) SetRemoteDescription(sd webrtc.SessionDescription) error {
	if f.remoteErr != nil {
		return f.remoteErr
	}
	f.remote = &sd
	return nil
}

func (f *fakePC) AddICECandidate(c webrtc.ICECandidateInit) error {
	f.added = append(f.added, c)
	return nil
}

func (f *fakePC) RemoteDescription() *webrtc.SessionDescription { return f.remote }

func (f *fakePC) OnICECandidate(func(*webrtc.ICECandidate)) {}

func (f *fakePC) OnConnectionStateChange(fn func(webrtc.PeerConnectionState)) { f.onState = fn }

func (f *fakePC) Close() error {
	f.closed = true
	return nil
}

type sentSignal struct {
	kind string
	to   domain.ConnID
}

type fakeSignaler struct {
	sent []sentSignal
}

func (s *fakeSignaler) SendOffer(to domain.ConnID, _ webrtc.SessionDescription) error {
	s.sent = append(s.sent, sentSignal{"offer", to})
	return nil
}

func (s *fakeSignaler) SendAnswer(to domain.ConnID, _ webrtc.SessionDescription) error {
	s.sent = append(s.sent, sentSignal{"answer", to})
	return nil
}

func (s *fakeSignaler) SendCandidate(to domain.ConnID, _ webrtc.ICECandidateInit) error {
	s.sent = append(s.sent, sentSignal{"candidate", to})
	return nil
}

func (s *fakeSignaler) kinds() []string {
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.kind)
	}
	return out
}

// newTestManager returns a manager whose links are fakes, plus a map of
// the fakes created so far, keyed by creation order.
func newTestManager(self domain.ConnID) (*Manager, *fakeSignaler, *[]*fakePC) {
	sig := &fakeSignaler{}
	m := NewManager(self, sig)
	created := &[]*fakePC{}
	m.newConn = func() (conn, error) {
		pc := &fakePC{}
		*created = append(*created, pc)
		return pc, nil
	}
	return m, sig, created
}

func TestEnsurePeerOffersWhenLowerID(t *testing.T) {
	req := require.New(t)
	m, sig, _ := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))

	req.Equal([]string{"offer"}, sig.kinds())
	req.Equal(domain.ConnID("bbb"), sig.sent[0].to)
	req.Equal(StateConnecting, m.State("bbb"))
}

func TestEnsurePeerWaitsWhenHigherID(t *testing.T) {
	req := require.New(t)
	m, sig, _ := newTestManager("zzz")

	req.NoError(m.EnsurePeer("bbb"))

	req.Empty(sig.sent)
	req.Equal(StateNone, m.State("bbb"))
}

func TestEnsurePeerIdempotent(t *testing.T) {
	req := require.New(t)
	m, sig, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	req.NoError(m.EnsurePeer("bbb"))

	req.Len(*created, 1)
	req.Len(sig.sent, 1)
}

func TestEnsurePeerIgnoresSelf(t *testing.T) {
	req := require.New(t)
	m, sig, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("aaa"))

	req.Empty(*created)
	req.Empty(sig.sent)
}

func TestHandleOfferAnswersAndCreatesLink(t *testing.T) {
	req := require.New(t)
	m, sig, created := newTestManager("zzz")

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "remote"}
	req.NoError(m.HandleOffer("bbb", offer))

	req.Len(*created, 1)
	req.NotNil((*created)[0].remote)
	req.Equal("remote", (*created)[0].remote.SDP)
	req.Equal([]string{"answer"}, sig.kinds())
	req.Equal(domain.ConnID("bbb"), sig.sent[0].to)
	req.Equal(StateConnecting, m.State("bbb"))
}

func TestHandleAnswerCompletesHandshake(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "remote"}
	req.NoError(m.HandleAnswer("bbb", answer))

	req.Equal("remote", (*created)[0].remote.SDP)
}

func TestHandleAnswerUnknownPeerDropped(t *testing.T) {
	m, _, _ := newTestManager("aaa")
	require.NoError(t, m.HandleAnswer("ghost", webrtc.SessionDescription{}))
}

func TestEarlyCandidatesBufferedUntilRemoteDescription(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	pc := (*created)[0]

	c1 := webrtc.ICECandidateInit{Candidate: "candidate:1"}
	c2 := webrtc.ICECandidateInit{Candidate: "candidate:2"}
	req.NoError(m.HandleCandidate("bbb", c1))
	req.NoError(m.HandleCandidate("bbb", c2))
	req.Empty(pc.added)

	req.NoError(m.HandleAnswer("bbb", webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "x"}))
	req.Equal([]webrtc.ICECandidateInit{c1, c2}, pc.added)

	// Later candidates go straight through.
	c3 := webrtc.ICECandidateInit{Candidate: "candidate:3"}
	req.NoError(m.HandleCandidate("bbb", c3))
	req.Len(pc.added, 3)
}

func TestHandleCandidateUnknownPeerDropped(t *testing.T) {
	m, _, _ := newTestManager("aaa")
	require.NoError(t, m.HandleCandidate("ghost", webrtc.ICECandidateInit{Candidate: "c"}))
}

func TestRemovePeerClosesLink(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	m.RemovePeer("bbb")

	req.True((*created)[0].closed)
	req.Equal(StateNone, m.State("bbb"))

	// Removing again is a no-op.
	m.RemovePeer("bbb")
}

func TestSyncPeersReconciles(t *testing.T) {
	req := require.New(t)
	m, sig, created := newTestManager("mmm")

	m.SyncPeers([]domain.ConnID{"mmm", "aaa", "zzz"})

	// One link per remote member, never one for self. The tie-break
	// means we offer to zzz and wait for aaa.
	req.Len(*created, 2)
	req.Equal([]string{"offer"}, sig.kinds())
	req.Equal(domain.ConnID("zzz"), sig.sent[0].to)

	// aaa leaves; its link is torn down, zzz's survives.
	m.SyncPeers([]domain.ConnID{"mmm", "zzz"})
	req.Equal(StateNone, m.State("aaa"))
	req.Equal(StateConnecting, m.State("zzz"))

	closed := 0
	for _, pc := range *created {
		if pc.closed {
			closed++
		}
	}
	req.Equal(1, closed)
}

func TestConnectionStateCallbackUpdatesLink(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	pc := (*created)[0]
	req.NotNil(pc.onState)

	pc.onState(webrtc.PeerConnectionStateConnected)
	req.Equal(StateConnected, m.State("bbb"))

	pc.onState(webrtc.PeerConnectionStateFailed)
	req.Equal(StateFailed, m.State("bbb"))
}

func TestStaleStateCallbackIgnoredAfterRemove(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	old := (*created)[0]
	m.RemovePeer("bbb")
	req.NoError(m.EnsurePeer("bbb"))

	// The old link's callback fires late; the fresh link keeps its
	// own state.
	old.onState(webrtc.PeerConnectionStateFailed)
	req.Equal(StateConnecting, m.State("bbb"))
}

func TestCloseTearsDownEverything(t *testing.T) {
	req := require.New(t)
	m, _, created := newTestManager("aaa")

	req.NoError(m.EnsurePeer("bbb"))
	req.NoError(m.EnsurePeer("ccc"))
	m.Close()

	for _, pc := range *created {
		req.True(pc.closed)
	}
	req.Equal(StateNone, m.State("bbb"))
	req.Equal(StateNone, m.State("ccc"))
}
