package channel

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/proto"
	"github.com/gridkv/gridkv-go/rpc/transport"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// mockTransport implements transport.IConnectionTransport in-memory. An
// optional responder is invoked synchronously for every sent frame and may
// inject replies via the sink.
type mockTransport struct {
	mu        sync.Mutex
	sink      transport.IMessageSink
	sent      [][]byte
	sendErr   error
	responder func(frame []byte)
	closed    bool
}

func (m *mockTransport) Connect(_ common.ClientConfig, sink transport.IMessageSink) error {
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
	return nil
}

func (m *mockTransport) Send(data []byte) error {
	m.mu.Lock()
	m.sent = append(m.sent, data)
	responder := m.responder
	err := m.sendErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if responder != nil {
		responder(data)
	}
	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *mockTransport) deliver(buf []byte) {
	m.mu.Lock()
	sink := m.sink
	m.mu.Unlock()
	sink.OnData(buf)
}

func (m *mockTransport) setResponder(responder func(frame []byte)) {
	m.mu.Lock()
	m.responder = responder
	m.mu.Unlock()
}

func (m *mockTransport) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// acceptFrame builds a handshake acceptance reply
func acceptFrame(nodeID string) []byte {
	w := proto.NewWriter()
	w.WriteBool(true)
	w.WriteString(nodeID)
	return proto.NewFrame(0, w.Bytes())
}

// rejectFrame builds a handshake rejection with a counter-proposed version
func rejectFrame(ver proto.Version, msg string) []byte {
	w := proto.NewWriter()
	w.WriteBool(false)
	w.WriteVersion(ver)
	w.WriteString(msg)
	return proto.NewFrame(0, w.Bytes())
}

// echoResponder replies to every application frame with its own payload
func echoResponder(m *mockTransport) func(frame []byte) {
	return func(frame []byte) {
		reqID, payload, err := proto.ParseHeader(frame)
		if err != nil {
			return
		}
		m.deliver(proto.NewFrame(reqID, payload))
	}
}

func testConfig() common.ClientConfig {
	return common.ClientConfig{
		Address:                "localhost:10800",
		ClientName:             "test",
		HandshakeTimeoutSecond: 1,
	}
}

// newReadyChannel creates a channel with a completed handshake and no
// responder attached
func newReadyChannel(t *testing.T) (*DataChannel, *mockTransport) {
	t.Helper()

	m := &mockTransport{}
	m.setResponder(func(frame []byte) {
		m.deliver(acceptFrame("node-1"))
	})

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	m.setResponder(nil)
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
	return ch, m
}

type testRequest struct {
	payload []byte
}

func (r *testRequest) OpCode() proto.OpCode {
	return proto.OpKVGet
}

func (r *testRequest) Serialize(_ proto.Version) ([]byte, error) {
	return r.payload, nil
}

type testResponse struct {
	data []byte
}

func (r *testResponse) Deserialize(_ proto.Version, data []byte) error {
	r.data = append([]byte(nil), data...)
	return nil
}

// --------------------------------------------------------------------------
// Handshake
// --------------------------------------------------------------------------

// TestHandshakeAccepted verifies the happy path: the default version is
// proposed and accepted, and the channel becomes ready
func TestHandshakeAccepted(t *testing.T) {
	m := &mockTransport{}
	m.setResponder(func(frame []byte) {
		reqID, _, err := proto.ParseHeader(frame)
		if err != nil || reqID != 0 {
			t.Errorf("handshake frame must carry correlation id 0, got %d (%v)", reqID, err)
		}
		m.deliver(acceptFrame("node-42"))
	})

	ch := NewDataChannel(7, testConfig(), m)
	if err := ch.StartHandshake(); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	if ch.Version() != proto.DefaultVersion() {
		t.Errorf("expected negotiated version %s, got %s", proto.DefaultVersion(), ch.Version())
	}
	if node := ch.GetNode(); node == nil || node.ID() != "node-42" {
		t.Errorf("expected node-42, got %v", node)
	}
	if ch.GetId() != 7 {
		t.Errorf("expected connection id 7, got %d", ch.GetId())
	}
}

// TestHandshakeVersionFallback verifies that a rejection with a supported
// counter-proposal triggers exactly one retry which then succeeds
func TestHandshakeVersionFallback(t *testing.T) {
	m := &mockTransport{}
	attempt := 0
	m.setResponder(func(frame []byte) {
		attempt++
		if attempt == 1 {
			m.deliver(rejectFrame(proto.V1_5_0, "version too new"))
		} else {
			m.deliver(acceptFrame("node-1"))
		}
	})

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	if attempt != 2 {
		t.Errorf("expected 2 handshake attempts, got %d", attempt)
	}
	if ch.Version() != proto.V1_5_0 {
		t.Errorf("expected fallback version %s, got %s", proto.V1_5_0, ch.Version())
	}
}

// TestHandshakeUnsupportedCounterProposal verifies that an unsupported
// counter-proposal fails establishment without a second attempt
func TestHandshakeUnsupportedCounterProposal(t *testing.T) {
	m := &mockTransport{}
	m.setResponder(func(frame []byte) {
		m.deliver(rejectFrame(proto.NewVersion(2, 0, 0), "ancient client"))
	})

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err == nil {
		t.Fatalf("expected handshake to fail")
	}

	if m.sentCount() != 1 {
		t.Errorf("expected exactly 1 handshake attempt, got %d", m.sentCount())
	}
	if err := ch.checkReady(); !errors.Is(err, common.ErrHandshakeNotPerformed) {
		t.Errorf("channel must not be ready after failed handshake, got %v", err)
	}
}

// TestHandshakeRejectedAfterFallback verifies that a second rejection fails
// establishment, there is no unbounded negotiation loop
func TestHandshakeRejectedAfterFallback(t *testing.T) {
	m := &mockTransport{}
	m.setResponder(func(frame []byte) {
		m.deliver(rejectFrame(proto.V1_5_0, "no"))
	})

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err == nil {
		t.Fatalf("expected handshake to fail")
	}

	if m.sentCount() != 2 {
		t.Errorf("expected exactly 2 handshake attempts, got %d", m.sentCount())
	}
}

// TestHandshakeTimeout verifies that a silent server fails establishment
func TestHandshakeTimeout(t *testing.T) {
	m := &mockTransport{}

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err == nil {
		t.Fatalf("expected handshake to time out")
	}
}

// TestSendBeforeHandshake verifies the handshake-before-traffic gate
func TestSendBeforeHandshake(t *testing.T) {
	ch := NewDataChannel(1, testConfig(), &mockTransport{})

	if _, err := ch.AsyncMessage(&testRequest{payload: []byte("x")}); !errors.Is(err, common.ErrHandshakeNotPerformed) {
		t.Errorf("expected ErrHandshakeNotPerformed, got %v", err)
	}
	if err := ch.RegisterNotificationHandler(1, func([]byte) {}); !errors.Is(err, common.ErrHandshakeNotPerformed) {
		t.Errorf("expected ErrHandshakeNotPerformed, got %v", err)
	}
}

// --------------------------------------------------------------------------
// Request/response correlation
// --------------------------------------------------------------------------

// TestSyncMessageSuccess verifies the full sync round trip including
// response decoding
func TestSyncMessageSuccess(t *testing.T) {
	ch, m := newReadyChannel(t)
	m.setResponder(echoResponder(m))

	rsp := &testResponse{}
	if err := ch.SyncMessage(&testRequest{payload: []byte("ping")}, rsp, time.Second); err != nil {
		t.Fatalf("sync message failed: %v", err)
	}

	if string(rsp.data) != "ping" {
		t.Errorf("expected echoed payload \"ping\", got %q", rsp.data)
	}
	if ch.PendingRequests() != 0 {
		t.Errorf("expected empty pending table, got %d entries", ch.PendingRequests())
	}
}

// TestSyncMessageTimeout verifies that a timeout removes the entry and a
// late reply is discarded without effect
func TestSyncMessageTimeout(t *testing.T) {
	ch, m := newReadyChannel(t)

	rsp := &testResponse{}
	err := ch.SyncMessage(&testRequest{payload: []byte("ping")}, rsp, 50*time.Millisecond)
	if !errors.Is(err, common.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if ch.PendingRequests() != 0 {
		t.Fatalf("expected entry removed on timeout, got %d entries", ch.PendingRequests())
	}

	// Deliver the reply late, it must be discarded silently
	reqID, payload, err := proto.ParseHeader(m.sent[0])
	if err != nil {
		t.Fatalf("failed to parse sent frame: %v", err)
	}
	m.deliver(proto.NewFrame(reqID, payload))

	if ch.PendingRequests() != 0 {
		t.Errorf("late reply must not resurrect the call")
	}
}

// TestSyncMessageSendFailure verifies that a transport send error fails the
// call immediately and leaves no entry behind
func TestSyncMessageSendFailure(t *testing.T) {
	ch, m := newReadyChannel(t)
	m.mu.Lock()
	m.sendErr = fmt.Errorf("broken pipe")
	m.mu.Unlock()

	err := ch.SyncMessage(&testRequest{payload: []byte("x")}, &testResponse{}, time.Second)
	if err == nil {
		t.Fatalf("expected send failure")
	}
	if ch.PendingRequests() != 0 {
		t.Errorf("expected no pending entry after send failure, got %d", ch.PendingRequests())
	}
}

// TestAsyncMessageOutOfOrderReplies verifies that replies completing out of
// request-issue order are matched to the right waiters
func TestAsyncMessageOutOfOrderReplies(t *testing.T) {
	ch, m := newReadyChannel(t)

	f1, err := ch.AsyncMessage(&testRequest{payload: []byte("first")})
	if err != nil {
		t.Fatalf("async message failed: %v", err)
	}
	f2, err := ch.AsyncMessage(&testRequest{payload: []byte("second")})
	if err != nil {
		t.Fatalf("async message failed: %v", err)
	}

	// Reply to the second request first
	m.deliver(proto.NewFrame(f2.RequestID(), []byte("reply-2")))
	m.deliver(proto.NewFrame(f1.RequestID(), []byte("reply-1")))

	if buf, err := f1.Wait(time.Second); err != nil || string(buf[proto.HeaderSize:]) != "reply-1" {
		t.Errorf("first future got %q, %v", buf, err)
	}
	if buf, err := f2.Wait(time.Second); err != nil || string(buf[proto.HeaderSize:]) != "reply-2" {
		t.Errorf("second future got %q, %v", buf, err)
	}
}

// TestDuplicateReplyDiscarded verifies single completion: a second delivery
// for the same id is a no-op
func TestDuplicateReplyDiscarded(t *testing.T) {
	ch, m := newReadyChannel(t)

	f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
	if err != nil {
		t.Fatalf("async message failed: %v", err)
	}

	m.deliver(proto.NewFrame(f.RequestID(), []byte("one")))
	m.deliver(proto.NewFrame(f.RequestID(), []byte("two")))

	buf, err := f.Wait(time.Second)
	if err != nil {
		t.Fatalf("future failed: %v", err)
	}
	if string(buf[proto.HeaderSize:]) != "one" {
		t.Errorf("expected first delivery to win, got %q", buf[proto.HeaderSize:])
	}
	if ch.PendingRequests() != 0 {
		t.Errorf("expected empty pending table, got %d entries", ch.PendingRequests())
	}
}

// TestConcurrentAsyncMessages verifies that every future resolves exactly
// once and no request id is reused under concurrent senders
func TestConcurrentAsyncMessages(t *testing.T) {
	const numSenders = 20
	const requestsPerSender = 50

	ch, m := newReadyChannel(t)
	m.setResponder(echoResponder(m))

	var (
		mu  sync.Mutex
		ids = make(map[int64]bool)
	)

	var wg sync.WaitGroup
	wg.Add(numSenders)
	for s := 0; s < numSenders; s++ {
		go func() {
			defer wg.Done()
			for i := 0; i < requestsPerSender; i++ {
				f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
				if err != nil {
					t.Errorf("async message failed: %v", err)
					return
				}

				mu.Lock()
				if ids[f.RequestID()] {
					t.Errorf("duplicate request id %d", f.RequestID())
				}
				ids[f.RequestID()] = true
				mu.Unlock()

				if _, err := f.Wait(2 * time.Second); err != nil {
					t.Errorf("future for request %d failed: %v", f.RequestID(), err)
				}
			}
		}()
	}
	wg.Wait()

	if len(ids) != numSenders*requestsPerSender {
		t.Errorf("expected %d distinct ids, got %d", numSenders*requestsPerSender, len(ids))
	}
	if ch.PendingRequests() != 0 {
		t.Errorf("expected empty pending table, got %d entries", ch.PendingRequests())
	}
}

// TestRequestIDsMonotonic verifies that ids are strictly increasing in
// issuance order
func TestRequestIDsMonotonic(t *testing.T) {
	ch, m := newReadyChannel(t)
	m.setResponder(echoResponder(m))

	var last int64
	for i := 0; i < 10; i++ {
		f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
		if err != nil {
			t.Fatalf("async message failed: %v", err)
		}
		if f.RequestID() <= last {
			t.Errorf("request id %d not greater than previous %d", f.RequestID(), last)
		}
		last = f.RequestID()
	}
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// TestNotificationDispatch verifies that a registered handler fires
// repeatedly and the registration is retained
func TestNotificationDispatch(t *testing.T) {
	ch, m := newReadyChannel(t)

	var (
		mu    sync.Mutex
		calls [][]byte
	)
	err := ch.RegisterNotificationHandler(777, func(buf []byte) {
		mu.Lock()
		calls = append(calls, buf)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("failed to register handler: %v", err)
	}

	m.deliver(proto.NewFrame(777, []byte("event-1")))
	m.deliver(proto.NewFrame(777, []byte("event-2")))

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected 2 handler invocations, got %d", len(calls))
	}
	if string(calls[0][proto.HeaderSize:]) != "event-1" || string(calls[1][proto.HeaderSize:]) != "event-2" {
		t.Errorf("handler received wrong payloads")
	}
}

// TestNotificationUnregister verifies that notifications after unregister
// are discarded
func TestNotificationUnregister(t *testing.T) {
	ch, m := newReadyChannel(t)

	fired := false
	if err := ch.RegisterNotificationHandler(5, func([]byte) { fired = true }); err != nil {
		t.Fatalf("failed to register handler: %v", err)
	}
	ch.UnregisterNotificationHandler(5)

	m.deliver(proto.NewFrame(5, []byte("late event")))

	if fired {
		t.Errorf("handler fired after unregister")
	}
}

// TestUnmatchedMessageDiscarded verifies that a buffer matching neither
// table is discarded without side effects
func TestUnmatchedMessageDiscarded(t *testing.T) {
	ch, m := newReadyChannel(t)

	m.deliver(proto.NewFrame(99999, []byte("orphan")))

	if ch.PendingRequests() != 0 {
		t.Errorf("orphan message must not create pending entries")
	}
}

// --------------------------------------------------------------------------
// Teardown
// --------------------------------------------------------------------------

// TestFailPendingRequests verifies that all outstanding futures resolve
// with the supplied error and the table drains
func TestFailPendingRequests(t *testing.T) {
	const numCalls = 10

	ch, _ := newReadyChannel(t)

	futures := make([]*Future, 0, numCalls)
	for i := 0; i < numCalls; i++ {
		f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
		if err != nil {
			t.Fatalf("async message failed: %v", err)
		}
		futures = append(futures, f)
	}

	want := errors.New("node went away")
	ch.FailPendingRequests(want)

	for i, f := range futures {
		if _, err := f.Wait(time.Second); !errors.Is(err, want) {
			t.Errorf("future %d resolved with %v, expected %v", i, err, want)
		}
	}
	if ch.PendingRequests() != 0 {
		t.Errorf("expected empty pending table, got %d entries", ch.PendingRequests())
	}
}

// TestCloseFailsPendingAndBlocksSends verifies teardown semantics
func TestCloseFailsPendingAndBlocksSends(t *testing.T) {
	ch, m := newReadyChannel(t)

	f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
	if err != nil {
		t.Fatalf("async message failed: %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := f.Wait(time.Second); !errors.Is(err, common.ErrClosed) {
		t.Errorf("pending future resolved with %v, expected ErrClosed", err)
	}

	// Further sends fail fast without touching the transport
	before := m.sentCount()
	if _, err := ch.AsyncMessage(&testRequest{payload: []byte("y")}); !errors.Is(err, common.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if m.sentCount() != before {
		t.Errorf("send after close must not reach the transport")
	}

	// Closing twice is a no-op
	if err := ch.Close(); err != nil {
		t.Errorf("second close returned %v", err)
	}
}

// TestOnDisconnectFailsPending verifies that a transport disconnect is
// broadcast to every pending caller and closes the channel
func TestOnDisconnectFailsPending(t *testing.T) {
	ch, _ := newReadyChannel(t)

	f, err := ch.AsyncMessage(&testRequest{payload: []byte("x")})
	if err != nil {
		t.Fatalf("async message failed: %v", err)
	}

	cause := errors.New("connection reset")
	ch.OnDisconnect(cause)

	if _, err := f.Wait(time.Second); !errors.Is(err, cause) {
		t.Errorf("pending future resolved with %v, expected %v", err, cause)
	}
	if _, err := ch.AsyncMessage(&testRequest{payload: []byte("y")}); !errors.Is(err, common.ErrClosed) {
		t.Errorf("expected ErrClosed after disconnect, got %v", err)
	}
}

// TestDisconnectDuringHandshake verifies that losing the connection while
// handshaking fails establishment and leaves the channel closed
func TestDisconnectDuringHandshake(t *testing.T) {
	m := &mockTransport{}
	m.setResponder(func(frame []byte) {
		m.mu.Lock()
		sink := m.sink
		m.mu.Unlock()
		sink.OnDisconnect(errors.New("connection reset"))
	})

	ch := NewDataChannel(1, testConfig(), m)
	if err := ch.StartHandshake(); err == nil {
		t.Fatalf("expected handshake to fail on disconnect")
	}
	if _, err := ch.AsyncMessage(&testRequest{payload: []byte("x")}); !errors.Is(err, common.ErrClosed) {
		t.Errorf("expected ErrClosed after disconnect, got %v", err)
	}
}
