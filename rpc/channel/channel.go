package channel

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/proto"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/channel")

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricRequestsSent  = metrics.GetOrCreateCounter(`gridkv_channel_requests_sent_total`)
	metricRepliesMatch  = metrics.GetOrCreateCounter(`gridkv_channel_replies_matched_total`)
	metricTimeouts      = metrics.GetOrCreateCounter(`gridkv_channel_timeouts_total`)
	metricNotifications = metrics.GetOrCreateCounter(`gridkv_channel_notifications_total`)
	metricDropped       = metrics.GetOrCreateCounter(`gridkv_channel_dropped_messages_total`)
)

// --------------------------------------------------------------------------
// Channel state
// --------------------------------------------------------------------------

// Channel states. Closed is terminal, a failed handshake returns the
// channel to Disconnected where the owning layer discards it.
const (
	stateDisconnected int32 = iota
	stateHandshaking
	stateReady
	stateClosed
)

// --------------------------------------------------------------------------
// Data channel
// --------------------------------------------------------------------------

// DataChannel owns one logical connection to a single cluster member. It
// negotiates the protocol version, frames and correlates request/response
// traffic, and routes server-initiated notifications to registered
// handlers.
//
// A channel is used by multiple caller goroutines concurrently while the
// transport delivers inbound buffers on its own goroutine. The pending-call
// table and the notification registry are guarded independently, the
// request id counter is a plain atomic.
type DataChannel struct {
	id        uint64
	config    common.ClientConfig
	transport transport.IConnectionTransport

	state     atomic.Int32
	reqIDCntr atomic.Int64

	pending  *pendingCalls
	handlers *notificationRegistry

	// Waiter for the in-flight handshake exchange. Handshake replies are
	// matched positionally, never via the pending-call table.
	hsMu     sync.Mutex
	hsWaiter *Future

	// Written once during the handshake, immutable afterwards
	version proto.Version
	node    *Node
}

// NewDataChannel creates a new data channel for a single connection. The
// connection id identifies this channel within its owning layer and is
// distinct from the per-request correlation ids.
func NewDataChannel(id uint64, config common.ClientConfig, tr transport.IConnectionTransport) *DataChannel {
	return &DataChannel{
		id:        id,
		config:    config,
		transport: tr,
		pending:   newPendingCalls(),
		handlers:  newNotificationRegistry(),
	}
}

// --------------------------------------------------------------------------
// Handshake
// --------------------------------------------------------------------------

// StartHandshake connects the transport and negotiates a mutually supported
// protocol version. No application request may be sent before it returns
// successfully. On negotiation failure the channel is left disconnected and
// must be discarded by its owner.
func (c *DataChannel) StartHandshake() error {
	if !c.state.CompareAndSwap(stateDisconnected, stateHandshaking) {
		return fmt.Errorf("handshake already started (channel %d)", c.id)
	}

	if err := c.transport.Connect(c.config, c); err != nil {
		c.state.Store(stateDisconnected)
		return err
	}

	node, ver, err := c.negotiate()
	if err != nil {
		c.transport.Close()
		// The transport may have reported a disconnect already, in that
		// case the channel is Closed and stays there
		c.state.CompareAndSwap(stateHandshaking, stateDisconnected)
		return err
	}

	c.version = ver
	c.node = node

	if !c.state.CompareAndSwap(stateHandshaking, stateReady) {
		// Lost the connection between acceptance and activation
		return common.ErrDisconnected
	}

	Logger.Infof("Channel %d established to %s", c.id, node)
	return nil
}

// negotiate proposes the default version and retries exactly once if the
// server counters with a different, locally supported version
func (c *DataChannel) negotiate() (*Node, proto.Version, error) {
	proposed := proto.DefaultVersion()

	resp, err := c.handshake(proposed)
	if err != nil {
		return nil, proto.Version{}, err
	}

	if !resp.Accepted {
		counter := resp.ServerVersion
		if !proto.IsSupported(counter) || counter == proposed {
			return nil, proto.Version{}, fmt.Errorf(
				"handshake rejected, server proposed unsupported version %s: %s", counter, resp.Err)
		}

		Logger.Infof("Channel %d: version %s rejected, retrying with server proposed version %s",
			c.id, proposed, counter)

		proposed = counter
		resp, err = c.handshake(proposed)
		if err != nil {
			return nil, proto.Version{}, err
		}
		if !resp.Accepted {
			return nil, proto.Version{}, fmt.Errorf(
				"handshake rejected after version fallback to %s: %s", proposed, resp.Err)
		}
	}

	node := &Node{id: resp.NodeID, address: c.config.Address, version: proposed}
	return node, proposed, nil
}

// handshake performs a single handshake exchange for the proposed version.
// The reply is matched positionally via the handshake waiter.
func (c *DataChannel) handshake(ver proto.Version) (*proto.HandshakeResponse, error) {
	req := &proto.HandshakeRequest{
		ProposedVersion: ver,
		ClientName:      c.config.ClientName,
	}

	payload, err := req.Serialize(ver)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize handshake request: %v", err)
	}

	f := newFuture(0)
	c.hsMu.Lock()
	c.hsWaiter = f
	c.hsMu.Unlock()

	defer func() {
		c.hsMu.Lock()
		c.hsWaiter = nil
		c.hsMu.Unlock()
	}()

	if err := c.transport.Send(proto.NewFrame(0, payload)); err != nil {
		return nil, fmt.Errorf("failed to send handshake request: %v", err)
	}

	buf, err := f.Wait(c.config.HandshakeTimeout())
	if err != nil {
		return nil, fmt.Errorf("handshake failed: %v", err)
	}

	_, respPayload, err := proto.ParseHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("malformed handshake response: %v", err)
	}

	resp := &proto.HandshakeResponse{}
	if err := resp.Deserialize(ver, respPayload); err != nil {
		return nil, err
	}
	return resp, nil
}

// failHandshakeWaiter fails the in-flight handshake exchange, if any
func (c *DataChannel) failHandshakeWaiter(err error) {
	c.hsMu.Lock()
	f := c.hsWaiter
	c.hsWaiter = nil
	c.hsMu.Unlock()

	if f != nil {
		f.fail(err)
	}
}

// --------------------------------------------------------------------------
// Sending
// --------------------------------------------------------------------------

// AsyncMessage serializes the request with a fresh correlation id, hands it
// to the transport and returns a future that resolves exactly once with the
// raw reply buffer or the terminating error. The caller decodes the buffer
// via DeserializeMessage.
func (c *DataChannel) AsyncMessage(req proto.Request) (*Future, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}

	payload, err := req.Serialize(c.version)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %v", err)
	}

	// Generate a unique request ID
	reqID := c.reqIDCntr.Add(1)

	f := newFuture(reqID)
	c.pending.add(reqID, f)

	if err := c.transport.Send(proto.NewFrame(reqID, payload)); err != nil {
		// Fail the entry immediately, the request never hit the wire
		if fut := c.pending.remove(reqID); fut != nil {
			fut.fail(err)
		}
		return nil, err
	}

	metricRequestsSent.Inc()
	return f, nil
}

// SyncMessage sends the request and blocks until the matching reply arrives
// or the timeout elapses (0 = wait indefinitely). On success the reply is
// decoded into rsp using the negotiated protocol version. On timeout the
// pending-call entry is removed, a reply arriving later is discarded.
func (c *DataChannel) SyncMessage(req proto.Request, rsp proto.Response, timeout time.Duration) error {
	f, err := c.AsyncMessage(req)
	if err != nil {
		return err
	}

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-f.Done():
		case <-timer.C:
			// Remove-and-fail is atomic with respect to a racing
			// completion, whoever takes the entry resolves the future
			if fut := c.pending.remove(f.RequestID()); fut != nil {
				fut.fail(common.ErrTimeout)
				metricTimeouts.Inc()
			}
		}
	}

	buf, err := f.Result()
	if err != nil {
		return err
	}

	return c.DeserializeMessage(buf, rsp)
}

// checkReady fails fast if the channel cannot accept application traffic
func (c *DataChannel) checkReady() error {
	switch c.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return common.ErrClosed
	default:
		return common.ErrHandshakeNotPerformed
	}
}

// --------------------------------------------------------------------------
// Inbound path
// --------------------------------------------------------------------------

// ProcessMessage routes one complete inbound buffer. A buffer whose
// correlation id matches a pending call completes that call and removes the
// entry. A buffer whose id matches a registered notification handler is
// delivered to the handler, the registration is retained. Anything else is
// discarded silently, both expired timeouts and just-unregistered handlers
// legitimately produce orphaned ids.
func (c *DataChannel) ProcessMessage(buf []byte) {
	reqID, _, err := proto.ParseHeader(buf)
	if err != nil {
		metricDropped.Inc()
		Logger.Warningf("Channel %d: discarding malformed message: %v", c.id, err)
		return
	}

	// Handshake replies predate correlation and are matched positionally
	if c.state.Load() == stateHandshaking {
		c.hsMu.Lock()
		f := c.hsWaiter
		c.hsWaiter = nil
		c.hsMu.Unlock()

		if f != nil {
			f.complete(buf)
			return
		}
	}

	if c.pending.complete(reqID, buf) {
		metricRepliesMatch.Inc()
		return
	}

	if c.handlers.dispatch(reqID, buf) {
		metricNotifications.Inc()
		return
	}

	metricDropped.Inc()
	Logger.Debugf("Channel %d: discarding message with unknown correlation id %d", c.id, reqID)
}

// DeserializeMessage decodes a raw reply buffer received by this channel
// into rsp, skipping the 12 byte frame header and using the negotiated
// protocol version
func (c *DataChannel) DeserializeMessage(buf []byte, rsp proto.Response) error {
	_, payload, err := proto.ParseHeader(buf)
	if err != nil {
		return err
	}
	return rsp.Deserialize(c.version, payload)
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// RegisterNotificationHandler registers a handler for the server-assigned
// notification id. The handler may be invoked zero or more times from the
// transport goroutine until it is unregistered or the channel is torn down.
// Callers register before the corresponding server-side event source can
// fire.
func (c *DataChannel) RegisterNotificationHandler(id int64, handler NotificationHandler) error {
	if err := c.checkReady(); err != nil {
		return err
	}
	c.handlers.register(id, handler)
	return nil
}

// UnregisterNotificationHandler removes the handler for the given
// notification id. Notifications already in flight are discarded.
func (c *DataChannel) UnregisterNotificationHandler(id int64) {
	c.handlers.unregister(id)
}

// --------------------------------------------------------------------------
// Teardown
// --------------------------------------------------------------------------

// FailPendingRequests drains the pending-call table and fails every entry
// with the given error (ErrDisconnected if nil). The notification registry
// is discarded without per-entry callbacks.
func (c *DataChannel) FailPendingRequests(err error) {
	if err == nil {
		err = common.ErrDisconnected
	}

	if n := c.pending.failAll(err); n > 0 {
		Logger.Warningf("Channel %d: failed %d pending requests: %v", c.id, n, err)
	}
	c.handlers.clear()
}

// Close tears the channel down. All pending requests are failed, further
// sends fail fast without touching the transport. Closing an already closed
// channel is a no-op.
func (c *DataChannel) Close() error {
	prev := c.state.Swap(stateClosed)
	if prev == stateClosed {
		return nil
	}

	err := c.transport.Close()
	c.failHandshakeWaiter(common.ErrClosed)
	c.FailPendingRequests(common.ErrClosed)
	return err
}

// --------------------------------------------------------------------------
// Transport sink (docu see transport.IMessageSink)
// --------------------------------------------------------------------------

func (c *DataChannel) OnData(buf []byte) {
	c.ProcessMessage(buf)
}

func (c *DataChannel) OnDisconnect(err error) {
	if err == nil {
		err = common.ErrDisconnected
	}

	prev := c.state.Swap(stateClosed)
	if prev == stateClosed {
		return
	}

	Logger.Warningf("Channel %d: connection to %s lost: %v", c.id, c.config.Address, err)
	c.failHandshakeWaiter(err)
	c.FailPendingRequests(err)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// GetId returns the connection id of this channel (distinct from the
// per-request correlation ids)
func (c *DataChannel) GetId() uint64 {
	return c.id
}

// GetNode returns the identity of the remote node, or nil before the
// handshake has completed
func (c *DataChannel) GetNode() *Node {
	return c.node
}

// Version returns the negotiated protocol version. It is only meaningful
// after a successful handshake.
func (c *DataChannel) Version() proto.Version {
	return c.version
}

// PendingRequests returns the number of in-flight requests
func (c *DataChannel) PendingRequests() int {
	return c.pending.size()
}
