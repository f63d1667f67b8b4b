// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package redis

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/rcproxy/goredisasync/internal/deadline"
	"github.com/rcproxy/goredisasync/internal/ioloop"
	"github.com/rcproxy/goredisasync/internal/resp"
	"github.com/rcproxy/goredisasync/pkg/logging"
)

// State is the client's connection lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateReconnectPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateReconnectPending:
		return "reconnect_pending"
	default:
		return "unknown"
	}
}

// Client is a single asynchronous connection to one Redis endpoint.
// A Client is NOT safe for concurrent use: every exported
// method, and every callback the client invokes, runs on the same
// logical goroutine. A proxy connection type typically splits Close
// off as the one method that posts through the loop while everything
// else is a direct call; here the whole surface is direct, and the
// loop only arbitrates between the background reader/writer/timer
// goroutines and the caller's own.
type Client struct {
	id uint64

	opts *options

	loop *ioloop.Loop
	conn net.Conn
	adpt *ioloop.Adapter
	rd   *resp.Reader

	// state is read from the diagnostic HTTP server's goroutine (see
	// web.HandleClients), the one place the "not concurrency-safe"
	// contract genuinely needs a guard, so it is the one field accessed
	// atomically rather than left to the loop goroutine's exclusive
	// ownership.
	state int32

	waiting waitingQueue
	pending pendingQueue

	subCount     int // number of active subscribe-family pending replies
	pendingCount int // non-persistent entries in the pending queue; excludes skipped ones

	pendingTimeouts *deadline.Tree

	callbackDepth int
	destroyed     bool
	deferredFree  bool

	reconnectAttempts int
	reconnectTimer    *time.Timer
	timeoutTicker     *time.Ticker
	timeoutTickerDone chan struct{}

	onConnect    VoidCallback
	onDisconnect VoidCallback
	onError      ErrorCallback
	onPush       PushCallback

	writeBuf [][]byte // queued but not yet flushed command frames
}

// New constructs a Client in the Idle state. The client does not dial
// until Connect is called.
func New(opt ...Option) (*Client, error) {
	opts := loadOptions(opt...)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	initStats()
	c := &Client{
		id:              nextClientID(),
		opts:            opts,
		pendingTimeouts: deadline.New(),
	}
	registerClient(c)
	return c, nil
}

// OnConnect registers the callback invoked once per successful
// connection establishment, returning whatever callback was previously
// registered (nil if none).
func (c *Client) OnConnect(cb VoidCallback) VoidCallback {
	prev := c.onConnect
	c.onConnect = cb
	return prev
}

// OnDisconnect registers the callback invoked once per connection loss,
// whether requested or not, returning whatever callback was previously
// registered (nil if none).
func (c *Client) OnDisconnect(cb VoidCallback) VoidCallback {
	prev := c.onDisconnect
	c.onDisconnect = cb
	return prev
}

// OnError registers the callback invoked for connection-level failures
// that are not tied to any single in-flight command, returning whatever
// callback was previously registered (nil if none).
func (c *Client) OnError(cb ErrorCallback) ErrorCallback {
	prev := c.onError
	c.onError = cb
	return prev
}

// OnPush registers the callback invoked for RESP3 out-of-band push
// frames that are not routed to a subscribe-family continuation,
// returning whatever callback was previously registered (nil if none).
func (c *Client) OnPush(cb PushCallback) PushCallback {
	prev := c.onPush
	c.onPush = cb
	return prev
}

// State returns the client's current lifecycle state. Safe to call from
// any goroutine.
func (c *Client) State() State { return c.getState() }

func (c *Client) getState() State { return State(atomic.LoadInt32(&c.state)) }

func (c *Client) setState(s State) { atomic.StoreInt32(&c.state, int32(s)) }

// IsConnected reports whether the client currently has a live
// connection able to accept writes.
func (c *Client) IsConnected() bool { return c.getState() == StateConnected }

// Connect dials the configured endpoint asynchronously. It returns an
// error synchronously only if the client is neither Idle nor
// ReconnectPending; connect failures
// are reported through OnError and, if a reconnect policy is set,
// trigger the reconnect sequence.
func (c *Client) Connect() error {
	if c.getState() != StateIdle && c.getState() != StateReconnectPending {
		return ErrAlreadyConnected
	}
	c.setState(StateConnecting)
	c.loop = ioloop.NewLoop()
	go c.dial()
	return nil
}

func (c *Client) dial() {
	network, addr := "tcp", ""
	if c.opts.unixPath != "" {
		network, addr = "unix", c.opts.unixPath
	} else {
		addr = net.JoinHostPort(c.opts.host, itoa(c.opts.port))
		if c.opts.preferIPv4 {
			network = "tcp4"
		} else if c.opts.preferIPv6 {
			network = "tcp6"
		}
	}

	d := net.Dialer{}
	if c.opts.connectTimeoutMillis > 0 {
		d.Timeout = msToDuration(c.opts.connectTimeoutMillis)
	}
	if c.opts.sourceAddr != "" {
		if local, err := net.ResolveTCPAddr(network, c.opts.sourceAddr); err == nil {
			d.LocalAddr = local
		}
	}

	conn, err := d.Dial(network, addr)
	if err != nil {
		c.loop.Post(func() { c.handleConnectFailure(connectError(err)) })
		return
	}
	if c.opts.tlsConfig != nil {
		conn = tlsClient(conn, c.opts.tlsConfig, c.opts.host)
	}
	applySocketOptions(conn, c.opts)
	c.loop.Post(func() { c.handleConnectSuccess(conn) })
}

func (c *Client) handleConnectSuccess(conn net.Conn) {
	if c.destroyed {
		conn.Close()
		return
	}
	c.conn = conn
	c.rd = resp.NewReader(conn)
	c.setState(StateConnected)
	c.reconnectAttempts = 0
	globalStats.TotalConnections.Inc()
	globalStats.CurrConnections.Inc()

	c.adpt = ioloop.NewAdapter(c.loop, conn,
		c.readOneReply,
		func(error) { c.handleRead() },
		func(error) { c.handleWritable() },
		func(error) { /* unused: per-command timeouts use pendingTimeouts, not the adapter timer */ },
	)
	c.adpt.SetPriority(c.opts.priority)
	c.adpt.AddRead()

	logging.Debugfunc(func() string { return "connected client=" + uitoa(c.id) })
	c.invokeVoid(c.onConnect)
	c.flushWaiting()
	c.startTimeoutTicker()
}

// startTimeoutTicker arms the periodic scan that expires waiting-queue
// and pending-queue entries whose timeout has elapsed. A
// ticker, rather than one timer per command, keeps the hot submit path
// allocation-free; its resolution trades a small amount of timeout
// slack for that.
func (c *Client) startTimeoutTicker() {
	if c.timeoutTicker != nil {
		return
	}
	if c.opts.commandTimeoutMillis <= 0 && c.opts.waitingTimeoutMillis <= 0 {
		return
	}
	c.timeoutTicker = time.NewTicker(50 * time.Millisecond)
	c.timeoutTickerDone = make(chan struct{})
	ticker := c.timeoutTicker
	done := c.timeoutTickerDone
	go func() {
		for {
			select {
			case now := <-ticker.C:
				c.loop.Post(func() {
					c.checkWaitingTimeouts(now)
					c.checkPendingTimeouts(now)
					globalStats.WaitingQueueDepth.Set(float64(c.waiting.Len()))
					globalStats.PendingQueueDepth.Set(float64(c.pending.Len()))
					globalStats.TimeoutTree.Set(float64(c.pendingTimeouts.Len()))
				})
			case <-done:
				return
			}
		}
	}()
}

func (c *Client) stopTimeoutTicker() {
	if c.timeoutTicker == nil {
		return
	}
	c.timeoutTicker.Stop()
	close(c.timeoutTickerDone)
	c.timeoutTicker = nil
	c.timeoutTickerDone = nil
}

func (c *Client) handleConnectFailure(err error) {
	globalStats.ConnectErrors.Inc()
	if c.destroyed {
		return
	}
	c.invokeError(err.Error())
	c.scheduleReconnectOrIdle()
}

// readOneReply runs on the adapter's background reader goroutine: it
// blocks until one complete wire reply has been buffered, the same
// one-frame-per-wakeup contract an sread()/cread() pair would keep.
func (c *Client) readOneReply() error {
	_, err := c.rd.Peek1()
	return err
}

func (c *Client) handleRead() {
	if c.conn == nil {
		return
	}
	for {
		wire, err := c.rd.ReadReply()
		if err != nil {
			if err == bufio.ErrBufferFull {
				continue
			}
			c.handleDisconnect(err)
			return
		}
		c.dispatchWire(wire)
		if c.rd.Buffered() == 0 {
			return
		}
	}
}

func (c *Client) handleWritable() {
	if c.conn == nil || len(c.writeBuf) == 0 {
		c.adpt.DelWrite()
		return
	}
	bufs := c.writeBuf
	c.writeBuf = nil
	for _, b := range bufs {
		if _, err := c.conn.Write(b); err != nil {
			c.handleDisconnect(err)
			return
		}
	}
	c.adpt.DelWrite()
}

func (c *Client) enqueueWrite(buf []byte) {
	c.writeBuf = append(c.writeBuf, buf)
	c.adpt.AddWrite()
}

// Disconnect tears down the connection deliberately: the
// OnDisconnect callback still fires, but no reconnect is scheduled.
func (c *Client) Disconnect() {
	if c.getState() != StateConnected && c.getState() != StateConnecting {
		return
	}
	c.setState(StateDisconnecting)
	c.teardown(nil, false)
}

func (c *Client) handleDisconnect(cause error) {
	if c.getState() != StateConnected {
		return
	}
	c.teardown(cause, true)
}

func (c *Client) teardown(cause error, allowReconnect bool) {
	if c.conn != nil {
		globalStats.CurrConnections.Dec()
	}
	c.stopTimeoutTicker()
	if c.adpt != nil {
		c.adpt.Cleanup()
		c.adpt = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.failAllPending(cause)
	if !c.opts.carryWaitingQueue || !allowReconnect || !c.opts.reconnectEnabled {
		c.failAllWaiting(ErrDisconnected)
	}
	c.setState(StateIdle)
	c.invokeVoid(c.onDisconnect)
	if cause != nil {
		c.invokeError(cause.Error())
	}
	if allowReconnect {
		c.scheduleReconnectOrIdle()
	}
}

func (c *Client) invokeVoid(cb VoidCallback) {
	if cb == nil {
		return
	}
	c.callbackDepth++
	cb()
	c.callbackDepth--
	c.maybeFinalizeDestroy()
}

func (c *Client) invokeError(msg string) {
	if c.onError == nil {
		return
	}
	c.callbackDepth++
	c.onError(msg)
	c.callbackDepth--
	c.maybeFinalizeDestroy()
}

func itoa(n int) string {
	return uitoa(uint64(n))
}
