// Copyright (c) 2022 The rcproxy Authors
// Copyright (c) 2019 Andy Pan
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
	"crypto/tls"
	"time"
)

// Option configures a Client at construction time, in the same
// functional-option pattern a proxy's own option set would follow.
type Option func(opts *options)

func loadOptions(opt ...Option) *options {
	opts := defaultOptions()
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// options is the private, fully-resolved configuration built from the
// Option list passed to New.
type options struct {
	host string
	port int

	unixPath string

	preferIPv4 bool
	preferIPv6 bool
	sourceAddr string

	tlsConfig *tls.Config

	tcpKeepAlive     time.Duration
	tcpUserTimeout   time.Duration
	closeOnExec      bool
	reuseAddr        bool
	socketRecvBuffer int
	socketSendBuffer int

	connectTimeoutMillis int
	commandTimeoutMillis int
	waitingTimeoutMillis int

	maxPending int

	reconnectEnabled    bool
	reconnectDelayMillis int
	reconnectMaxAttempts int
	carryWaitingQueue   bool

	priority int
}

func defaultOptions() *options {
	return &options{
		maxPending:           0, // 0 == unbounded
		reconnectEnabled:     false,
		reconnectDelayMillis: 1000,
		reconnectMaxAttempts: 0, // 0 == unlimited
		closeOnExec:          true,
	}
}

func (o *options) validate() error {
	if o.host == "" && o.unixPath == "" {
		return ErrInvalidEndpoint
	}
	if o.host != "" && o.unixPath != "" {
		return ErrInvalidEndpoint
	}
	if o.unixPath != "" && o.tlsConfig != nil {
		return ErrInvalidEndpoint
	}
	if o.preferIPv4 && o.preferIPv6 {
		return ErrInvalidEndpoint
	}
	return nil
}

// WithHostPort sets a TCP endpoint. Mutually exclusive with WithUnixPath.
func WithHostPort(host string, port int) Option {
	return func(o *options) {
		o.host = host
		o.port = port
	}
}

// WithUnixPath sets a unix-domain-socket endpoint. Mutually exclusive
// with WithHostPort.
func WithUnixPath(path string) Option {
	return func(o *options) {
		o.unixPath = path
	}
}

// WithPreferIPv4 resolves the host to an IPv4 address when both families
// are available. Mutually exclusive with WithPreferIPv6.
func WithPreferIPv4() Option {
	return func(o *options) { o.preferIPv4 = true }
}

// WithPreferIPv6 resolves the host to an IPv6 address when both families
// are available. Mutually exclusive with WithPreferIPv4.
func WithPreferIPv6() Option {
	return func(o *options) { o.preferIPv6 = true }
}

// WithSourceAddr binds outgoing connections to a specific local address.
func WithSourceAddr(addr string) Option {
	return func(o *options) { o.sourceAddr = addr }
}

// WithTLS enables TLS on the connection using cfg. Requires WithHostPort;
// incompatible with WithUnixPath.
func WithTLS(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithTCPKeepAlive sets up the SO_KEEPALIVE socket option with duration.
func WithTCPKeepAlive(d time.Duration) Option {
	return func(o *options) { o.tcpKeepAlive = d }
}

// WithTCPUserTimeout sets TCP_USER_TIMEOUT (Linux-only; ignored elsewhere).
func WithTCPUserTimeout(d time.Duration) Option {
	return func(o *options) { o.tcpUserTimeout = d }
}

// WithCloseOnExec records the close-on-exec preference. Defaults to
// true. The value is stored but not applied to the socket.
func WithCloseOnExec(v bool) Option {
	return func(o *options) { o.closeOnExec = v }
}

// WithReuseAddr sets SO_REUSEADDR.
func WithReuseAddr(v bool) Option {
	return func(o *options) { o.reuseAddr = v }
}

// WithSocketRecvBuffer sets the maximum socket receive buffer in bytes.
func WithSocketRecvBuffer(n int) Option {
	return func(o *options) { o.socketRecvBuffer = n }
}

// WithSocketSendBuffer sets the maximum socket send buffer in bytes.
func WithSocketSendBuffer(n int) Option {
	return func(o *options) { o.socketSendBuffer = n }
}

// WithConnectTimeout bounds how long a connect attempt may take before
// it fails with a timeout. ms is clamped to [0, MaxMillis].
func WithConnectTimeout(ms int) Option {
	return func(o *options) { o.connectTimeoutMillis = clampMillis(ms) }
}

// WithCommandTimeout bounds how long a non-persistent command may sit in
// the pending queue before it is failed with ErrCommandFailed. The
// deadline is computed when a command is written to the wire.
func WithCommandTimeout(ms int) Option {
	return func(o *options) { o.commandTimeoutMillis = clampMillis(ms) }
}

// WithWaitingTimeout bounds how long a command may sit in the waiting
// queue (admitted but not yet written to the wire, typically because
// max_pending is saturated) before it is failed with ErrWaitingTimeout.
// 0 means unbounded. The waiting queue is FIFO by admission time, so
// this is checked oldest-first without a deadline tree.
func WithWaitingTimeout(ms int) Option {
	return func(o *options) { o.waitingTimeoutMillis = clampMillis(ms) }
}

// WithMaxPending bounds how many non-persistent commands may be in the
// pending queue (written and awaiting a reply); further commands stay in
// the waiting queue, which itself has no bound. 0 means unbounded.
// Lowering max_pending on a live client never affects commands already
// admitted to the pending or waiting queue.
func WithMaxPending(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxPending = n
	}
}

// WithReconnect enables automatic reconnection after an unrequested
// disconnect, retrying every delay until maxAttempts (0 == unlimited).
func WithReconnect(delay time.Duration, maxAttempts int) Option {
	return func(o *options) {
		o.reconnectEnabled = true
		o.reconnectDelayMillis = millis(delay)
		o.reconnectMaxAttempts = maxAttempts
	}
}

// WithCarryWaitingQueue keeps waiting-queue entries queued across an
// unrequested disconnect when automatic reconnection is enabled, instead
// of failing them immediately. Default is to fail them with
// ErrDisconnected.
func WithCarryWaitingQueue(v bool) Option {
	return func(o *options) { o.carryWaitingQueue = v }
}

// WithPriority sets the adapter priority, clamped to
// [ioloop.MinPriority, ioloop.MaxPriority].
func WithPriority(p int) Option {
	return func(o *options) { o.priority = p }
}
