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
	"crypto/tls"
	"time"
)

// ConnectHostPort reconfigures the endpoint to a TCP host/port and
// dials it, as Connect does for whatever endpoint was last configured.
func (c *Client) ConnectHostPort(host string, port int) error {
	c.opts.host = host
	c.opts.port = port
	c.opts.unixPath = ""
	return c.Connect()
}

// ConnectUnix reconfigures the endpoint to a unix-domain socket path
// and dials it, as Connect does for whatever endpoint was last
// configured.
func (c *Client) ConnectUnix(path string) error {
	c.opts.unixPath = path
	c.opts.host = ""
	return c.Connect()
}

// SetConnectTimeout bounds how long a future connect attempt may take.
// 0 disables the timeout. Takes effect on the next Connect call; it
// does not affect a dial already in flight.
func (c *Client) SetConnectTimeout(ms int) {
	c.opts.connectTimeoutMillis = clampMillis(ms)
}

// SetCommandTimeout changes the per-pending-command timeout. It applies
// only to commands submitted after this call returns; pending entries
// already admitted keep whatever deadline was computed when they were
// written to the wire.
func (c *Client) SetCommandTimeout(ms int) {
	c.opts.commandTimeoutMillis = clampMillis(ms)
	if c.getState() == StateConnected {
		c.startTimeoutTicker()
	}
}

// SetWaitingTimeout changes how long a command may sit in the waiting
// queue before being failed with ErrWaitingTimeout. Rearms the timeout
// scan if the client is connected.
func (c *Client) SetWaitingTimeout(ms int) {
	c.opts.waitingTimeoutMillis = clampMillis(ms)
	if c.getState() == StateConnected {
		c.startTimeoutTicker()
	}
}

// SetMaxPending changes the bound on in-flight pending commands. 0 means
// unbounded. Raising it immediately drains as much of the waiting
// queue as the new bound allows; lowering it never evicts commands
// already admitted to the pending or waiting queue.
func (c *Client) SetMaxPending(n int) {
	if n < 0 {
		n = 0
	}
	c.opts.maxPending = n
	if c.getState() == StateConnected {
		c.flushWaiting()
	}
}

// SetResumeWaitingOnReconnect controls whether waiting-queue entries
// survive an unrequested disconnect, when automatic reconnection is
// enabled, instead of being failed immediately with ErrDisconnected.
func (c *Client) SetResumeWaitingOnReconnect(v bool) {
	c.opts.carryWaitingQueue = v
}

// SetReconnect configures automatic reconnection after an unrequested
// disconnect and resets the attempt counter, so a client that had
// exhausted reconnect_max_attempts gets a fresh budget.
func (c *Client) SetReconnect(enable bool, delay time.Duration, maxAttempts int) {
	c.opts.reconnectEnabled = enable
	c.opts.reconnectDelayMillis = millis(delay)
	c.opts.reconnectMaxAttempts = maxAttempts
	c.reconnectAttempts = 0
}

// SetPriority updates the adapter's read/write/timer watcher priority
// live, clamped to [ioloop.MinPriority, ioloop.MaxPriority].
func (c *Client) SetPriority(p int) {
	c.opts.priority = p
	if c.adpt != nil {
		c.opts.priority = c.adpt.SetPriority(p)
	}
}

// SetTCPKeepAlive sets SO_KEEPALIVE with the given period, applied at
// the next Connect.
func (c *Client) SetTCPKeepAlive(d time.Duration) { c.opts.tcpKeepAlive = d }

// SetTCPUserTimeout sets TCP_USER_TIMEOUT (Linux-only; ignored
// elsewhere), applied at the next Connect.
func (c *Client) SetTCPUserTimeout(d time.Duration) { c.opts.tcpUserTimeout = d }

// SetPreferIPv4 resolves the configured host to an IPv4 address at the
// next Connect, clearing SetPreferIPv6.
func (c *Client) SetPreferIPv4() {
	c.opts.preferIPv4 = true
	c.opts.preferIPv6 = false
}

// SetPreferIPv6 resolves the configured host to an IPv6 address at the
// next Connect, clearing SetPreferIPv4.
func (c *Client) SetPreferIPv6() {
	c.opts.preferIPv6 = true
	c.opts.preferIPv4 = false
}

// SetSourceAddr binds future connections to a specific local address.
func (c *Client) SetSourceAddr(addr string) { c.opts.sourceAddr = addr }

// SetCloseOnExec records the close-on-exec preference. The value is
// stored but not applied to the socket.
func (c *Client) SetCloseOnExec(v bool) { c.opts.closeOnExec = v }

// SetReuseAddr controls SO_REUSEADDR on future sockets.
func (c *Client) SetReuseAddr(v bool) { c.opts.reuseAddr = v }

// SetTLS enables or disables TLS for future connections. Passing a nil
// cfg disables TLS.
func (c *Client) SetTLS(cfg *tls.Config) { c.opts.tlsConfig = cfg }

// PendingCount returns the number of non-persistent commands written to
// the wire and awaiting a reply; a live subscription never counts
// toward it, and a command already marked skipped by a timeout or
// cancel_all stops counting immediately even though its entry stays
// queued until the reply actually lands.
func (c *Client) PendingCount() int { return c.pendingCount }

// WaitingCount returns the number of commands admitted but not yet
// written to the wire.
func (c *Client) WaitingCount() int { return c.waiting.Len() }

// ReconnectEnabled reports whether automatic reconnection is currently
// configured.
func (c *Client) ReconnectEnabled() bool { return c.opts.reconnectEnabled }

// HasTLS reports whether the client is configured to negotiate TLS on
// its next connection.
func (c *Client) HasTLS() bool { return c.opts.tlsConfig != nil }
