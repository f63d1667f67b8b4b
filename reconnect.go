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
	"time"

	"github.com/rcproxy/goredisasync/pkg/logging"
)

// scheduleReconnectOrIdle runs after an unrequested disconnect or a
// failed connect attempt: it either arms a reconnect timer (bounded by
// reconnect_max_attempts) or settles into Idle.
func (c *Client) scheduleReconnectOrIdle() {
	if !c.opts.reconnectEnabled || c.destroyed {
		c.setState(StateIdle)
		return
	}
	if c.opts.reconnectMaxAttempts > 0 && c.reconnectAttempts >= c.opts.reconnectMaxAttempts {
		c.setState(StateIdle)
		c.invokeError(reconnectError("max attempts exhausted").Error())
		return
	}
	c.reconnectAttempts++
	c.setState(StateReconnectPending)

	delay := msToDuration(c.opts.reconnectDelayMillis)
	generation := c.reconnectAttempts
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.loop.Post(func() { c.handleReconnectTimer(generation) })
	})
}

// handleReconnectTimer guards against a reconnect timer firing after the
// client has already moved on (a fresh Connect/Disconnect or Close ran
// first), which would otherwise resurrect a stale generation.
func (c *Client) handleReconnectTimer(generation int) {
	if c.destroyed || c.getState() != StateReconnectPending || generation != c.reconnectAttempts {
		return
	}
	c.setState(StateConnecting)
	go c.dial()
}

// checkWaitingTimeouts fails every waiting-queue entry whose queuedAt is
// older than waiting_timeout, oldest first, stopping at the first entry
// still within budget since the queue is FIFO-ordered by admission time.
func (c *Client) checkWaitingTimeouts(now time.Time) {
	if c.opts.waitingTimeoutMillis <= 0 {
		return
	}
	budget := msToDuration(c.opts.waitingTimeoutMillis)
	for {
		e := c.waiting.head
		if e == nil || now.Sub(e.queuedAt) < budget {
			return
		}
		c.waiting.Remove(e)
		c.invokeCallback(e.cb, nil, ErrWaitingTimeout)
	}
}

// checkPendingTimeouts pops every pending entry whose deadline has
// elapsed from internal/deadline's tree and fails it in place without
// disturbing FIFO order for the rest of the pending queue.
func (c *Client) checkPendingTimeouts(now time.Time) {
	for _, owner := range c.pendingTimeouts.Expired(now) {
		e, ok := owner.(*pendingEntry)
		if !ok {
			continue
		}
		e.skipped = true
		// hasDeadline is only ever set for non-persistent entries (see
		// writeCommand), so this always excludes the entry from pending_count.
		c.pendingCount--
		logging.Debugfunc(func() string { return "pending command timed out" })
		c.invokeCallback(e.cb, nil, ErrCommandFailed)
	}
}
