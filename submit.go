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

	"github.com/rcproxy/goredisasync/internal/resp"
	"github.com/rcproxy/goredisasync/pkg/logging"
	"github.com/rcproxy/goredisasync/pkg/wireutil"
)

// Submit admits one command for asynchronous execution. It
// returns a synchronous error (and never calls cb) for malformed input
// or when there is no connection and no reconnect in progress;
// otherwise cb is guaranteed exactly one eventual invocation, except for
// a persistent (subscribe-family) command whose cb may be invoked
// repeatedly until the subscription ends or the connection is lost.
func (c *Client) Submit(args [][]byte, cb Callback) error {
	if len(args) == 0 {
		return ErrEmptyArgs
	}
	if cb == nil {
		return ErrNilCallback
	}
	if c.getState() != StateConnected && c.getState() != StateConnecting && c.getState() != StateReconnectPending {
		return ErrNoConnection
	}

	globalStats.TotalCommands.Inc()
	e := &waitingEntry{
		buf:      args,
		cb:       cb,
		persist:  isPersistentCommand(args[0]),
		monitor:  isMonitorCommand(args[0]),
		queuedAt: time.Now(),
	}
	c.admit(e)
	return nil
}

// admit appends e to the waiting queue and, when connected, promotes as
// many waiting entries as max_pending allows. It does not arm any timer;
// the waiting-timeout scan is started on connect or by SetWaitingTimeout.
func (c *Client) admit(e *waitingEntry) {
	c.waiting.PushTail(e)
	if c.getState() == StateConnected {
		c.flushWaiting()
	}
}

// flushWaiting promotes waiting entries to pending, writing their
// encoded command to the wire, until max_pending in-flight commands are
// outstanding or the waiting queue drains.
func (c *Client) flushWaiting() {
	if c.getState() != StateConnected {
		return
	}
	for {
		if c.opts.maxPending > 0 && c.pendingCount >= c.opts.maxPending {
			return
		}
		e := c.waiting.PopHead()
		if e == nil {
			return
		}
		c.writeCommand(e)
	}
}

func (c *Client) writeCommand(e *waitingEntry) {
	buf := resp.EncodeCommand(e.buf)
	logging.Debugfunc(func() string {
		return "write client=" + uitoa(c.id) + " cmd=" + wireutil.SanitizeWireTrace(buf.B)
	})
	c.enqueueWrite(append([]byte(nil), buf.B...))
	resp.ReleaseCommand(buf)

	pe := &pendingEntry{
		cb:      e.cb,
		persist: e.persist,
	}
	if e.persist {
		if !e.monitor {
			// One ack slot per channel argument; monitor streams
			// indefinitely and never sends an unsubscribe-shaped reply,
			// so it keeps subCount at 0 and is never decremented.
			pe.subCount = len(e.buf) - 1
			c.subCount++
		}
	} else {
		c.pendingCount++
	}
	if c.opts.commandTimeoutMillis > 0 && !e.persist {
		pe.hasDeadline = true
		pe.deadline = time.Now().Add(msToDuration(c.opts.commandTimeoutMillis))
		c.pending.PushTail(pe)
		c.pendingTimeouts.Push(pe, pe.deadline)
		return
	}
	c.pending.PushTail(pe)
}

// CancelWaiting fails and removes every command still sitting in the
// waiting queue with ErrSkipped, without touching the pending queue.
func (c *Client) CancelWaiting() {
	c.failAllWaiting(nil)
}

func (c *Client) failAllWaiting(cause error) {
	var drained []*waitingEntry
	for {
		e := c.waiting.PopHead()
		if e == nil {
			break
		}
		drained = append(drained, e)
	}
	errVal := error(ErrSkipped)
	if cause != nil {
		errVal = cause
	}
	for _, e := range drained {
		c.invokeCallback(e.cb, nil, errVal)
	}
}

// CancelAll fails every waiting command immediately, then marks every
// pending command skipped: their replies may still be in flight on an
// open connection, so each entry stays linked in the pending queue and
// is only actually retired once its reply lands (or the connection is
// torn down), via dispatchWire's skipped short-circuit.
func (c *Client) CancelAll() {
	c.failAllWaiting(nil)
	c.skipAllPending()
}

// skipAllPending marks every not-yet-skipped pending entry skipped and
// delivers "skipped" to its callback without unlinking it from the
// queue; dispatchWire's skipped check (see retirePending) performs the
// actual removal once the reply arrives. The target list is snapshotted
// before any callback runs, since a callback invoked mid-walk may itself
// call Close or Disconnect and mutate the live pending queue.
func (c *Client) skipAllPending() {
	var targets []*pendingEntry
	for e := c.pending.head; e != nil; e = e.prev {
		if !e.skipped {
			targets = append(targets, e)
		}
	}
	for _, e := range targets {
		if e.skipped {
			continue
		}
		e.skipped = true
		if e.hasDeadline {
			c.pendingTimeouts.Remove(e)
		}
		if e.persist {
			c.subCount--
		} else {
			c.pendingCount--
		}
		c.invokeCallback(e.cb, nil, ErrSkipped)
	}
}

// failAllPending is used by teardown, where the connection itself is
// gone and no further reply will ever arrive for an in-flight entry, so
// every entry is unlinked and failed outright rather than left for a
// reply that will never land.
func (c *Client) failAllPending(cause error) {
	var drained []*pendingEntry
	for {
		e := c.pending.PopHead()
		if e == nil {
			break
		}
		drained = append(drained, e)
	}
	for _, e := range drained {
		if e.skipped {
			continue
		}
		if e.hasDeadline {
			c.pendingTimeouts.Remove(e)
		}
		errVal := error(ErrDisconnected)
		if cause != nil {
			errVal = cause
		}
		c.invokeCallback(e.cb, nil, errVal)
	}
	c.subCount = 0
	c.pendingCount = 0
}
