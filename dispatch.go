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
	"github.com/rcproxy/goredisasync/internal/resp"
	"github.com/rcproxy/goredisasync/pkg/logging"
)

// dispatchWire routes one decoded wire reply to the oldest pending
// entry, or to OnPush for an unsolicited RESP3 push frame.
func (c *Client) dispatchWire(wire *resp.WireReply) {
	if wire.IsPush() && !c.oldestExpectsPush() {
		reply := resp.Decode(wire)
		if c.onPush != nil {
			c.invokeCallback(nil, reply, nil)
		}
		return
	}

	e := c.pending.Front()
	if e == nil {
		// Server sent an unsolicited reply with nothing outstanding;
		// surface it through OnPush if registered, else drop it.
		if c.onPush != nil {
			c.invokeCallback(nil, resp.Decode(wire), nil)
		}
		return
	}

	reply := resp.Decode(wire)

	if e.skipped {
		c.retirePending(e)
		return
	}

	if wire.IsTopLevelError() {
		c.deliverAndRetire(e, nil, resp.DecodeError(wire))
		return
	}

	if e.persist {
		c.deliverPersistent(e, reply)
		return
	}

	c.deliverAndRetire(e, reply, nil)
}

// oldestExpectsPush reports whether the oldest pending entry is a
// persistent (subscribe-family or monitor) command, in which case an
// incoming push-typed frame is treated as part of its reply stream
// rather than as an out-of-band push.
func (c *Client) oldestExpectsPush() bool {
	e := c.pending.Front()
	return e != nil && e.persist
}

func (c *Client) deliverPersistent(e *pendingEntry, reply *resp.Reply) {
	if reply.IsUnsubscribeMarker() {
		e.subCount--
		c.subCount--
		c.invokeCallback(e.cb, reply, nil)
		if e.subCount <= 0 {
			c.retirePending(e)
		}
		return
	}
	c.invokeCallback(e.cb, reply, nil)
}

func (c *Client) deliverAndRetire(e *pendingEntry, reply *resp.Reply, err error) {
	if !e.persist {
		c.pendingCount--
	}
	c.retirePending(e)
	c.invokeCallback(e.cb, reply, err)
}

func (c *Client) retirePending(e *pendingEntry) {
	c.pending.Remove(e)
	if e.hasDeadline {
		c.pendingTimeouts.Remove(e)
	}
	c.flushWaiting()
}

// invokeCallback runs cb with the re-entrancy guard described in
// design notes on deferred destruction: callbackDepth tracks
// nesting so a callback that calls Client methods recursively (e.g.
// Submit from within a reply continuation) is safe, and a destroy
// requested mid-callback is deferred until the outermost frame returns.
func (c *Client) invokeCallback(cb Callback, reply *resp.Reply, err error) {
	c.callbackDepth++
	defer func() {
		c.callbackDepth--
		c.maybeFinalizeDestroy()
	}()
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("redis: callback panic recovered: %v", r)
		}
	}()
	if cb != nil {
		if err != nil {
			globalStats.CommandErrors.Inc()
		}
		cb(reply, err)
		return
	}
	if c.onPush != nil {
		c.onPush(reply)
	}
}
