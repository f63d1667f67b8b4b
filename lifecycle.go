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

// Close permanently shuts the client down: it disconnects if connected,
// fails every queued command, and releases the client's loop. Calling
// Close from within one of the client's own callbacks is safe —
// destruction is deferred until the outermost callback frame returns,
// so Close stays re-entrancy-tolerant the way a gnet-derived
// connection.Close() is.
func (c *Client) Close() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.getState() == StateConnected || c.getState() == StateConnecting {
		c.teardown(nil, false)
	} else {
		c.CancelAll()
	}
	c.maybeFinalizeDestroy()
}

// maybeFinalizeDestroy runs the actual teardown of loop-owned resources
// once callbackDepth returns to zero, so a callback that re-enters the
// client (e.g. calling Submit from inside its own continuation) never
// observes a half-destroyed client out from under it.
func (c *Client) maybeFinalizeDestroy() {
	if !c.destroyed || c.callbackDepth > 0 || c.deferredFree {
		return
	}
	c.deferredFree = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	unregisterClient(c)
	if c.loop != nil {
		// Stop waits for the loop goroutine to exit, and this may be
		// running on that goroutine (Close from inside a callback).
		go c.loop.Stop()
	}
}
