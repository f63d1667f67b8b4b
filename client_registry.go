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
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

// clientIDSeq assigns each Client a process-unique id, read by the
// debug HTTP server's registry dump handler.
var clientIDSeq uint64

func nextClientID() uint64 {
	return atomic.AddUint64(&clientIDSeq, 1)
}

// registry maps client id -> *Client. Unlike everything else on Client,
// the registry genuinely is accessed from two goroutines: the client's
// owner (on New/Close) and the debug HTTP server's
// request-handling goroutine (on a registry dump), so it needs a
// concurrent-safe map rather than the client's usual no-locking
// contract, using the same cornelk/hashmap-backed ServerMap shape a
// cluster topology cache would, repurposed to a live-client directory.
var registry hashmap.HashMap

func registerClient(c *Client) {
	registry.Insert(c.id, c)
}

func unregisterClient(c *Client) {
	registry.Del(c.id)
}

// Snapshot returns a point-in-time list of every live client, keyed by
// id, for the diagnostic HTTP server.
func Snapshot() map[uint64]*Client {
	out := make(map[uint64]*Client)
	for kv := range registry.Iter() {
		id := kv.Key.(uint64)
		c := kv.Value.(*Client)
		out[id] = c
	}
	return out
}
