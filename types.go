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

// Package redis is an asynchronous Redis client for single-threaded
// cooperative event loops: many in-flight commands are multiplexed over
// one connection, with replies surfaced through user-supplied
// continuations.
package redis

import (
	"strings"
	"time"

	"github.com/rcproxy/goredisasync/internal/resp"
)

// Reply is the client's decoded reply value: one of a byte
// string, signed integer, double, boolean, null, or an ordered sequence
// of Reply values (arrays/maps/sets/attributes/pushes are all flattened
// into ReplyArray's Elems).
type Reply = resp.Reply

// Reply kind constants, re-exported from the internal decoder.
const (
	ReplyString = resp.KindString
	ReplyInt    = resp.KindInt
	ReplyDouble = resp.KindDouble
	ReplyBool   = resp.KindBool
	ReplyNull   = resp.KindNull
	ReplyArray  = resp.KindArray
)

// Callback is invoked with the decoded reply or an error, never both.
// For a persistent (subscribe-family) submission it is invoked once
// per server reply until the subscription ends or the connection is
// lost.
type Callback func(reply *Reply, err error)

// ErrorCallback is used for on_error.
type ErrorCallback func(errStr string)

// VoidCallback is used for on_connect/on_disconnect.
type VoidCallback func()

// PushCallback is used for on_push, RESP3 out-of-band messages.
type PushCallback func(reply *Reply)

// MaxMillis is the upper bound for any millisecond duration accepted by
// the client's option setters.
const MaxMillis = 2_000_000_000

func clampMillis(ms int) int {
	if ms < 0 {
		return 0
	}
	if ms > MaxMillis {
		return MaxMillis
	}
	return ms
}

func millis(d time.Duration) int {
	return int(d / time.Millisecond)
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// persistentCommands is the case-insensitive set of commands that yield
// many replies for one submission, narrowed from a full command
// classification table down to just the subscribe family.
var persistentCommands = map[string]bool{
	"subscribe":  true,
	"psubscribe": true,
	"ssubscribe": true,
	"monitor":    true,
}

func isPersistentCommand(name []byte) bool {
	return persistentCommands[strings.ToLower(string(name))]
}

func isMonitorCommand(name []byte) bool {
	return strings.EqualFold(string(name), "monitor")
}
