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

import "time"

// waitingEntry is one command admitted to the waiting queue: not yet
// written to the wire, buffered behind max_pending or a missing
// connection until it is promoted to the pending queue.
type waitingEntry struct {
	prev, next *waitingEntry

	buf      [][]byte // raw command arguments, encoded when the entry is promoted
	cb       Callback
	persist  bool
	monitor  bool
	queuedAt time.Time
}

// waitingQueue is an intrusive doubly-linked FIFO, in the same
// MsgQueue/FragQueue shape (tail -> ... -> head, PushTail/PopHead).
type waitingQueue struct {
	tail, head *waitingEntry
	count      int
}

func (q *waitingQueue) Empty() bool { return q.count == 0 }
func (q *waitingQueue) Len() int    { return q.count }

func (q *waitingQueue) PushTail(e *waitingEntry) {
	e.next = q.tail
	e.prev = nil
	if q.count == 0 {
		q.head = e
	} else {
		q.tail.prev = e
	}
	q.tail = e
	q.count++
}

// PopHead removes and returns the oldest entry (FIFO order), or nil if
// the queue is empty.
func (q *waitingQueue) PopHead() *waitingEntry {
	if q.count == 0 {
		return nil
	}
	e := q.head
	q.count--
	if q.count == 0 {
		q.tail, q.head = nil, nil
	} else {
		e.prev.next = nil
		q.head = e.prev
	}
	e.next, e.prev = nil, nil
	return e
}

// Remove splices e out of the queue in O(1); e must currently be linked
// into q. Used for waiting-timeout expiry and CancelWaiting.
//
// Link direction follows an intrusive MsgQueue/FragQueue convention:
// prev points toward the tail (newer entries), next points toward the
// head (older entries) — the reverse of the usual convention, so
// PopHead walks head -> ... via .prev.
func (q *waitingQueue) Remove(e *waitingEntry) {
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.head = e.prev
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.tail = e.next
	}
	e.next, e.prev = nil, nil
	q.count--
}

// pendingEntry is one command already written to the connection and
// awaiting its reply.
type pendingEntry struct {
	prev, next *pendingEntry

	cb       Callback
	persist  bool
	subCount int // unsubscribe markers remaining before a subscribe-family entry is retired
	skipped  bool
	deadline time.Time // zero if no command_timeout was in effect
	hasDeadline bool
}

// pendingQueue is the same intrusive FIFO shape as waitingQueue, kept as
// a distinct type so the two tiers can't be mixed up at compile time.
type pendingQueue struct {
	tail, head *pendingEntry
	count      int
}

func (q *pendingQueue) Empty() bool { return q.count == 0 }
func (q *pendingQueue) Len() int    { return q.count }

func (q *pendingQueue) PushTail(e *pendingEntry) {
	e.next = q.tail
	e.prev = nil
	if q.count == 0 {
		q.head = e
	} else {
		q.tail.prev = e
	}
	q.tail = e
	q.count++
}

func (q *pendingQueue) PopHead() *pendingEntry {
	if q.count == 0 {
		return nil
	}
	e := q.head
	q.count--
	if q.count == 0 {
		q.tail, q.head = nil, nil
	} else {
		e.prev.next = nil
		q.head = e.prev
	}
	e.next, e.prev = nil, nil
	return e
}

// Front returns the oldest entry without removing it, or nil.
func (q *pendingQueue) Front() *pendingEntry {
	return q.head
}

// Remove has the same prev/next direction convention as
// waitingQueue.Remove; see its comment.
func (q *pendingQueue) Remove(e *pendingEntry) {
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.head = e.prev
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.tail = e.next
	}
	e.next, e.prev = nil, nil
	q.count--
}

func (q *pendingQueue) Reset() {
	q.tail, q.head = nil, nil
	q.count = 0
}

func (q *waitingQueue) Reset() {
	q.tail, q.head = nil, nil
	q.count = 0
}
