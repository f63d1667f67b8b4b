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

// Package deadline tracks per-pending-entry command timeouts. A single
// connection's command_timeout can be changed live and only applies to commands
// submitted after the change, so in-flight pending entries can carry
// heterogeneous deadlines no longer monotonic in submission order. That
// rules out a FIFO scan (which the waiting-queue timer can use, since
// queued_at there is always monotonic) and calls for a deadline-ordered
// tree instead.
package deadline

import (
	"time"

	"github.com/petar/GoLLRB/llrb"
)

// item adapts an arbitrary owner value plus a deadline into an llrb.Item.
type item struct {
	deadline time.Time
	owner    interface{}
	seq      uint64
}

func (a *item) Less(than llrb.Item) bool {
	b := than.(*item)
	if a.deadline.Equal(b.deadline) {
		return a.seq < b.seq
	}
	return a.deadline.Before(b.deadline)
}

// Tree tracks outstanding deadlines in a red-black tree keyed by
// absolute time, the same timeoutTree/Less shape a per-fragment
// timeout tree would use.
type Tree struct {
	tree    *llrb.LLRB
	nextSeq uint64
	byOwner map[interface{}]*item
}

func New() *Tree {
	return &Tree{tree: llrb.New(), byOwner: make(map[interface{}]*item)}
}

// Push inserts or replaces the deadline tracked for owner.
func (t *Tree) Push(owner interface{}, deadline time.Time) {
	t.Remove(owner)
	it := &item{deadline: deadline, owner: owner, seq: t.nextSeq}
	t.nextSeq++
	t.byOwner[owner] = it
	t.tree.ReplaceOrInsert(it)
}

// Remove stops tracking owner's deadline, if any.
func (t *Tree) Remove(owner interface{}) {
	it, ok := t.byOwner[owner]
	if !ok {
		return
	}
	t.tree.Delete(it)
	delete(t.byOwner, owner)
}

// Len reports how many deadlines are tracked.
func (t *Tree) Len() int {
	return t.tree.Len()
}

// Min returns the owner with the earliest deadline and that deadline, or
// (nil, zero-time, false) if the tree is empty.
func (t *Tree) Min() (interface{}, time.Time, bool) {
	min := t.tree.Min()
	if min == nil {
		return nil, time.Time{}, false
	}
	it := min.(*item)
	return it.owner, it.deadline, true
}

// Expired pops and returns every owner whose deadline is <= now, in
// deadline order.
func (t *Tree) Expired(now time.Time) []interface{} {
	var out []interface{}
	for {
		min := t.tree.Min()
		if min == nil {
			break
		}
		it := min.(*item)
		if it.deadline.After(now) {
			break
		}
		t.tree.DeleteMin()
		delete(t.byOwner, it.owner)
		out = append(out, it.owner)
	}
	return out
}
