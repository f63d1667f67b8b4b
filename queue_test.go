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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WaitingQueue_FIFO(t *testing.T) {
	var q waitingQueue
	a, b, c := &waitingEntry{}, &waitingEntry{}, &waitingEntry{}
	q.PushTail(a)
	q.PushTail(b)
	q.PushTail(c)
	require.Equal(t, 3, q.Len())

	assert.Same(t, a, q.PopHead())
	assert.Same(t, b, q.PopHead())
	assert.Same(t, c, q.PopHead())
	assert.Nil(t, q.PopHead())
	assert.True(t, q.Empty())
}

func Test_WaitingQueue_RemoveMiddle(t *testing.T) {
	var q waitingQueue
	a, b, c := &waitingEntry{}, &waitingEntry{}, &waitingEntry{}
	q.PushTail(a)
	q.PushTail(b)
	q.PushTail(c)

	q.Remove(b)
	require.Equal(t, 2, q.Len())
	assert.Same(t, a, q.PopHead())
	assert.Same(t, c, q.PopHead())
}

func Test_PendingQueue_FrontDoesNotRemove(t *testing.T) {
	var q pendingQueue
	a := &pendingEntry{}
	q.PushTail(a)
	assert.Same(t, a, q.Front())
	assert.Equal(t, 1, q.Len())
	assert.Same(t, a, q.PopHead())
	assert.Nil(t, q.Front())
}

func Test_PendingQueue_RemoveHeadAndTail(t *testing.T) {
	var q pendingQueue
	a, b, c := &pendingEntry{}, &pendingEntry{}, &pendingEntry{}
	q.PushTail(a)
	q.PushTail(b)
	q.PushTail(c)

	q.Remove(a) // head
	q.Remove(c) // tail
	require.Equal(t, 1, q.Len())
	assert.Same(t, b, q.PopHead())
}
