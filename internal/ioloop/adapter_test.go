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

package ioloop

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ClampPriority(t *testing.T) {
	assert.Equal(t, -2, ClampPriority(-5))
	assert.Equal(t, 2, ClampPriority(5))
	assert.Equal(t, 0, ClampPriority(0))
	assert.Equal(t, 1, ClampPriority(1))
}

func Test_Loop_PostRunsInOrder(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	var out []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() {
			out = append(out, i)
			if i == 4 {
				close(done)
			}
		})
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, out)
}

func Test_Adapter_TimerFiresOnSchedule(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	fired := make(chan struct{})
	a := NewAdapter(l, c1, func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	}, func(error) {}, func(error) {}, func(error) {
		close(fired)
	})
	a.AddRead()
	a.ScheduleTimer(20 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	a.Cleanup()
}

func Test_Adapter_SetPriorityClamps(t *testing.T) {
	l := NewLoop()
	defer l.Stop()
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	a := NewAdapter(l, c1, func() error { time.Sleep(time.Millisecond); return nil }, func(error) {}, func(error) {}, func(error) {})
	require.Equal(t, -2, a.SetPriority(-100))
	require.Equal(t, 2, a.SetPriority(100))
	a.Cleanup()
}

func Test_Adapter_CleanupIdempotent(t *testing.T) {
	l := NewLoop()
	defer l.Stop()
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	a := NewAdapter(l, c1, func() error { time.Sleep(time.Millisecond); return nil }, func(error) {}, func(error) {}, func(error) {})
	a.Cleanup()
	a.Cleanup()
}
