// Copyright (c) 2022 The rcproxy Authors
// Copyright (c) 2019 Andy Pan
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

// Package ioloop provides the event-loop adapter that turns socket
// readiness and timer expiry into handle_read/handle_write/handle_timeout
// upcalls for a single connection, reduced from a many-connection
// epoll/kqueue engine's connection lifecycle and timer-driven actions
// down to one adapter per connection.
package ioloop

import (
	"sync"
)

// Loop is a single-goroutine dispatcher: every posted func runs on the
// same goroutine, in post order, giving the client the cooperative
// single-threaded semantics its state machine relies on.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
}

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.quit:
			l.drain()
			return
		}
	}
}

// drain runs any tasks still queued at shutdown so deferred frees and
// final error callbacks are not lost.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			return
		}
	}
}

// Post schedules fn to run on the loop goroutine. Safe to call from any
// goroutine (background readers/writers/timers all funnel through here).
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// Stop shuts the loop down after draining queued tasks. Idempotent.
func (l *Loop) Stop() {
	select {
	case <-l.quit:
		return
	default:
		close(l.quit)
	}
	l.wg.Wait()
}
