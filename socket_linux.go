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

//go:build linux

package redis

import (
	"net"

	"golang.org/x/sys/unix"
)

// applyPlatformSocketOptions sets Linux-only socket options, using the
// same golang.org/x/sys/unix setsockopt calls as an epoll fd setup
// would, narrowed to an already-dialed net.TCPConn.
func applyPlatformSocketOptions(tc *net.TCPConn, opts *options) {
	raw, err := tc.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		if opts.tcpUserTimeout > 0 {
			ms := int(opts.tcpUserTimeout.Milliseconds())
			unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, ms)
		}
		if opts.reuseAddr {
			unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		}
	})
}
