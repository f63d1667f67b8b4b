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
	"crypto/tls"
	"net"
	"strconv"
)

func uitoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func tlsClient(conn net.Conn, cfg *tls.Config, host string) net.Conn {
	c := cfg
	if c.ServerName == "" {
		c = cfg.Clone()
		c.ServerName = host
	}
	return tls.Client(conn, c)
}

// applySocketOptions best-effort applies the client's socket-level
// options. TCPKeepAlive and buffer sizing only apply to TCP
// connections; unix sockets silently ignore them, the same way
// SetRecvBuffer/SetSendBuffer no-op off their supported platforms.
func applySocketOptions(conn net.Conn, opts *options) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if opts.tcpKeepAlive > 0 {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(opts.tcpKeepAlive)
	}
	if opts.socketRecvBuffer > 0 {
		tc.SetReadBuffer(opts.socketRecvBuffer)
	}
	if opts.socketSendBuffer > 0 {
		tc.SetWriteBuffer(opts.socketSendBuffer)
	}
	applyPlatformSocketOptions(tc, opts)
}
