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
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	return ln, addr.IP.String(), addr.Port
}

func Test_Client_ConnectSubmitReply(t *testing.T) {
	ln, host, port := listenLoopback(t)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	connectedCh := make(chan struct{}, 1)
	c, err := New(WithHostPort(host, port))
	require.NoError(t, err)
	c.OnConnect(func() { connectedCh <- struct{}{} })
	require.NoError(t, c.Connect())

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted connection")
	}
	defer server.Close()

	select {
	case <-connectedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("OnConnect never fired")
	}

	go func() {
		r := bufio.NewReader(server)
		line, _ := r.ReadString('\n') // "*1\r\n"
		_ = line
		line, _ = r.ReadString('\n') // "$4\r\n"
		_ = line
		r.ReadString('\n') // "PING\r\n"
		server.Write([]byte("+PONG\r\n"))
	}()

	replyCh := make(chan *Reply, 1)
	errCh := make(chan error, 1)
	err = c.Submit([][]byte{[]byte("PING")}, func(reply *Reply, err error) {
		replyCh <- reply
		errCh <- err
	})
	require.NoError(t, err)

	select {
	case reply := <-replyCh:
		require.Equal(t, ReplyString, reply.Kind)
		require.Equal(t, "PONG", string(reply.Str))
		require.NoError(t, <-errCh)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	c.Close()
}

func Test_Client_SubmitBeforeConnectFails(t *testing.T) {
	c, err := New(WithHostPort("127.0.0.1", 0))
	require.NoError(t, err)
	err = c.Submit([][]byte{[]byte("PING")}, func(*Reply, error) {})
	require.Equal(t, ErrNoConnection, err)
}

func Test_Client_SubmitEmptyArgsFails(t *testing.T) {
	ln, host, port := listenLoopback(t)
	ln.Close() // free the port so the dial fails instead of hanging
	c, err := New(WithHostPort(host, port), WithConnectTimeout(50))
	require.NoError(t, err)
	require.NoError(t, c.Connect())
	defer c.Close()
	err = c.Submit(nil, func(*Reply, error) {})
	require.Equal(t, ErrEmptyArgs, err)
}

func Test_Client_CancelAllDeliversSkipped(t *testing.T) {
	ln, host, port := listenLoopback(t)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c, err := New(WithHostPort(host, port), WithMaxPending(2))
	require.NoError(t, err)
	connectedCh := make(chan struct{}, 1)
	c.OnConnect(func() { connectedCh <- struct{}{} })
	require.NoError(t, c.Connect())

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted connection")
	}
	defer server.Close()

	select {
	case <-connectedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("OnConnect never fired")
	}

	type result struct {
		reply *Reply
		err   error
	}
	results := make(chan result, 4)
	for i := 0; i < 4; i++ {
		err := c.Submit([][]byte{[]byte("BLPOP"), []byte("key"), []byte("0")}, func(reply *Reply, err error) {
			results <- result{reply, err}
		})
		require.NoError(t, err)
	}

	// Two commands were written to the wire and two are still waiting
	// behind max_pending=2; the server never replies to either.
	require.Equal(t, 2, c.PendingCount())
	require.Equal(t, 2, c.WaitingCount())

	c.CancelAll()

	// Both counts read 0 immediately, even though the two in-flight
	// pending entries stay linked in the queue until the connection is
	// torn down — no reply for them will ever land in this test.
	require.Equal(t, 0, c.PendingCount())
	require.Equal(t, 0, c.WaitingCount())

	for i := 0; i < 4; i++ {
		select {
		case r := <-results:
			require.Nil(t, r.reply)
			require.Equal(t, ErrSkipped, r.err)
		case <-time.After(2 * time.Second):
			t.Fatal("callback never fired")
		}
	}

	c.Close()
}

func Test_Client_SubscribeSubCountTracksChannelArgs(t *testing.T) {
	ln, host, port := listenLoopback(t)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c, err := New(WithHostPort(host, port))
	require.NoError(t, err)
	connectedCh := make(chan struct{}, 1)
	c.OnConnect(func() { connectedCh <- struct{}{} })
	require.NoError(t, c.Connect())

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted connection")
	}
	defer server.Close()

	select {
	case <-connectedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("OnConnect never fired")
	}

	invocations := make(chan *Reply, 8)
	err = c.Submit([][]byte{[]byte("SUBSCRIBE"), []byte("c1"), []byte("c2"), []byte("c3")}, func(reply *Reply, err error) {
		require.NoError(t, err)
		invocations <- reply
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return c.pending.Front() != nil }, time.Second, 10*time.Millisecond)
	entry := c.pending.Front()
	require.Equal(t, 3, entry.subCount, "subCount must be len(args)-1, one slot per channel")

	for _, ch := range []string{"c1", "c2", "c3"} {
		_, err := server.Write([]byte("*3\r\n$9\r\nsubscribe\r\n$2\r\n" + ch + "\r\n:1\r\n"))
		require.NoError(t, err)
		select {
		case <-invocations:
		case <-time.After(2 * time.Second):
			t.Fatal("subscribe ack callback never fired")
		}
	}
	require.Equal(t, 3, entry.subCount, "subscribe acks are not unsubscribe markers and must not decrement subCount")

	for i, ch := range []string{"c1", "c2", "c3"} {
		_, err := server.Write([]byte("*3\r\n$11\r\nunsubscribe\r\n$2\r\n" + ch + "\r\n:1\r\n"))
		require.NoError(t, err)
		select {
		case <-invocations:
		case <-time.After(2 * time.Second):
			t.Fatal("unsubscribe marker callback never fired")
		}
		if i < 2 {
			require.Eventually(t, func() bool { return entry.subCount == 2-i }, time.Second, 10*time.Millisecond)
			require.Same(t, entry, c.pending.Front(), "entry must stay pending until the third unsubscribe marker")
		}
	}

	require.Eventually(t, func() bool { return c.pending.Front() == nil }, time.Second, 10*time.Millisecond)

	c.Close()
}

func Test_Client_ReconnectAfterDisconnect(t *testing.T) {
	ln, host, port := listenLoopback(t)
	defer ln.Close()

	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	c, err := New(
		WithHostPort(host, port),
		WithReconnect(10*time.Millisecond, 0),
	)
	require.NoError(t, err)

	connects := make(chan struct{}, 4)
	c.OnConnect(func() { connects <- struct{}{} })
	require.NoError(t, c.Connect())

	var first net.Conn
	select {
	case first = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("first accept timed out")
	}
	select {
	case <-connects:
	case <-time.After(2 * time.Second):
		t.Fatal("first connect never fired")
	}

	first.Close()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect never dialed")
	}
	select {
	case <-connects:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect never fired OnConnect")
	}

	c.Close()
}
