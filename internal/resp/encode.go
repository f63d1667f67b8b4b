// Copyright (c) 2022 The rcproxy Authors
// Copyright (c) 2012 Gary Burd
//
// Licensed under the Apache License, Version 2.0 (the "License"): you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package resp

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// EncodeCommand serializes args as a RESP array of bulk strings. args[0] is
// the command name, the remainder its arguments. The returned
// buffer is pooled; callers must return it with ReleaseCommand once the
// bytes have been written to the connection.
func EncodeCommand(args [][]byte) *bytebufferpool.ByteBuffer {
	buf := bytebufferpool.Get()
	writeLen(buf, '*', len(args))
	for _, a := range args {
		writeLen(buf, '$', len(a))
		buf.B = append(buf.B, a...)
		buf.B = append(buf.B, '\r', '\n')
	}
	return buf
}

// ReleaseCommand returns a buffer obtained from EncodeCommand to the pool.
func ReleaseCommand(buf *bytebufferpool.ByteBuffer) {
	bytebufferpool.Put(buf)
}

func writeLen(buf *bytebufferpool.ByteBuffer, prefix byte, n int) {
	buf.B = append(buf.B, prefix)
	buf.B = strconv.AppendInt(buf.B, int64(n), 10)
	buf.B = append(buf.B, '\r', '\n')
}
