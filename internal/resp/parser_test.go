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

package resp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ReadReply_SimpleString(t *testing.T) {
	r := NewReader(strings.NewReader("+OK\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	assert.Equal(t, TypeSimpleString, w.Type)
	assert.Equal(t, "OK", string(w.Str))

	rep := Decode(w)
	assert.Equal(t, KindString, rep.Kind)
	assert.Equal(t, "OK", string(rep.Str))
}

func Test_ReadReply_BulkNull(t *testing.T) {
	r := NewReader(strings.NewReader("$-1\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	assert.True(t, w.Null)
	rep := Decode(w)
	assert.Equal(t, KindNull, rep.Kind)
}

func Test_ReadReply_Array(t *testing.T) {
	r := NewReader(strings.NewReader("*2\r\n$3\r\nfoo\r\n:42\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	require.Equal(t, TypeArray, w.Type)
	require.Len(t, w.Elems, 2)

	rep := Decode(w)
	require.Equal(t, KindArray, rep.Kind)
	assert.Equal(t, "foo", string(rep.Elems[0].Str))
	assert.Equal(t, int64(42), rep.Elems[1].Int)
}

func Test_ReadReply_RESP3Map_FlattensToArray(t *testing.T) {
	r := NewReader(strings.NewReader("%1\r\n$1\r\nk\r\n$1\r\nv\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	rep := Decode(w)
	require.Equal(t, KindArray, rep.Kind)
	require.Len(t, rep.Elems, 2)
	assert.Equal(t, "k", string(rep.Elems[0].Str))
	assert.Equal(t, "v", string(rep.Elems[1].Str))
}

func Test_ReadReply_RESP3Double(t *testing.T) {
	r := NewReader(strings.NewReader(",3.14\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	rep := Decode(w)
	assert.Equal(t, KindDouble, rep.Kind)
	assert.InDelta(t, 3.14, rep.Dbl, 1e-9)
}

func Test_ReadReply_RESP3Boolean(t *testing.T) {
	r := NewReader(strings.NewReader("#t\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	rep := Decode(w)
	assert.Equal(t, KindBool, rep.Kind)
	assert.True(t, rep.Bool)
}

func Test_ReadReply_TopLevelError(t *testing.T) {
	r := NewReader(strings.NewReader("-ERR boom\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	assert.True(t, w.IsTopLevelError())
	assert.Equal(t, "ERR boom", string(w.Str))
}

func Test_IsUnsubscribeMarker(t *testing.T) {
	r := NewReader(strings.NewReader("*3\r\n$11\r\nunsubscribe\r\n$2\r\nc1\r\n:0\r\n"))
	w, err := r.ReadReply()
	require.NoError(t, err)
	rep := Decode(w)
	assert.True(t, rep.IsUnsubscribeMarker())
}

func Test_EncodeCommand(t *testing.T) {
	buf := EncodeCommand([][]byte{[]byte("SET"), []byte("foo"), []byte("bar")})
	defer ReleaseCommand(buf)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n", buf.String())
}
