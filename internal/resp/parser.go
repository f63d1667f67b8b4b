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
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// WireType is the RESP type tag, one byte wide on the wire.
type WireType byte

const (
	TypeSimpleString   WireType = '+'
	TypeError          WireType = '-'
	TypeInteger        WireType = ':'
	TypeBulkString     WireType = '$'
	TypeArray          WireType = '*'
	TypeNull           WireType = '_'
	TypeDouble         WireType = ','
	TypeBoolean        WireType = '#'
	TypeBigNumber      WireType = '('
	TypeBulkError      WireType = '!'
	TypeVerbatimString WireType = '='
	TypeMap            WireType = '%'
	TypeSet            WireType = '~'
	TypePush           WireType = '>'
	TypeAttribute      WireType = '|'
)

// WireReply is the parsed RESP reply tree, before it is flattened into
// the public Reply variant.
type WireReply struct {
	Type  WireType
	Str   []byte
	Int   int64
	Dbl   float64
	Bool  bool
	Null  bool
	Elems []*WireReply
}

var (
	// ErrBadLine indicates a malformed RESP line terminator.
	ErrBadLine = errors.New("resp: bad response line terminator")
	// ErrMalformedLength indicates an unparsable bulk/array length.
	ErrMalformedLength = errors.New("resp: malformed length")
)

// Reader parses RESP2/RESP3 replies off a buffered byte stream.
// client.go drives it from the event-loop adapter's read callback.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 16*1024)}
}

// Peek1 blocks until at least one byte is buffered (or a read error
// occurs) without consuming it. Used by the background reader goroutine
// to wait for data before handing control back to the loop to decode.
func (rd *Reader) Peek1() (byte, error) {
	b, err := rd.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Buffered reports how many bytes are already buffered and can be
// decoded without another blocking read.
func (rd *Reader) Buffered() int {
	return rd.br.Buffered()
}

func (rd *Reader) readLine() ([]byte, error) {
	p, err := rd.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		buf := append([]byte{}, p...)
		for err == bufio.ErrBufferFull {
			p, err = rd.br.ReadSlice('\n')
			buf = append(buf, p...)
		}
		p = buf
	}
	if err != nil {
		return nil, err
	}
	i := len(p) - 2
	if i < 0 || p[i] != '\r' {
		return nil, ErrBadLine
	}
	return p[:i], nil
}

func parseLen(p []byte) (int, bool, error) {
	if len(p) == 0 {
		return 0, false, ErrMalformedLength
	}
	if p[0] == '-' {
		n, err := strconv.Atoi(string(p))
		if err != nil {
			return 0, false, ErrMalformedLength
		}
		return 0, n < 0, nil
	}
	n, err := strconv.Atoi(string(p))
	if err != nil {
		return 0, false, ErrMalformedLength
	}
	return n, false, nil
}

// ReadReply reads one complete reply, recursing into aggregate types.
func (rd *Reader) ReadReply() (*WireReply, error) {
	line, err := rd.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, errors.New("resp: short response line")
	}

	t := WireType(line[0])
	body := line[1:]

	switch t {
	case TypeSimpleString:
		return &WireReply{Type: t, Str: append([]byte(nil), body...)}, nil
	case TypeError:
		return &WireReply{Type: t, Str: append([]byte(nil), body...)}, nil
	case TypeInteger:
		n, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "resp: malformed integer")
		}
		return &WireReply{Type: t, Int: n}, nil
	case TypeDouble:
		d, err := parseDouble(body)
		if err != nil {
			return nil, err
		}
		return &WireReply{Type: t, Dbl: d}, nil
	case TypeBoolean:
		return &WireReply{Type: t, Bool: len(body) > 0 && body[0] == 't'}, nil
	case TypeNull:
		return &WireReply{Type: t, Null: true}, nil
	case TypeBigNumber:
		return &WireReply{Type: t, Str: append([]byte(nil), body...)}, nil
	case TypeBulkString, TypeBulkError, TypeVerbatimString:
		n, isNull, err := parseLen(body)
		if err != nil {
			return nil, err
		}
		if isNull {
			return &WireReply{Type: t, Null: true}, nil
		}
		p := make([]byte, n)
		if _, err := io.ReadFull(rd.br, p); err != nil {
			return nil, err
		}
		if trailer, err := rd.readLine(); err != nil {
			return nil, err
		} else if len(trailer) != 0 {
			return nil, errors.New("resp: bad bulk format")
		}
		return &WireReply{Type: t, Str: p}, nil
	case TypeArray, TypeMap, TypeSet, TypePush, TypeAttribute:
		n, isNull, err := parseLen(body)
		if err != nil {
			return nil, err
		}
		if isNull {
			return &WireReply{Type: t, Null: true}, nil
		}
		count := n
		if t == TypeMap || t == TypeAttribute {
			count = n * 2
		}
		elems := make([]*WireReply, count)
		for i := range elems {
			elems[i], err = rd.ReadReply()
			if err != nil {
				return nil, err
			}
		}
		return &WireReply{Type: t, Elems: elems}, nil
	default:
		return nil, errors.Errorf("resp: unexpected reply type %q", string(t))
	}
}

func parseDouble(body []byte) (float64, error) {
	s := string(body)
	switch s {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(err, "resp: malformed double")
	}
	return d, nil
}
