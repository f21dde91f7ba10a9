// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// A Codec converts the payload of a leaf sort to and from bytes.
// The tag byte is written and checked by the caller.
//
// A Codec may also implement [Escaper], [Sized] or [Parser]
// to say how its payload is delimited inside an array.
type Codec interface {
	Encode(v Value) ([]byte, error)
	Decode(b []byte) (Value, error)
}

// An Escaper is a Codec whose payload is not self-delimiting.
// Inside an array the payload is escaped so that it contains no 0x00 bytes,
// and a 0x00 terminator follows it.
type Escaper interface {
	Escape(b []byte) []byte
	Unescape(b []byte) ([]byte, error)
}

// A Sized is a Codec whose payload always has the same length.
type Sized interface {
	Len() int
}

// A Parser is a Codec that finds the end of its own payload.
// Parse decodes the value at the start of b and returns the number
// of payload bytes it consumed.
type Parser interface {
	Parse(b []byte) (v Value, n int, err error)
}

// Escape bytes. Escaping maps
//
//	0x00 -> 0x01 0x01
//	0x01 -> 0x01 0x02
//	0xFE -> 0xFE 0xFE
//	0xFF -> 0xFE 0xFF
//
// which keeps byte order and leaves no 0x00 or 0xFF in the output.
// The high pair is only escaped when high is set.
const (
	escLow  = 0x01
	escHigh = 0xFE
)

// Escape escapes all four reserved bytes of b.
func Escape(b []byte) []byte {
	return escape(b, true)
}

// Unescape reverses [Escape].
func Unescape(b []byte) ([]byte, error) {
	return unescape(b, true)
}

func escape(b []byte, high bool) []byte {
	n := len(b)
	for _, c := range b {
		if c <= escLow || high && c >= escHigh {
			n++
		}
	}
	out := make([]byte, 0, n)
	for _, c := range b {
		switch {
		case c <= escLow:
			out = append(out, escLow, c+1)
		case high && c >= escHigh:
			out = append(out, escHigh, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func unescape(b []byte, high bool) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 0x00:
			return nil, errors.Wrapf(ErrInvalidEncoding, "unescaped 0x00 at offset %d", i)
		case c == escLow:
			if i+1 >= len(b) || b[i+1] != 0x01 && b[i+1] != 0x02 {
				return nil, errors.Wrapf(ErrInvalidEncoding, "bad escape at offset %d", i)
			}
			i++
			out = append(out, b[i]-1)
		case high && c == escHigh:
			if i+1 >= len(b) || b[i+1] < escHigh {
				return nil, errors.Wrapf(ErrInvalidEncoding, "bad escape at offset %d", i)
			}
			i++
			out = append(out, b[i])
		case high && c == 0xFF:
			return nil, errors.Wrapf(ErrInvalidEncoding, "unescaped 0xff at offset %d", i)
		default:
			out = append(out, c)
		}
	}
	return out, nil
}

// floatCodec encodes the magnitude of a Number or Date as a big-endian
// float64, inverted for the negative sorts.
type floatCodec struct {
	neg  bool
	date bool
}

func (floatCodec) Len() int { return 8 }

func (c floatCodec) Encode(v Value) ([]byte, error) {
	var f float64
	switch v := v.(type) {
	default:
		return nil, errors.Wrapf(ErrInvalidValue, "float codec cannot encode %T", v)
	case Number:
		f = float64(v)
	case Date:
		f = float64(v)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(math.Abs(f)))
	if c.neg {
		for i := range b {
			b[i] = ^b[i]
		}
	}
	return b, nil
}

func (c floatCodec) Decode(b []byte) (Value, error) {
	if len(b) != 8 {
		return nil, errors.Wrapf(ErrInvalidEncoding, "float payload of %d bytes", len(b))
	}
	u := binary.BigEndian.Uint64(b)
	if c.neg {
		u = ^u
	}
	f := math.Float64frombits(u)
	switch {
	case math.Signbit(f), math.IsNaN(f), math.IsInf(f, 0):
		// Only the finite magnitudes written by Encode are accepted.
		return nil, errors.Wrapf(ErrInvalidEncoding, "float payload %x", b)
	case c.neg && f == 0:
		return nil, errors.Wrap(ErrInvalidEncoding, "negative zero")
	}
	if c.neg {
		f = -f
	}
	if c.date {
		d := Date(f)
		if float64(d) != f || d < -MaxDate || d > MaxDate {
			return nil, errors.Wrapf(ErrInvalidEncoding, "date payload %x", b)
		}
		return d, nil
	}
	return Number(f), nil
}

// utf8Codec encodes a String as its bytes.
type utf8Codec struct{}

func (utf8Codec) Encode(v Value) ([]byte, error) {
	s, ok := v.(String)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidValue, "utf8 codec cannot encode %T", v)
	}
	return []byte(s), nil
}

func (utf8Codec) Decode(b []byte) (Value, error) {
	if !utf8.Valid(b) {
		return nil, errors.Wrapf(ErrInvalidEncoding, "string payload %q is not UTF-8", b)
	}
	return String(b), nil
}

// UTF-8 never contains 0xFE or 0xFF, so strings only escape the low pair.
func (utf8Codec) Escape(b []byte) []byte            { return escape(b, false) }
func (utf8Codec) Unescape(b []byte) ([]byte, error) { return unescape(b, false) }

// bytesCodec encodes a Binary as itself.
type bytesCodec struct{}

func (bytesCodec) Encode(v Value) ([]byte, error) {
	b, ok := v.(Binary)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidValue, "binary codec cannot encode %T", v)
	}
	return append([]byte(nil), b...), nil
}

func (bytesCodec) Decode(b []byte) (Value, error) {
	return Binary(append([]byte{}, b...)), nil
}

func (bytesCodec) Escape(b []byte) []byte            { return Escape(b) }
func (bytesCodec) Unescape(b []byte) ([]byte, error) { return Unescape(b) }
