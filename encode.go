// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DefaultMaxDepth is the array nesting limit used when
// [Encoding.MaxDepth] is zero.
const DefaultMaxDepth = 512

// A Buffer is an encoded value.
// Buffers holding bounds are undecodable; the flag carries over
// to every array encoding that contains such a buffer.
type Buffer struct {
	b           []byte
	undecodable bool
}

// BufferOf returns a decodable Buffer holding b,
// such as a key read back from a store.
func BufferOf(b []byte) Buffer {
	return Buffer{b: b}
}

// Bytes returns the encoded bytes. The caller must not modify them.
func (b Buffer) Bytes() []byte { return b.b }

// Len returns the length of the encoding.
func (b Buffer) Len() int { return len(b.b) }

// Undecodable reports whether b holds a bound.
func (b Buffer) Undecodable() bool { return b.undecodable }

// String returns the encoding in hexadecimal.
func (b Buffer) String() string { return hex.EncodeToString(b.b) }

// A TextCodec converts encodings to and from text.
// *base64.Encoding implements TextCodec.
type TextCodec interface {
	EncodeToString(src []byte) string
	DecodeString(s string) ([]byte, error)
}

type hexCodec struct{}

func (hexCodec) EncodeToString(b []byte) string        { return hex.EncodeToString(b) }
func (hexCodec) DecodeString(s string) ([]byte, error) { return hex.DecodeString(s) }

// Hex is the default TextCodec, lowercase hexadecimal.
var Hex TextCodec = hexCodec{}

// An Encoding encodes and decodes values using a registry of sorts.
// The zero Encoding uses the defaults described for each field.
// An Encoding must not be modified while in use.
type Encoding struct {
	// Registry holds the sorts. Nil means DefaultRegistry().
	Registry *Registry

	// Text converts encodings to and from text. Nil means Hex.
	Text TextCodec

	// MaxDepth limits array nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// PostEncode, if set, is applied to every top-level encoding.
	PostEncode func([]byte) []byte

	// PostDecode, if set, is applied to every top-level decoded value.
	PostDecode func(Value) Value
}

// StdEncoding is the Encoding with all defaults,
// used by the package-level functions.
var StdEncoding = &Encoding{}

// state is the per-call encoding or decoding state.
type state struct {
	r     *Registry
	max   int
	depth int
	stack []arrayID // arrays being encoded
}

// arrayID identifies an array by its first element and length.
// Arrays that agree on both hold the same elements.
type arrayID struct {
	p *Value
	n int
}

func (e *Encoding) newState() *state {
	st := &state{r: e.Registry, max: e.MaxDepth}
	if st.r == nil {
		st.r = DefaultRegistry()
	}
	if st.max <= 0 {
		st.max = DefaultMaxDepth
	}
	return st
}

func (e *Encoding) text() TextCodec {
	if e.Text == nil {
		return Hex
	}
	return e.Text
}

// Lookup returns the leaf sort with the given tag byte, or nil.
func (e *Encoding) Lookup(tag byte) *Sort {
	return e.newState().r.Lookup(tag)
}

// Encode returns the encoding of v.
func (e *Encoding) Encode(v Value) (Buffer, error) {
	return e.encode(v, false)
}

// EncodeNested returns the encoding of v as it appears inside an array,
// with its payload escaped if its sort requires it.
// No terminator is added.
func (e *Encoding) EncodeNested(v Value) (Buffer, error) {
	return e.encode(v, true)
}

// EncodeToString returns the text form of the encoding of v.
func (e *Encoding) EncodeToString(v Value) (string, error) {
	b, err := e.Encode(v)
	if err != nil {
		return "", err
	}
	return e.text().EncodeToString(b.b), nil
}

func (e *Encoding) encode(v Value, nested bool) (Buffer, error) {
	b, undecodable, err := e.encodeValue(e.newState(), v, nested)
	if err != nil {
		return Buffer{}, err
	}
	if e.PostEncode != nil {
		b = e.PostEncode(b)
	}
	return Buffer{b: b, undecodable: undecodable}, nil
}

// encodeValue returns the encoding of v and whether it is undecodable.
func (e *Encoding) encodeValue(st *state, v Value, nested bool) ([]byte, bool, error) {
	if err := invalid(v); err != nil {
		return nil, false, err
	}
	if b, ok := v.(Bound); ok {
		out, err := e.encodeBound(st, b, nested)
		return out, true, err
	}
	s, err := st.r.classify(v)
	if err != nil {
		return nil, false, err
	}
	if s.list {
		return e.encodeList(st, s, v.(Array))
	}
	out, err := e.encodeLeaf(s, v, nested)
	return out, false, err
}

// encodeLeaf returns the tag of s followed by the payload of v.
func (e *Encoding) encodeLeaf(s *Sort, v Value, nested bool) ([]byte, error) {
	if s.Codec == nil {
		return []byte{s.Tag}, nil
	}
	payload, err := s.Codec.Encode(v)
	if err != nil {
		return nil, errors.WithMessagef(err, "sort %s", s.Name)
	}
	if esc, ok := s.escaper(); ok && nested {
		payload = esc.Escape(payload)
	}
	out := make([]byte, 1, 1+len(payload))
	out[0] = s.Tag
	return append(out, payload...), nil
}

// Decode decodes a top-level encoding.
// It fails with ErrUndecodable if b holds a bound.
func (e *Encoding) Decode(b Buffer) (Value, error) {
	return e.decode(b, false)
}

// DecodeNested decodes an encoding produced by EncodeNested.
func (e *Encoding) DecodeNested(b Buffer) (Value, error) {
	return e.decode(b, true)
}

// DecodeBytes decodes a top-level encoding held in b.
func (e *Encoding) DecodeBytes(b []byte) (Value, error) {
	return e.decode(BufferOf(b), false)
}

// DecodeString decodes the text form of an encoding.
func (e *Encoding) DecodeString(s string) (Value, error) {
	b, err := e.text().DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidEncoding, "text form: %v", err)
	}
	return e.decode(BufferOf(b), false)
}

func (e *Encoding) decode(b Buffer, nested bool) (Value, error) {
	if b.undecodable {
		return nil, errors.Wrapf(ErrUndecodable, "buffer %x", b.b)
	}
	v, err := e.decodeValue(e.newState(), b.b, nested)
	if err != nil {
		return nil, err
	}
	if e.PostDecode != nil {
		v = e.PostDecode(v)
	}
	return v, nil
}

// decodeValue decodes b, which must hold exactly one encoding.
func (e *Encoding) decodeValue(st *state, b []byte, nested bool) (Value, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrInvalidEncoding, "empty buffer")
	}
	s := st.r.byTag[b[0]]
	if s == nil {
		return nil, errors.Wrapf(ErrInvalidEncoding, "unknown tag %#02x", b[0])
	}
	switch {
	case s.list:
		v, n, err := e.parseList(st, s, b[1:])
		if err != nil {
			return nil, err
		}
		if extra := len(b) - 1 - n; extra > 0 {
			return nil, errors.Wrapf(ErrInvalidEncoding, "%d bytes after array", extra)
		}
		return v, nil
	case s.Codec == nil:
		if s.Value == nil {
			return nil, errors.Wrapf(ErrUnsupportedSort, "tag %#02x (%s)", s.Tag, s.Name)
		}
		if len(b) != 1 {
			return nil, errors.Wrapf(ErrInvalidEncoding, "%d bytes after %s", len(b)-1, s.Name)
		}
		return s.Value, nil
	}
	payload := b[1:]
	if esc, ok := s.escaper(); ok && nested {
		var err error
		if payload, err = esc.Unescape(payload); err != nil {
			return nil, err
		}
	}
	if z, ok := s.Codec.(Sized); ok && len(payload) != z.Len() {
		return nil, errors.Wrapf(ErrInvalidEncoding, "sort %s needs %d bytes, have %d", s.Name, z.Len(), len(payload))
	}
	v, err := s.Codec.Decode(payload)
	if err != nil {
		return nil, errors.WithMessagef(err, "sort %s", s.Name)
	}
	return v, nil
}

// Lookup returns the built-in leaf sort with the given tag byte, or nil.
func Lookup(tag byte) *Sort {
	return StdEncoding.Lookup(tag)
}

// Encode returns the encoding of v using StdEncoding.
func Encode(v Value) (Buffer, error) {
	return StdEncoding.Encode(v)
}

// EncodeNested is like [Encode] but returns the encoding of v as it
// appears inside an array.
func EncodeNested(v Value) (Buffer, error) {
	return StdEncoding.EncodeNested(v)
}

// EncodeToString returns the hexadecimal encoding of v.
func EncodeToString(v Value) (string, error) {
	return StdEncoding.EncodeToString(v)
}

// Decode decodes b using StdEncoding.
func Decode(b Buffer) (Value, error) {
	return StdEncoding.Decode(b)
}

// DecodeNested decodes an encoding produced by [EncodeNested].
func DecodeNested(b Buffer) (Value, error) {
	return StdEncoding.DecodeNested(b)
}

// DecodeBytes decodes the encoding held in b.
func DecodeBytes(b []byte) (Value, error) {
	return StdEncoding.DecodeBytes(b)
}

// DecodeString decodes a hexadecimal encoding.
func DecodeString(s string) (Value, error) {
	return StdEncoding.DecodeString(s)
}
