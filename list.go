// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"bytes"

	"github.com/pkg/errors"
)

// encodeList returns the encoding of a: the tag of s, each element's
// nested encoding, and listEnd. Escaped elements are followed by listEnd
// as a terminator. Bounds are appended as they are and make the whole
// encoding undecodable.
func (e *Encoding) encodeList(st *state, s *Sort, a Array) ([]byte, bool, error) {
	if st.depth >= st.max {
		return nil, false, errors.Wrapf(ErrTooDeep, "more than %d nested arrays", st.max)
	}
	if len(a) > 0 {
		id := arrayID{&a[0], len(a)}
		for _, p := range st.stack {
			if p == id {
				return nil, false, errors.Wrapf(ErrCyclicValue, "array of length %d contains itself", len(a))
			}
		}
		st.stack = append(st.stack, id)
		defer func() { st.stack = st.stack[:len(st.stack)-1] }()
	}
	st.depth++
	defer func() { st.depth-- }()

	out := []byte{s.Tag}
	undecodable := false
	for i, x := range a {
		b, u, err := e.encodeValue(st, x, true)
		if err != nil {
			return nil, false, errors.WithMessagef(err, "array element %d", i)
		}
		out = append(out, b...)
		if u {
			undecodable = true
			continue
		}
		if _, ok := st.r.byTag[b[0]].escaper(); ok {
			out = append(out, listEnd)
		}
	}
	return append(out, listEnd), undecodable, nil
}

// parseList decodes the array elements at the start of b, which follows
// the array's tag, and returns the array and the number of bytes consumed
// including the closing listEnd.
func (e *Encoding) parseList(st *state, s *Sort, b []byte) (Value, int, error) {
	if st.depth >= st.max {
		return nil, 0, errors.Wrapf(ErrTooDeep, "more than %d nested arrays", st.max)
	}
	st.depth++
	defer func() { st.depth-- }()

	a := Array{}
	n := 0
	for {
		if n >= len(b) {
			return nil, 0, errors.Wrapf(ErrTruncatedEncoding, "%s not closed after %d elements", s.Name, len(a))
		}
		if b[n] == listEnd {
			return a, n + 1, nil
		}
		v, m, err := e.parse(st, b[n:])
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "array element %d", len(a))
		}
		a = append(a, v)
		n += m
	}
}

// parse decodes the nested encoding at the start of b and returns the value
// and the number of bytes consumed: the tag, the payload and any terminator.
func (e *Encoding) parse(st *state, b []byte) (Value, int, error) {
	if len(b) == 0 {
		return nil, 0, errors.Wrap(ErrTruncatedEncoding, "missing tag")
	}
	s := st.r.byTag[b[0]]
	switch {
	case s == nil:
		return nil, 0, errors.Wrapf(ErrInvalidEncoding, "unknown tag %#02x", b[0])
	case !s.supported():
		return nil, 0, errors.Wrapf(ErrUnsupportedSort, "tag %#02x (%s)", s.Tag, s.Name)
	case s.list:
		v, n, err := e.parseList(st, s, b[1:])
		return v, 1 + n, err
	case s.Codec == nil:
		return s.Value, 1, nil
	}

	payload := b[1:]
	if p, ok := s.Codec.(Parser); ok {
		v, n, err := p.Parse(payload)
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "sort %s", s.Name)
		}
		if n < 0 || n > len(payload) {
			return nil, 0, errors.Wrapf(ErrInvalidEncoding, "sort %s parsed %d of %d bytes", s.Name, n, len(payload))
		}
		return v, 1 + n, nil
	}
	if z, ok := s.Codec.(Sized); ok {
		n := z.Len()
		if len(payload) < n {
			return nil, 0, errors.Wrapf(ErrTruncatedEncoding, "sort %s needs %d bytes, have %d", s.Name, n, len(payload))
		}
		v, err := s.Codec.Decode(payload[:n])
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "sort %s", s.Name)
		}
		return v, 1 + n, nil
	}
	if esc, ok := s.escaper(); ok {
		i := bytes.IndexByte(payload, listEnd)
		if i < 0 {
			return nil, 0, errors.Wrapf(ErrTruncatedEncoding, "sort %s has no terminator", s.Name)
		}
		raw, err := esc.Unescape(payload[:i])
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "sort %s", s.Name)
		}
		v, err := s.Codec.Decode(raw)
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "sort %s", s.Name)
		}
		return v, 1 + i + 1, nil
	}
	return nil, 0, errors.Wrapf(ErrInvalidEncoding, "sort %s cannot be nested", s.Name)
}
