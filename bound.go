// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import "github.com/pkg/errors"

// A Bound is a value that encodes as a range endpoint rather than as data.
// Encodings of bounds, and of arrays containing them, are undecodable.
//
// The zero Bound is the absolute lower bound.
type Bound struct {
	sort   *Sort // nil for absolute bounds
	prefix Value // nil for sort-wide bounds
	upper  bool
}

func (Bound) isValue() {}

// Lower returns the absolute lower bound, which encodes as "\x00".
func Lower() Bound { return Bound{} }

// Upper returns the absolute upper bound, which encodes as "\xff".
func Upper() Bound { return Bound{upper: true} }

// IsUpper reports whether b is an upper bound.
func (b Bound) IsUpper() bool { return b.upper }

// Sort returns the sort b is bounding, or nil for an absolute bound.
func (b Bound) Sort() *Sort { return b.sort }

// Prefix returns the prefix b is bounding, or nil.
func (b Bound) Prefix() Value { return b.prefix }

// Lower returns the lower bound of the values of s starting with prefix.
// A nil prefix bounds every value of s.
// Otherwise prefix must be a value of s, and s must be a string, binary or
// array sort; the bound then encodes as the prefix itself
// (for arrays, without the closing byte).
func (s *Sort) Lower(prefix Value) Bound {
	return Bound{sort: s, prefix: prefix}
}

// Upper returns the upper bound of the values of s starting with prefix.
// A nil prefix bounds every value of s.
// Otherwise the bound encodes as the prefix followed by 0xFF
// (for arrays, in place of the closing byte).
func (s *Sort) Upper(prefix Value) Bound {
	return Bound{sort: s, prefix: prefix, upper: true}
}

// encodeBound returns the encoding of b.
func (e *Encoding) encodeBound(st *state, b Bound, nested bool) ([]byte, error) {
	if b.sort == nil {
		if b.upper {
			return []byte{upperBound}, nil
		}
		return []byte{lowerBound}, nil
	}
	if b.prefix == nil {
		leaves := b.sort.leaves()
		if b.upper {
			return []byte{leaves[len(leaves)-1].Tag, upperBound}, nil
		}
		return []byte{leaves[0].Tag}, nil
	}

	if _, ok := b.prefix.(Bound); ok {
		return nil, errors.Wrapf(ErrInvalidValue, "%s bound prefix is itself a bound", b.sort.Name)
	}
	if err := invalid(b.prefix); err != nil {
		return nil, err
	}
	leaf, err := st.r.classify(b.prefix)
	if err != nil {
		return nil, err
	}
	if !b.sort.contains(leaf) {
		return nil, errors.Wrapf(ErrInvalidValue, "%s bound with %s prefix", b.sort.Name, leaf.Name)
	}

	var out []byte
	switch _, esc := leaf.escaper(); {
	case leaf.list:
		out, _, err = e.encodeList(st, leaf, b.prefix.(Array))
		if err != nil {
			return nil, err
		}
		out = out[:len(out)-1] // drop listEnd
	case esc:
		out, err = e.encodeLeaf(leaf, b.prefix, nested)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedSort, "sort %s has no prefix bounds", leaf.Name)
	}
	if b.upper {
		out = append(out, upperBound)
	}
	return out, nil
}
