// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"fmt"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// Reserved bytes.
const (
	lowerBound = 0x00 // absolute lower bound
	upperBound = 0xFF // absolute upper bound; also ends prefix upper bounds
	listEnd    = 0x00 // closes an array and terminates escaped payloads
)

// A Sort describes one sort of value and how it is encoded.
//
// A leaf sort has a unique Tag. If Codec is set, the tag is followed by
// the codec's payload; otherwise the sort is nullary and decodes to Value.
// A composite sort has no tag or codec of its own and routes values to
// one of its Sorts, which are listed in encoding order.
//
// Sorts must not be modified after they are passed to [NewRegistry].
type Sort struct {
	Name  string
	Tag   byte
	Codec Codec
	Value Value
	Sorts []*Sort

	list bool // payload is a nested array
}

func (s *Sort) String() string {
	if s.Tag == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s(%#02x)", s.Name, s.Tag)
}

// IsLeaf reports whether s is a leaf sort.
func (s *Sort) IsLeaf() bool {
	return len(s.Sorts) == 0
}

// leaves returns the leaf sorts of s in order.
func (s *Sort) leaves() []*Sort {
	if s.IsLeaf() {
		return []*Sort{s}
	}
	var out []*Sort
	for _, sub := range s.Sorts {
		out = append(out, sub.leaves()...)
	}
	return out
}

// contains reports whether leaf is s or one of its subsorts.
func (s *Sort) contains(leaf *Sort) bool {
	if s == leaf {
		return true
	}
	for _, sub := range s.Sorts {
		if sub.contains(leaf) {
			return true
		}
	}
	return false
}

// escaper returns the Escaper of a leaf sort, if its codec has one.
func (s *Sort) escaper() (Escaper, bool) {
	esc, ok := s.Codec.(Escaper)
	return esc, ok
}

// supported reports whether a leaf sort can encode and decode values.
func (s *Sort) supported() bool {
	return s.list || s.Codec != nil || s.Value != nil
}

// The built-in sorts, in encoding order.
var (
	NullSort = &Sort{Name: "null", Tag: 0x10, Value: Null{}}

	BooleanSort = &Sort{Name: "boolean", Sorts: []*Sort{
		{Name: "false", Tag: 0x20, Value: Bool(false)},
		{Name: "true", Tag: 0x21, Value: Bool(true)},
	}}

	NumberSort = &Sort{Name: "number", Sorts: []*Sort{
		{Name: "min", Tag: 0x40, Value: Number(math.Inf(-1))},
		{Name: "negative", Tag: 0x41, Codec: floatCodec{neg: true}},
		{Name: "positive", Tag: 0x42, Codec: floatCodec{}},
		{Name: "max", Tag: 0x43, Value: Number(math.Inf(+1))},
	}}

	DateSort = &Sort{Name: "date", Sorts: []*Sort{
		{Name: "negative", Tag: 0x51, Codec: floatCodec{neg: true, date: true}},
		{Name: "positive", Tag: 0x52, Codec: floatCodec{date: true}},
	}}

	BinarySort = &Sort{Name: "binary", Tag: 0x60, Codec: bytesCodec{}}

	StringSort = &Sort{Name: "string", Tag: 0x70, Codec: utf8Codec{}}

	ArraySort = &Sort{Name: "array", Tag: 0xA0, list: true}

	// ObjectSort reserves the object tag. It has no codec,
	// so objects are rejected with ErrUnsupportedSort.
	ObjectSort = &Sort{Name: "object", Tag: 0xB0}

	UndefinedSort = &Sort{Name: "undefined", Tag: 0xF0, Value: Undefined{}}
)

// Sorts returns the built-in sorts in encoding order.
func Sorts() []*Sort {
	return []*Sort{
		NullSort,
		BooleanSort,
		NumberSort,
		DateSort,
		BinarySort,
		StringSort,
		ArraySort,
		ObjectSort,
		UndefinedSort,
	}
}

// A Registry indexes a set of sorts by tag byte and by name.
// It is immutable once built and safe for concurrent use.
type Registry struct {
	sorts  []*Sort
	leaves []*Sort
	byTag  [256]*Sort
	byName map[string]*Sort
}

// NewRegistry builds a registry from the given sorts.
// Leaf sorts are named by their path, such as "number.negative".
// Registering the same *Sort twice is allowed; two different sorts with
// the same tag or path yield an error wrapping [ErrDuplicatePrefix].
func NewRegistry(sorts ...*Sort) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Sort)}
	for _, s := range sorts {
		if r.byName[s.Name] == s {
			continue
		}
		if err := r.register(s, s.Name); err != nil {
			return nil, err
		}
		r.sorts = append(r.sorts, s)
	}
	return r, nil
}

func (r *Registry) register(s *Sort, name string) error {
	if prev, ok := r.byName[name]; ok && prev != s {
		return errors.Wrapf(ErrDuplicatePrefix, "two sorts named %q", name)
	}
	r.byName[name] = s
	if !s.IsLeaf() {
		for _, sub := range s.Sorts {
			if err := r.register(sub, name+"."+sub.Name); err != nil {
				return err
			}
		}
		return nil
	}
	switch prev := r.byTag[s.Tag]; {
	case s.Tag == lowerBound || s.Tag == upperBound:
		return errors.Wrapf(ErrDuplicatePrefix, "sort %s: tag %#02x is reserved for bounds", name, s.Tag)
	case prev == s:
		return nil
	case prev != nil:
		return errors.Wrapf(ErrDuplicatePrefix, "sorts %s and %s share tag %#02x", prev.Name, name, s.Tag)
	}
	r.byTag[s.Tag] = s
	r.leaves = append(r.leaves, s)
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the registry of the built-in sorts.
// It is built on first use.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(Sorts()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Sorts returns the top-level sorts of r in registration order.
func (r *Registry) Sorts() []*Sort {
	return append([]*Sort(nil), r.sorts...)
}

// Leaves returns the leaf sorts of r in registration order.
func (r *Registry) Leaves() []*Sort {
	return append([]*Sort(nil), r.leaves...)
}

// Lookup returns the leaf sort with the given tag, or nil.
func (r *Registry) Lookup(tag byte) *Sort {
	return r.byTag[tag]
}

// Sort returns the sort with the given path name, such as "string"
// or "number.negative", or nil.
func (r *Registry) Sort(name string) *Sort {
	return r.byName[name]
}

// classify returns the leaf sort that encodes v.
func (r *Registry) classify(v Value) (*Sort, error) {
	var name string
	switch v := v.(type) {
	case Null:
		name = "null"
	case Undefined:
		name = "undefined"
	case Bool:
		name = "boolean.false"
		if v {
			name = "boolean.true"
		}
	case Number:
		switch f := float64(v); {
		case math.IsInf(f, -1):
			name = "number.min"
		case math.IsInf(f, +1):
			name = "number.max"
		case f < 0:
			name = "number.negative"
		default:
			name = "number.positive"
		}
	case Date:
		name = "date.positive"
		if v < 0 {
			name = "date.negative"
		}
	case Binary:
		name = "binary"
	case String:
		name = "string"
	case Array:
		name = "array"
	case Object:
		name = "object"
	}
	s := r.byName[name]
	if s == nil || !s.IsLeaf() || !s.supported() {
		return nil, errors.Wrapf(ErrUnsupportedSort, "%T", v)
	}
	return s, nil
}
