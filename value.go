// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"bytes"
	"cmp"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// A Value is a value that can be encoded.
// The implementations are [Undefined], [Null], [Bool], [Number], [Date],
// [Binary], [String], [Array], [Object] and [Bound].
type Value interface {
	isValue()
}

// Undefined is the undefined value. It orders after every other value.
type Undefined struct{}

// Null is the null value. It orders before every other value.
type Null struct{}

// Bool is a boolean value. False orders before true.
type Bool bool

// Number is a floating-point number. NaN cannot be encoded.
type Number float64

// Date is a point in time, in milliseconds since the Unix epoch.
// Its magnitude must not exceed [MaxDate].
type Date int64

// Binary is a byte string.
type Binary []byte

// String is a UTF-8 string.
type String string

// Array is a sequence of values of any sort.
type Array []Value

// Object is a string-keyed map of values.
// It is part of the value domain but has no encoding.
type Object map[string]Value

func (Undefined) isValue() {}
func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Number) isValue()    {}
func (Date) isValue()      {}
func (Binary) isValue()    {}
func (String) isValue()    {}
func (Array) isValue()     {}
func (Object) isValue()    {}

// MaxDate is the largest magnitude of a valid [Date],
// 100,000,000 days either side of the epoch.
const MaxDate Date = 8_640_000_000_000_000

// DateOf returns the Date for t, truncated to the millisecond.
func DateOf(t time.Time) Date {
	return Date(t.UnixMilli())
}

// Time returns d as a UTC time.Time.
func (d Date) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// ValueOf returns the Value for a native Go value.
// It accepts nil, bool, every integer and floating-point kind, time.Time,
// []byte, string, []any and map[string]any, along with values that
// already implement Value.
// Other types yield an error wrapping [ErrInvalidValue].
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case int:
		return Number(x), nil
	case int8:
		return Number(x), nil
	case int16:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint8:
		return Number(x), nil
	case uint16:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case uintptr:
		return Number(x), nil
	case time.Time:
		return DateOf(x), nil
	case []byte:
		return Binary(x), nil
	case string:
		return String(x), nil
	case []any:
		a := make(Array, len(x))
		for i, y := range x {
			v, err := ValueOf(y)
			if err != nil {
				return nil, errors.WithMessagef(err, "element %d", i)
			}
			a[i] = v
		}
		return a, nil
	case map[string]any:
		o := make(Object, len(x))
		for k, y := range x {
			v, err := ValueOf(y)
			if err != nil {
				return nil, errors.WithMessagef(err, "key %q", k)
			}
			o[k] = v
		}
		return o, nil
	}
	return nil, errors.Wrapf(ErrInvalidValue, "unsupported type %T", x)
}

// invalid reports why v cannot be encoded, or nil if it can.
// Array elements are checked as they are encoded.
func invalid(v Value) error {
	switch v := v.(type) {
	case nil:
		return errors.Wrap(ErrInvalidValue, "nil Value")
	case Number:
		if math.IsNaN(float64(v)) {
			return errors.Wrap(ErrInvalidValue, "NaN")
		}
	case Date:
		if v < -MaxDate || v > MaxDate {
			return errors.Wrapf(ErrInvalidValue, "date %d out of range", int64(v))
		}
	case String:
		if !utf8.ValidString(string(v)) {
			return errors.Wrapf(ErrInvalidValue, "string %q is not UTF-8", string(v))
		}
	}
	return nil
}

// rank returns the position of v's sort in the sort order.
func rank(v Value) int {
	switch v := v.(type) {
	case Null:
		return 1
	case Bool:
		if v {
			return 3
		}
		return 2
	case Number:
		return 4
	case Date:
		return 5
	case Binary:
		return 6
	case String:
		return 7
	case Array:
		return 8
	case Object:
		return 9
	case Undefined:
		return 10
	}
	return 0
}

// CompareValues returns -1, 0 or +1 depending on whether a orders before,
// with or after b. For valid values a and b,
//
//	CompareValues(a, b) == Compare(Encode(a), Encode(b))
//
// Objects and bounds are not ordered among themselves
// and compare equal to any value of the same kind.
func CompareValues(a, b Value) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch a := a.(type) {
	case Number:
		return cmp.Compare(float64(a), float64(b.(Number)))
	case Date:
		return cmp.Compare(a, b.(Date))
	case Binary:
		return bytes.Compare(a, b.(Binary))
	case String:
		return strings.Compare(string(a), string(b.(String)))
	case Array:
		b := b.(Array)
		for i := 0; i < len(a) && i < len(b); i++ {
			if c := CompareValues(a[i], b[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a), len(b))
	}
	return 0
}
