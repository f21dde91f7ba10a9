// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var golden = []struct {
	in  Value
	out string
}{
	{Null{}, "10"},
	{Bool(false), "20"},
	{Bool(true), "21"},
	{Number(math.Inf(-1)), "40"},
	{Number(-4), "41bfefffffffffffff"},
	{Number(-1), "41c00fffffffffffff"},
	{Number(0), "420000000000000000"},
	{Number(0.5), "423fe0000000000000"},
	{Number(1), "423ff0000000000000"},
	{Number(4), "424010000000000000"},
	{Number(math.Inf(+1)), "43"},
	{Date(-1), "51c00fffffffffffff"},
	{Date(0), "520000000000000000"},
	{Date(1), "523ff0000000000000"},
	{Binary{}, "60"},
	{Binary{0x00, 0x01, 0xfe, 0xff}, "600001feff"},
	{String(""), "70"},
	{String("baz"), "7062617a"},
	{String("a\x00b"), "70610062"},
	{Array{}, "a000"},
	{Array{String("foo")}, "a070666f6f0000"},
	{Array{Null{}, Bool(true)}, "a0102100"},
	{Array{Number(1)}, "a0423ff000000000000000"},
	{Array{Binary{0x00, 0xff}}, "a0600101feff0000"},
	{Array{String("a\x00b")}, "a070610101620000"},
	{Array{String("\x01")}, "a07001020000"},
	{Array{Array{}}, "a0a00000"},
	{Array{Undefined{}, Number(math.Inf(+1))}, "a0f04300"},
	{Undefined{}, "f0"},
}

func TestGolden(t *testing.T) {
	for _, tt := range golden {
		b, err := Encode(tt.in)
		if err != nil {
			t.Errorf("Encode(%#v): %v", tt.in, err)
			continue
		}
		if b.String() != tt.out {
			t.Errorf("Encode(%#v) = %s, want %s", tt.in, b, tt.out)
			continue
		}
		if b.Undecodable() {
			t.Errorf("Encode(%#v) is undecodable", tt.in)
		}
		v, err := Decode(b)
		if err != nil || !equalValues(v, tt.in) {
			t.Errorf("Decode(%s) = %#v, %v, want %#v, nil", tt.out, v, err, tt.in)
		}
	}
}

// equalValues reports whether a and b are the same value,
// treating nil and empty byte slices alike.
func equalValues(a, b Value) bool {
	if x, ok := a.(Binary); ok {
		y, ok := b.(Binary)
		return ok && bytes.Equal(x, y)
	}
	if x, ok := a.(Array); ok {
		y, ok := b.(Array)
		return ok && slices.EqualFunc(x, y, equalValues)
	}
	return a == b
}

// sample is in increasing order.
var sample = []Value{
	Null{},
	Bool(false),
	Bool(true),

	Number(math.Inf(-1)),
	Number(-math.MaxFloat64),
	Number(-1e300),
	Number(-4),
	Number(-1),
	Number(-0.304958230),
	Number(-math.SmallestNonzeroFloat64),
	Number(0),
	Number(math.SmallestNonzeroFloat64),
	Number(0.304958230),
	Number(1),
	Number(4),
	Number(1e300),
	Number(math.MaxFloat64),
	Number(math.Inf(+1)),

	-MaxDate,
	Date(-86400000),
	Date(-1),
	Date(0),
	Date(1),
	DateOf(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)),
	MaxDate,

	Binary{},
	Binary{0x00},
	Binary{0x00, 0x00},
	Binary{0x01},
	Binary{0x01, 0xff},
	Binary{0x02},
	Binary{0xfe},
	Binary{0xfe, 0x00},
	Binary{0xff},
	Binary{0xff, 0xff},

	String(""),
	String("\x00"),
	String("\x01"),
	String("a"),
	String("a\x00"),
	String("a\x00b"),
	String("a\x01"),
	String("ab"),
	String("b"),
	String("é"),
	String("日本"),

	Array{},
	Array{Null{}},
	Array{Number(-1)},
	Array{Number(0)},
	Array{Number(0), String("foo")},
	Array{Number(0), String("foo"), String("bar")},
	Array{Number(0), String("foo"), Array{}},
	Array{Number(0), String("foo"), Array{String("bar")}},
	Array{Number(1)},
	Array{Date(0)},
	Array{Binary{}},
	Array{Binary{0x00}},
	Array{Binary{0xfe}},
	Array{Binary{0xff}},
	Array{String("")},
	Array{String("a")},
	Array{String("a"), Null{}},
	Array{String("a"), String("")},
	Array{String("a\x00")},
	Array{String("b")},
	Array{Array{}},
	Array{Array{}, Null{}},
	Array{Array{String("x")}},
	Array{Array{Array{}}},
	Array{Undefined{}},

	Undefined{},
}

func TestSampleSorted(t *testing.T) {
	for i := 1; i < len(sample); i++ {
		if c := CompareValues(sample[i-1], sample[i]); c >= 0 {
			t.Errorf("CompareValues(%#v, %#v) = %d, want -1", sample[i-1], sample[i], c)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range sample {
		b, err := Encode(v)
		require.NoError(t, err, "Encode(%#v)", v)
		out, err := Decode(b)
		require.NoError(t, err, "Decode(%s)", b)
		assert.True(t, equalValues(out, v), "Decode(Encode(%#v)) = %#v", v, out)

		nb, err := EncodeNested(v)
		require.NoError(t, err)
		out, err = DecodeNested(nb)
		require.NoError(t, err, "DecodeNested(%s)", nb)
		assert.True(t, equalValues(out, v), "DecodeNested(EncodeNested(%#v)) = %#v", v, out)
	}
}

// Every pair of sample values round trips as an array,
// which checks the offsets of every combination of element kinds.
func TestRoundTripPairs(t *testing.T) {
	for _, v := range sample {
		for _, w := range sample {
			in := Array{v, w, Array{w, v}}
			b, err := Encode(in)
			if err != nil {
				t.Fatalf("Encode(%#v): %v", in, err)
			}
			out, err := Decode(b)
			if err != nil || !equalValues(out, in) {
				t.Fatalf("Decode(%s) = %#v, %v, want %#v", b, out, err, in)
			}
		}
	}
}

func TestNegativeZero(t *testing.T) {
	neg, err := Encode(Number(math.Copysign(0, -1)))
	require.NoError(t, err)
	pos, err := Encode(Number(0))
	require.NoError(t, err)
	assert.True(t, Equal(neg, pos))

	v, err := Decode(neg)
	require.NoError(t, err)
	assert.False(t, math.Signbit(float64(v.(Number))))
}

func TestOrdered(t *testing.T) {
	for i, v := range sample {
		ev, err := Encode(v)
		require.NoError(t, err)
		for _, w := range sample[i+1:] {
			ew, err := Encode(w)
			require.NoError(t, err)
			if Compare(ev, ew) >= 0 {
				t.Errorf("order inversion: %#v < %#v but\nEncode(%#v) = %s\nEncode(%#v) = %s", v, w, v, ev, w, ew)
			}
		}
	}
}

func TestShuffledSort(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	shuffled := slices.Clone(sample)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	want := slices.Clone(shuffled)
	slices.SortFunc(want, CompareValues)

	var bufs []Buffer
	for _, v := range shuffled {
		b, err := Encode(v)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}
	slices.SortFunc(bufs, Compare)

	got := make([]Value, len(bufs))
	for i, b := range bufs {
		v, err := Decode(b)
		require.NoError(t, err)
		got[i] = v
	}
	assert.True(t, slices.EqualFunc(got, want, equalValues), "got %#v\nwant %#v", got, want)
}

func TestSignInversion(t *testing.T) {
	nums := []Number{-4, -0.304958230, 0, 0.304958230, 4}
	for i := 1; i < len(nums); i++ {
		a, err := Encode(nums[i-1])
		require.NoError(t, err)
		b, err := Encode(nums[i])
		require.NoError(t, err)
		assert.Equal(t, -1, Compare(a, b), "Encode(%v) = %s, Encode(%v) = %s", nums[i-1], a, nums[i], b)
	}
}

func TestListPrefixOrdering(t *testing.T) {
	lists := []Array{
		{Number(0), String("foo")},
		{Number(0), String("foo"), String("bar")},
		{Number(0), String("foo"), Array{}},
		{Number(0), String("foo"), Array{String("bar")}},
	}
	for i := 1; i < len(lists); i++ {
		a, err := Encode(lists[i-1])
		require.NoError(t, err)
		b, err := Encode(lists[i])
		require.NoError(t, err)
		assert.Equal(t, -1, Compare(a, b), "Encode(%#v) = %s, Encode(%#v) = %s", lists[i-1], a, lists[i], b)
	}
}

func TestEncodeErrors(t *testing.T) {
	cyclic := Array{Null{}, nil}
	cyclic[1] = cyclic

	tests := []struct {
		in   Value
		want error
	}{
		{nil, ErrInvalidValue},
		{Number(math.NaN()), ErrInvalidValue},
		{Date(MaxDate + 1), ErrInvalidValue},
		{-MaxDate - 1, ErrInvalidValue},
		{String("\xff"), ErrInvalidValue},
		{Array{Number(0), Number(math.NaN())}, ErrInvalidValue},
		{Object{}, ErrUnsupportedSort},
		{Object{"a": Number(1)}, ErrUnsupportedSort},
		{Array{Object{}}, ErrUnsupportedSort},
		{cyclic, ErrCyclicValue},
		{Array{Array{cyclic}}, ErrCyclicValue},
	}
	for _, tt := range tests {
		_, err := Encode(tt.in)
		assert.ErrorIs(t, err, tt.want, "Encode(%T)", tt.in)
	}
}

func TestSharedElementsAreNotCycles(t *testing.T) {
	x := Array{String("x")}
	b, err := Encode(Array{x, x, Array{x}})
	require.NoError(t, err)
	assert.Equal(t, "a0a070780000a070780000a0a0707800000000", b.String())

	// A shorter slice of an enclosing array is a different array.
	a := Array{String("x"), nil}
	a[1] = a[:1]
	b, err = Encode(a)
	require.NoError(t, err)
	assert.Equal(t, "a0707800a07078000000", b.String())
	v, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Array{String("x"), Array{String("x")}}, v)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrInvalidEncoding},
		{"05", ErrInvalidEncoding},
		{"00", ErrInvalidEncoding},
		{"ff", ErrInvalidEncoding},
		{"1000", ErrInvalidEncoding},
		{"42", ErrInvalidEncoding},
		{"4200", ErrInvalidEncoding},
		{"42000000000000000000", ErrInvalidEncoding},
		{"42fff8000000000000", ErrInvalidEncoding},
		{"41ffffffffffffffff", ErrInvalidEncoding},
		{"523fe0000000000000", ErrInvalidEncoding},
		{"70ff", ErrInvalidEncoding},
		{"a00000", ErrInvalidEncoding},
		{"a0700103000000", ErrInvalidEncoding},
		{"a06001", ErrTruncatedEncoding},
		{"a0", ErrTruncatedEncoding},
		{"a07061", ErrTruncatedEncoding},
		{"a0423ff0", ErrTruncatedEncoding},
		{"a0a000", ErrTruncatedEncoding},
		{"a07061007062", ErrTruncatedEncoding},
		{"a07061006a", ErrInvalidEncoding},
		{"b0", ErrUnsupportedSort},
		{"a0b000", ErrUnsupportedSort},
	}
	for _, tt := range tests {
		b, err := hex.DecodeString(tt.in)
		require.NoError(t, err)
		_, err = DecodeBytes(b)
		assert.ErrorIs(t, err, tt.want, "DecodeBytes(%s)", tt.in)
	}
}

func TestDepthLimit(t *testing.T) {
	e := &Encoding{MaxDepth: 3}
	ok := Array{Array{Array{}}}
	b, err := e.Encode(ok)
	require.NoError(t, err)
	v, err := e.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, ok, v)

	deep := Array{ok}
	_, err = e.Encode(deep)
	assert.ErrorIs(t, err, ErrTooDeep)

	b, err = Encode(deep)
	require.NoError(t, err)
	_, err = e.Decode(b)
	assert.ErrorIs(t, err, ErrTooDeep)

	// Adversarial input: many opening tags with no closing bytes.
	_, err = DecodeBytes(bytes.Repeat([]byte{0xa0}, 100000))
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestHooks(t *testing.T) {
	calls := 0
	e := &Encoding{
		PostEncode: func(b []byte) []byte {
			calls++
			return b
		},
		PostDecode: func(v Value) Value {
			if s, ok := v.(String); ok {
				return String(strings.ToUpper(string(s)))
			}
			return v
		},
	}
	b, err := e.Encode(Array{String("a"), String("b")})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	b, err = e.Encode(String("abc"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	v, err := e.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, String("ABC"), v)
}

func TestText(t *testing.T) {
	s, err := EncodeToString(String("baz"))
	require.NoError(t, err)
	assert.Equal(t, "7062617a", s)
	v, err := DecodeString(s)
	require.NoError(t, err)
	assert.Equal(t, String("baz"), v)

	_, err = DecodeString("zz")
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	e := &Encoding{Text: base64.RawURLEncoding}
	in := Array{String("foo"), Number(-1), Binary{0xff}}
	s, err = e.EncodeToString(in)
	require.NoError(t, err)
	b, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(b.Bytes()), s)
	v, err = e.DecodeString(s)
	require.NoError(t, err)
	assert.True(t, equalValues(in, v))
}

func TestEqual(t *testing.T) {
	a, err := Encode(String("baz"))
	require.NoError(t, err)
	lo, err := Encode(StringSort.Lower(String("baz")))
	require.NoError(t, err)
	assert.True(t, Equal(a, lo))
	assert.True(t, lo.Undecodable())
	assert.False(t, a.Undecodable())
	assert.Equal(t, 0, Compare(a, lo))
	assert.False(t, Equal(a, BufferOf([]byte("pbaz!"))))
	assert.True(t, Equal(a, BufferOf([]byte("pbaz"))))
}
