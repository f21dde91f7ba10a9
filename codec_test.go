// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reserved = []byte{0x00, 0x01, 0xfe, 0xff}

func randomBytes(r *rand.Rand) []byte {
	b := make([]byte, r.Intn(32))
	for i := range b {
		if r.Intn(2) == 0 {
			b[i] = reserved[r.Intn(len(reserved))]
		} else {
			b[i] = byte(r.Intn(256))
		}
	}
	return b
}

func TestEscapeBijection(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		b := randomBytes(r)

		esc := Escape(b)
		assert.NotContains(t, esc, byte(0x00))
		assert.NotContains(t, esc, byte(0xff))
		out, err := Unescape(esc)
		require.NoError(t, err)
		if !bytes.Equal(out, b) {
			t.Fatalf("Unescape(Escape(%x)) = %x", b, out)
		}

		low := escape(b, false)
		assert.NotContains(t, low, byte(0x00))
		out, err = unescape(low, false)
		require.NoError(t, err)
		if !bytes.Equal(out, b) {
			t.Fatalf("unescape(escape(%x, false)) = %x", b, out)
		}
	}
}

// Terminated escapes order the same way as the raw bytes,
// which is what keeps nested binary values ordered.
func TestEscapeOrder(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		a, b := randomBytes(r), randomBytes(r)
		ea := append(Escape(a), listEnd)
		eb := append(Escape(b), listEnd)
		if got, want := bytes.Compare(ea, eb), bytes.Compare(a, b); got != want {
			t.Fatalf("Compare(Escape(%x), Escape(%x)) = %d, want %d", a, b, got, want)
		}
	}
}

func FuzzEscape(f *testing.F) {
	for _, seed := range [][]byte{{}, reserved, []byte("hello"), {0x01, 0x01, 0xfe, 0xfe}} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, b []byte) {
		out, err := Unescape(Escape(b))
		if err != nil || !bytes.Equal(out, b) {
			t.Fatalf("Unescape(Escape(%x)) = %x, %v", b, out, err)
		}
		// Arbitrary input must not panic.
		_, _ = Unescape(b)
		_, _ = unescape(b, false)
	})
}

func TestUnescapeErrors(t *testing.T) {
	for _, b := range [][]byte{
		{0x00},
		{0x61, 0x00, 0x62},
		{0x01},
		{0x01, 0x00},
		{0x01, 0x03},
		{0xfe},
		{0xfe, 0xfd},
		{0xff},
	} {
		_, err := Unescape(b)
		assert.ErrorIs(t, err, ErrInvalidEncoding, "Unescape(%x)", b)
	}

	// Strings never contain the high pair, so the low-only form passes it through.
	out, err := unescape([]byte{0xfe, 0xff}, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff}, out)
}

func TestFloatCodec(t *testing.T) {
	b, err := floatCodec{neg: true}.Encode(Number(-2))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, b)
	v, err := floatCodec{neg: true}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Number(-2), v)

	b, err = floatCodec{date: true}.Encode(Date(1700000000000))
	require.NoError(t, err)
	v, err = floatCodec{date: true}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Date(1700000000000), v)

	_, err = floatCodec{}.Encode(String("x"))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = floatCodec{}.Decode(make([]byte, 7))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.Equal(t, 8, floatCodec{}.Len())
}

func TestCodecTypeMismatch(t *testing.T) {
	_, err := utf8Codec{}.Encode(Binary("x"))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = bytesCodec{}.Encode(String("x"))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestBinaryDecodeCopies(t *testing.T) {
	enc := []byte{0x60, 0x01, 0x02}
	v, err := DecodeBytes(enc)
	require.NoError(t, err)
	enc[1] = 0xee
	assert.Equal(t, Binary{0x01, 0x02}, v)
}
