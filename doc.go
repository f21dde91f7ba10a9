// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bytewise defines an order-preserving binary encoding of a small
dynamically typed value domain: undefined, null, booleans, numbers, dates,
binary blobs, UTF-8 strings and heterogeneous arrays of those.

[Encode] converts a [Value] to a [Buffer];
[Decode] converts a [Buffer] back to a [Value].
[DecodeBytes] and [DecodeString] accept raw bytes or their textual form.

Define the notation E(x) to mean the encoding of the value x.
The encoding has a few important properties:

  - Typed: The sort of a value is part of its encoding,
    so decoding needs no schema.

  - Unique: There is only one encoding for a given value.
    (The one exception is -0, which encodes as 0.)

  - Ordered: for any two values A, B,
    bytes.Compare(E(A), E(B)) == CompareValues(A, B),
    including values of different sorts.

  - Prefix-Preserving: an array sorts before every longer array
    sharing its elements as a prefix:
    E([A₁, ..., Aₘ]) < E([A₁, ..., Aₘ, ..., Aₙ]).

These properties make the encodings usable directly as keys in an ordered
key/value store such as Bolt, LevelDB, Pebble or a Redis sorted set,
and make prefix and range scans over those keys meaningful.
Package [rsc.io/bytewise/kv] does exactly that.

# Sort Order

Values of different sorts are ordered as follows:

	null < false < true < number < date < binary < string < array < undefined

Numbers order numerically, from -Infinity to +Infinity.
Dates order chronologically.
Binary values and strings order by [bytes.Compare] of their bytes.
Arrays order element by element, shorter before longer.
[Object] has a reserved tag but no encoding; encoding one fails with
[ErrUnsupportedSort].

# Encodings

Every encoding starts with a tag byte identifying the sort.
The tags and their payloads are:

  - 0x10 null, 0x20 false, 0x21 true, 0xF0 undefined:
    the tag alone.

  - 0x40 -Infinity and 0x43 +Infinity: the tag alone.

  - 0x41 negative number, 0x42 non-negative number: the tag followed by
    the big-endian IEEE 754 bits of the absolute value.
    For negative numbers every payload byte is inverted,
    so that larger magnitudes order first.
    For example, E(1) is "\x42\x3f\xf0\x00\x00\x00\x00\x00\x00"
    and E(-1) is "\x41\xc0\x0f\xff\xff\xff\xff\xff\xff".

  - 0x51 date before the epoch, 0x52 date at or after the epoch:
    the number encoding of the millisecond timestamp.

  - 0x60 binary: the tag followed by the raw bytes.

  - 0x70 string: the tag followed by the UTF-8 bytes.

  - 0xA0 array: the tag, the nested encoding of each element,
    and a closing 0x00 byte.

  - 0xB0 object: reserved.

# Nested Encodings

Binary and string payloads are not self-delimiting, so inside an array
they are escaped and followed by a 0x00 terminator.
Escaping replaces 0x00 with 0x01 0x01 and 0x01 with 0x01 0x02,
keeping the terminator smaller than any payload byte.
Binary payloads additionally replace 0xFE with 0xFE 0xFE and 0xFF with
0xFE 0xFF, so that 0xFF never appears inside them;
valid UTF-8 never contains 0xFE or 0xFF, so strings skip that step.
Numbers and dates have fixed-size payloads and nested arrays carry their
own closing byte, so neither needs a terminator.

For example, E(["foo"]) is "\xa0\x70foo\x00\x00".

# Bounds

[Lower] and [Upper] return the absolute bounds, which encode as the single
bytes 0x00 and 0xFF and so order before and after every other encoding.
[Sort.Lower] and [Sort.Upper] return bounds for a sort: with a nil prefix
they span every value of the sort, and with a string, binary or array prefix
they span every value that starts with the prefix.
For a string or binary prefix, the lower bound is the prefix encoding itself
and the upper bound appends 0xFF.
For an array prefix, the closing 0x00 byte is dropped,
and the upper bound puts 0xFF in its place.

Bounds may appear as array elements, which is how range scans within a
composite key are expressed:

	lo := bytewise.Array{bytewise.String("user"), bytewise.Lower()}
	hi := bytewise.Array{bytewise.String("user"), bytewise.Upper()}

A [Buffer] holding a bound, or an array containing one, is marked
undecodable, and [Decode] rejects it with [ErrUndecodable].

# Compatibility

Because the encodings are expected to be used as keys in storage systems,
existing encodings will not change in future versions.
*/
package bytewise
