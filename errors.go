// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import "github.com/pkg/errors"

// Errors returned by encoding and decoding.
// Returned errors wrap one of these with context;
// use errors.Is to test for them.
var (
	// ErrInvalidValue reports a value that cannot be ordered,
	// such as NaN, an out-of-range date or a string that is not UTF-8.
	ErrInvalidValue = errors.New("bytewise: invalid value")

	// ErrUnsupportedSort reports a value with no encoding, such as an Object.
	ErrUnsupportedSort = errors.New("bytewise: unsupported sort")

	// ErrDuplicatePrefix reports two different sorts sharing a tag byte.
	ErrDuplicatePrefix = errors.New("bytewise: duplicate prefix")

	// ErrInvalidEncoding reports malformed encoded data.
	ErrInvalidEncoding = errors.New("bytewise: invalid encoding")

	// ErrTruncatedEncoding reports encoded data that ends inside a value.
	ErrTruncatedEncoding = errors.New("bytewise: truncated encoding")

	// ErrUndecodable reports an attempt to decode a bound.
	ErrUndecodable = errors.New("bytewise: undecodable buffer")

	// ErrTooDeep reports arrays nested more deeply than the Encoding allows.
	ErrTooDeep = errors.New("bytewise: nesting too deep")

	// ErrCyclicValue reports an array that contains itself.
	ErrCyclicValue = errors.New("bytewise: cyclic value")
)
