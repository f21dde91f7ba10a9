// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytewise

import "bytes"

// Compare returns -1, 0 or +1 depending on whether the encoding a orders
// before, with or after b. A prefix orders before any longer encoding.
func Compare(a, b Buffer) int {
	return bytes.Compare(a.b, b.b)
}

// Equal reports whether a and b hold the same bytes.
// The undecodable flag is not compared.
func Equal(a, b Buffer) bool {
	return bytes.Equal(a.b, b.b)
}
