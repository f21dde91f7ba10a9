// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kv stores values under bytewise-encoded keys
// in ordered key-value stores.
//
// A [Store] holds raw byte keys and scans them in [bytes.Compare] order.
// [MemStore] keeps them in process; [RedisStore] keeps them in a Redis
// sorted set, whose lexicographic range commands use the same order.
// A [Table] layers typed keys and values over any Store.
package kv

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Get when the key is not in the store.
	ErrNotFound = errors.New("kv: not found")

	// ErrStop may be returned by a scan callback to end the scan early.
	// The scan itself then returns nil.
	ErrStop = errors.New("kv: stop")

	// ErrUndecodableKey is returned when a key holds a bound.
	ErrUndecodableKey = errors.New("kv: key holds a bound")
)

// An Entry is a key and its value.
type Entry struct {
	Key   []byte
	Value []byte
}

// A Store is an ordered byte-keyed store.
type Store interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value []byte) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Range calls fn for each entry with lo <= key < hi,
	// in increasing key order. A nil lo or hi leaves that side open.
	// If fn returns ErrStop, Range stops and returns nil;
	// any other error stops Range and is returned.
	Range(ctx context.Context, lo, hi []byte, fn func(Entry) error) error
}

// stopped maps ErrStop to nil.
func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
