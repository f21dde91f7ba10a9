// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kv

import (
	"bytes"
	"context"
	"slices"
	"sync"
)

// A MemStore is an in-memory [Store].
// It is safe for concurrent use.
// The zero value is an empty store ready to use.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry // sorted by Key
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return new(MemStore)
}

func (m *MemStore) search(key []byte) (int, bool) {
	return slices.BinarySearchFunc(m.entries, key, func(e Entry, k []byte) int {
		return bytes.Compare(e.Key, k)
	})
}

func (m *MemStore) Set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := Entry{Key: bytes.Clone(key), Value: bytes.Clone(value)}
	if e.Value == nil {
		e.Value = []byte{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.search(key)
	if ok {
		m.entries[i].Value = e.Value
		return nil
	}
	m.entries = slices.Insert(m.entries, i, e)
	return nil
}

func (m *MemStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.search(key)
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(m.entries[i].Value), nil
}

func (m *MemStore) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.search(key); ok {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
	return nil
}

// Range scans a snapshot taken when it starts,
// so fn may modify the store.
func (m *MemStore) Range(ctx context.Context, lo, hi []byte, fn func(Entry) error) error {
	m.mu.RLock()
	i := 0
	if lo != nil {
		i, _ = m.search(lo)
	}
	j := len(m.entries)
	if hi != nil {
		j, _ = m.search(hi)
	}
	var snap []Entry
	if i < j {
		snap = slices.Clone(m.entries[i:j])
	}
	m.mu.RUnlock()

	for _, e := range snap {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(Entry{Key: bytes.Clone(e.Key), Value: bytes.Clone(e.Value)}); err != nil {
			return stopped(err)
		}
	}
	return nil
}

// Len returns the number of entries.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
