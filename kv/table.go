// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kv

import (
	"context"

	"github.com/pkg/errors"
	"rsc.io/bytewise"
)

// Options configures a [Table].
type Options struct {
	// Encoding encodes keys. The default is bytewise.StdEncoding.
	Encoding *bytewise.Encoding

	// Codec serializes values. The default is MsgPack.
	Codec Codec

	Logger Logger
}

// A Table stores Go values under bytewise keys.
// Keys order by value: numbers numerically, dates chronologically,
// arrays element by element.
type Table struct {
	store Store
	enc   *bytewise.Encoding
	codec Codec
	log   Logger
}

// NewTable returns a Table over s.
func NewTable(s Store, opts Options) *Table {
	if opts.Encoding == nil {
		opts.Encoding = bytewise.StdEncoding
	}
	if opts.Codec == nil {
		opts.Codec = MsgPack{}
	}
	return &Table{store: s, enc: opts.Encoding, codec: opts.Codec, log: loggerOr(opts.Logger)}
}

// Store returns the underlying store.
func (t *Table) Store() Store { return t.store }

// key encodes k for storage. Bounds cannot be stored.
func (t *Table) key(k bytewise.Value) ([]byte, error) {
	b, err := t.enc.Encode(k)
	if err != nil {
		return nil, errors.WithMessage(err, "kv: key")
	}
	if b.Undecodable() {
		return nil, errors.Wrapf(ErrUndecodableKey, "key %s", b)
	}
	return b.Bytes(), nil
}

// bound encodes a scan limit. A nil limit is open.
func (t *Table) bound(k bytewise.Value) ([]byte, error) {
	if k == nil {
		return nil, nil
	}
	b, err := t.enc.Encode(k)
	if err != nil {
		return nil, errors.WithMessage(err, "kv: scan limit")
	}
	return b.Bytes(), nil
}

// Put stores v under key.
func (t *Table) Put(ctx context.Context, key bytewise.Value, v any) error {
	k, err := t.key(key)
	if err != nil {
		return err
	}
	data, err := t.codec.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "kv: %s marshal", t.codec.Name())
	}
	return t.store.Set(ctx, k, data)
}

// Get decodes the value stored under key into dst.
// It returns an error wrapping ErrNotFound if there is none.
func (t *Table) Get(ctx context.Context, key bytewise.Value, dst any) error {
	k, err := t.key(key)
	if err != nil {
		return err
	}
	data, err := t.store.Get(ctx, k)
	if err != nil {
		return errors.WithMessagef(err, "kv: get %x", k)
	}
	if err := t.codec.Unmarshal(data, dst); err != nil {
		return errors.Wrapf(err, "kv: %s unmarshal", t.codec.Name())
	}
	return nil
}

// Delete removes key.
func (t *Table) Delete(ctx context.Context, key bytewise.Value) error {
	k, err := t.key(key)
	if err != nil {
		return err
	}
	return t.store.Delete(ctx, k)
}

// An Item is one entry visited by a scan.
type Item struct {
	key   bytewise.Value
	data  []byte
	codec Codec
}

// Key returns the decoded key.
func (it Item) Key() bytewise.Value { return it.key }

// Scan decodes the value into dst.
func (it Item) Scan(dst any) error {
	if err := it.codec.Unmarshal(it.data, dst); err != nil {
		return errors.Wrapf(err, "kv: %s unmarshal", it.codec.Name())
	}
	return nil
}

// Scan calls fn for each item with lo <= key < hi, in key order.
// The limits may be bounds such as bytewise.Upper() or
// bytewise.StringSort.Lower(nil); a nil limit is open.
// If fn returns ErrStop, Scan stops and returns nil.
func (t *Table) Scan(ctx context.Context, lo, hi bytewise.Value, fn func(Item) error) error {
	l, err := t.bound(lo)
	if err != nil {
		return err
	}
	h, err := t.bound(hi)
	if err != nil {
		return err
	}
	t.log.Debug("kv: scan", "lo", l, "hi", h)
	err = t.store.Range(ctx, l, h, func(e Entry) error {
		k, err := t.enc.DecodeBytes(e.Key)
		if err != nil {
			t.log.Error("kv: undecodable stored key", "key", e.Key, "err", err)
			return errors.WithMessagef(err, "kv: stored key %x", e.Key)
		}
		return fn(Item{key: k, data: e.Value, codec: t.codec})
	})
	return stopped(err)
}

// ScanPrefix calls fn for each item whose key is an array
// beginning with the elements of prefix, in key order.
func (t *Table) ScanPrefix(ctx context.Context, prefix bytewise.Array, fn func(Item) error) error {
	if prefix == nil {
		prefix = bytewise.Array{}
	}
	return t.Scan(ctx, bytewise.ArraySort.Lower(prefix), bytewise.ArraySort.Upper(prefix), fn)
}
