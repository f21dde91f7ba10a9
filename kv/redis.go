// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultPageSize is the number of keys a RedisStore fetches per
// round trip while scanning.
const DefaultPageSize = 256

// RedisOptions configures a [RedisStore].
type RedisOptions struct {
	Client redis.UniversalClient

	// Key names the store. Keys live in the sorted set Key+":keys"
	// and values in the hash Key+":values". The default is "bytewise".
	Key string

	// PageSize is the scan batch size. The default is DefaultPageSize.
	PageSize int64

	Logger Logger
}

// A RedisStore is a [Store] in Redis.
//
// Every key is a member of one sorted set with score 0,
// so ZRANGEBYLEX returns keys in bytes.Compare order.
// Values are kept in a hash under the same member names.
type RedisStore struct {
	client redis.UniversalClient
	keys   string
	values string
	page   int64
	log    Logger
}

// NewRedisStore returns a RedisStore using opts.
func NewRedisStore(opts RedisOptions) *RedisStore {
	if opts.Key == "" {
		opts.Key = "bytewise"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &RedisStore{
		client: opts.Client,
		keys:   opts.Key + ":keys",
		values: opts.Key + ":values",
		page:   opts.PageSize,
		log:    loggerOr(opts.Logger),
	}
}

func (s *RedisStore) Set(ctx context.Context, key, value []byte) error {
	k := string(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.keys, redis.Z{Score: 0, Member: k})
		pipe.HSet(ctx, s.values, k, value)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "kv: redis set %x", key)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	b, err := s.client.HGet(ctx, s.values, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "kv: redis get %x", key)
	}
	return b, nil
}

func (s *RedisStore) Delete(ctx context.Context, key []byte) error {
	k := string(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.keys, k)
		pipe.HDel(ctx, s.values, k)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "kv: redis delete %x", key)
	}
	return nil
}

// Range fetches keys a page at a time, resuming each page
// just after the last key of the one before.
func (s *RedisStore) Range(ctx context.Context, lo, hi []byte, fn func(Entry) error) error {
	from, to := "-", "+"
	if lo != nil {
		from = "[" + string(lo)
	}
	if hi != nil {
		to = "(" + string(hi)
	}
	for {
		keys, err := s.client.ZRangeByLex(ctx, s.keys, &redis.ZRangeBy{
			Min:   from,
			Max:   to,
			Count: s.page,
		}).Result()
		if err != nil {
			return errors.Wrap(err, "kv: redis range")
		}
		s.log.Debug("kv: redis range page", "store", s.keys, "keys", len(keys))
		if len(keys) == 0 {
			return nil
		}
		vals, err := s.client.HMGet(ctx, s.values, keys...).Result()
		if err != nil {
			return errors.Wrap(err, "kv: redis range values")
		}
		for i, k := range keys {
			v, ok := vals[i].(string)
			if !ok {
				// Deleted between the two reads.
				s.log.Warn("kv: redis key without value", "store", s.keys, "key", []byte(k))
				continue
			}
			if err := fn(Entry{Key: []byte(k), Value: []byte(v)}); err != nil {
				return stopped(err)
			}
		}
		if int64(len(keys)) < s.page {
			return nil
		}
		from = "(" + keys[len(keys)-1]
	}
}
