// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// TypedCache stores JSON-encoded values of type T in a Cache.
type TypedCache[T any] struct {
	cache Cache
	ttl   time.Duration
}

// NewTypedCache wraps c. A zero ttl uses the backend default.
func NewTypedCache[T any](c Cache, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, ttl: ttl}
}

// Get returns the decoded value. A miss returns ErrCacheMiss; an entry that
// no longer decodes is dropped and reported as a miss.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		_ = c.cache.Delete(ctx, key)
		return nil, ErrCacheMiss
	}
	return value, nil
}

// Set encodes value and stores it.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// GetOrSet returns the cached value or computes and stores it. A failed
// cache read or write is reported through onCacheErr and never fails the call.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error), onCacheErr func(error)) (*T, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) && onCacheErr != nil {
		onCacheErr(err)
	}

	value, err = fn()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value); err != nil && onCacheErr != nil {
		onCacheErr(err)
	}
	return value, nil
}

// InvalidatePrefix removes every entry under prefix.
func (c *TypedCache[T]) InvalidatePrefix(ctx context.Context, prefix string) error {
	return c.cache.DeleteByPrefix(ctx, prefix)
}
