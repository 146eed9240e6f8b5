// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedCache_SetGet(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	c := NewTypedCache[testItem](mc, time.Minute)
	ctx := context.Background()

	if _, err := c.Get(ctx, "item"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	if err := c.Set(ctx, "item", &testItem{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "item")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestTypedCache_CorruptEntryIsMiss(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	c := NewTypedCache[testItem](mc, time.Minute)
	ctx := context.Background()

	_ = mc.Set(ctx, "item", []byte("{not json"), 0)

	if _, err := c.Get(ctx, "item"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss for corrupt entry, got %v", err)
	}
	if has, _ := mc.Has(ctx, "item"); has {
		t.Error("corrupt entry not dropped")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	c := NewTypedCache[testItem](mc, time.Minute)
	ctx := context.Background()

	calls := 0
	fn := func() (*testItem, error) {
		calls++
		return &testItem{Name: "computed"}, nil
	}

	for range 3 {
		got, err := c.GetOrSet(ctx, "item", fn, nil)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if got.Name != "computed" {
			t.Errorf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestTypedCache_GetOrSet_ErrorNotCached(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	c := NewTypedCache[testItem](mc, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := c.GetOrSet(ctx, "item", func() (*testItem, error) { return nil, boom }, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if mc.Len() != 0 {
		t.Error("failed computation was cached")
	}
}

func TestTypedCache_GetOrSet_ReportsCacheErrors(t *testing.T) {
	mc := newTestMemoryCache(0)
	_ = mc.Close()
	c := NewTypedCache[testItem](mc, time.Minute)

	var reported []error
	got, err := c.GetOrSet(context.Background(), "item",
		func() (*testItem, error) { return &testItem{Name: "x"}, nil },
		func(err error) { reported = append(reported, err) })
	if err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if got.Name != "x" {
		t.Errorf("got %+v", got)
	}
	if len(reported) != 2 {
		t.Errorf("reported %d cache errors, want 2", len(reported))
	}
}

func TestTypedCache_InvalidatePrefix(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	c := NewTypedCache[testItem](mc, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "export:en", &testItem{})
	_ = c.Set(ctx, "keep", &testItem{})

	if err := c.InvalidatePrefix(ctx, "export:"); err != nil {
		t.Fatalf("InvalidatePrefix failed: %v", err)
	}
	if mc.Len() != 1 {
		t.Errorf("Len = %d, want 1", mc.Len())
	}
}
