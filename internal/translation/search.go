// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/store"
)

// Search returns one page of distinct keys matching f, ordered by id. Tags
// and translations are loaded for the page rows only; translations are
// narrowed to the filter's locale and keyword when those are set.
func (s *Service) Search(ctx context.Context, f Filter) (model.Page[model.TranslationKey], error) {
	const op = "translation.Search"

	f, err := f.Normalize()
	if err != nil {
		return model.Page[model.TranslationKey]{}, err
	}

	kf, ok := s.keyFilter(f)
	if !ok {
		// Free text without a single searchable token matches nothing.
		return model.NewPage[model.TranslationKey](nil, f.Page, f.PerPage, 0), nil
	}

	s.logger.DebugContext(ctx, "searching translation keys",
		"keyword", f.Keyword, "key", f.KeyPrefix, "locale", f.Locale, "tags", f.Tags,
		"page", f.Page, "per_page", f.PerPage)

	// Count and page run as two statements without a shared snapshot; a
	// write landing between them is absorbed by reconcileTotal.
	var (
		total int64
		keys  []store.TranslationKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.store.CountKeys(gctx, kf)
		return err
	})
	g.Go(func() error {
		var err error
		keys, err = s.store.SearchKeys(gctx, kf, f.PerPage, f.Offset())
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "translation search failed", "error", err)
		return model.Page[model.TranslationKey]{}, queryError(op, err)
	}

	items, err := s.expand(ctx, keys, store.ListTranslationsParams{
		LocaleCode: kf.LocaleCode,
		Match:      kf.ValueMatch,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "loading search relations failed", "error", err)
		return model.Page[model.TranslationKey]{}, queryError(op, err)
	}

	total = reconcileTotal(total, f.Offset(), f.PerPage, len(keys))
	return model.NewPage(items, f.Page, f.PerPage, total), nil
}

// reconcileTotal keeps a counted total consistent with the page that was
// actually read. A short page is the last one, so it fixes the total; a
// full page proves at least offset+n rows exist.
func reconcileTotal(total int64, offset, perPage, n int) int64 {
	seen := int64(offset + n)
	switch {
	case n > 0 && n < perPage:
		return seen
	case n == 0 && offset == 0:
		return 0
	case n == 0:
		return min(total, int64(offset))
	default:
		return max(total, seen)
	}
}

// keyFilter converts f into store criteria. It reports false when a
// free-text field was given but contains nothing searchable.
func (s *Service) keyFilter(f Filter) (store.KeyFilter, bool) {
	d := s.store.Dialect()
	kf := store.KeyFilter{LocaleCode: f.Locale, Tags: f.Tags}

	if f.Keyword != "" {
		kf.ValueMatch = d.FullTextQuery(f.Keyword)
		if kf.ValueMatch == "" {
			return kf, false
		}
	}
	if f.KeyPrefix != "" {
		kf.KeyMatch = d.FullTextQuery(f.KeyPrefix)
		if kf.KeyMatch == "" {
			return kf, false
		}
	}
	return kf, true
}
