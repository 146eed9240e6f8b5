// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation implements search, export and mutation of translation
// keys on top of the store package.
package translation

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/tms-go/internal/cache"
	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/store"
)

// Repository is the engine surface used by transport layers.
type Repository interface {
	Search(ctx context.Context, f Filter) (model.Page[model.TranslationKey], error)
	Find(ctx context.Context, id int64) (*model.TranslationKey, error)
	Export(ctx context.Context, f ExportFilter) (*model.ExportMap, error)
	Stream(ctx context.Context, f ExportFilter) (*Cursor, error)
	Create(ctx context.Context, in CreateInput) (*model.TranslationKey, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*model.TranslationKey, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Options configures a Service.
type Options struct {
	// Cache stores full export results. Nil disables export caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	// ChunkSize is the streaming export fetch size (0 = DefaultChunkSize).
	ChunkSize int

	Logger *slog.Logger
}

// Service implements Repository against a store.Store.
type Service struct {
	store     *store.Store
	exports   *cache.TypedCache[model.ExportMap]
	chunkSize int
	exportGen atomic.Uint64 // bumped by every committed write
	logger    *slog.Logger
	now       func() time.Time
}

var _ Repository = (*Service)(nil)

// NewService creates the engine.
func NewService(s *store.Store, opts Options) *Service {
	svc := &Service{
		store:     s,
		chunkSize: opts.ChunkSize,
		logger:    opts.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if svc.chunkSize <= 0 {
		svc.chunkSize = DefaultChunkSize
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if opts.Cache != nil {
		svc.exports = cache.NewTypedCache[model.ExportMap](opts.Cache, opts.CacheTTL)
	}
	return svc
}

// Find returns one key with all of its tags and translations.
func (s *Service) Find(ctx context.Context, id int64) (*model.TranslationKey, error) {
	const op = "translation.Find"

	key, err := s.store.GetTranslationKey(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError(op, "translation key %d not found", id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "loading translation key failed", "key_id", id, "error", err)
		return nil, queryError(op, err)
	}

	items, err := s.expand(ctx, []store.TranslationKey{key}, store.ListTranslationsParams{})
	if err != nil {
		s.logger.ErrorContext(ctx, "loading key relations failed", "key_id", id, "error", err)
		return nil, queryError(op, err)
	}
	return &items[0], nil
}

// expand loads tags and translations for exactly the given keys, keeping
// their order. params.KeyIDs is filled in from keys.
func (s *Service) expand(ctx context.Context, keys []store.TranslationKey, params store.ListTranslationsParams) ([]model.TranslationKey, error) {
	if len(keys) == 0 {
		return []model.TranslationKey{}, nil
	}

	params.KeyIDs = make([]int64, len(keys))
	for i, k := range keys {
		params.KeyIDs[i] = k.ID
	}

	var (
		tags         []store.KeyTag
		translations []store.TranslationWithLocale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = s.store.ListTagsForKeys(gctx, params.KeyIDs)
		return err
	})
	g.Go(func() error {
		var err error
		translations, err = s.store.ListTranslationsForKeys(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]model.TranslationKey, len(keys))
	byID := make(map[int64]*model.TranslationKey, len(keys))
	for i, k := range keys {
		items[i] = toModelKey(k)
		byID[k.ID] = &items[i]
	}
	for _, kt := range tags {
		if item, ok := byID[kt.TranslationKeyID]; ok {
			item.Tags = append(item.Tags, model.Tag{ID: kt.Tag.ID, Name: kt.Tag.Name})
		}
	}
	for _, t := range translations {
		if item, ok := byID[t.TranslationKeyID]; ok {
			item.Translations = append(item.Translations, toModelTranslation(t))
		}
	}
	return items, nil
}

func toModelKey(k store.TranslationKey) model.TranslationKey {
	item := model.TranslationKey{
		ID:           k.ID,
		KeyName:      k.KeyName,
		Tags:         []model.Tag{},
		Translations: []model.Translation{},
	}
	if k.Description.Valid {
		desc := k.Description.String
		item.Description = &desc
	}
	return item
}

func toModelTranslation(t store.TranslationWithLocale) model.Translation {
	return model.Translation{
		ID:        t.ID,
		Value:     t.Value,
		Status:    model.TranslationStatus(t.Status),
		UpdatedAt: t.UpdatedAt,
		Locale: model.Locale{
			ID:   t.Locale.ID,
			Code: t.Locale.Code,
			Name: t.Locale.Name,
		},
	}
}

// Collect drains a streaming export into an ordered map.
func Collect(seq iter.Seq2[model.Pair, error]) (*model.ExportMap, error) {
	m := model.NewExportMap(0)
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		m.Set(p.Key, p.Value)
	}
	return m, nil
}
