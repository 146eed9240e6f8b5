// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/store"
)

// DefaultChunkSize is the number of rows fetched per streaming round trip.
const DefaultChunkSize = 1000

const exportCachePrefix = "export:"

// Export returns every (key_name, value) pair of the locale, in key id
// order, restricted to keys carrying any of f.Tags. An unknown locale is
// NotFound; a known locale without matches yields an empty map.
func (s *Service) Export(ctx context.Context, f ExportFilter) (*model.ExportMap, error) {
	const op = "translation.Export"

	f, err := f.normalize()
	if err != nil {
		return nil, err
	}

	// Read before loading: a write committed during the load bumps the
	// generation, so the result is stored under a key nobody reads again.
	key := f.cacheKey(s.exportGen.Load())

	load := func() (*model.ExportMap, error) {
		if err := s.requireLocale(ctx, op, f.Locale); err != nil {
			return nil, err
		}
		return s.exportAll(ctx, op, f)
	}
	if s.exports == nil {
		return load()
	}
	return s.exports.GetOrSet(ctx, key, load, func(err error) {
		s.logger.WarnContext(ctx, "export cache unavailable", "error", err)
	})
}

func (s *Service) exportAll(ctx context.Context, op string, f ExportFilter) (*model.ExportMap, error) {
	m := model.NewExportMap(0)
	n, err := s.store.EachExportRow(ctx, storeExportFilter(f), 0, 0, func(r store.ExportRow) error {
		m.Set(r.KeyName, r.Value.String)
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "full export failed", "locale", f.Locale, "error", err)
		return nil, queryError(op, err)
	}

	s.logger.DebugContext(ctx, "full export built", "locale", f.Locale, "tags", f.Tags, "pairs", n)
	return m, nil
}

// Stream opens a cursor over the same pairs Export returns. The locale is
// checked once, up front.
func (s *Service) Stream(ctx context.Context, f ExportFilter) (*Cursor, error) {
	const op = "translation.Stream"

	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.requireLocale(ctx, op, f.Locale); err != nil {
		return nil, err
	}
	return newCursor(s.store.Queries, storeExportFilter(f), s.chunkSize, s.logger), nil
}

func (s *Service) requireLocale(ctx context.Context, op, code string) error {
	_, err := s.store.GetLocaleByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundError(op, "locale %q not found", code)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "loading locale failed", "locale", code, "error", err)
		return queryError(op, err)
	}
	return nil
}

// invalidateExports is called after a write commits. The generation is
// bumped first so loads that started before the commit cannot repopulate
// the live key space.
func (s *Service) invalidateExports(ctx context.Context) {
	if s.exports == nil {
		return
	}
	s.exportGen.Add(1)
	if err := s.exports.InvalidatePrefix(ctx, exportCachePrefix); err != nil {
		s.logger.WarnContext(ctx, "export cache invalidation failed", "error", err)
	}
}

func storeExportFilter(f ExportFilter) store.ExportFilter {
	return store.ExportFilter{LocaleCode: f.Locale, Tags: f.Tags}
}

// Cursor walks an export in fixed-size chunks (LIMIT chunkSize OFFSET n).
// Each chunk is an independent snapshot, so writes made while streaming may
// or may not be observed. A Cursor is finite, not restartable and not safe
// for concurrent use; open a new one to scan again.
type Cursor struct {
	id        uuid.UUID
	queries   *store.Queries
	filter    store.ExportFilter
	chunkSize int
	offset    int
	done      bool
	logger    *slog.Logger
}

func newCursor(q *store.Queries, f store.ExportFilter, chunkSize int, logger *slog.Logger) *Cursor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Cursor{
		id:        uuid.New(),
		queries:   q,
		filter:    f,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// ID identifies the stream in logs.
func (c *Cursor) ID() string { return c.id.String() }

// ChunkSize returns the number of rows fetched per round trip.
func (c *Cursor) ChunkSize() int { return c.chunkSize }

// Offset returns the offset of the next fetch.
func (c *Cursor) Offset() int { return c.offset }

// Done reports whether the cursor is exhausted or closed.
func (c *Cursor) Done() bool { return c.done }

// NextChunk fetches the next chunk. hasMore is false once a chunk shorter
// than the chunk size has been read; later calls return no pairs. A failed
// fetch ends the cursor.
func (c *Cursor) NextChunk(ctx context.Context) (pairs []model.Pair, hasMore bool, err error) {
	if c.done {
		return nil, false, nil
	}

	rows, err := c.queries.ListExportRows(ctx, c.filter, c.chunkSize, c.offset)
	if err != nil {
		c.done = true
		c.logger.ErrorContext(ctx, "export chunk failed", "stream_id", c.ID(), "offset", c.offset, "error", err)
		return nil, false, queryError("translation.Cursor.NextChunk", err)
	}

	c.logger.DebugContext(ctx, "export chunk fetched", "stream_id", c.ID(), "offset", c.offset, "rows", len(rows))
	c.offset += c.chunkSize
	if len(rows) < c.chunkSize {
		c.done = true
	}

	pairs = make([]model.Pair, len(rows))
	for i, r := range rows {
		pairs[i] = model.Pair{Key: r.KeyName, Value: r.Value.String}
	}
	return pairs, !c.done, nil
}

// All yields the remaining pairs one at a time. A fetch error is yielded
// once with a zero Pair and ends the sequence. Breaking out of the loop
// closes the cursor.
func (c *Cursor) All(ctx context.Context) iter.Seq2[model.Pair, error] {
	return func(yield func(model.Pair, error) bool) {
		for !c.done {
			pairs, _, err := c.NextChunk(ctx)
			if err != nil {
				yield(model.Pair{}, err)
				return
			}
			for _, p := range pairs {
				if !yield(p, nil) {
					c.Close()
					return
				}
			}
		}
	}
}

// Close abandons the cursor. It is safe to call more than once.
func (c *Cursor) Close() {
	c.done = true
}
