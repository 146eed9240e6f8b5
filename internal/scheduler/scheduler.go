// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic background jobs. Its only job today is
// pre-building the full export of every locale so the export cache is warm.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/store"
	"github.com/olegiv/tms-go/internal/translation"
)

// Exporter builds (and caches) full exports.
type Exporter interface {
	Export(ctx context.Context, f translation.ExportFilter) (*model.ExportMap, error)
}

// LocaleLister lists known locales.
type LocaleLister interface {
	ListLocales(ctx context.Context) ([]store.Locale, error)
}

// Scheduler handles scheduled tasks like warming the export cache.
type Scheduler struct {
	cron     *cron.Cron
	exporter Exporter
	locales  LocaleLister
	logger   *slog.Logger
	timeout  time.Duration
}

// New creates a new scheduler instance.
func New(exporter Exporter, locales LocaleLister, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		exporter: exporter,
		locales:  locales,
		logger:   logger,
		timeout:  5 * time.Minute,
	}
}

// ValidateSchedule checks a standard five-field cron expression
// (descriptors such as "@every 10m" are accepted too).
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Start registers the export warm-up job on schedule and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.WarmExports(ctx); err != nil {
			s.logger.Error("export warm-up failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "schedule", schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// WarmExports builds the untagged full export of every locale. A failing
// locale does not stop the others; their errors are joined. Returns the
// number of locales warmed.
func (s *Scheduler) WarmExports(ctx context.Context) (int, error) {
	locales, err := s.locales.ListLocales(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing locales: %w", err)
	}

	start := time.Now()
	warmed := 0
	var errs []error
	for _, l := range locales {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		m, err := s.exporter.Export(ctx, translation.ExportFilter{Locale: l.Code})
		if err != nil {
			s.logger.Warn("export warm-up failed for locale", "locale", l.Code, "error", err)
			errs = append(errs, fmt.Errorf("locale %s: %w", l.Code, err))
			continue
		}
		warmed++
		s.logger.Debug("export warmed", "locale", l.Code, "pairs", m.Len())
	}

	s.logger.Info("export warm-up finished", "locales", warmed, "duration", time.Since(start))
	return warmed, errors.Join(errs...)
}
