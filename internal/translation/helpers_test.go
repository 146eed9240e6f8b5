// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/testutil"
)

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.TestLoggerSilent()
	}
	return NewService(testutil.TestStore(t), opts)
}

func mustCreate(t *testing.T, svc *Service, name string, values map[string]string, tags ...string) *model.TranslationKey {
	t.Helper()
	key, err := svc.Create(context.Background(), CreateInput{
		KeyName: name,
		Values:  values,
		Tags:    tags,
	})
	require.NoError(t, err, "create %s", name)
	return key
}

func keyNames(keys []model.TranslationKey) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.KeyName
	}
	return names
}

func ptr[T any](v T) *T {
	return &v
}
