// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/olegiv/tms-go/internal/testutil"
	"github.com/olegiv/tms-go/internal/translation"
	"github.com/olegiv/tms-go/internal/version"
)

// newTestRouter mounts a Handler over repo under /api/v1.
func newTestRouter(repo translation.Repository) http.Handler {
	h := NewHandler(repo, testutil.TestLoggerSilent(), version.Info{Version: "v0.0.0-test"})
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r
}

// newTestAPI returns a router backed by a real engine on a temporary database.
func newTestAPI(t *testing.T, chunkSize int) (http.Handler, *translation.Service) {
	t.Helper()
	svc := translation.NewService(testutil.TestStore(t), translation.Options{
		ChunkSize: chunkSize,
		Logger:    testutil.TestLoggerSilent(),
	})
	return newTestRouter(svc), svc
}

// do performs a request and returns the recorder and the body as a string.
func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, rec.Body.String()
}

// create posts a key and returns its id.
func create(t *testing.T, h http.Handler, body string) int64 {
	t.Helper()
	rec, out := do(t, h, http.MethodPost, "/api/v1/translations", body)
	require.Equal(t, http.StatusCreated, rec.Code, out)
	return gjson.Get(out, "data.id").Int()
}
