// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/tms-go/internal/logging"
	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/translation"
)

// Export handles GET /export/{locale}?tags=a,b&stream=true.
// Without stream the whole map is built (and cached) before it is written.
// With stream the map is written chunk by chunk from a cursor.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := translation.ExportFilter{
		Locale: chi.URLParam(r, "locale"),
		Tags:   translation.TagsFromQuery(q),
	}

	if isTruthy(q.Get("stream")) {
		h.streamExport(w, r, f)
		return
	}

	m, err := h.repo.Export(r.Context(), f)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) streamExport(w http.ResponseWriter, r *http.Request, f translation.ExportFilter) {
	cur, err := h.repo.Stream(r.Context(), f)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	defer cur.Close()

	ctx := logging.WithStreamID(r.Context(), cur.ID())

	// The first chunk is read before any byte is written so an early storage
	// failure still gets a proper status code.
	pairs, _, err := cur.NextChunk(ctx)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 0, 4096)
	buf = append(buf, '{')
	first := true
	written := 0

	for {
		buf = appendPairs(buf, pairs, &first)
		written += len(pairs)
		if _, err := w.Write(buf); err != nil {
			h.logger.WarnContext(ctx, "export stream client gone", "pairs", written, "error", err)
			return
		}
		buf = buf[:0]
		if flusher != nil {
			flusher.Flush()
		}

		if cur.Done() {
			break
		}
		pairs, _, err = cur.NextChunk(ctx)
		if err != nil {
			// Headers are out; the truncated body is the only signal left.
			h.logger.ErrorContext(ctx, "export stream aborted", "pairs", written, "error", err)
			return
		}
	}

	_, _ = w.Write([]byte{'}'})
	if flusher != nil {
		flusher.Flush()
	}
	h.logger.DebugContext(ctx, "export stream finished", "locale", f.Locale, "pairs", written)
}

func appendPairs(buf []byte, pairs []model.Pair, first *bool) []byte {
	for _, p := range pairs {
		if !*first {
			buf = append(buf, ',')
		}
		*first = false
		buf = p.AppendJSON(buf)
	}
	return buf
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
