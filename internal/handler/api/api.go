// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for translation keys and exports.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/tms-go/internal/cache"
	"github.com/olegiv/tms-go/internal/middleware"
	"github.com/olegiv/tms-go/internal/translation"
	"github.com/olegiv/tms-go/internal/version"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	repo    translation.Repository
	logger  *slog.Logger
	version version.Info
	stats   cache.StatsProvider
}

// NewHandler creates a new API handler.
func NewHandler(repo translation.Repository, logger *slog.Logger, v version.Info) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, logger: logger, version: v}
}

// WithCacheStats makes the status endpoint report counters of the export cache.
func (h *Handler) WithCacheStats(p cache.StatsProvider) *Handler {
	h.stats = p
	return h
}

// Routes mounts the v1 endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.Status)

	r.Route("/translations", func(r chi.Router) {
		r.Get("/", h.ListTranslations)
		r.Post("/", h.CreateTranslation)
		r.Get("/{id}", h.GetTranslation)
		r.Put("/{id}", h.UpdateTranslation)
		r.Patch("/{id}", h.UpdateTranslation)
		r.Delete("/{id}", h.DeleteTranslation)
	})

	r.Get("/export/{locale}", h.Export)
}

// Response is the standard API response wrapper.
type Response struct {
	Data any `json:"data"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response wrapping data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created response wrapping data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// writeEngineError maps an engine error kind to its HTTP status.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var e *translation.Error
	if !errors.As(err, &e) {
		h.logger.ErrorContext(r.Context(), "unexpected engine error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		return
	}

	switch e.Kind {
	case translation.KindValidation:
		WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", e.Fields)
	case translation.KindNotFound:
		WriteNotFound(w, e.Message)
	case translation.KindConflict:
		WriteError(w, http.StatusConflict, "conflict", e.Message, e.Fields)
	case translation.KindQueryFailure:
		h.logger.ErrorContext(r.Context(), "query failure", "op", e.Op, "error", e.Err)
		WriteError(w, http.StatusServiceUnavailable, "query_failure", "Storage is temporarily unavailable", nil)
	default:
		h.logger.ErrorContext(r.Context(), "unclassified engine error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// parseID reads the {id} URL parameter. Writes 400 and returns false when it
// is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid translation key ID")
		return 0, false
	}
	return id, true
}

// decodeJSON reads a JSON body into dst. Writes 400 and returns false on
// malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status    string       `json:"status"`
	Version   string       `json:"version"`
	GitCommit string       `json:"git_commit,omitempty"`
	BuildTime string       `json:"build_time,omitempty"`
	Cache     *cache.Stats `json:"cache,omitempty"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Status:    "ok",
		Version:   h.version.Version,
		GitCommit: h.version.GitCommit,
		BuildTime: h.version.BuildTime,
	}
	if h.stats != nil {
		st := h.stats.Stats()
		resp.Cache = &st
	}
	WriteSuccess(w, resp)
}
