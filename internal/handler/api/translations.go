// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/olegiv/tms-go/internal/translation"
)

// CreateTranslationRequest is the body of POST /translations.
type CreateTranslationRequest struct {
	KeyName     string            `json:"key_name"`
	Description *string           `json:"description,omitempty"`
	Values      map[string]string `json:"values"`
	Tags        []string          `json:"tags,omitempty"`
}

// UpdateTranslationRequest is the body of PUT/PATCH /translations/{id}.
// Absent fields are left untouched.
type UpdateTranslationRequest struct {
	KeyName     *string           `json:"key_name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
	Tags        optionalTags      `json:"tags"`
}

// optionalTags distinguishes an absent "tags" field from an explicit null or
// list. Null and [] both clear the tags.
type optionalTags struct {
	Set   bool
	Names []string
}

func (o *optionalTags) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Names = []string{}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	o.Names = names
	return nil
}

// ListTranslations handles GET /translations.
// Query: keyword, key, locale, tags (or tag), page, per_page.
func (h *Handler) ListTranslations(w http.ResponseWriter, r *http.Request) {
	f, err := translation.FilterFromQuery(r.URL.Query())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	page, err := h.repo.Search(r.Context(), f)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// GetTranslation handles GET /translations/{id}.
func (h *Handler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	key, err := h.repo.Find(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, key)
}

// CreateTranslation handles POST /translations.
func (h *Handler) CreateTranslation(w http.ResponseWriter, r *http.Request) {
	var req CreateTranslationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key, err := h.repo.Create(r.Context(), translation.CreateInput{
		KeyName:     req.KeyName,
		Description: req.Description,
		Values:      req.Values,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteCreated(w, key)
}

// UpdateTranslation handles PUT and PATCH /translations/{id}. Both merge:
// values for locales not mentioned are kept.
func (h *Handler) UpdateTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateTranslationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := translation.UpdateInput{
		KeyName:     req.KeyName,
		Description: req.Description,
		Values:      req.Values,
	}
	if req.Tags.Set {
		in.Tags = &req.Tags.Names
	}

	key, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, key)
}

// DeleteResponse reports whether a key was removed.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteTranslation handles DELETE /translations/{id}. Deleting a missing key
// is not an error.
func (h *Handler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}
