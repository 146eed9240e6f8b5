// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the JSON-facing translation data model.
package model

import "time"

// TranslationStatus is the review state of a translation value.
type TranslationStatus string

// Translation statuses
const (
	StatusDraft    TranslationStatus = "draft"
	StatusApproved TranslationStatus = "approved"
)

// Valid reports whether s is a known status.
func (s TranslationStatus) Valid() bool {
	return s == StatusDraft || s == StatusApproved
}

// Locale is a language/region code such as "en" or "pt-BR".
type Locale struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Tag is a free-form label used to group keys.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Translation is the value of one key in one locale.
type Translation struct {
	ID        int64             `json:"id"`
	Value     string            `json:"value"`
	Status    TranslationStatus `json:"status"`
	UpdatedAt time.Time         `json:"updated_at"`
	Locale    Locale            `json:"locale"`
}

// TranslationKey is the canonical identifier of one translatable string,
// expanded with its tags and translations.
type TranslationKey struct {
	ID           int64         `json:"id"`
	KeyName      string        `json:"key_name"`
	Description  *string       `json:"description"`
	Tags         []Tag         `json:"tags"`
	Translations []Translation `json:"translations"`
}

// Value returns the translation for the locale code, if any.
func (k *TranslationKey) Value(code string) (string, bool) {
	for _, t := range k.Translations {
		if t.Locale.Code == code {
			return t.Value, true
		}
	}
	return "", false
}

// HasTag reports whether the key carries the named tag.
func (k *TranslationKey) HasTag(name string) bool {
	for _, t := range k.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Page is a paginated result envelope.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// NewPage builds a page envelope. Data is never nil so it encodes as [].
func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{
		Data:        data,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
