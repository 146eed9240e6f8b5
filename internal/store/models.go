// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type TranslationKey struct {
	ID          int64
	KeyName     string
	Description sql.NullString
}

type Locale struct {
	ID   int64
	Code string
	Name string
}

type Tag struct {
	ID   int64
	Name string
}

type Translation struct {
	ID               int64
	TranslationKeyID int64
	LocaleID         int64
	Value            string
	Status           string
	UpdatedAt        time.Time
}

// KeyTag is a tag joined to the key it is attached to.
type KeyTag struct {
	TranslationKeyID int64
	Tag              Tag
}

// TranslationWithLocale is a translation row joined to its locale.
type TranslationWithLocale struct {
	Translation
	Locale Locale
}

// ExportRow is one (key_name, value) pair produced by an export query.
type ExportRow struct {
	KeyName string
	Value   sql.NullString
}
