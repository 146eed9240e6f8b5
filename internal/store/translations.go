// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

type UpsertTranslationParams struct {
	TranslationKeyID int64
	LocaleID         int64
	Value            string
	Status           string
	UpdatedAt        time.Time
}

// UpsertTranslation writes the value for a (key, locale) pair, replacing any
// existing value for that pair.
func (q *Queries) UpsertTranslation(ctx context.Context, arg UpsertTranslationParams) error {
	_, err := q.db.ExecContext(ctx, q.dialect.upsertTranslationSQL(),
		arg.TranslationKeyID, arg.LocaleID, arg.Value, arg.Status, arg.UpdatedAt)
	return err
}

// ListTranslationsParams narrows the translations loaded for a set of keys.
type ListTranslationsParams struct {
	KeyIDs     []int64
	LocaleCode string // "" = every locale
	Match      string // dialect full-text query; "" = no value filter
}

// ListTranslationsForKeys returns translations joined to their locale for
// the given keys, ordered by key then translation id.
func (q *Queries) ListTranslationsForKeys(ctx context.Context, arg ListTranslationsParams) ([]TranslationWithLocale, error) {
	if len(arg.KeyIDs) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT t.id, t.translation_key_id, t.locale_id, t.value, t.status, t.updated_at,
		l.id, l.code, l.name
		FROM translations t
		INNER JOIN locales l ON l.id = t.locale_id
		WHERE t.translation_key_id IN (`)
	sb.WriteString(placeholders(len(arg.KeyIDs)))
	sb.WriteString(")")
	args := int64Args(arg.KeyIDs)

	if arg.LocaleCode != "" {
		sb.WriteString(" AND l.code = ?")
		args = append(args, arg.LocaleCode)
	}
	if arg.Match != "" {
		sb.WriteString(" AND ")
		sb.WriteString(q.dialect.matchTranslationValue("t"))
		args = append(args, arg.Match)
	}
	sb.WriteString(" ORDER BY t.translation_key_id, t.id")

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var items []TranslationWithLocale
	for rows.Next() {
		var t TranslationWithLocale
		if err := rows.Scan(
			&t.ID,
			&t.TranslationKeyID,
			&t.LocaleID,
			&t.Value,
			&t.Status,
			&t.UpdatedAt,
			&t.Locale.ID,
			&t.Locale.Code,
			&t.Locale.Name,
		); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const countTranslationsForKey = `SELECT COUNT(*) FROM translations WHERE translation_key_id = ?`

func (q *Queries) CountTranslationsForKey(ctx context.Context, keyID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTranslationsForKey, keyID).Scan(&n)
	return n, err
}
