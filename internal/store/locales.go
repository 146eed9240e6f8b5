// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
)

const getLocaleByCode = `SELECT id, code, name FROM locales WHERE code = ?`

func (q *Queries) GetLocaleByCode(ctx context.Context, code string) (Locale, error) {
	row := q.db.QueryRowContext(ctx, getLocaleByCode, code)
	var l Locale
	err := row.Scan(&l.ID, &l.Code, &l.Name)
	return l, err
}

// UpsertLocale returns the locale with the given code, creating it with name
// when missing. The insert is a no-op on conflict and the row is re-read by
// its unique code, so concurrent callers always converge on the same row.
func (q *Queries) UpsertLocale(ctx context.Context, code, name string) (Locale, error) {
	//goland:noinspection SqlResolve
	stmt := q.dialect.insertIgnore() + ` locales (code, name) VALUES (?, ?)`
	if _, err := q.db.ExecContext(ctx, stmt, code, name); err != nil {
		return Locale{}, fmt.Errorf("inserting locale %q: %w", code, err)
	}
	return q.GetLocaleByCode(ctx, code)
}

const listLocales = `SELECT id, code, name FROM locales ORDER BY code`

func (q *Queries) ListLocales(ctx context.Context) ([]Locale, error) {
	rows, err := q.db.QueryContext(ctx, listLocales)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var items []Locale
	for rows.Next() {
		var l Locale
		if err := rows.Scan(&l.ID, &l.Code, &l.Name); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
