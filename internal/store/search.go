// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
)

// KeyFilter holds already-normalised search criteria. Empty fields do not
// restrict the result. ValueMatch and KeyMatch are dialect full-text queries
// built with Dialect.FullTextQuery.
type KeyFilter struct {
	ValueMatch string
	KeyMatch   string
	LocaleCode string
	Tags       []string
}

// keyQuery composes the FROM/WHERE part shared by the count and page queries.
// The translations join is added once even when both a keyword and a locale
// are present, so the keyword must match a value in that locale.
func (q *Queries) keyQuery(f KeyFilter) (string, []any) {
	var (
		from  strings.Builder
		where []string
		args  []any
	)

	from.WriteString(" FROM translation_keys tk")

	if f.ValueMatch != "" || f.LocaleCode != "" {
		from.WriteString(" INNER JOIN translations t ON t.translation_key_id = tk.id")
	}
	if f.LocaleCode != "" {
		from.WriteString(" INNER JOIN locales l ON l.id = t.locale_id")
	}
	if len(f.Tags) > 0 {
		from.WriteString(" INNER JOIN translation_key_tags tkt ON tkt.translation_key_id = tk.id")
		from.WriteString(" INNER JOIN tags tg ON tg.id = tkt.tag_id")
	}

	if f.ValueMatch != "" {
		where = append(where, q.dialect.matchTranslationValue("t"))
		args = append(args, f.ValueMatch)
	}
	if f.KeyMatch != "" {
		where = append(where, q.dialect.matchKeyName("tk"))
		args = append(args, f.KeyMatch)
	}
	if f.LocaleCode != "" {
		where = append(where, "l.code = ?")
		args = append(args, f.LocaleCode)
	}
	if len(f.Tags) > 0 {
		where = append(where, "tg.name IN ("+placeholders(len(f.Tags))+")")
		args = append(args, stringArgs(f.Tags)...)
	}

	if len(where) > 0 {
		from.WriteString(" WHERE ")
		from.WriteString(strings.Join(where, " AND "))
	}

	return from.String(), args
}

// CountKeys returns the number of distinct keys matching f.
func (q *Queries) CountKeys(ctx context.Context, f KeyFilter) (int64, error) {
	body, args := q.keyQuery(f)
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT tk.id)"+body, args...).Scan(&n)
	return n, err
}

// SearchKeys returns one page of distinct keys matching f ordered by id.
func (q *Queries) SearchKeys(ctx context.Context, f KeyFilter, limit, offset int) ([]TranslationKey, error) {
	body, args := q.keyQuery(f)
	query := "SELECT DISTINCT tk.id, tk.key_name, tk.description" + body + " ORDER BY tk.id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var items []TranslationKey
	for rows.Next() {
		var k TranslationKey
		if err := rows.Scan(&k.ID, &k.KeyName, &k.Description); err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	return items, rows.Err()
}
