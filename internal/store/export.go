// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
)

// ExportFilter selects the (key_name, value) pairs of one locale, optionally
// restricted to keys carrying any of Tags.
type ExportFilter struct {
	LocaleCode string
	Tags       []string
}

func exportQuery(f ExportFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT tk.key_name, t.value
		FROM translation_keys tk
		INNER JOIN translations t ON t.translation_key_id = tk.id
		INNER JOIN locales l ON l.id = t.locale_id
		WHERE l.code = ?`)
	args := []any{f.LocaleCode}

	if len(f.Tags) > 0 {
		sb.WriteString(`
		AND EXISTS (
			SELECT 1
			FROM translation_key_tags tkt
			INNER JOIN tags tg ON tg.id = tkt.tag_id
			WHERE tkt.translation_key_id = tk.id
			AND tg.name IN (`)
		sb.WriteString(placeholders(len(f.Tags)))
		sb.WriteString("))")
		args = append(args, stringArgs(f.Tags)...)
	}

	sb.WriteString(" ORDER BY tk.id")
	return sb.String(), args
}

// EachExportRow runs the export query and calls fn for every row in key id
// order. A limit <= 0 reads every row in a single pass. Returns the number of
// rows visited.
func (q *Queries) EachExportRow(ctx context.Context, f ExportFilter, limit, offset int, fn func(ExportRow) error) (int, error) {
	query, args := exportQuery(f)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer closeRows(rows)

	n := 0
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.KeyName, &r.Value); err != nil {
			return n, err
		}
		n++
		if err := fn(r); err != nil {
			return n, err
		}
	}
	return n, rows.Err()
}

// ListExportRows returns one chunk of export rows.
func (q *Queries) ListExportRows(ctx context.Context, f ExportFilter, limit, offset int) ([]ExportRow, error) {
	items := make([]ExportRow, 0, max(limit, 0))
	_, err := q.EachExportRow(ctx, f, limit, offset, func(r ExportRow) error {
		items = append(items, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
