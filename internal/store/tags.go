// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
)

const getTagByName = `SELECT id, name FROM tags WHERE name = ?`

func (q *Queries) GetTagByName(ctx context.Context, name string) (Tag, error) {
	row := q.db.QueryRowContext(ctx, getTagByName, name)
	var t Tag
	err := row.Scan(&t.ID, &t.Name)
	return t, err
}

// UpsertTag returns the tag called name, creating it when missing.
// Safe under concurrent callers for the same reason as UpsertLocale.
func (q *Queries) UpsertTag(ctx context.Context, name string) (Tag, error) {
	//goland:noinspection SqlResolve
	stmt := q.dialect.insertIgnore() + ` tags (name) VALUES (?)`
	if _, err := q.db.ExecContext(ctx, stmt, name); err != nil {
		return Tag{}, fmt.Errorf("inserting tag %q: %w", name, err)
	}
	return q.GetTagByName(ctx, name)
}

const deleteKeyTags = `DELETE FROM translation_key_tags WHERE translation_key_id = ?`

// ReplaceKeyTags makes tagIDs the exact tag set of the key.
func (q *Queries) ReplaceKeyTags(ctx context.Context, keyID int64, tagIDs []int64) error {
	if _, err := q.db.ExecContext(ctx, deleteKeyTags, keyID); err != nil {
		return fmt.Errorf("clearing key tags: %w", err)
	}

	seen := make(map[int64]bool, len(tagIDs))
	//goland:noinspection SqlResolve
	stmt := q.dialect.insertIgnore() + ` translation_key_tags (translation_key_id, tag_id) VALUES (?, ?)`
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := q.db.ExecContext(ctx, stmt, keyID, tagID); err != nil {
			return fmt.Errorf("attaching tag %d: %w", tagID, err)
		}
	}
	return nil
}

// ListTagsForKeys returns the tags of every key in keyIDs ordered by key then tag id.
func (q *Queries) ListTagsForKeys(ctx context.Context, keyIDs []int64) ([]KeyTag, error) {
	if len(keyIDs) == 0 {
		return nil, nil
	}

	query := `SELECT tkt.translation_key_id, tg.id, tg.name
		FROM translation_key_tags tkt
		INNER JOIN tags tg ON tg.id = tkt.tag_id
		WHERE tkt.translation_key_id IN (` + placeholders(len(keyIDs)) + `)
		ORDER BY tkt.translation_key_id, tg.id`

	rows, err := q.db.QueryContext(ctx, query, int64Args(keyIDs)...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var items []KeyTag
	for rows.Next() {
		var kt KeyTag
		if err := rows.Scan(&kt.TranslationKeyID, &kt.Tag.ID, &kt.Tag.Name); err != nil {
			return nil, err
		}
		items = append(items, kt)
	}
	return items, rows.Err()
}

const countTagUsage = `SELECT COUNT(*) FROM translation_key_tags WHERE tag_id = ?`

// CountTagUsage returns how many keys carry the tag.
func (q *Queries) CountTagUsage(ctx context.Context, tagID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTagUsage, tagID).Scan(&n)
	return n, err
}
