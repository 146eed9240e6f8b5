// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const getTranslationKey = `SELECT id, key_name, description FROM translation_keys WHERE id = ?`

func (q *Queries) GetTranslationKey(ctx context.Context, id int64) (TranslationKey, error) {
	row := q.db.QueryRowContext(ctx, getTranslationKey, id)
	var k TranslationKey
	err := row.Scan(&k.ID, &k.KeyName, &k.Description)
	return k, err
}

const keyNameExists = `SELECT COUNT(*) FROM translation_keys WHERE key_name = ?`

// KeyNameExists reports whether any key already uses keyName.
func (q *Queries) KeyNameExists(ctx context.Context, keyName string) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, keyNameExists, keyName).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const keyNameExistsExcluding = `SELECT COUNT(*) FROM translation_keys WHERE key_name = ? AND id <> ?`

// KeyNameExistsExcluding reports whether a key other than id uses keyName.
func (q *Queries) KeyNameExistsExcluding(ctx context.Context, keyName string, id int64) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, keyNameExistsExcluding, keyName, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

type CreateTranslationKeyParams struct {
	KeyName     string
	Description sql.NullString
}

const createTranslationKey = `INSERT INTO translation_keys (key_name, description) VALUES (?, ?)`

func (q *Queries) CreateTranslationKey(ctx context.Context, arg CreateTranslationKeyParams) (TranslationKey, error) {
	res, err := q.db.ExecContext(ctx, createTranslationKey, arg.KeyName, arg.Description)
	if err != nil {
		return TranslationKey{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TranslationKey{}, err
	}
	return TranslationKey{ID: id, KeyName: arg.KeyName, Description: arg.Description}, nil
}

type UpdateTranslationKeyParams struct {
	ID          int64
	KeyName     string
	Description sql.NullString
}

const updateTranslationKey = `UPDATE translation_keys SET key_name = ?, description = ? WHERE id = ?`

func (q *Queries) UpdateTranslationKey(ctx context.Context, arg UpdateTranslationKeyParams) error {
	_, err := q.db.ExecContext(ctx, updateTranslationKey, arg.KeyName, arg.Description, arg.ID)
	return err
}

const deleteTranslationKey = `DELETE FROM translation_keys WHERE id = ?`

// DeleteTranslationKey removes a key and returns the number of rows deleted.
// Translations and tag links go with it through ON DELETE CASCADE.
func (q *Queries) DeleteTranslationKey(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTranslationKey, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countTranslationKeys = `SELECT COUNT(*) FROM translation_keys`

func (q *Queries) CountTranslationKeys(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTranslationKeys).Scan(&n)
	return n, err
}
