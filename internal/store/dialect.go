// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour used for full-text matching and upserts.
type Dialect string

const (
	// DialectSQLite uses FTS5 virtual tables for full-text matching.
	DialectSQLite Dialect = "sqlite"
	// DialectMySQL uses FULLTEXT indexes queried in BOOLEAN MODE.
	DialectMySQL Dialect = "mysql"
)

// ParseDialect returns the dialect for a driver name.
func ParseDialect(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, true
	case "mysql", "mariadb":
		return DialectMySQL, true
	default:
		return "", false
	}
}

func (d Dialect) gooseDialect() string {
	if d == DialectMySQL {
		return "mysql"
	}
	return "sqlite3"
}

// matchTranslationValue returns a predicate matching translations aliased as
// alias against one full-text query placeholder.
func (d Dialect) matchTranslationValue(alias string) string {
	if d == DialectMySQL {
		return "MATCH(" + alias + ".value) AGAINST(? IN BOOLEAN MODE)"
	}
	//goland:noinspection SqlResolve
	return alias + ".id IN (SELECT rowid FROM translations_fts WHERE translations_fts MATCH ?)"
}

// matchKeyName returns a predicate matching translation_keys aliased as alias
// against one full-text query placeholder.
func (d Dialect) matchKeyName(alias string) string {
	if d == DialectMySQL {
		return "MATCH(" + alias + ".key_name) AGAINST(? IN BOOLEAN MODE)"
	}
	//goland:noinspection SqlResolve
	return alias + ".id IN (SELECT rowid FROM translation_keys_fts WHERE translation_keys_fts MATCH ?)"
}

// insertIgnore returns the INSERT prefix that skips rows violating a unique key.
func (d Dialect) insertIgnore() string {
	if d == DialectMySQL {
		return "INSERT IGNORE INTO"
	}
	return "INSERT OR IGNORE INTO"
}

// upsertTranslationSQL inserts a translation or overwrites the value for an
// existing (key, locale) pair.
func (d Dialect) upsertTranslationSQL() string {
	if d == DialectMySQL {
		return `INSERT INTO translations (translation_key_id, locale_id, value, status, updated_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), status = VALUES(status), updated_at = VALUES(updated_at)`
	}
	return `INSERT INTO translations (translation_key_id, locale_id, value, status, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (translation_key_id, locale_id)
DO UPDATE SET value = excluded.value, status = excluded.status, updated_at = excluded.updated_at`
}

// ftsTokenPattern strips everything that is not a letter, digit or a word
// joiner the tokenizers understand.
var ftsTokenPattern = regexp.MustCompile(`[^\p{L}\p{N}\s._-]`)

// FullTextQuery turns free text into a dialect-specific boolean query.
// Every token is a prefix term and tokens are OR-ed, so arbitrary user input
// never produces a syntax error. Returns "" when nothing searchable remains.
func (d Dialect) FullTextQuery(text string) string {
	text = ftsTokenPattern.ReplaceAllString(strings.TrimSpace(text), " ")

	var terms []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, "._-")
		if word == "" {
			continue
		}
		terms = append(terms, d.prefixTerm(word))
	}

	if d == DialectMySQL {
		return strings.Join(terms, " ")
	}
	return strings.Join(terms, " OR ")
}

func (d Dialect) prefixTerm(word string) string {
	if d == DialectMySQL {
		// A phrase cannot carry the * operator in boolean mode.
		if strings.ContainsAny(word, "._-") {
			return `"` + word + `"`
		}
		return word + "*"
	}
	return `"` + word + `"*`
}

// IsUniqueViolation reports whether err is a unique or primary key violation
// from either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	return false
}
