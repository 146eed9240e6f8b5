// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tms-test.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db, DialectSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	return NewStore(db, DialectSQLite)
}

// seedKey creates a key with values and tags directly through Queries.
func seedKey(t *testing.T, s *Store, name string, values map[string]string, tags ...string) TranslationKey {
	t.Helper()
	ctx := context.Background()

	key, err := s.CreateTranslationKey(ctx, CreateTranslationKeyParams{KeyName: name})
	if err != nil {
		t.Fatalf("CreateTranslationKey(%q): %v", name, err)
	}

	var tagIDs []int64
	for _, tagName := range tags {
		tag, err := s.UpsertTag(ctx, tagName)
		if err != nil {
			t.Fatalf("UpsertTag(%q): %v", tagName, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.ReplaceKeyTags(ctx, key.ID, tagIDs); err != nil {
		t.Fatalf("ReplaceKeyTags: %v", err)
	}

	for code, value := range values {
		loc, err := s.UpsertLocale(ctx, code, code)
		if err != nil {
			t.Fatalf("UpsertLocale(%q): %v", code, err)
		}
		if err := s.UpsertTranslation(ctx, UpsertTranslationParams{
			TranslationKeyID: key.ID,
			LocaleID:         loc.ID,
			Value:            value,
			Status:           "approved",
			UpdatedAt:        time.Now().UTC(),
		}); err != nil {
			t.Fatalf("UpsertTranslation: %v", err)
		}
	}

	return key
}

func TestCreateTranslationKey(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	key, err := s.CreateTranslationKey(ctx, CreateTranslationKeyParams{
		KeyName:     "auth.login.title",
		Description: sql.NullString{String: "Login page title", Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateTranslationKey: %v", err)
	}
	if key.ID == 0 {
		t.Error("key.ID should not be 0")
	}

	got, err := s.GetTranslationKey(ctx, key.ID)
	if err != nil {
		t.Fatalf("GetTranslationKey: %v", err)
	}
	if got.KeyName != "auth.login.title" {
		t.Errorf("KeyName = %q, want %q", got.KeyName, "auth.login.title")
	}
	if !got.Description.Valid || got.Description.String != "Login page title" {
		t.Errorf("Description = %+v, want Login page title", got.Description)
	}
}

func TestCreateTranslationKey_Duplicate(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	seedKey(t, s, "auth.login.title", nil)

	_, err := s.CreateTranslationKey(ctx, CreateTranslationKeyParams{KeyName: "auth.login.title"})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestGetTranslationKey_NotFound(t *testing.T) {
	s := testDB(t)

	_, err := s.GetTranslationKey(context.Background(), 999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestKeyNameExists(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	key := seedKey(t, s, "web.header.title", nil)

	exists, err := s.KeyNameExists(ctx, "web.header.title")
	if err != nil {
		t.Fatalf("KeyNameExists: %v", err)
	}
	if !exists {
		t.Error("KeyNameExists = false, want true")
	}

	exists, err = s.KeyNameExistsExcluding(ctx, "web.header.title", key.ID)
	if err != nil {
		t.Fatalf("KeyNameExistsExcluding: %v", err)
	}
	if exists {
		t.Error("KeyNameExistsExcluding should ignore the key itself")
	}
}

func TestUpsertLocale_Idempotent(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	first, err := s.UpsertLocale(ctx, "en", "EN")
	if err != nil {
		t.Fatalf("UpsertLocale: %v", err)
	}
	second, err := s.UpsertLocale(ctx, "en", "English")
	if err != nil {
		t.Fatalf("UpsertLocale: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second upsert created a new row: %d != %d", first.ID, second.ID)
	}
	if second.Name != "EN" {
		t.Errorf("Name = %q, want the original %q", second.Name, "EN")
	}
}

func TestUpsertTag_Idempotent(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	first, err := s.UpsertTag(ctx, "auth")
	if err != nil {
		t.Fatalf("UpsertTag: %v", err)
	}
	second, err := s.UpsertTag(ctx, "auth")
	if err != nil {
		t.Fatalf("UpsertTag: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second upsert created a new row: %d != %d", first.ID, second.ID)
	}
}

func TestUpsertTranslation_OverwritesPair(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	key := seedKey(t, s, "auth.login.title", map[string]string{"en": "Login"})
	en, _ := s.GetLocaleByCode(ctx, "en")

	err := s.UpsertTranslation(ctx, UpsertTranslationParams{
		TranslationKeyID: key.ID,
		LocaleID:         en.ID,
		Value:            "Sign in",
		Status:           "approved",
		UpdatedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertTranslation: %v", err)
	}

	n, err := s.CountTranslationsForKey(ctx, key.ID)
	if err != nil {
		t.Fatalf("CountTranslationsForKey: %v", err)
	}
	if n != 1 {
		t.Errorf("translations = %d, want 1", n)
	}

	rows, err := s.ListTranslationsForKeys(ctx, ListTranslationsParams{KeyIDs: []int64{key.ID}})
	if err != nil {
		t.Fatalf("ListTranslationsForKeys: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != "Sign in" {
		t.Errorf("rows = %+v, want single Sign in", rows)
	}
	if rows[0].Locale.Code != "en" {
		t.Errorf("Locale.Code = %q, want en", rows[0].Locale.Code)
	}
}

func TestReplaceKeyTags(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	key := seedKey(t, s, "auth.login.title", nil, "auth", "web")

	mobile, _ := s.UpsertTag(ctx, "mobile")
	if err := s.ReplaceKeyTags(ctx, key.ID, []int64{mobile.ID, mobile.ID}); err != nil {
		t.Fatalf("ReplaceKeyTags: %v", err)
	}

	tags, err := s.ListTagsForKeys(ctx, []int64{key.ID})
	if err != nil {
		t.Fatalf("ListTagsForKeys: %v", err)
	}
	if len(tags) != 1 || tags[0].Tag.Name != "mobile" {
		t.Errorf("tags = %+v, want [mobile]", tags)
	}
}

func TestDeleteTranslationKey_Cascades(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	doomed := seedKey(t, s, "auth.login.title", map[string]string{"en": "Login"}, "auth")
	kept := seedKey(t, s, "auth.logout.title", map[string]string{"en": "Logout"}, "auth")

	n, err := s.DeleteTranslationKey(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("DeleteTranslationKey: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	count, _ := s.CountTranslationsForKey(ctx, doomed.ID)
	if count != 0 {
		t.Errorf("translations left for deleted key = %d", count)
	}
	tags, _ := s.ListTagsForKeys(ctx, []int64{doomed.ID})
	if len(tags) != 0 {
		t.Errorf("tag links left for deleted key = %d", len(tags))
	}

	auth, err := s.GetTagByName(ctx, "auth")
	if err != nil {
		t.Fatalf("shared tag removed: %v", err)
	}
	usage, _ := s.CountTagUsage(ctx, auth.ID)
	if usage != 1 {
		t.Errorf("tag usage = %d, want 1", usage)
	}
	if _, err := s.GetLocaleByCode(ctx, "en"); err != nil {
		t.Errorf("shared locale removed: %v", err)
	}
	if _, err := s.GetTranslationKey(ctx, kept.ID); err != nil {
		t.Errorf("unrelated key removed: %v", err)
	}

	n, err = s.DeleteTranslationKey(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("DeleteTranslationKey again: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected on second delete = %d, want 0", n)
	}
}

func TestInTx_RollsBack(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(q *Queries) error {
		if _, err := q.CreateTranslationKey(ctx, CreateTranslationKeyParams{KeyName: "tx.key"}); err != nil {
			return err
		}
		if _, err := q.UpsertTag(ctx, "tx-tag"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}

	if exists, _ := s.KeyNameExists(ctx, "tx.key"); exists {
		t.Error("key survived rollback")
	}
	if _, err := s.GetTagByName(ctx, "tx-tag"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("tag survived rollback: %v", err)
	}
}

func TestSearchKeys(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()
	d := s.Dialect()

	login := seedKey(t, s, "auth.login.title", map[string]string{"en": "Login", "fr": "Connexion"}, "auth")
	header := seedKey(t, s, "web.header.title", map[string]string{"en": "Welcome"}, "web")
	seedKey(t, s, "mobile.menu.label", map[string]string{"fr": "Menu"}, "mobile")

	tests := []struct {
		name    string
		filter  KeyFilter
		wantIDs []int64
	}{
		{
			name:    "keyword",
			filter:  KeyFilter{ValueMatch: d.FullTextQuery("login")},
			wantIDs: []int64{login.ID},
		},
		{
			name:    "key name",
			filter:  KeyFilter{KeyMatch: d.FullTextQuery("web")},
			wantIDs: []int64{header.ID},
		},
		{
			name:    "locale",
			filter:  KeyFilter{LocaleCode: "en"},
			wantIDs: []int64{login.ID, header.ID},
		},
		{
			name:    "keyword in other locale does not match",
			filter:  KeyFilter{ValueMatch: d.FullTextQuery("connexion"), LocaleCode: "en"},
			wantIDs: nil,
		},
		{
			name:    "tags use OR",
			filter:  KeyFilter{Tags: []string{"web", "auth"}},
			wantIDs: []int64{login.ID, header.ID},
		},
		{
			name:    "tags and locale",
			filter:  KeyFilter{Tags: []string{"web", "mobile"}, LocaleCode: "fr"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := s.SearchKeys(ctx, tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("SearchKeys: %v", err)
			}
			var gotIDs []int64
			for _, k := range keys {
				gotIDs = append(gotIDs, k.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("ids = %v, want %v", gotIDs, tt.wantIDs)
					break
				}
			}

			total, err := s.CountKeys(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountKeys: %v", err)
			}
			if total != int64(len(tt.wantIDs)) {
				t.Errorf("CountKeys = %d, want %d", total, len(tt.wantIDs))
			}
		})
	}
}

func TestSearchKeys_DistinctAcrossFanOut(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	seedKey(t, s, "auth.login.title", map[string]string{"en": "Login", "fr": "Login"}, "auth", "web")

	f := KeyFilter{ValueMatch: s.Dialect().FullTextQuery("login"), Tags: []string{"auth", "web"}}
	keys, err := s.SearchKeys(ctx, f, 10, 0)
	if err != nil {
		t.Fatalf("SearchKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("len(keys) = %d, want 1", len(keys))
	}
	total, _ := s.CountKeys(ctx, f)
	if total != 1 {
		t.Errorf("CountKeys = %d, want 1", total)
	}
}

func TestListExportRows_Chunks(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	seedKey(t, s, "a", map[string]string{"en": "A"}, "x")
	seedKey(t, s, "b", map[string]string{"en": "B"})
	seedKey(t, s, "c", map[string]string{"en": "C"}, "x")
	seedKey(t, s, "d", map[string]string{"fr": "D"}, "x")

	all, err := s.ListExportRows(ctx, ExportFilter{LocaleCode: "en"}, 0, 0)
	if err != nil {
		t.Fatalf("ListExportRows: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	chunk, err := s.ListExportRows(ctx, ExportFilter{LocaleCode: "en"}, 2, 2)
	if err != nil {
		t.Fatalf("ListExportRows: %v", err)
	}
	if len(chunk) != 1 || chunk[0].KeyName != "c" {
		t.Errorf("chunk = %+v, want [c]", chunk)
	}

	tagged, err := s.ListExportRows(ctx, ExportFilter{LocaleCode: "en", Tags: []string{"x"}}, 0, 0)
	if err != nil {
		t.Fatalf("ListExportRows: %v", err)
	}
	if len(tagged) != 2 || tagged[0].KeyName != "a" || tagged[1].KeyName != "c" {
		t.Errorf("tagged = %+v, want [a c]", tagged)
	}
}
