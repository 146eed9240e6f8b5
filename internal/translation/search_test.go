// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_EmptyFilterMatchesEverything(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login"}, "auth")
	mustCreate(t, svc, "web.header.title", map[string]string{"en": "Welcome", "fr": "Bienvenue"})

	page, err := svc.Search(ctx, Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, DefaultPerPage, page.PerPage)
	assert.Equal(t, []string{"auth.login.title", "web.header.title"}, keyNames(page.Data))

	header := page.Data[1]
	assert.Len(t, header.Translations, 2)
	assert.Empty(t, header.Tags)
	assert.NotNil(t, header.Tags, "tags encode as [] not null")
}

func TestSearch_Keyword(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login", "fr": "Connexion"})
	mustCreate(t, svc, "auth.login.button", map[string]string{"en": "Log in now"})
	mustCreate(t, svc, "web.header.title", map[string]string{"en": "Welcome"})

	page, err := svc.Search(ctx, Filter{Keyword: "log"})
	require.NoError(t, err)
	assert.Equal(t, []string{"auth.login.title", "auth.login.button"}, keyNames(page.Data))

	// Only the matching translation is loaded for the page rows.
	require.Len(t, page.Data[0].Translations, 1)
	assert.Equal(t, "Login", page.Data[0].Translations[0].Value)
}

func TestSearch_KeywordIsTokenBased(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login"})

	page, err := svc.Search(ctx, Filter{Keyword: "ogin"})
	require.NoError(t, err)
	assert.Empty(t, page.Data, "a substring inside a token must not match")
	assert.Equal(t, int64(0), page.Total)
}

func TestSearch_KeywordWithoutSearchableTokens(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login"})

	for _, kw := range []string{`"`, `*`, `()`, `"OR"*(`} {
		page, err := svc.Search(ctx, Filter{Keyword: kw})
		require.NoError(t, err, "keyword %q", kw)
		assert.Empty(t, page.Data, "keyword %q", kw)
		assert.NotNil(t, page.Data)
	}
}

func TestSearch_KeyPrefix(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login"})
	mustCreate(t, svc, "web.header.title", map[string]string{"en": "Welcome"})

	page, err := svc.Search(ctx, Filter{KeyPrefix: "auth"})
	require.NoError(t, err)
	assert.Equal(t, []string{"auth.login.title"}, keyNames(page.Data))
}

func TestSearch_LocaleRestrictsKeysAndTranslations(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login", "fr": "Connexion"})
	mustCreate(t, svc, "web.header.title", map[string]string{"en": "Welcome"})

	page, err := svc.Search(ctx, Filter{Locale: "fr"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "auth.login.title", page.Data[0].KeyName)
	require.Len(t, page.Data[0].Translations, 1)
	assert.Equal(t, "fr", page.Data[0].Translations[0].Locale.Code)
	assert.Equal(t, "FR", page.Data[0].Translations[0].Locale.Name)
}

func TestSearch_KeywordAndLocaleShareOneJoin(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "auth.login.title", map[string]string{"en": "Login", "fr": "Connexion"})

	page, err := svc.Search(ctx, Filter{Keyword: "connexion", Locale: "en"})
	require.NoError(t, err)
	assert.Empty(t, page.Data, "the keyword must match a value in the requested locale")

	page, err = svc.Search(ctx, Filter{Keyword: "connexion", Locale: "fr"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Total)
}

func TestSearch_TagsUseOR(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	mustCreate(t, svc, "web.only", map[string]string{"en": "a"}, "web")
	mustCreate(t, svc, "auth.only", map[string]string{"en": "b"}, "auth")
	mustCreate(t, svc, "both", map[string]string{"en": "c"}, "web", "auth")
	mustCreate(t, svc, "neither", map[string]string{"en": "d"}, "mobile")

	page, err := svc.Search(ctx, Filter{Tags: []string{"web", "auth"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"web.only", "auth.only", "both"}, keyNames(page.Data))
	assert.Equal(t, int64(3), page.Total, "a key with two matching tags counts once")

	both := page.Data[2]
	assert.True(t, both.HasTag("web"))
	assert.True(t, both.HasTag("auth"))
}

func TestSearch_PaginationBound(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	for i := range 25 {
		mustCreate(t, svc, fmt.Sprintf("key.%02d", i), map[string]string{"en": "v"})
	}

	seen := make(map[int64]bool)
	wantLen := map[int]int{1: 10, 2: 10, 3: 5, 4: 0}
	for pageNo := 1; pageNo <= 4; pageNo++ {
		page, err := svc.Search(ctx, Filter{Page: pageNo, PerPage: 10})
		require.NoError(t, err)

		assert.Equal(t, int64(25), page.Total, "page %d", pageNo)
		assert.Equal(t, 3, page.LastPage)
		assert.Len(t, page.Data, wantLen[pageNo], "page %d", pageNo)
		for _, k := range page.Data {
			assert.False(t, seen[k.ID], "key %d repeated across pages", k.ID)
			seen[k.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestReconcileTotal(t *testing.T) {
	tests := []struct {
		name                  string
		total                 int64
		offset, perPage, rows int
		want                  int64
	}{
		{"consistent full page", 25, 0, 10, 10, 25},
		{"consistent last page", 25, 20, 10, 5, 25},
		{"insert after count, short page", 25, 20, 10, 6, 26},
		{"delete after count, short page", 25, 20, 10, 4, 24},
		{"insert after count, full page", 19, 10, 10, 10, 20},
		{"everything deleted after count", 3, 0, 10, 0, 0},
		{"page past the end", 25, 30, 10, 0, 25},
		{"rows deleted below the offset", 35, 30, 10, 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcileTotal(tt.total, tt.offset, tt.perPage, tt.rows))
		})
	}
}

func TestSearch_TotalMatchesPageUnderConcurrentWrites(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	for i := range 5 {
		mustCreate(t, svc, fmt.Sprintf("seed.%02d", i), map[string]string{"en": "v"})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 20 {
			k, err := svc.Create(ctx, CreateInput{KeyName: fmt.Sprintf("churn.%02d", i), Values: map[string]string{"en": "v"}})
			if err == nil {
				_, _ = svc.Delete(ctx, k.ID)
			}
		}
	}()

	for range 20 {
		page, err := svc.Search(ctx, Filter{Page: 1, PerPage: 50})
		require.NoError(t, err)
		assert.Equal(t, int64(len(page.Data)), page.Total, "a single short page carries every match")
	}
	<-done
}

func TestSearch_InvalidPerPage(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.Search(context.Background(), Filter{PerPage: 500})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestFind(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		KeyName:     "auth.login.title",
		Description: ptr("Login page heading"),
		Values:      map[string]string{"en": "Login", "fr": "Connexion"},
		Tags:        []string{"auth", "web"},
	})
	require.NoError(t, err)

	got, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "auth.login.title", got.KeyName)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Login page heading", *got.Description)
	assert.Len(t, got.Tags, 2)
	assert.Len(t, got.Translations, 2)

	v, ok := got.Value("fr")
	assert.True(t, ok)
	assert.Equal(t, "Connexion", v)
}

func TestFind_NotFound(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.Find(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
