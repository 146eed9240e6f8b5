// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/olegiv/tms-go/internal/model"
)

func seedExport(t *testing.T, h http.Handler) {
	t.Helper()
	create(t, h, `{"key_name":"auth.login","values":{"en":"Log in","fr":"Connexion"},"tags":["web"]}`)
	create(t, h, `{"key_name":"auth.logout","values":{"en":"Log out"},"tags":["mobile"]}`)
	create(t, h, `{"key_name":"quote","values":{"en":"He said \"hi\"\nthen left\\"}}`)
	create(t, h, `{"key_name":"home.title","values":{"en":"Welcome","fr":"Bienvenue"},"tags":["web","mobile"]}`)
	create(t, h, `{"key_name":"footer","values":{"en":"Bye"}}`)
}

func exportKeys(t *testing.T, body string) []string {
	t.Helper()
	require.True(t, gjson.Valid(body), "invalid JSON: %q", body)
	var keys []string
	gjson.Parse(body).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

func TestExport_Full(t *testing.T) {
	h, _ := newTestAPI(t, 0)
	seedExport(t, h)

	rec, body := do(t, h, http.MethodGet, "/api/v1/export/en", "")
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, []string{"auth.login", "auth.logout", "quote", "home.title", "footer"}, exportKeys(t, body))
	assert.Equal(t, "He said \"hi\"\nthen left\\", gjson.Get(body, "quote").String())

	_, body = do(t, h, http.MethodGet, "/api/v1/export/fr", "")
	assert.JSONEq(t, `{"auth.login":"Connexion","home.title":"Bienvenue"}`, body)

	_, body = do(t, h, http.MethodGet, "/api/v1/export/en?tags=mobile", "")
	assert.Equal(t, []string{"auth.logout", "home.title"}, exportKeys(t, body))
}

func TestExport_Stream(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"auth.login", "auth.logout", "quote", "home.title", "footer"}},
		{"tags", "&tags=web", []string{"auth.login", "home.title"}},
		{"no match", "&tags=none", nil},
	}

	for _, chunk := range []int{1, 2, 5, 100} {
		h, _ := newTestAPI(t, chunk)
		seedExport(t, h)

		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/chunk=%d", tt.name, chunk), func(t *testing.T) {
				rec, body := do(t, h, http.MethodGet, "/api/v1/export/en?stream=true"+tt.query, "")
				require.Equal(t, http.StatusOK, rec.Code, body)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
				assert.Equal(t, tt.want, exportKeys(t, body))

				_, full := do(t, h, http.MethodGet, "/api/v1/export/en?stream=false"+tt.query, "")
				var a, b model.ExportMap
				require.NoError(t, json.Unmarshal([]byte(body), &a))
				require.NoError(t, json.Unmarshal([]byte(full), &b))
				assert.Equal(t, b.Keys(), a.Keys())
				assert.Equal(t, b.Map(), a.Map())
			})
		}
	}
}

func TestExport_StreamEscapes(t *testing.T) {
	h, _ := newTestAPI(t, 2)
	seedExport(t, h)

	_, body := do(t, h, http.MethodGet, "/api/v1/export/en?stream=1", "")
	assert.Equal(t, "He said \"hi\"\nthen left\\", gjson.Get(body, "quote").String())
}

func TestExport_Errors(t *testing.T) {
	h, _ := newTestAPI(t, 0)
	seedExport(t, h)

	for _, stream := range []string{"", "?stream=yes"} {
		rec, body := do(t, h, http.MethodGet, "/api/v1/export/de"+stream, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, body)
		assert.Equal(t, "not_found", gjson.Get(body, "error.code").String())

		rec, body = do(t, h, http.MethodGet, "/api/v1/export/%20"+stream, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Equal(t, "validation_error", gjson.Get(body, "error.code").String())
	}
}

func TestIsTruthy(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "on", " on "} {
		assert.True(t, isTruthy(s), s)
	}
	for _, s := range []string{"", "0", "false", "no", "off", "stream"} {
		assert.False(t, isTruthy(s), s)
	}
}
