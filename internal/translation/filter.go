// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	MaxKeyNameLength    = 255
	MaxLocaleCodeLength = 16
)

// Filter is the normalised search criteria. Zero-valued fields do not
// restrict the result.
type Filter struct {
	Keyword   string   // full-text match inside translation values
	KeyPrefix string   // full-text match inside key names
	Locale    string   // exact locale code
	Tags      []string // keys carrying any of these tags
	Page      int      // 1-based; 0 = first page
	PerPage   int      // [1, MaxPerPage]; 0 = DefaultPerPage
}

// Normalize trims every field, applies defaults and validates pagination.
func (f Filter) Normalize() (Filter, error) {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.KeyPrefix = strings.TrimSpace(f.KeyPrefix)
	f.Locale = strings.TrimSpace(f.Locale)
	f.Tags = NormalizeTags(f.Tags)

	fields := make(map[string]string)
	switch {
	case f.Page == 0:
		f.Page = 1
	case f.Page < 0:
		fields["page"] = "must be at least 1"
	}
	switch {
	case f.PerPage == 0:
		f.PerPage = DefaultPerPage
	case f.PerPage < 1 || f.PerPage > MaxPerPage:
		fields["per_page"] = "must be between 1 and " + strconv.Itoa(MaxPerPage)
	}

	if len(fields) > 0 {
		return f, validationError("translation.Filter", fields)
	}
	return f, nil
}

// Offset returns the row offset of the page.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// FilterFromQuery builds a Filter from URL query parameters. "tag" is an
// alias for "tags"; tags may repeat or be comma-separated. Unlike the zero
// values of Filter, explicit page=0 or per_page=0 are rejected.
func FilterFromQuery(q url.Values) (Filter, error) {
	f := Filter{
		Keyword:   q.Get("keyword"),
		KeyPrefix: q.Get("key"),
		Locale:    q.Get("locale"),
		Tags:      TagsFromQuery(q),
	}

	fields := make(map[string]string)
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields["page"] = "must be an integer of at least 1"
		}
		f.Page = n
	}
	if raw := strings.TrimSpace(q.Get("per_page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPerPage {
			fields["per_page"] = "must be an integer between 1 and " + strconv.Itoa(MaxPerPage)
		}
		f.PerPage = n
	}
	if len(fields) > 0 {
		return f, validationError("translation.FilterFromQuery", fields)
	}

	return f.Normalize()
}

// TagsFromQuery reads "tags" (or "tag" when "tags" is absent), accepting
// repeated parameters, PHP-style "tags[]" and comma-separated values.
func TagsFromQuery(q url.Values) []string {
	raw := q["tags"]
	raw = append(raw, q["tags[]"]...)
	if len(raw) == 0 {
		raw = q["tag"]
	}
	return NormalizeTags(raw)
}

// ParseTags splits a comma-separated tag list.
func ParseTags(s string) []string {
	return NormalizeTags([]string{s})
}

// NormalizeTags splits entries on commas, trims them, drops empty names and
// collapses duplicates. Order of first appearance is kept.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, entry := range tags {
		for name := range strings.SplitSeq(entry, ",") {
			name = cleanName(name)
			if name == "" || slices.Contains(out, name) {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

// ExportFilter selects the pairs of an export.
type ExportFilter struct {
	Locale string   // required
	Tags   []string // optional; keys carrying any of these tags
}

func (f ExportFilter) normalize() (ExportFilter, error) {
	f.Locale = strings.TrimSpace(f.Locale)
	f.Tags = NormalizeTags(f.Tags)
	if f.Locale == "" {
		return f, validationError("translation.Export", map[string]string{"locale": "is required"})
	}
	return f, nil
}

// cacheKey identifies the export result of one data generation
// independently of tag order.
func (f ExportFilter) cacheKey(gen uint64) string {
	tags := slices.Clone(f.Tags)
	slices.Sort(tags)
	return exportCachePrefix + strconv.FormatUint(gen, 10) + ":" + f.Locale + ":" + strings.Join(tags, ",")
}

// cleanName trims a user-supplied name and puts it in NFC form, so composed
// and decomposed spellings of the same text compare equal.
func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// validateLocaleCode checks a code supplied for writing.
func validateLocaleCode(code string) string {
	switch {
	case code == "":
		return "locale code is required"
	case utf8.RuneCountInString(code) > MaxLocaleCodeLength:
		return "locale code must be at most " + strconv.Itoa(MaxLocaleCodeLength) + " characters"
	}
	return ""
}

// validateKeyName checks a key name supplied for writing.
func validateKeyName(name string) string {
	switch {
	case name == "":
		return "is required"
	case utf8.RuneCountInString(name) > MaxKeyNameLength:
		return "must be at most " + strconv.Itoa(MaxKeyNameLength) + " characters"
	}
	return ""
}
