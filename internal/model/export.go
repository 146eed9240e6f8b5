// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"unicode/utf8"
)

// Pair is one exported (key_name, value) pair.
type Pair struct {
	Key   string
	Value string
}

// AppendJSON appends the pair as an escaped JSON object member ("key":"value").
func (p Pair) AppendJSON(buf []byte) []byte {
	buf = appendJSONString(buf, p.Key)
	buf = append(buf, ':')
	return appendJSONString(buf, p.Value)
}

// String returns the pair as an escaped JSON object member.
func (p Pair) String() string {
	return string(p.AppendJSON(nil))
}

const hexDigits = "0123456789abcdef"

// appendJSONString appends s as a quoted JSON string. Quotes, backslashes and
// control characters are escaped; invalid UTF-8 becomes U+FFFD.
func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				buf = append(buf, '\\', '"')
			case '\\':
				buf = append(buf, '\\', '\\')
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			default:
				if c < 0x20 {
					buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
				} else {
					buf = append(buf, c)
				}
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, `�`...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}

// ExportMap is a key_name → value map that remembers insertion order, so a
// full export encodes its members in key id order.
type ExportMap struct {
	keys   []string
	values map[string]string
}

// NewExportMap returns an empty map with room for n entries.
func NewExportMap(n int) *ExportMap {
	return &ExportMap{
		keys:   make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// Set stores value under key. An existing key keeps its position.
func (m *ExportMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *ExportMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *ExportMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *ExportMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates over the entries in insertion order.
func (m *ExportMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Map returns the entries as a plain map.
func (m *ExportMap) Map() map[string]string {
	out := make(map[string]string, len(m.keys))
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (m *ExportMap) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(m.keys)*32)
	buf = append(buf, '{')
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = Pair{Key: k, Value: m.values[k]}.AppendJSON(buf)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the member order of data.
func (m *ExportMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("export map: expected object, got %v", tok)
	}

	*m = ExportMap{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("export map: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("export map: value of %q: %w", key, err)
		}
		m.Set(key, value)
	}

	_, err = dec.Token()
	return err
}
