// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/tms-go/internal/model"
	"github.com/olegiv/tms-go/internal/store"
)

// CreateInput is the payload of Create.
type CreateInput struct {
	KeyName     string
	Description *string
	Values      map[string]string // locale code → value; at least one entry
	Tags        []string
}

// UpdateInput is the payload of Update. Nil fields are left untouched.
type UpdateInput struct {
	KeyName     *string
	Description *string // "" clears the description
	Values      map[string]string
	Tags        *[]string // an empty slice removes every tag
}

var localeNameCaser = cases.Upper(language.Und)

// defaultLocaleName is the display name given to locales created on the fly.
func defaultLocaleName(code string) string {
	return localeNameCaser.String(code)
}

// Create inserts a key with its values and tags in one transaction and
// returns it reloaded. An existing key_name is a Conflict and writes nothing.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.TranslationKey, error) {
	const op = "translation.Create"

	in.KeyName = cleanName(in.KeyName)
	values, fields := normalizeValues(in.Values)
	if msg := validateKeyName(in.KeyName); msg != "" {
		fields["key_name"] = msg
	}
	if len(in.Values) == 0 {
		fields["values"] = "at least one locale value is required"
	}
	if len(fields) > 0 {
		return nil, validationError(op, fields)
	}
	tags := NormalizeTags(in.Tags)

	exists, err := s.store.KeyNameExists(ctx, in.KeyName)
	if err != nil {
		return nil, queryError(op, err)
	}
	if exists {
		return nil, conflictError(op, "key_name", "key name %q already exists", in.KeyName)
	}

	var keyID int64
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		key, err := q.CreateTranslationKey(ctx, store.CreateTranslationKeyParams{
			KeyName:     in.KeyName,
			Description: nullString(in.Description),
		})
		if store.IsUniqueViolation(err) {
			return conflictError(op, "key_name", "key name %q already exists", in.KeyName)
		}
		if err != nil {
			return err
		}
		keyID = key.ID

		if err := s.syncTags(ctx, q, keyID, tags); err != nil {
			return err
		}
		return s.upsertValues(ctx, q, keyID, values)
	})
	if err != nil {
		if KindOf(err) == KindUnknown {
			s.logger.ErrorContext(ctx, "creating translation key failed", "key_name", in.KeyName, "error", err)
		}
		return nil, queryError(op, err)
	}

	s.invalidateExports(ctx)
	s.logger.InfoContext(ctx, "translation key created", "key_id", keyID, "key_name", in.KeyName)
	return s.Find(ctx, keyID)
}

// Update applies the present fields of in to the key in one transaction.
// Values are merged: locales not mentioned keep their current value.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.TranslationKey, error) {
	const op = "translation.Update"

	values, fields := normalizeValues(in.Values)
	if in.KeyName != nil {
		name := cleanName(*in.KeyName)
		in.KeyName = &name
		if msg := validateKeyName(name); msg != "" {
			fields["key_name"] = msg
		}
	}
	if len(fields) > 0 {
		return nil, validationError(op, fields)
	}

	var keyName string
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		key, err := q.GetTranslationKey(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError(op, "translation key %d not found", id)
		}
		if err != nil {
			return err
		}

		if in.KeyName != nil || in.Description != nil {
			params := store.UpdateTranslationKeyParams{
				ID:          key.ID,
				KeyName:     key.KeyName,
				Description: key.Description,
			}
			if in.KeyName != nil && *in.KeyName != key.KeyName {
				taken, err := q.KeyNameExistsExcluding(ctx, *in.KeyName, key.ID)
				if err != nil {
					return err
				}
				if taken {
					return conflictError(op, "key_name", "key name %q already exists", *in.KeyName)
				}
				params.KeyName = *in.KeyName
			}
			if in.Description != nil {
				params.Description = nullString(in.Description)
			}
			err := q.UpdateTranslationKey(ctx, params)
			if store.IsUniqueViolation(err) {
				return conflictError(op, "key_name", "key name %q already exists", params.KeyName)
			}
			if err != nil {
				return err
			}
			key.KeyName = params.KeyName
		}
		keyName = key.KeyName

		if in.Tags != nil {
			if err := s.syncTags(ctx, q, key.ID, NormalizeTags(*in.Tags)); err != nil {
				return err
			}
		}
		return s.upsertValues(ctx, q, key.ID, values)
	})
	if err != nil {
		if KindOf(err) == KindUnknown {
			s.logger.ErrorContext(ctx, "updating translation key failed", "key_id", id, "error", err)
		}
		return nil, queryError(op, err)
	}

	s.invalidateExports(ctx)
	s.logger.InfoContext(ctx, "translation key updated", "key_id", id, "key_name", keyName)
	return s.Find(ctx, id)
}

// Delete removes the key. Its translations and tag links are removed by the
// database; shared tags and locales stay. Reports whether a row was deleted.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	const op = "translation.Delete"

	n, err := s.store.DeleteTranslationKey(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "deleting translation key failed", "key_id", id, "error", err)
		return false, queryError(op, err)
	}
	if n == 0 {
		return false, nil
	}

	s.invalidateExports(ctx)
	s.logger.InfoContext(ctx, "translation key deleted", "key_id", id)
	return true, nil
}

// syncTags makes names the exact tag set of the key, creating missing tags.
func (s *Service) syncTags(ctx context.Context, q *store.Queries, keyID int64, names []string) error {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		tag, err := q.UpsertTag(ctx, name)
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}
	return q.ReplaceKeyTags(ctx, keyID, ids)
}

// upsertValues writes every value as approved, creating missing locales.
// Locales are visited in code order so concurrent writers lock rows in the
// same order.
func (s *Service) upsertValues(ctx context.Context, q *store.Queries, keyID int64, values map[string]string) error {
	now := s.now()
	for _, code := range slices.Sorted(maps.Keys(values)) {
		loc, err := q.UpsertLocale(ctx, code, defaultLocaleName(code))
		if err != nil {
			return err
		}
		if err := q.UpsertTranslation(ctx, store.UpsertTranslationParams{
			TranslationKeyID: keyID,
			LocaleID:         loc.ID,
			Value:            values[code],
			Status:           string(model.StatusApproved),
			UpdatedAt:        now,
		}); err != nil {
			return err
		}
	}
	return nil
}

// normalizeValues trims locale codes and validates them. Two raw codes that
// trim to the same code are rejected. The returned fields map is never nil.
func normalizeValues(in map[string]string) (map[string]string, map[string]string) {
	fields := make(map[string]string)
	out := make(map[string]string, len(in))
	for raw, value := range in {
		code := strings.TrimSpace(raw)
		if msg := validateLocaleCode(code); msg != "" {
			fields["values."+code] = msg
			continue
		}
		if _, dup := out[code]; dup {
			fields["values."+code] = "locale code " + strconv.Quote(code) + " is given more than once"
			continue
		}
		out[code] = value
	}
	return out, fields
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
