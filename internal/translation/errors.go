// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors for callers that map them to transport
// status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindQueryFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindQueryFailure:
		return "query_failure"
	default:
		return "unknown"
	}
}

// Error is returned by every engine operation.
type Error struct {
	Kind    Kind
	Op      string            // operation, e.g. "translation.Create"
	Message string            // safe to show to API clients
	Fields  map[string]string // per-field validation messages
	Err     error             // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: "validation failed", Fields: fields}
}

func notFoundError(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func conflictError(op, field, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: KindConflict, Op: op, Message: msg, Fields: map[string]string{field: msg}}
}

func queryError(op string, err error) *Error {
	// Keep an engine error raised inside a transaction callback intact.
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindQueryFailure, Op: op, Message: "storage operation failed", Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsQueryFailure(err error) bool { return KindOf(err) == KindQueryFailure }
