// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can tell an expired session apart from an
// unreachable server or a broken credential store.
//
// E values support errors.Is against other E values of the same kind and message,
// which lets packages expose them as sentinels.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Unauthenticated indicates that an operation needs a bearer token and none is held.
	Unauthenticated Kind = "unauthenticated"
	// TokenRejected indicates that the backend refused the current bearer token.
	TokenRejected Kind = "token_rejected"
	// StorageFailed indicates a credential store read or write failure.
	StorageFailed Kind = "storage_failed"
	// StorageUnavailable indicates that no storage backend is configured for the operation.
	StorageUnavailable Kind = "storage_unavailable"
	// InvalidConfig indicates an unusable configuration value.
	InvalidConfig Kind = "invalid_config"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E with the same kind and message.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E found in err's tree, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
