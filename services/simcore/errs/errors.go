// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package errs holds the error kinds surfaced by the similarity engine.
//
// Propagation policy: TokenizationError is recoverable (the coordinator
// logs and excludes the affected document); every other kind aborts the
// job.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the caller's context is cancelled while
// a job is in flight. WrapCancelled joins it with context.Canceled or
// context.DeadlineExceeded so errors.Is works against either.
var ErrCancelled = errors.New("similarity: job cancelled")

// TokenizationError wraps a per-document tokenizer failure. The
// coordinator logs it and drops the offending document rather than
// failing the whole job.
type TokenizationError struct {
	Document string
	Reason   error
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenize %q: %v", e.Document, e.Reason)
}

func (e *TokenizationError) Unwrap() error { return e.Reason }

// UnsupportedLanguage is fatal for the job: the requested language tag
// or file extension has no registered tokenizer.
type UnsupportedLanguage struct {
	TagOrExtension string
}

func (e *UnsupportedLanguage) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.TagOrExtension)
}

// ParameterError is fatal: a tuning parameter violates its contract
// (e.g. noise > guarantee) or the request is otherwise malformed.
type ParameterError struct {
	Msg string
}

func (e *ParameterError) Error() string { return "parameter error: " + e.Msg }

// InternalInvariantViolation is a defensive check failure (a tile out
// of range, a negative line number). It is always a programming fault,
// never caused by input, and is logged with a correlation token for
// the operator to cross-reference.
type InternalInvariantViolation struct {
	Detail        string
	CorrelationID string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violation [%s]: %s", e.CorrelationID, e.Detail)
}

// WrapCancelled returns ErrCancelled chained to ctx's own error so
// callers can match on either with errors.Is.
func WrapCancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}
