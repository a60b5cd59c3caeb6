// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError names one offending preference field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or out-of-range preference fields. It is
// surfaced to the caller unmodified and never retried internally.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid preferences"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid preferences: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is a preference validation failure
// and returns it when so.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CatalogError wraps a catalog failure mid-query. It propagates as-is; the
// engine performs no retries.
type CatalogError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog unavailable: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying catalog error.
func (e *CatalogError) Unwrap() error { return e.Err }

// IsCatalogError reports whether err is a catalog availability failure.
func IsCatalogError(err error) bool {
	var ce *CatalogError
	return errors.As(err, &ce)
}
