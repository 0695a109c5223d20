// Package ingest validates uploaded productivity and demand spreadsheets.
//
// Structural problems (wrong columns, unknown categories, missing form
// fields) reject the whole file with a *ValidationError. Value problems are
// collected per row or cell so the caller can fix many of them in one
// round-trip; the remaining valid rows still proceed.
package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
)

// ValidationError rejects an upload as a whole. Messages are returned to the
// client verbatim.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unwrap lets callers match the error with errors.Is(err, apperrors.ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

func fileErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Messages: []string{fmt.Sprintf(format, args...)}}
}

// bracketList renders names as "[a, b]".
func bracketList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
