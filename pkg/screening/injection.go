// Package screening rejects free-text input that libinjection recognises as
// SQL injection and reports every hit to the security auditor.
package screening

import (
	"context"
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/audit"
)

// Finding describes one flagged value.
type Finding struct {
	Field       string
	Value       string
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckText runs libinjection over value. Returns nil when the value is clean.
//
//	CheckText("name", "Inbound dock")          // nil
//	CheckText("name", "'; DROP TABLE users--") // &Finding{Fingerprint: "s;T(c" ...}
func CheckText(field, value string) *Finding {
	if value == "" {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &Finding{Field: field, Value: value, Fingerprint: fingerprint}
}

// Field is a named free-text value to screen.
type Field struct {
	Name  string
	Value string
}

// Screener checks free-text fields and audits what it rejects.
type Screener struct {
	auditor *audit.SecurityAuditor
}

// NewScreener creates a screener reporting to auditor.
func NewScreener(auditor *audit.SecurityAuditor) *Screener {
	return &Screener{auditor: auditor}
}

// Screen returns an error wrapping apperrors.ErrInvalidInput for the first
// flagged field, after auditing it. source names the kind of record being
// written (e.g. "warehouse").
func (s *Screener) Screen(ctx context.Context, source string, fields ...Field) error {
	for _, f := range fields {
		finding := CheckText(f.Name, f.Value)
		if finding == nil {
			continue
		}
		if s.auditor != nil {
			s.auditor.LogInjectionAttempt(ctx, audit.InjectionDetails{
				Source:      source,
				Field:       finding.Field,
				Value:       finding.Value,
				Fingerprint: finding.Fingerprint,
			})
		}
		return fmt.Errorf("%w: %s contains disallowed content", apperrors.ErrInvalidInput, f.Name)
	}
	return nil
}
