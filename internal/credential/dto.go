package credential

import (
	"fmt"
	"time"

	"github.com/siteops/workforce-compliance/internal"
)

type CreateDefinitionDTO struct {
	Kind           string `json:"kind"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	ValidityMonths int    `json:"validity_months,omitempty"`
	AlertDays      []int  `json:"alert_days,omitempty"`
}

func (d *CreateDefinitionDTO) Validate() error {
	if !ValidKind(d.Kind) {
		return internal.NewValidationError(
			fmt.Sprintf("kind must be certification or training; got %q", d.Kind),
			internal.ErrCodeInvalidInput)
	}
	if d.Code == "" {
		return internal.NewValidationError("code is required", internal.ErrCodeInvalidInput)
	}
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeInvalidInput)
	}
	if d.ValidityMonths < 0 {
		return internal.NewValidationError("validity_months must not be negative", internal.ErrCodeInvalidInput)
	}
	for _, days := range d.AlertDays {
		if days <= 0 {
			return internal.NewValidationError("alert_days entries must be positive", internal.ErrCodeInvalidInput)
		}
	}
	return nil
}

// SubmitRecordDTO carries a person credential submission. ExpiresAt omitted
// means the credential never expires.
type SubmitRecordDTO struct {
	PersonID    int64      `json:"person_id"`
	Kind        string     `json:"kind"`
	Code        string     `json:"code"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	AlertDays   []int      `json:"alert_days,omitempty"`
	EvidenceRef *string    `json:"evidence_ref,omitempty"`
}

func (d *SubmitRecordDTO) Validate() error {
	if d.PersonID <= 0 {
		return internal.NewValidationError("person_id is required", internal.ErrCodeInvalidInput)
	}
	if !ValidKind(d.Kind) {
		return internal.NewValidationError(
			fmt.Sprintf("kind must be certification or training; got %q", d.Kind),
			internal.ErrCodeInvalidInput)
	}
	if d.Code == "" {
		return internal.NewValidationError("code is required", internal.ErrCodeInvalidInput)
	}
	if d.IssuedAt.IsZero() {
		return internal.NewValidationError("issued_at is required", internal.ErrCodeInvalidInput)
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(d.IssuedAt) {
		return internal.NewValidationError("expires_at must not precede issued_at", internal.ErrCodeInvalidInput)
	}
	return nil
}
