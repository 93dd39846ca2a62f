package worktype

import (
	"encoding/json"
	"fmt"

	"github.com/siteops/workforce-compliance/internal"
	"github.com/siteops/workforce-compliance/internal/eligibility"
)

type CreateWorkTypeDTO struct {
	Code                 string   `json:"code"`
	GroupCode            string   `json:"group_code,omitempty"`
	Name                 string   `json:"name"`
	RequiredCertsAll     []string `json:"required_certs_all,omitempty"`
	RequiredCertsAny     []string `json:"required_certs_any,omitempty"`
	RequiredTrainingsAll []string `json:"required_trainings_all,omitempty"`
	RequiredTrainingsAny []string `json:"required_trainings_any,omitempty"`
	EnforcementMode      string   `json:"enforcement_mode,omitempty"`
}

func (d *CreateWorkTypeDTO) Validate() error {
	if d.Code == "" {
		return internal.NewValidationError("code is required", internal.ErrCodeInvalidInput)
	}
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeInvalidInput)
	}
	if d.EnforcementMode == "" {
		d.EnforcementMode = eligibility.ModeBlock
	}
	if d.EnforcementMode != eligibility.ModeBlock && d.EnforcementMode != eligibility.ModeWarn {
		return internal.NewValidationError(
			fmt.Sprintf("enforcement_mode must be BLOCK or WARN; got %q", d.EnforcementMode),
			internal.ErrCodeInvalidInput)
	}
	return nil
}

type CreateOverrideDTO struct {
	Scope        string          `json:"scope"`
	ScopeRef     string          `json:"scope_ref"`
	WorkTypeCode string          `json:"work_type_code"`
	Patch        json.RawMessage `json:"patch"`
	Reason       string          `json:"reason,omitempty"`
}

// Validate checks the override target and the patch document shape. A patch
// that the resolver would reject at read time is rejected here at write time
// instead, so a malformed document never enters an override chain.
func (d *CreateOverrideDTO) Validate() error {
	if d.WorkTypeCode == "" {
		return internal.NewValidationError("work_type_code is required", internal.ErrCodeInvalidInput)
	}
	if !eligibility.ValidScope(d.Scope) {
		return internal.NewValidationError(
			fmt.Sprintf("scope must be one of project, site, permit; got %q", d.Scope),
			internal.ErrCodeInvalidScope)
	}
	if d.ScopeRef == "" {
		return internal.NewValidationError("scope_ref is required", internal.ErrCodeInvalidInput)
	}
	if len(d.Patch) == 0 {
		return internal.NewValidationError("patch is required", internal.ErrCodeInvalidInput)
	}
	if _, err := eligibility.ParsePatch(d.Patch); err != nil {
		return internal.NewValidationError(
			fmt.Sprintf("invalid patch: %v", err),
			internal.ErrCodeMalformedPatch)
	}
	return nil
}
