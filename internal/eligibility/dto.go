package eligibility

import (
	"encoding/json"
	"fmt"

	"github.com/siteops/workforce-compliance/internal"
)

// CheckRequestDTO is the transport shape of an eligibility check request.
// Assignees are decoded as json.Number so a malformed identifier is rejected
// by validation here, before any store access, instead of panicking in the
// decoder or reaching the database.
type CheckRequestDTO struct {
	Scope        string        `json:"scope"`
	ScopeRef     string        `json:"scope_ref"`
	WorkTypeCode string        `json:"work_type_code"`
	AsOfDate     string        `json:"as_of_date,omitempty"`
	Assignees    []json.Number `json:"assignees"`
}

func (d CheckRequestDTO) Validate() error {
	if d.WorkTypeCode == "" {
		return internal.NewValidationError("work_type_code is required", internal.ErrCodeInvalidInput)
	}
	if !ValidScope(d.Scope) {
		return internal.NewValidationError(
			fmt.Sprintf("scope must be one of project, site, permit; got %q", d.Scope),
			internal.ErrCodeInvalidScope)
	}
	if d.ScopeRef == "" {
		return internal.NewValidationError("scope_ref is required", internal.ErrCodeInvalidInput)
	}
	if len(d.Assignees) == 0 {
		return internal.NewValidationError("assignees is required", internal.ErrCodeInvalidAssignees)
	}
	if _, err := d.AssigneeIDs(); err != nil {
		return err
	}
	return nil
}

// AssigneeIDs parses the assignee list into person ids. Non-numeric or
// non-positive entries are invalid input.
func (d CheckRequestDTO) AssigneeIDs() ([]int64, error) {
	ids := make([]int64, 0, len(d.Assignees))
	for _, raw := range d.Assignees {
		id, err := raw.Int64()
		if err != nil || id <= 0 {
			return nil, internal.NewValidationError(
				fmt.Sprintf("invalid person identifier %q", raw.String()),
				internal.ErrCodeInvalidAssignees)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
