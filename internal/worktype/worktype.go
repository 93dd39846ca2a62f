package worktype

import (
	"encoding/json"
	"errors"
	"time"

	worktypeDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/worktype"
)

var (
	ErrWorkTypeNotFound = errors.New("work type not found")
	ErrDuplicateCode    = errors.New("work type code already exists")
	ErrOverrideNotFound = errors.New("override not found")
)

// WorkType is the domain view of a base compliance rule. Requirement lists
// are plain slices here; JSON encoding is a storage concern.
type WorkType struct {
	ID                   int64     `json:"id"`
	Code                 string    `json:"code"`
	GroupCode            string    `json:"group_code,omitempty"`
	Name                 string    `json:"name"`
	RequiredCertsAll     []string  `json:"required_certs_all"`
	RequiredCertsAny     []string  `json:"required_certs_any"`
	RequiredTrainingsAll []string  `json:"required_trainings_all"`
	RequiredTrainingsAny []string  `json:"required_trainings_any"`
	EnforcementMode      string    `json:"enforcement_mode"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (w *WorkType) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
}

// Override is the domain view of a scoped rule patch. Patch stays raw JSON
// end to end; validation happens on write, interpretation happens in the
// eligibility resolver.
type Override struct {
	ID           int64           `json:"id"`
	Scope        string          `json:"scope"`
	ScopeRef     string          `json:"scope_ref"`
	WorkTypeCode string          `json:"work_type_code"`
	Patch        json.RawMessage `json:"patch"`
	Reason       string          `json:"reason,omitempty"`
	ApprovedBy   *string         `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (o *Override) IsApproved() bool {
	return o.ApprovedAt != nil
}

func (o *Override) Approve(approver string) {
	now := time.Now()
	o.ApprovedBy = &approver
	o.ApprovedAt = &now
}

func ToDataModel(w *WorkType) (*worktypeDatamodel.WorkType, error) {
	lists := make([]string, 4)
	for i, l := range [][]string{
		w.RequiredCertsAll, w.RequiredCertsAny, w.RequiredTrainingsAll, w.RequiredTrainingsAny,
	} {
		encoded, err := encodeList(l)
		if err != nil {
			return nil, err
		}
		lists[i] = encoded
	}

	return &worktypeDatamodel.WorkType{
		ID:                   w.ID,
		Code:                 w.Code,
		GroupCode:            w.GroupCode,
		Name:                 w.Name,
		RequiredCertsAll:     lists[0],
		RequiredCertsAny:     lists[1],
		RequiredTrainingsAll: lists[2],
		RequiredTrainingsAny: lists[3],
		EnforcementMode:      w.EnforcementMode,
		IsActive:             w.IsActive,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}, nil
}

func FromDataModel(dm *worktypeDatamodel.WorkType) (*WorkType, error) {
	w := &WorkType{
		ID:              dm.ID,
		Code:            dm.Code,
		GroupCode:       dm.GroupCode,
		Name:            dm.Name,
		EnforcementMode: dm.EnforcementMode,
		IsActive:        dm.IsActive,
		CreatedAt:       dm.CreatedAt,
		UpdatedAt:       dm.UpdatedAt,
	}

	for _, pair := range []struct {
		raw  string
		dest *[]string
	}{
		{dm.RequiredCertsAll, &w.RequiredCertsAll},
		{dm.RequiredCertsAny, &w.RequiredCertsAny},
		{dm.RequiredTrainingsAll, &w.RequiredTrainingsAll},
		{dm.RequiredTrainingsAny, &w.RequiredTrainingsAny},
	} {
		decoded, err := decodeList(pair.raw)
		if err != nil {
			return nil, err
		}
		*pair.dest = decoded
	}

	return w, nil
}

func OverrideToDataModel(o *Override) *worktypeDatamodel.Override {
	return &worktypeDatamodel.Override{
		ID:           o.ID,
		Scope:        o.Scope,
		ScopeRef:     o.ScopeRef,
		WorkTypeCode: o.WorkTypeCode,
		Patch:        string(o.Patch),
		Reason:       o.Reason,
		ApprovedBy:   o.ApprovedBy,
		ApprovedAt:   o.ApprovedAt,
		IsActive:     o.IsActive,
		CreatedAt:    o.CreatedAt,
	}
}

func OverrideFromDataModel(dm *worktypeDatamodel.Override) *Override {
	return &Override{
		ID:           dm.ID,
		Scope:        dm.Scope,
		ScopeRef:     dm.ScopeRef,
		WorkTypeCode: dm.WorkTypeCode,
		Patch:        json.RawMessage(dm.Patch),
		Reason:       dm.Reason,
		ApprovedBy:   dm.ApprovedBy,
		ApprovedAt:   dm.ApprovedAt,
		IsActive:     dm.IsActive,
		CreatedAt:    dm.CreatedAt,
	}
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
