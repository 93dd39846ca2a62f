package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCheckCompleted     = "eligibility.check_completed"
	EventTypeOverrideApproved   = "override.approved"
	EventTypeCredentialVerified = "credential.verified"
)

// ExpiringCredential flags a credential that falls inside its alert window at
// the time an eligibility check ran.
type ExpiringCredential struct {
	PersonID int64  `json:"person_id"`
	Code     string `json:"code"`
	DaysLeft int    `json:"days_left"`
}

type CheckCompletedEvent struct {
	BaseEvent
	WorkTypeCode  string               `json:"work_type_code"`
	Scope         string               `json:"scope"`
	ScopeRef      string               `json:"scope_ref"`
	Eligible      bool                 `json:"eligible"`
	StrictTeam    bool                 `json:"strict_team_eligible"`
	Enforcement   string               `json:"enforcement"`
	ExpiringSoon  []ExpiringCredential `json:"expiring_soon"`
	AssigneeCount int                  `json:"assignee_count"`
}

func NewCheckCompletedEvent(workTypeCode, scope, scopeRef string, eligible, strictTeam bool, enforcement string, expiring []ExpiringCredential, assigneeCount int) *CheckCompletedEvent {
	return &CheckCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCheckCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"work_type_code":       workTypeCode,
				"scope":                scope,
				"scope_ref":            scopeRef,
				"eligible":             eligible,
				"strict_team_eligible": strictTeam,
				"enforcement":          enforcement,
				"assignee_count":       assigneeCount,
			},
		},
		WorkTypeCode:  workTypeCode,
		Scope:         scope,
		ScopeRef:      scopeRef,
		Eligible:      eligible,
		StrictTeam:    strictTeam,
		Enforcement:   enforcement,
		ExpiringSoon:  expiring,
		AssigneeCount: assigneeCount,
	}
}

type OverrideApprovedEvent struct {
	BaseEvent
	OverrideID   int64  `json:"override_id"`
	WorkTypeCode string `json:"work_type_code"`
	Scope        string `json:"scope"`
	ScopeRef     string `json:"scope_ref"`
	ApprovedBy   string `json:"approved_by"`
}

func NewOverrideApprovedEvent(overrideID int64, workTypeCode, scope, scopeRef, approvedBy string) *OverrideApprovedEvent {
	return &OverrideApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOverrideApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"override_id":    overrideID,
				"work_type_code": workTypeCode,
				"scope":          scope,
				"scope_ref":      scopeRef,
				"approved_by":    approvedBy,
			},
		},
		OverrideID:   overrideID,
		WorkTypeCode: workTypeCode,
		Scope:        scope,
		ScopeRef:     scopeRef,
		ApprovedBy:   approvedBy,
	}
}

type CredentialVerifiedEvent struct {
	BaseEvent
	PersonID int64  `json:"person_id"`
	Kind     string `json:"kind"`
	Code     string `json:"code"`
	Status   string `json:"status"`
}

func NewCredentialVerifiedEvent(personID int64, kind, code, status string) *CredentialVerifiedEvent {
	return &CredentialVerifiedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCredentialVerified,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"person_id": personID,
				"kind":      kind,
				"code":      code,
				"status":    status,
			},
		},
		PersonID: personID,
		Kind:     kind,
		Code:     code,
		Status:   status,
	}
}
