package eligibility

import (
	"errors"
	"time"
)

// Credential kinds. Certifications and trainings share one record shape and
// one selection algorithm; they differ only in which requirement lists
// reference them and in their default alert window.
const (
	KindCertification = "certification"
	KindTraining      = "training"
)

// Enforcement modes. BLOCK makes non-compliance prevent assignment, WARN
// surfaces it without preventing anything.
const (
	ModeBlock = "BLOCK"
	ModeWarn  = "WARN"
)

// Verification statuses of a person credential record.
const (
	StatusVerified = "verified"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Override scopes, narrowest last.
const (
	ScopeProject = "project"
	ScopeSite    = "site"
	ScopePermit  = "permit"
)

// Default alert windows, in days, applied when neither the record nor its
// definition configures thresholds.
const (
	DefaultCertAlertDays     = 90
	DefaultTrainingAlertDays = 60
)

var (
	ErrWorkTypeNotFound = errors.New("work type not found or inactive")
	ErrMalformedPatch   = errors.New("malformed override patch")
	ErrInvalidDate      = errors.New("invalid as-of date")
)

func ValidScope(scope string) bool {
	switch scope {
	case ScopeProject, ScopeSite, ScopePermit:
		return true
	}
	return false
}

// CredentialRecord is one row of a person holding a credential, as supplied
// by the collaborator store. DefinitionAlertDays carries the catalog-level
// alert thresholds used when the record itself has none.
type CredentialRecord struct {
	PersonID            int64
	Kind                string
	Code                string
	IssuedAt            time.Time
	ExpiresAt           *time.Time // nil means non-expiring
	Status              string
	AlertDays           []int
	DefinitionAlertDays []int
}

// BaseRule is the compliance rule a work type carries before any overrides
// are folded in.
type BaseRule struct {
	WorkTypeCode         string
	GroupCode            string
	Name                 string
	RequiredCertsAll     []string
	RequiredCertsAny     []string
	RequiredTrainingsAll []string
	RequiredTrainingsAny []string
	Enforcement          string
	Active               bool
}

// OverrideRecord is a scoped patch row. Patch is the raw JSON document;
// parsing happens during resolution so a malformed patch aborts the whole
// chain rather than being skipped.
type OverrideRecord struct {
	ID         int64
	Patch      []byte
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

// EffectiveRule is the result of folding the override chain into a base rule.
type EffectiveRule struct {
	WorkTypeCode         string   `json:"work_type_code"`
	RequiredCertsAll     []string `json:"required_certs_all"`
	RequiredCertsAny     []string `json:"required_certs_any"`
	RequiredTrainingsAll []string `json:"required_trainings_all"`
	RequiredTrainingsAny []string `json:"required_trainings_any"`
	Enforcement          string   `json:"enforcement"`
	OverridesApplied     int      `json:"overrides_applied"`
}

type AssigneeResult struct {
	PersonID         int64    `json:"person_id"`
	Eligible         bool     `json:"eligible"`
	MissingCerts     []string `json:"missing_certs"`
	MissingTrainings []string `json:"missing_trainings"`
	ExpiringSoon     []string `json:"expiring_soon"`

	// StrictEligible is the pre-gate verdict. It stays strict even under
	// WARN so traces and alerting see compliance reality.
	StrictEligible bool `json:"-"`
}

type RuleTrace struct {
	BaseRule         string `json:"base_rule"`
	Enforcement      string `json:"enforcement"`
	OverridesApplied int    `json:"overrides_applied"`
}

// CheckResult is assembled fresh per request and never persisted.
type CheckResult struct {
	WorkTypeCode    string           `json:"work_type_code"`
	Eligible        bool             `json:"eligible"`
	AssigneeResults []AssigneeResult `json:"assignee_results"`
	RuleTrace       RuleTrace        `json:"rule_trace"`

	StrictTeamEligible bool `json:"-"`
}
