package credential

import "time"

// CredentialDefinition is the catalog entry for a certification or training
// code: how long it is valid and when expiry alerts should fire.
type CredentialDefinition struct {
	ID             int64     `gorm:"primaryKey"`
	Kind           string    `gorm:"column:kind;not null;uniqueIndex:idx_credential_defs_kind_code"` // certification | training
	Code           string    `gorm:"column:code;not null;uniqueIndex:idx_credential_defs_kind_code"`
	Name           string    `gorm:"column:name;not null"`
	ValidityMonths int       `gorm:"column:validity_months"`
	AlertDays      string    `gorm:"column:alert_days"` // JSON-encoded int array
	IsActive       bool      `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CredentialDefinition) TableName() string {
	return "credential_definitions"
}

// PersonCredential is one submitted record of a person holding a credential.
// A person may hold several rows for the same code (renewals, resubmissions);
// the eligibility selector decides which one is authoritative at read time.
type PersonCredential struct {
	ID                 int64      `gorm:"primaryKey"`
	PersonID           int64      `gorm:"column:person_id;not null;index"`
	Kind               string     `gorm:"column:kind;not null"`
	Code               string     `gorm:"column:code;not null;index"`
	IssuedAt           time.Time  `gorm:"column:issued_at"`
	ExpiresAt          *time.Time `gorm:"column:expires_at"` // nil means non-expiring
	AlertDays          *string    `gorm:"column:alert_days"` // JSON-encoded int array, overrides definition
	EvidenceRef        *string    `gorm:"column:evidence_ref"`
	VerificationStatus string     `gorm:"column:verification_status;default:pending"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (PersonCredential) TableName() string {
	return "person_credentials"
}
