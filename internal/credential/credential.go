package credential

import (
	"encoding/json"
	"errors"
	"time"

	credentialDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/credential"
)

var (
	ErrDefinitionNotFound = errors.New("credential definition not found")
	ErrCredentialNotFound = errors.New("person credential not found")
	ErrDuplicateCode      = errors.New("credential code already exists for kind")
)

const (
	KindCertification = "certification"
	KindTraining      = "training"
)

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

func ValidKind(kind string) bool {
	return kind == KindCertification || kind == KindTraining
}

// Definition is the domain view of a credential catalog entry.
type Definition struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ValidityMonths int       `json:"validity_months,omitempty"`
	AlertDays      []int     `json:"alert_days,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Record is the domain view of one person-credential row. Renewals with a
// different expiry create a new row; resubmissions with the same expiry
// update the existing one.
type Record struct {
	ID                 int64      `json:"id"`
	PersonID           int64      `json:"person_id"`
	Kind               string     `json:"kind"`
	Code               string     `json:"code"`
	IssuedAt           time.Time  `json:"issued_at"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	AlertDays          []int      `json:"alert_days,omitempty"`
	EvidenceRef        *string    `json:"evidence_ref,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (r *Record) Verify() {
	r.VerificationStatus = StatusVerified
	r.UpdatedAt = time.Now()
}

func (r *Record) Reject() {
	r.VerificationStatus = StatusRejected
	r.UpdatedAt = time.Now()
}

func DefinitionToDataModel(d *Definition) (*credentialDatamodel.CredentialDefinition, error) {
	alertDays, err := encodeIntList(d.AlertDays)
	if err != nil {
		return nil, err
	}
	return &credentialDatamodel.CredentialDefinition{
		ID:             d.ID,
		Kind:           d.Kind,
		Code:           d.Code,
		Name:           d.Name,
		ValidityMonths: d.ValidityMonths,
		AlertDays:      alertDays,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func DefinitionFromDataModel(dm *credentialDatamodel.CredentialDefinition) (*Definition, error) {
	alertDays, err := decodeIntList(dm.AlertDays)
	if err != nil {
		return nil, err
	}
	return &Definition{
		ID:             dm.ID,
		Kind:           dm.Kind,
		Code:           dm.Code,
		Name:           dm.Name,
		ValidityMonths: dm.ValidityMonths,
		AlertDays:      alertDays,
		IsActive:       dm.IsActive,
		CreatedAt:      dm.CreatedAt,
		UpdatedAt:      dm.UpdatedAt,
	}, nil
}

func RecordToDataModel(r *Record) (*credentialDatamodel.PersonCredential, error) {
	var alertDays *string
	if len(r.AlertDays) > 0 {
		encoded, err := encodeIntList(r.AlertDays)
		if err != nil {
			return nil, err
		}
		alertDays = &encoded
	}
	return &credentialDatamodel.PersonCredential{
		ID:                 r.ID,
		PersonID:           r.PersonID,
		Kind:               r.Kind,
		Code:               r.Code,
		IssuedAt:           r.IssuedAt,
		ExpiresAt:          r.ExpiresAt,
		AlertDays:          alertDays,
		EvidenceRef:        r.EvidenceRef,
		VerificationStatus: r.VerificationStatus,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

func RecordFromDataModel(dm *credentialDatamodel.PersonCredential) (*Record, error) {
	var alertDays []int
	if dm.AlertDays != nil {
		decoded, err := decodeIntList(*dm.AlertDays)
		if err != nil {
			return nil, err
		}
		alertDays = decoded
	}
	return &Record{
		ID:                 dm.ID,
		PersonID:           dm.PersonID,
		Kind:               dm.Kind,
		Code:               dm.Code,
		IssuedAt:           dm.IssuedAt,
		ExpiresAt:          dm.ExpiresAt,
		AlertDays:          alertDays,
		EvidenceRef:        dm.EvidenceRef,
		VerificationStatus: dm.VerificationStatus,
		CreatedAt:          dm.CreatedAt,
		UpdatedAt:          dm.UpdatedAt,
	}, nil
}

func encodeIntList(list []int) (string, error) {
	if list == nil {
		list = []int{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeIntList(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var list []int
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
