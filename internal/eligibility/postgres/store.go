package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/siteops/workforce-compliance/internal/core/datamodel/worktype"
	"github.com/siteops/workforce-compliance/internal/eligibility"
	"gorm.io/gorm"
)

// Store is the read-only view the eligibility engine has over work types,
// overrides and person credentials. It never writes; mutations belong to the
// worktype and credential modules.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WorkTypeRuleByCode loads the base rule for a work type code. A missing row
// returns (nil, nil); the resolver turns that into its not-found error.
func (s *Store) WorkTypeRuleByCode(ctx context.Context, code string) (*eligibility.BaseRule, error) {
	var wt worktype.WorkType
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&wt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	rule := &eligibility.BaseRule{
		WorkTypeCode: wt.Code,
		GroupCode:    wt.GroupCode,
		Name:         wt.Name,
		Enforcement:  wt.EnforcementMode,
		Active:       wt.IsActive,
	}

	lists := []struct {
		raw  string
		dest *[]string
	}{
		{wt.RequiredCertsAll, &rule.RequiredCertsAll},
		{wt.RequiredCertsAny, &rule.RequiredCertsAny},
		{wt.RequiredTrainingsAll, &rule.RequiredTrainingsAll},
		{wt.RequiredTrainingsAny, &rule.RequiredTrainingsAny},
	}
	for _, l := range lists {
		decoded, err := decodeStringList(l.raw)
		if err != nil {
			return nil, fmt.Errorf("work type %s has corrupt requirement list: %w", code, err)
		}
		*l.dest = decoded
	}

	return rule, nil
}

// ActiveOverrides returns the active override chain targeting the given work
// type and scope. Ordering is approved_at ascending with unapproved rows last,
// created_at as tiebreak; the CASE expression keeps the null ordering portable
// across postgres and sqlite.
func (s *Store) ActiveOverrides(ctx context.Context, workTypeCode, scope, scopeRef string) ([]eligibility.OverrideRecord, error) {
	var rows []worktype.Override
	err := s.db.WithContext(ctx).
		Where("work_type_code = ? AND scope = ? AND scope_ref = ? AND is_active = ?",
			workTypeCode, scope, scopeRef, true).
		Order("CASE WHEN approved_at IS NULL THEN 1 ELSE 0 END, approved_at ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]eligibility.OverrideRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, eligibility.OverrideRecord{
			ID:         row.ID,
			Patch:      []byte(row.Patch),
			ApprovedAt: row.ApprovedAt,
			CreatedAt:  row.CreatedAt,
		})
	}
	return records, nil
}

// credentialRow joins a person credential with its definition so the alert
// threshold fallback chain resolves in one query.
type credentialRow struct {
	PersonID            int64
	Kind                string
	Code                string
	IssuedAt            time.Time
	ExpiresAt           *time.Time
	VerificationStatus  string
	AlertDays           *string
	DefinitionAlertDays *string
}

// PersonCredentials returns every credential record of one kind for the given
// people, verified or not. Selection of the authoritative record per code
// happens in the engine, not in SQL.
func (s *Store) PersonCredentials(ctx context.Context, personIDs []int64, kind string) ([]eligibility.CredentialRecord, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	var rows []credentialRow
	err := s.db.WithContext(ctx).
		Table("person_credentials pc").
		Select(`pc.person_id, pc.kind, pc.code, pc.issued_at, pc.expires_at,
			pc.verification_status, pc.alert_days,
			cd.alert_days AS definition_alert_days`).
		Joins("LEFT JOIN credential_definitions cd ON cd.kind = pc.kind AND cd.code = pc.code").
		Where("pc.person_id IN ? AND pc.kind = ?", personIDs, kind).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]eligibility.CredentialRecord, 0, len(rows))
	for _, row := range rows {
		alertDays, err := decodeIntList(row.AlertDays)
		if err != nil {
			return nil, fmt.Errorf("credential %s for person %d has corrupt alert_days: %w", row.Code, row.PersonID, err)
		}
		defAlertDays, err := decodeIntList(row.DefinitionAlertDays)
		if err != nil {
			return nil, fmt.Errorf("definition %s has corrupt alert_days: %w", row.Code, err)
		}

		records = append(records, eligibility.CredentialRecord{
			PersonID:            row.PersonID,
			Kind:                row.Kind,
			Code:                row.Code,
			IssuedAt:            row.IssuedAt,
			ExpiresAt:           row.ExpiresAt,
			Status:              row.VerificationStatus,
			AlertDays:           alertDays,
			DefinitionAlertDays: defAlertDays,
		})
	}
	return records, nil
}

func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func decodeIntList(raw *string) ([]int, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var list []int
	if err := json.Unmarshal([]byte(*raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
