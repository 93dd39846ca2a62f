package eligibility

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/siteops/workforce-compliance/internal"
	"github.com/siteops/workforce-compliance/internal/core/events"
)

// CredentialStore supplies all credential records of the given kind for a set
// of people, read-only.
type CredentialStore interface {
	PersonCredentials(ctx context.Context, personIDs []int64, kind string) ([]CredentialRecord, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service runs eligibility checks. It is stateless and request-scoped: every
// check is a pure function of the request and the current store contents, so
// concurrent checks need no coordination.
type Service struct {
	resolver *Resolver
	creds    CredentialStore
	bus      EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(rules RuleStore, creds CredentialStore, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		resolver: NewResolver(rules, logger),
		creds:    creds,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Check validates the request, resolves the effective rule, evaluates every
// assignee and applies the enforcement gate. Input validation happens before
// any store access; store failures surface as errors and are never defaulted
// to an eligibility verdict.
func (s *Service) Check(ctx context.Context, dto CheckRequestDTO) (*CheckResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("eligibility check rejected", "error", err, "work_type", dto.WorkTypeCode)
		return nil, err
	}

	asOf, err := NormalizeAsOf(dto.AsOfDate, s.now())
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}

	ids, err := dto.AssigneeIDs()
	if err != nil {
		return nil, err
	}

	rule, err := s.resolver.Resolve(ctx, dto.WorkTypeCode, dto.Scope, dto.ScopeRef)
	if err != nil {
		return nil, s.mapResolveError(err, dto)
	}

	selected, err := s.selectCredentials(ctx, ids, asOf)
	if err != nil {
		s.logger.Error("failed to load person credentials",
			"error", err,
			"work_type", dto.WorkTypeCode,
			"scope", dto.Scope,
			"scope_ref", dto.ScopeRef)
		return nil, internal.NewInternalError("failed to load credentials", err)
	}

	results, teamStrict := Evaluate(rule, ids, selected, asOf)
	results, teamEligible := ApplyEnforcement(results, teamStrict, rule.Enforcement)

	result := &CheckResult{
		WorkTypeCode:       rule.WorkTypeCode,
		Eligible:           teamEligible,
		AssigneeResults:    results,
		StrictTeamEligible: teamStrict,
		RuleTrace: RuleTrace{
			BaseRule:         rule.WorkTypeCode,
			Enforcement:      rule.Enforcement,
			OverridesApplied: rule.OverridesApplied,
		},
	}

	s.publishCheckCompleted(ctx, dto, result)

	return result, nil
}

// ResolveRule exposes the resolved rule for inspection without running an
// evaluation.
func (s *Service) ResolveRule(ctx context.Context, workTypeCode, scope, scopeRef string) (*EffectiveRule, error) {
	if workTypeCode == "" {
		return nil, internal.NewValidationError("work_type_code is required", internal.ErrCodeInvalidInput)
	}
	if !ValidScope(scope) {
		return nil, internal.NewValidationError("scope must be one of project, site, permit", internal.ErrCodeInvalidScope)
	}

	rule, err := s.resolver.Resolve(ctx, workTypeCode, scope, scopeRef)
	if err != nil {
		return nil, s.mapResolveError(err, CheckRequestDTO{WorkTypeCode: workTypeCode, Scope: scope, ScopeRef: scopeRef})
	}
	return rule, nil
}

func (s *Service) mapResolveError(err error, dto CheckRequestDTO) error {
	switch {
	case errors.Is(err, ErrWorkTypeNotFound):
		return internal.NewNotFoundError("work type not found", internal.ErrCodeWorkTypeNotFound)
	case errors.Is(err, ErrMalformedPatch):
		appErr := internal.NewInternalError("override chain could not be resolved", err)
		appErr.Code = internal.ErrCodeMalformedPatch
		return appErr
	default:
		s.logger.Error("failed to resolve compliance rule",
			"error", err,
			"work_type", dto.WorkTypeCode,
			"scope", dto.Scope,
			"scope_ref", dto.ScopeRef)
		return internal.NewInternalError("failed to resolve compliance rule", err)
	}
}

// selectCredentials loads both credential kinds for the assignees and reduces
// each (person, code) group to its single authoritative record.
func (s *Service) selectCredentials(ctx context.Context, ids []int64, asOf time.Time) (map[int64]PersonCredentials, error) {
	certs, err := s.creds.PersonCredentials(ctx, ids, KindCertification)
	if err != nil {
		return nil, err
	}

	trainings, err := s.creds.PersonCredentials(ctx, ids, KindTraining)
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]PersonCredentials, len(ids))
	for _, id := range ids {
		selected[id] = PersonCredentials{
			Certs:     map[string]*CredentialRecord{},
			Trainings: map[string]*CredentialRecord{},
		}
	}

	for person, byCode := range groupRecords(certs) {
		pc := selected[person]
		for code, records := range byCode {
			pc.Certs[code] = SelectAuthoritative(records, asOf)
		}
		selected[person] = pc
	}

	for person, byCode := range groupRecords(trainings) {
		pc := selected[person]
		for code, records := range byCode {
			pc.Trainings[code] = SelectAuthoritative(records, asOf)
		}
		selected[person] = pc
	}

	return selected, nil
}

func groupRecords(records []CredentialRecord) map[int64]map[string][]CredentialRecord {
	grouped := make(map[int64]map[string][]CredentialRecord)
	for _, rec := range records {
		byCode, ok := grouped[rec.PersonID]
		if !ok {
			byCode = make(map[string][]CredentialRecord)
			grouped[rec.PersonID] = byCode
		}
		byCode[rec.Code] = append(byCode[rec.Code], rec)
	}
	return grouped
}

func (s *Service) publishCheckCompleted(ctx context.Context, dto CheckRequestDTO, result *CheckResult) {
	if s.bus == nil {
		return
	}

	var expiring []events.ExpiringCredential
	for _, res := range result.AssigneeResults {
		for _, note := range res.ExpiringSoon {
			code, days, ok := parseExpiryNote(note)
			if !ok {
				continue
			}
			expiring = append(expiring, events.ExpiringCredential{
				PersonID: res.PersonID,
				Code:     code,
				DaysLeft: days,
			})
		}
	}

	event := events.NewCheckCompletedEvent(
		result.WorkTypeCode,
		dto.Scope,
		dto.ScopeRef,
		result.Eligible,
		result.StrictTeamEligible,
		result.RuleTrace.Enforcement,
		expiring,
		len(result.AssigneeResults),
	)

	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish check completed event", "error", err)
	}
}

func parseExpiryNote(note string) (string, int, bool) {
	idx := strings.LastIndex(note, ":D-")
	if idx < 0 {
		return "", 0, false
	}
	days, err := strconv.Atoi(note[idx+len(":D-"):])
	if err != nil {
		return "", 0, false
	}
	return note[:idx], days, true
}
