package worktype

import (
	"context"
	"log/slog"
	"time"

	"github.com/siteops/workforce-compliance/internal"
	worktypeDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/worktype"
	"github.com/siteops/workforce-compliance/internal/core/events"
)

type RepositoryAPI interface {
	CreateWorkType(wt *worktypeDatamodel.WorkType) error
	GetWorkTypeByCode(code string) (*worktypeDatamodel.WorkType, error)
	GetAllWorkTypes() ([]*worktypeDatamodel.WorkType, error)
	UpdateWorkType(wt *worktypeDatamodel.WorkType) error

	CreateOverride(o *worktypeDatamodel.Override) error
	GetOverrideByID(id int64) (*worktypeDatamodel.Override, error)
	GetOverridesForTarget(workTypeCode, scope, scopeRef string) ([]*worktypeDatamodel.Override, error)
	UpdateOverride(o *worktypeDatamodel.Override) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   RepositoryAPI
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) CreateWorkType(dto *CreateWorkTypeDTO) (*WorkType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetWorkTypeByCode(dto.Code)
	if err != nil && err != ErrWorkTypeNotFound {
		s.logger.Error("failed to check work type code", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create work type", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("work type code already exists", internal.ErrCodeDuplicateCode)
	}

	now := time.Now()
	wt := &WorkType{
		Code:                 dto.Code,
		GroupCode:            dto.GroupCode,
		Name:                 dto.Name,
		RequiredCertsAll:     dto.RequiredCertsAll,
		RequiredCertsAny:     dto.RequiredCertsAny,
		RequiredTrainingsAll: dto.RequiredTrainingsAll,
		RequiredTrainingsAny: dto.RequiredTrainingsAny,
		EnforcementMode:      dto.EnforcementMode,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	dm, err := ToDataModel(wt)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode work type", err)
	}

	if err := s.repo.CreateWorkType(dm); err != nil {
		s.logger.Error("failed to create work type", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create work type", err)
	}

	wt.ID = dm.ID
	s.logger.Info("work type created", "code", wt.Code, "enforcement", wt.EnforcementMode)
	return wt, nil
}

func (s *Service) GetWorkType(code string) (*WorkType, error) {
	dm, err := s.repo.GetWorkTypeByCode(code)
	if err != nil {
		if err == ErrWorkTypeNotFound {
			return nil, internal.NewNotFoundError("work type not found", internal.ErrCodeWorkTypeNotFound)
		}
		s.logger.Error("failed to get work type", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to get work type", err)
	}

	wt, err := FromDataModel(dm)
	if err != nil {
		s.logger.Error("work type row is corrupt", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to decode work type", err)
	}
	return wt, nil
}

func (s *Service) ListWorkTypes() ([]*WorkType, error) {
	rows, err := s.repo.GetAllWorkTypes()
	if err != nil {
		s.logger.Error("failed to list work types", "error", err)
		return nil, internal.NewInternalError("failed to list work types", err)
	}

	out := make([]*WorkType, 0, len(rows))
	for _, dm := range rows {
		wt, err := FromDataModel(dm)
		if err != nil {
			s.logger.Error("work type row is corrupt", "error", err, "code", dm.Code)
			return nil, internal.NewInternalError("failed to decode work type", err)
		}
		out = append(out, wt)
	}
	return out, nil
}

func (s *Service) DeactivateWorkType(code string) error {
	dm, err := s.repo.GetWorkTypeByCode(code)
	if err != nil {
		if err == ErrWorkTypeNotFound {
			return internal.NewNotFoundError("work type not found", internal.ErrCodeWorkTypeNotFound)
		}
		return internal.NewInternalError("failed to get work type", err)
	}

	dm.IsActive = false
	dm.UpdatedAt = time.Now()
	if err := s.repo.UpdateWorkType(dm); err != nil {
		s.logger.Error("failed to deactivate work type", "error", err, "code", code)
		return internal.NewInternalError("failed to deactivate work type", err)
	}

	s.logger.Info("work type deactivated", "code", code)
	return nil
}

// CreateOverride validates the patch document before it is stored so the
// eligibility resolver never encounters a patch it cannot parse.
func (s *Service) CreateOverride(dto *CreateOverrideDTO) (*Override, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetWorkTypeByCode(dto.WorkTypeCode); err != nil {
		if err == ErrWorkTypeNotFound {
			return nil, internal.NewNotFoundError("work type not found", internal.ErrCodeWorkTypeNotFound)
		}
		return nil, internal.NewInternalError("failed to check work type", err)
	}

	o := &Override{
		Scope:        dto.Scope,
		ScopeRef:     dto.ScopeRef,
		WorkTypeCode: dto.WorkTypeCode,
		Patch:        dto.Patch,
		Reason:       dto.Reason,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	dm := OverrideToDataModel(o)
	if err := s.repo.CreateOverride(dm); err != nil {
		s.logger.Error("failed to create override", "error", err,
			"work_type", dto.WorkTypeCode, "scope", dto.Scope, "scope_ref", dto.ScopeRef)
		return nil, internal.NewInternalError("failed to create override", err)
	}

	o.ID = dm.ID
	s.logger.Info("override created",
		"override_id", o.ID,
		"work_type", o.WorkTypeCode,
		"scope", o.Scope,
		"scope_ref", o.ScopeRef)
	return o, nil
}

func (s *Service) ApproveOverride(ctx context.Context, id int64, approver string) (*Override, error) {
	dm, err := s.repo.GetOverrideByID(id)
	if err != nil {
		if err == ErrOverrideNotFound {
			return nil, internal.NewNotFoundError("override not found", internal.ErrCodeOverrideNotFound)
		}
		return nil, internal.NewInternalError("failed to get override", err)
	}

	o := OverrideFromDataModel(dm)
	if o.IsApproved() {
		return nil, internal.NewConflictError("override already approved", internal.ErrCodeInvalidInput)
	}

	o.Approve(approver)
	if err := s.repo.UpdateOverride(OverrideToDataModel(o)); err != nil {
		s.logger.Error("failed to approve override", "error", err, "override_id", id)
		return nil, internal.NewInternalError("failed to approve override", err)
	}

	s.logger.Info("override approved", "override_id", id, "approved_by", approver)

	if s.bus != nil {
		event := events.NewOverrideApprovedEvent(o.ID, o.WorkTypeCode, o.Scope, o.ScopeRef, approver)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish override approved event", "error", err, "override_id", id)
		}
	}

	return o, nil
}

func (s *Service) DeactivateOverride(id int64) error {
	dm, err := s.repo.GetOverrideByID(id)
	if err != nil {
		if err == ErrOverrideNotFound {
			return internal.NewNotFoundError("override not found", internal.ErrCodeOverrideNotFound)
		}
		return internal.NewInternalError("failed to get override", err)
	}

	dm.IsActive = false
	if err := s.repo.UpdateOverride(dm); err != nil {
		s.logger.Error("failed to deactivate override", "error", err, "override_id", id)
		return internal.NewInternalError("failed to deactivate override", err)
	}

	s.logger.Info("override deactivated", "override_id", id)
	return nil
}

func (s *Service) ListOverrides(workTypeCode, scope, scopeRef string) ([]*Override, error) {
	rows, err := s.repo.GetOverridesForTarget(workTypeCode, scope, scopeRef)
	if err != nil {
		s.logger.Error("failed to list overrides", "error", err, "work_type", workTypeCode)
		return nil, internal.NewInternalError("failed to list overrides", err)
	}

	out := make([]*Override, 0, len(rows))
	for _, dm := range rows {
		out = append(out, OverrideFromDataModel(dm))
	}
	return out, nil
}
