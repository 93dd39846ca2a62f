package credential

import (
	"context"
	"log/slog"
	"time"

	"github.com/siteops/workforce-compliance/internal"
	credentialDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/credential"
	"github.com/siteops/workforce-compliance/internal/core/events"
)

type RepositoryAPI interface {
	CreateDefinition(def *credentialDatamodel.CredentialDefinition) error
	GetDefinition(kind, code string) (*credentialDatamodel.CredentialDefinition, error)
	GetAllDefinitions(kind string) ([]*credentialDatamodel.CredentialDefinition, error)
	UpdateDefinition(def *credentialDatamodel.CredentialDefinition) error

	FindRecord(personID int64, code string, expiresAt *time.Time) (*credentialDatamodel.PersonCredential, error)
	GetRecordByID(id int64) (*credentialDatamodel.PersonCredential, error)
	GetRecordsForPerson(personID int64) ([]*credentialDatamodel.PersonCredential, error)
	CreateRecord(rec *credentialDatamodel.PersonCredential) error
	UpdateRecord(rec *credentialDatamodel.PersonCredential) error
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

func (s *Service) CreateDefinition(dto *CreateDefinitionDTO) (*Definition, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetDefinition(dto.Kind, dto.Code)
	if err != nil && err != ErrDefinitionNotFound {
		s.logger.Error("failed to check definition code", "error", err, "kind", dto.Kind, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create definition", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("credential code already exists", internal.ErrCodeDuplicateCode)
	}

	now := time.Now()
	def := &Definition{
		Kind:           dto.Kind,
		Code:           dto.Code,
		Name:           dto.Name,
		ValidityMonths: dto.ValidityMonths,
		AlertDays:      dto.AlertDays,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	dm, err := DefinitionToDataModel(def)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode definition", err)
	}
	if err := s.repo.CreateDefinition(dm); err != nil {
		s.logger.Error("failed to create definition", "error", err, "kind", dto.Kind, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create definition", err)
	}

	def.ID = dm.ID
	s.logger.Info("credential definition created", "kind", def.Kind, "code", def.Code)
	return def, nil
}

func (s *Service) GetDefinition(kind, code string) (*Definition, error) {
	dm, err := s.repo.GetDefinition(kind, code)
	if err != nil {
		if err == ErrDefinitionNotFound {
			return nil, internal.NewNotFoundError("credential definition not found", internal.ErrCodeDefinitionNotFound)
		}
		return nil, internal.NewInternalError("failed to get definition", err)
	}
	return DefinitionFromDataModel(dm)
}

func (s *Service) ListDefinitions(kind string) ([]*Definition, error) {
	if kind != "" && !ValidKind(kind) {
		return nil, internal.NewValidationError("kind must be certification or training", internal.ErrCodeInvalidInput)
	}

	rows, err := s.repo.GetAllDefinitions(kind)
	if err != nil {
		s.logger.Error("failed to list definitions", "error", err)
		return nil, internal.NewInternalError("failed to list definitions", err)
	}

	out := make([]*Definition, 0, len(rows))
	for _, dm := range rows {
		def, err := DefinitionFromDataModel(dm)
		if err != nil {
			s.logger.Error("definition row is corrupt", "error", err, "code", dm.Code)
			return nil, internal.NewInternalError("failed to decode definition", err)
		}
		out = append(out, def)
	}
	return out, nil
}

func (s *Service) DeactivateDefinition(kind, code string) error {
	dm, err := s.repo.GetDefinition(kind, code)
	if err != nil {
		if err == ErrDefinitionNotFound {
			return internal.NewNotFoundError("credential definition not found", internal.ErrCodeDefinitionNotFound)
		}
		return internal.NewInternalError("failed to get definition", err)
	}

	dm.IsActive = false
	dm.UpdatedAt = time.Now()
	if err := s.repo.UpdateDefinition(dm); err != nil {
		return internal.NewInternalError("failed to deactivate definition", err)
	}

	s.logger.Info("credential definition deactivated", "kind", kind, "code", code)
	return nil
}

// SubmitRecord upserts keyed by (person, code, expires_at): a resubmission
// with the same expiry updates evidence and resets verification to pending,
// while a renewal with a new expiry creates a fresh row alongside the old one.
func (s *Service) SubmitRecord(dto *SubmitRecordDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindRecord(dto.PersonID, dto.Code, dto.ExpiresAt)
	if err != nil && err != ErrCredentialNotFound {
		s.logger.Error("failed to look up credential record", "error", err,
			"person_id", dto.PersonID, "code", dto.Code)
		return nil, internal.NewInternalError("failed to submit credential", err)
	}

	if existing != nil {
		rec, err := RecordFromDataModel(existing)
		if err != nil {
			return nil, internal.NewInternalError("failed to decode credential record", err)
		}

		rec.IssuedAt = dto.IssuedAt
		rec.EvidenceRef = dto.EvidenceRef
		if len(dto.AlertDays) > 0 {
			rec.AlertDays = dto.AlertDays
		}
		rec.VerificationStatus = StatusPending
		rec.UpdatedAt = time.Now()

		dm, err := RecordToDataModel(rec)
		if err != nil {
			return nil, internal.NewInternalError("failed to encode credential record", err)
		}
		if err := s.repo.UpdateRecord(dm); err != nil {
			s.logger.Error("failed to update credential record", "error", err, "record_id", rec.ID)
			return nil, internal.NewInternalError("failed to submit credential", err)
		}

		s.logger.Info("credential resubmitted",
			"record_id", rec.ID, "person_id", rec.PersonID, "code", rec.Code)
		return rec, nil
	}

	now := time.Now()
	rec := &Record{
		PersonID:           dto.PersonID,
		Kind:               dto.Kind,
		Code:               dto.Code,
		IssuedAt:           dto.IssuedAt,
		ExpiresAt:          dto.ExpiresAt,
		AlertDays:          dto.AlertDays,
		EvidenceRef:        dto.EvidenceRef,
		VerificationStatus: StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	dm, err := RecordToDataModel(rec)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode credential record", err)
	}
	if err := s.repo.CreateRecord(dm); err != nil {
		s.logger.Error("failed to create credential record", "error", err,
			"person_id", dto.PersonID, "code", dto.Code)
		return nil, internal.NewInternalError("failed to submit credential", err)
	}

	rec.ID = dm.ID
	s.logger.Info("credential submitted",
		"record_id", rec.ID, "person_id", rec.PersonID, "code", rec.Code)
	return rec, nil
}

func (s *Service) ListRecords(personID int64) ([]*Record, error) {
	if personID <= 0 {
		return nil, internal.NewValidationError("person_id is required", internal.ErrCodeInvalidInput)
	}

	rows, err := s.repo.GetRecordsForPerson(personID)
	if err != nil {
		s.logger.Error("failed to list credential records", "error", err, "person_id", personID)
		return nil, internal.NewInternalError("failed to list credentials", err)
	}

	out := make([]*Record, 0, len(rows))
	for _, dm := range rows {
		rec, err := RecordFromDataModel(dm)
		if err != nil {
			s.logger.Error("credential row is corrupt", "error", err, "record_id", dm.ID)
			return nil, internal.NewInternalError("failed to decode credential record", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Service) VerifyRecord(ctx context.Context, id int64) (*Record, error) {
	return s.setStatus(ctx, id, StatusVerified)
}

func (s *Service) RejectRecord(ctx context.Context, id int64) (*Record, error) {
	return s.setStatus(ctx, id, StatusRejected)
}

func (s *Service) setStatus(ctx context.Context, id int64, status string) (*Record, error) {
	dm, err := s.repo.GetRecordByID(id)
	if err != nil {
		if err == ErrCredentialNotFound {
			return nil, internal.NewNotFoundError("person credential not found", internal.ErrCodeCredentialNotFound)
		}
		return nil, internal.NewInternalError("failed to get credential record", err)
	}

	rec, err := RecordFromDataModel(dm)
	if err != nil {
		return nil, internal.NewInternalError("failed to decode credential record", err)
	}

	switch status {
	case StatusVerified:
		rec.Verify()
	case StatusRejected:
		rec.Reject()
	}

	updated, err := RecordToDataModel(rec)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode credential record", err)
	}
	if err := s.repo.UpdateRecord(updated); err != nil {
		s.logger.Error("failed to update verification status", "error", err, "record_id", id)
		return nil, internal.NewInternalError("failed to update credential", err)
	}

	s.logger.Info("credential verification updated",
		"record_id", id, "person_id", rec.PersonID, "code", rec.Code, "status", status)

	if s.bus != nil && status == StatusVerified {
		event := events.NewCredentialVerifiedEvent(rec.PersonID, rec.Kind, rec.Code, status)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish credential verified event", "error", err, "record_id", id)
		}
	}

	return rec, nil
}
