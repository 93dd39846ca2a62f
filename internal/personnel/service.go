package personnel

import (
	"log/slog"

	"github.com/siteops/workforce-compliance/internal"
	personDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/person"
)

type RepositoryAPI interface {
	GetByID(id int64) (*personDatamodel.Person, error)
	GetAll(activeOnly bool) ([]*personDatamodel.Person, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetPerson(id int64) (*Person, error) {
	dm, err := s.repo.GetByID(id)
	if err != nil {
		if err == ErrPersonNotFound {
			return nil, internal.NewNotFoundError("person not found", internal.ErrCodePersonNotFound)
		}
		s.logger.Error("failed to get person", "error", err, "person_id", id)
		return nil, internal.NewInternalError("failed to get person", err)
	}

	p, err := FromDataModel(dm)
	if err != nil {
		s.logger.Error("person row is corrupt", "error", err, "person_id", id)
		return nil, internal.NewInternalError("failed to decode person", err)
	}
	return p, nil
}

func (s *Service) ListPeople(activeOnly bool) ([]*Person, error) {
	rows, err := s.repo.GetAll(activeOnly)
	if err != nil {
		s.logger.Error("failed to list people", "error", err)
		return nil, internal.NewInternalError("failed to list people", err)
	}

	out := make([]*Person, 0, len(rows))
	for _, dm := range rows {
		p, err := FromDataModel(dm)
		if err != nil {
			s.logger.Error("person row is corrupt", "error", err, "person_id", dm.ID)
			return nil, internal.NewInternalError("failed to decode person", err)
		}
		out = append(out, p)
	}
	return out, nil
}
