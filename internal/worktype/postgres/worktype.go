package postgres

import (
	worktypeDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/worktype"
	"github.com/siteops/workforce-compliance/internal/worktype"
	"gorm.io/gorm"
)

type WorkTypeRepository struct {
	db *gorm.DB
}

func NewWorkTypeRepository(db *gorm.DB) worktype.RepositoryAPI {
	return &WorkTypeRepository{db: db}
}

func (r *WorkTypeRepository) CreateWorkType(wt *worktypeDatamodel.WorkType) error {
	return r.db.Create(wt).Error
}

func (r *WorkTypeRepository) GetWorkTypeByCode(code string) (*worktypeDatamodel.WorkType, error) {
	var wt worktypeDatamodel.WorkType
	err := r.db.Where("code = ?", code).First(&wt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, worktype.ErrWorkTypeNotFound
		}
		return nil, err
	}
	return &wt, nil
}

func (r *WorkTypeRepository) GetAllWorkTypes() ([]*worktypeDatamodel.WorkType, error) {
	var workTypes []*worktypeDatamodel.WorkType
	err := r.db.Order("code ASC").Find(&workTypes).Error
	return workTypes, err
}

func (r *WorkTypeRepository) UpdateWorkType(wt *worktypeDatamodel.WorkType) error {
	return r.db.Save(wt).Error
}

func (r *WorkTypeRepository) CreateOverride(o *worktypeDatamodel.Override) error {
	return r.db.Create(o).Error
}

func (r *WorkTypeRepository) GetOverrideByID(id int64) (*worktypeDatamodel.Override, error) {
	var o worktypeDatamodel.Override
	err := r.db.Where("id = ?", id).First(&o).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, worktype.ErrOverrideNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *WorkTypeRepository) GetOverridesForTarget(workTypeCode, scope, scopeRef string) ([]*worktypeDatamodel.Override, error) {
	var overrides []*worktypeDatamodel.Override
	q := r.db.Where("work_type_code = ?", workTypeCode)
	if scope != "" {
		q = q.Where("scope = ?", scope)
	}
	if scopeRef != "" {
		q = q.Where("scope_ref = ?", scopeRef)
	}
	err := q.Order("created_at ASC").Find(&overrides).Error
	return overrides, err
}

func (r *WorkTypeRepository) UpdateOverride(o *worktypeDatamodel.Override) error {
	return r.db.Save(o).Error
}
