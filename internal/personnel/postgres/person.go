package postgres

import (
	personDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/person"
	"github.com/siteops/workforce-compliance/internal/personnel"
	"gorm.io/gorm"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) personnel.RepositoryAPI {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) GetByID(id int64) (*personDatamodel.Person, error) {
	var p personDatamodel.Person
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, personnel.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonRepository) GetAll(activeOnly bool) ([]*personDatamodel.Person, error) {
	var people []*personDatamodel.Person
	q := r.db.Order("full_name ASC")
	if activeOnly {
		q = q.Where("status = ?", personnel.StatusActive)
	}
	err := q.Find(&people).Error
	return people, err
}
