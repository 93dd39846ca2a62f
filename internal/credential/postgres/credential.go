package postgres

import (
	"time"

	credentialDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/credential"
	"github.com/siteops/workforce-compliance/internal/credential"
	"gorm.io/gorm"
)

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) credential.RepositoryAPI {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) CreateDefinition(def *credentialDatamodel.CredentialDefinition) error {
	return r.db.Create(def).Error
}

func (r *CredentialRepository) GetDefinition(kind, code string) (*credentialDatamodel.CredentialDefinition, error) {
	var def credentialDatamodel.CredentialDefinition
	err := r.db.Where("kind = ? AND code = ?", kind, code).First(&def).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, credential.ErrDefinitionNotFound
		}
		return nil, err
	}
	return &def, nil
}

func (r *CredentialRepository) GetAllDefinitions(kind string) ([]*credentialDatamodel.CredentialDefinition, error) {
	var defs []*credentialDatamodel.CredentialDefinition
	q := r.db.Order("kind ASC, code ASC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Find(&defs).Error
	return defs, err
}

func (r *CredentialRepository) UpdateDefinition(def *credentialDatamodel.CredentialDefinition) error {
	return r.db.Save(def).Error
}

// FindRecord looks up the upsert key (person, code, expires_at). NULL expiry
// matches only NULL expiry.
func (r *CredentialRepository) FindRecord(personID int64, code string, expiresAt *time.Time) (*credentialDatamodel.PersonCredential, error) {
	q := r.db.Where("person_id = ? AND code = ?", personID, code)
	if expiresAt == nil {
		q = q.Where("expires_at IS NULL")
	} else {
		q = q.Where("expires_at = ?", *expiresAt)
	}

	var rec credentialDatamodel.PersonCredential
	err := q.First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, credential.ErrCredentialNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *CredentialRepository) GetRecordByID(id int64) (*credentialDatamodel.PersonCredential, error) {
	var rec credentialDatamodel.PersonCredential
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, credential.ErrCredentialNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *CredentialRepository) GetRecordsForPerson(personID int64) ([]*credentialDatamodel.PersonCredential, error) {
	var records []*credentialDatamodel.PersonCredential
	err := r.db.Where("person_id = ?", personID).
		Order("code ASC, created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *CredentialRepository) CreateRecord(rec *credentialDatamodel.PersonCredential) error {
	return r.db.Create(rec).Error
}

func (r *CredentialRepository) UpdateRecord(rec *credentialDatamodel.PersonCredential) error {
	return r.db.Save(rec).Error
}
