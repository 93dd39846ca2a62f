package personnel

import (
	"encoding/json"
	"errors"
	"time"

	personDatamodel "github.com/siteops/workforce-compliance/internal/core/datamodel/person"
)

var ErrPersonNotFound = errors.New("person not found")

const StatusActive = "active"

// Person is the read-side view of a workforce member. Role tags are display
// metadata; they carry no compliance semantics.
type Person struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	RoleTags  []string  `json:"role_tags"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Person) IsActive() bool {
	return p.Status == StatusActive
}

func FromDataModel(dm *personDatamodel.Person) (*Person, error) {
	tags := []string{}
	if dm.RoleTags != "" {
		if err := json.Unmarshal([]byte(dm.RoleTags), &tags); err != nil {
			return nil, err
		}
	}
	return &Person{
		ID:        dm.ID,
		FullName:  dm.FullName,
		Status:    dm.Status,
		Email:     dm.Email,
		Phone:     dm.Phone,
		RoleTags:  tags,
		CreatedAt: dm.CreatedAt,
	}, nil
}
