package person

import "time"

type Person struct {
	ID        int64     `gorm:"primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Status    string    `gorm:"column:status;default:active"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	RoleTags  string    `gorm:"column:role_tags"` // JSON-encoded string array
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Person) TableName() string {
	return "people"
}
