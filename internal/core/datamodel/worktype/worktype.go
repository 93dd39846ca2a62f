package worktype

import "time"

// WorkType carries the base compliance rule for one kind of work. The four
// requirement lists are JSON-encoded string arrays of credential codes.
type WorkType struct {
	ID                   int64     `gorm:"primaryKey"`
	Code                 string    `gorm:"column:code;not null;uniqueIndex"`
	GroupCode            string    `gorm:"column:group_code"`
	Name                 string    `gorm:"column:name;not null"`
	RequiredCertsAll     string    `gorm:"column:required_certs_all"`
	RequiredCertsAny     string    `gorm:"column:required_certs_any"`
	RequiredTrainingsAll string    `gorm:"column:required_trainings_all"`
	RequiredTrainingsAny string    `gorm:"column:required_trainings_any"`
	EnforcementMode      string    `gorm:"column:enforcement_mode;default:BLOCK"`
	IsActive             bool      `gorm:"column:is_active;default:true"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkType) TableName() string {
	return "work_types"
}

// Override is a scoped patch against a work type's base rule. Patch holds the
// JSON patch document; approval ordering controls the fold order in the rule
// resolver.
type Override struct {
	ID           int64      `gorm:"primaryKey"`
	Scope        string     `gorm:"column:scope;not null;index:idx_overrides_target"` // project | site | permit
	ScopeRef     string     `gorm:"column:scope_ref;not null;index:idx_overrides_target"`
	WorkTypeCode string     `gorm:"column:work_type_code;not null;index:idx_overrides_target"`
	Patch        string     `gorm:"column:patch;not null"`
	Reason       string     `gorm:"column:reason"`
	ApprovedBy   *string    `gorm:"column:approved_by"`
	ApprovedAt   *time.Time `gorm:"column:approved_at"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Override) TableName() string {
	return "rule_overrides"
}
