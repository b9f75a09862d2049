package permission

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Grant binds an action on a subject to a role, optionally restricted by
// named conditions. One row per (role, action, subject) triple.
type Grant struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	Role       string         `gorm:"size:64;not null;uniqueIndex:idx_grants_role_action_subject" json:"role"`
	Action     string         `gorm:"size:128;not null;uniqueIndex:idx_grants_role_action_subject" json:"action"`
	Subject    string         `gorm:"size:128;not null;uniqueIndex:idx_grants_role_action_subject" json:"subject"`
	Conditions datatypes.JSON `gorm:"type:json" json:"conditions"`
	Sort       int            `json:"sort"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Grant) TableName() string { return "grants" }

// ConditionNames decodes the stored condition list. A missing or malformed
// payload yields no conditions.
func (g Grant) ConditionNames() []string {
	if len(g.Conditions) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(g.Conditions, &names); err != nil {
		return nil
	}
	return names
}
