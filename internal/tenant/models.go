package tenant

import "time"

// Tenant represents one organization whose content is isolated from every
// other organization in the same deployment. ExternalID is the stable,
// environment-independent identifier; imported records may reference a tenant
// by it instead of the numeric primary key.
type Tenant struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	ExternalID  string `json:"externalId" gorm:"size:100;uniqueIndex;not null"`
	Name        string `json:"name" gorm:"size:255;not null"`
	Slug        string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Domain      string `json:"domain" gorm:"size:255"`
	Description string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// EditorAssignment links an admin user to the single tenant they may edit.
// The join key is the email because the admin user model is owned by the
// auth layer and not extensible from here. Emails are stored lowercased and
// carry a unique index, so at most one assignment can exist per editor.
type EditorAssignment struct {
	ID       int64   `json:"id" gorm:"primaryKey"`
	Email    string  `json:"email" gorm:"size:255;uniqueIndex;not null"`
	TenantID int64   `json:"tenantId" gorm:"not null;index"`
	Tenant   *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
