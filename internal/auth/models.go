package auth

import "time"

// AdminUser is an administrative account. Tenant assignment does not live
// here: the tenant layer joins on the email instead, so this model stays
// untouched by the isolation machinery.
type AdminUser struct {
	ID           int64    `json:"id" gorm:"primaryKey"`
	Email        string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	DisplayName  string   `json:"displayName" gorm:"size:255"`
	Roles        []string `json:"roles" gorm:"type:json;serializer:json"`
	Active       bool     `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
