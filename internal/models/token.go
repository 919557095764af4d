package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultExpiresIn is the token lifetime assumed when the token endpoint omits expires_in.
const DefaultExpiresIn = 28800 * time.Second

// Token holds one Fitbit account's OAuth credentials. There is at most one row per UserID.
type Token struct {
	UserID       string    `gorm:"primaryKey" json:"user_id"`
	AccessToken  string    `gorm:"not null" json:"-"`
	RefreshToken string    `gorm:"not null" json:"-"`
	Scope        string    `json:"scope"`
	TokenType    string    `gorm:"default:Bearer" json:"token_type"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (Token) TableName() string {
	return "tokens"
}

// BeforeSave keeps expires_at in UTC on disk.
func (t *Token) BeforeSave(tx *gorm.DB) error {
	t.ExpiresAt = AsUTC(t.ExpiresAt)
	return nil
}

// AfterFind presents expires_at in UTC whatever zone the driver reads it back in.
func (t *Token) AfterFind(tx *gorm.DB) error {
	t.ExpiresAt = AsUTC(t.ExpiresAt)
	return nil
}

// ExpiresWithin reports whether the access token expires before now+leeway.
func (t *Token) ExpiresWithin(now time.Time, leeway time.Duration) bool {
	return !AsUTC(t.ExpiresAt).After(now.UTC().Add(leeway))
}

// AsUTC returns the same instant as t in UTC.
func AsUTC(t time.Time) time.Time {
	return t.UTC()
}
