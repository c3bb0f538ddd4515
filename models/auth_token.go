package models

import "time"

// Token purposes.
const (
	TokenPurposeMagicLink = "magic_link"
)

// AuthToken stores the sha256 hash of a single-use login token. The raw
// token only ever appears in the emailed link.
type AuthToken struct {
	TokenID   int        `gorm:"primaryKey;column:token_id" json:"token_id"`
	UserID    int        `gorm:"column:user_id" json:"user_id"`
	TokenHash string     `gorm:"column:token_hash;size:64;index" json:"-"`
	Purpose   string     `gorm:"column:purpose" json:"purpose"`
	ExpiresAt time.Time  `gorm:"column:expires_at" json:"expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuthToken.
func (AuthToken) TableName() string {
	return "auth_tokens"
}

// IsUsable reports whether the token can still redeem a login.
func (t *AuthToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
