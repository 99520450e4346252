package models

import (
	"time"
)

// UserSession is one logged-in device. TokenHash holds a salted hash of the
// current refresh token, never the token itself. Version is an optimistic
// concurrency counter: rotations condition their UPDATE on it so two
// concurrent refreshes cannot both rotate from the same stale hash.
type UserSession struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	User       User   `gorm:"foreignKey:UserID"`
	TokenHash  string `gorm:"not null"`
	DeviceInfo string
	IPAddress  string
	Revoked    bool `gorm:"default:false"`
	ExpiresAt  time.Time
	LastUsedAt time.Time
	Version    int `gorm:"default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the session can still authenticate requests.
// Revocation is terminal; sessions past their expiry count as revoked.
func (s *UserSession) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
