package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	PublicID            string        `gorm:"type:uuid;uniqueIndex;not null"`
	Name                string        `gorm:"not null"`
	Email               string        `gorm:"uniqueIndex;not null"`
	Password            string
	AvatarURL           string
	Country             string
	Currency            string        `gorm:"default:USD"`
	CurrencySymbol      string        `gorm:"default:$"`
	Locale              string        `gorm:"default:en-US"`
	RefreshTokenVersion int           `gorm:"default:0"`
	Sessions            []UserSession `gorm:"foreignKey:UserID"`
}

// PublicUser is the shape returned by the API. Password, numeric ID and
// token version never leave the server.
type PublicUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	Country        string `json:"country,omitempty"`
	Currency       string `json:"currency,omitempty"`
	CurrencySymbol string `json:"currencySymbol,omitempty"`
	Locale         string `json:"locale,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.PublicID,
		Name:           u.Name,
		Email:          u.Email,
		AvatarURL:      u.AvatarURL,
		Country:        u.Country,
		Currency:       u.Currency,
		CurrencySymbol: u.CurrencySymbol,
		Locale:         u.Locale,
	}
}
