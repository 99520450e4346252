package repository

import (
	"errors"

	"gorm.io/gorm"

	"finfolio-backend/internal/models"
)

// UserRepository is persistence primitives only; business rules live in the
// service layer. Lookups return (nil, nil) when no row matches so callers
// can collapse "not found" into whatever error their path requires.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

// FindByEmailForAuth includes the password hash in the projection; it exists
// for the login path only.
func (r *UserRepository) FindByEmailForAuth(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByPublicID(publicID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("public_id = ?", publicID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// BumpTokenVersion increments the user-wide refresh token version, killing
// every refresh token minted before the increment.
func (r *UserRepository) BumpTokenVersion(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token_version", gorm.Expr("refresh_token_version + 1")).Error
}
