package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"finfolio-backend/internal/apperrors"
	"finfolio-backend/internal/models"
)

var ErrRotationConflict = errors.New("session rotated concurrently")

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.UserSession) error {
	return r.db.Create(s).Error
}

// FindByID returns a non-revoked session with its user preloaded, or
// (nil, nil). Expiry is the caller's check; an expired row is still returned
// so the caller can treat it as revoked.
func (r *SessionRepository) FindByID(id string) (*models.UserSession, error) {
	var s models.UserSession
	err := r.db.Preload("User").Where("id = ? AND revoked = ?", id, false).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindActiveByUser(userID uint) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := r.db.
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) Save(s *models.UserSession) error {
	return r.db.Save(s).Error
}

// Rotate persists a rotation under optimistic concurrency: the UPDATE is
// conditioned on the version the caller read, so of two concurrent refreshes
// exactly one lands. The loser gets an AuthenticationError and the client
// must re-authenticate.
func (r *SessionRepository) Rotate(s *models.UserSession) error {
	expected := s.Version
	res := r.db.Model(&models.UserSession{}).
		Where("id = ? AND version = ? AND revoked = ?", s.ID, expected, false).
		Updates(map[string]interface{}{
			"token_hash":   s.TokenHash,
			"device_info":  s.DeviceInfo,
			"ip_address":   s.IPAddress,
			"expires_at":   s.ExpiresAt,
			"last_used_at": s.LastUsedAt,
			"version":      expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.AuthenticationReason("Invalid session", ErrRotationConflict.Error())
	}
	s.Version = expected + 1
	return nil
}

func (r *SessionRepository) Revoke(id string) error {
	return r.db.Model(&models.UserSession{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *SessionRepository) RevokeAllByUser(userID uint) error {
	return r.db.Model(&models.UserSession{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
