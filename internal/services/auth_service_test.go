package services

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"finfolio-backend/internal/apperrors"
	"finfolio-backend/internal/config"
	"finfolio-backend/internal/models"
	"finfolio-backend/internal/repository"
	"finfolio-backend/pkg/security"
)

var testMeta = RequestMeta{IPAddress: "203.0.113.7", DeviceInfo: "go-test"}

func newTestService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserSession{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	cfg := &config.Auth{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    30 * 24 * time.Hour,
		CookieSameSite:     http.SameSiteLaxMode,
	}
	codec, err := security.NewTokenCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(db, codec, cfg, log), db
}

func TestRegisterUser(t *testing.T) {
	svc, db := newTestService(t)

	result, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	assert.NotEmpty(t, result.User.PublicID)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEqual(t, "sup3rsecret", result.User.Password, "password must be stored hashed")
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	var sessions []models.UserSession
	require.NoError(t, db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	assert.Equal(t, result.User.ID, sessions[0].UserID)
	assert.Equal(t, testMeta.IPAddress, sessions[0].IPAddress)
	assert.Equal(t, testMeta.DeviceInfo, sessions[0].DeviceInfo)
	assert.True(t, security.CheckRefreshToken(sessions[0].TokenHash, result.Tokens.RefreshToken),
		"stored hash must match the issued refresh token")
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	_, err = svc.RegisterUser("Alice Again", "alice@example.com", "sup3rsecret", testMeta)
	require.Error(t, err)
	e := apperrors.As(err)
	require.NotNil(t, e)
	assert.Equal(t, 400, e.HTTPStatus())
}

func TestRegisterUser_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name, userName, email, password string
	}{
		{"missing fields", "", "", ""},
		{"bad email", "Alice", "not-an-email", "sup3rsecret"},
		{"short password", "Alice", "alice@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterUser(tc.userName, tc.email, tc.password, testMeta)
			require.Error(t, err)
			e := apperrors.As(err)
			require.NotNil(t, e)
			assert.Equal(t, 400, e.HTTPStatus())
		})
	}
}

func TestSignInUser(t *testing.T) {
	svc, _ := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	result, err := svc.SignInUser("alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)
	assert.Equal(t, registered.User.PublicID, result.User.PublicID)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
}

// Unknown email and wrong password must be indistinguishable to the client.
func TestSignInUser_EnumerationResistance(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	_, errUnknown := svc.SignInUser("nobody@example.com", "sup3rsecret", testMeta)
	_, errWrongPass := svc.SignInUser("alice@example.com", "wrong-password", testMeta)

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)

	eUnknown := apperrors.As(errUnknown)
	eWrongPass := apperrors.As(errWrongPass)
	require.NotNil(t, eUnknown)
	require.NotNil(t, eWrongPass)

	assert.Equal(t, eUnknown.HTTPStatus(), eWrongPass.HTTPStatus())
	assert.Equal(t, eUnknown.Message, eWrongPass.Message)
	// the internal distinction survives for operators
	assert.NotEqual(t, eUnknown.Reason, eWrongPass.Reason)
}

func TestRefreshTokens_Rotation(t *testing.T) {
	svc, db := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)
	oldRefresh := registered.Tokens.RefreshToken

	user, tokens, err := svc.RefreshTokens(oldRefresh, testMeta)
	require.NoError(t, err)
	assert.Equal(t, registered.User.PublicID, user.PublicID)
	assert.NotEqual(t, oldRefresh, tokens.RefreshToken)

	// the new access token is immediately usable
	codec, err := security.NewTokenCodec("access-secret", "refresh-secret")
	require.NoError(t, err)
	claims, ok := codec.VerifyAccessToken(tokens.AccessToken)
	require.True(t, ok)
	assert.Equal(t, user.PublicID, claims.UserID)

	// the old refresh token no longer validates against any session
	_, _, err = svc.RefreshTokens(oldRefresh, testMeta)
	require.Error(t, err)

	// still exactly one session; rotation mutates, it does not fork
	var count int64
	require.NoError(t, db.Model(&models.UserSession{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRefreshTokens_Garbage(t *testing.T) {
	svc, _ := newTestService(t)

	for _, token := range []string{"", "garbage"} {
		_, _, err := svc.RefreshTokens(token, testMeta)
		require.Error(t, err)
		e := apperrors.As(err)
		require.NotNil(t, e)
		assert.Equal(t, 401, e.HTTPStatus())
	}
}

func TestRefreshTokens_RevokedSession(t *testing.T) {
	svc, db := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	_, tokens, err := svc.RefreshTokens(registered.Tokens.RefreshToken, testMeta)
	require.NoError(t, err)

	// revoke via single-session sign-out, then the rotated token is dead
	sessions, err := repository.NewSessionRepository(db).FindActiveByUser(registered.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, svc.SignOutUser(sessions[0].ID))

	_, _, err = svc.RefreshTokens(tokens.RefreshToken, testMeta)
	require.Error(t, err)
}

// Version kill switch: after SignOutAllSessions bumps refreshTokenVersion,
// refresh tokens minted at the old version fail even though unexpired.
func TestSignOutAllSessions_VersionKillSwitch(t *testing.T) {
	svc, _ := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	second, err := svc.SignInUser("alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	require.NoError(t, svc.SignOutAllSessions(registered.User.PublicID))

	for _, token := range []string{registered.Tokens.RefreshToken, second.Tokens.RefreshToken} {
		_, _, err := svc.RefreshTokens(token, testMeta)
		require.Error(t, err)
		e := apperrors.As(err)
		require.NotNil(t, e)
		assert.Equal(t, 401, e.HTTPStatus())
	}
}

// Two devices: signing out one must not kill the other's refresh token.
func TestSignOutUser_OtherDeviceSurvives(t *testing.T) {
	svc, db := newTestService(t)

	first, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	second, err := svc.SignInUser("alice@example.com", "sup3rsecret",
		RequestMeta{IPAddress: "198.51.100.2", DeviceInfo: "other-device"})
	require.NoError(t, err)

	// find the first device's session by matching hash
	sessions, err := repository.NewSessionRepository(db).FindActiveByUser(first.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var firstSessionID string
	for _, s := range sessions {
		if security.CheckRefreshToken(s.TokenHash, first.Tokens.RefreshToken) {
			firstSessionID = s.ID
		}
	}
	require.NotEmpty(t, firstSessionID)

	require.NoError(t, svc.SignOutUser(firstSessionID))

	// first device's token is dead
	_, _, err = svc.RefreshTokens(first.Tokens.RefreshToken, testMeta)
	require.Error(t, err)

	// second device keeps working
	_, tokens, err := svc.RefreshTokens(second.Tokens.RefreshToken, testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

// Revocation is terminal: no token state can resurrect a revoked session.
func TestRevocationMonotonic(t *testing.T) {
	svc, db := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	sessions, err := repository.NewSessionRepository(db).FindActiveByUser(registered.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, svc.SignOutUser(sessions[0].ID))

	_, _, err = svc.RefreshTokens(registered.Tokens.RefreshToken, testMeta)
	require.Error(t, err)

	// a second sign-out of the same session also fails closed
	err = svc.SignOutUser(sessions[0].ID)
	require.Error(t, err)
}

func TestGetCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	user, err := svc.GetCurrentUser(registered.User.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.GetCurrentUser(uuid.NewString())
	require.Error(t, err)
	e := apperrors.As(err)
	require.NotNil(t, e)
	assert.Equal(t, 404, e.HTTPStatus())
}

func TestFindSessionForTokens(t *testing.T) {
	svc, _ := newTestService(t)

	registered, err := svc.RegisterUser("Alice", "alice@example.com", "sup3rsecret", testMeta)
	require.NoError(t, err)

	session, err := svc.FindSessionForTokens(registered.User, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.UserID)

	// after rotation the old token matches nothing
	_, tokens, err := svc.RefreshTokens(registered.Tokens.RefreshToken, testMeta)
	require.NoError(t, err)

	_, err = svc.FindSessionForTokens(registered.User, registered.Tokens.RefreshToken)
	require.Error(t, err)

	session, err = svc.FindSessionForTokens(registered.User, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotNil(t, session)
}
