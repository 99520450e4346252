package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finfolio-backend/internal/apperrors"
	"finfolio-backend/internal/config"
	"finfolio-backend/internal/models"
	"finfolio-backend/internal/repository"
	"finfolio-backend/pkg/security"
)

// TokenPair is an access/refresh pair minted together for one session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RequestMeta is advisory provenance captured from the request.
type RequestMeta struct {
	IPAddress  string
	DeviceInfo string
}

// AuthResult is the outcome of register and login.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// AuthService owns the session lifecycle: register, login, refresh
// (rotation), single-device and all-device sign-out. Rotation for the
// middleware auto-refresh path and the explicit refresh endpoint goes
// through the same RefreshTokens routine, so refresh tokens always rotate
// on use.
type AuthService struct {
	db    *gorm.DB
	codec *security.TokenCodec
	cfg   *config.Auth
	log   *slog.Logger
}

func NewAuthService(db *gorm.DB, codec *security.TokenCodec, cfg *config.Auth, log *slog.Logger) *AuthService {
	return &AuthService{db: db, codec: codec, cfg: cfg, log: log}
}

// RegisterUser creates the user and its first session in one transaction.
func (s *AuthService) RegisterUser(name, email, password string, meta RequestMeta) (*AuthResult, error) {
	name, email = normalizeName(name), normalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	var result *AuthResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)

		taken, err := users.EmailTaken(email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Validation("User with this email already exists")
		}

		hash, err := security.HashPassword(password)
		if err != nil {
			return err
		}
		user := &models.User{
			PublicID:       uuid.NewString(),
			Name:           name,
			Email:          email,
			Password:       hash,
			Currency:       "USD",
			CurrencySymbol: "$",
			Locale:         "en-US",
		}
		if err := users.Create(user); err != nil {
			return err
		}

		tokens, err := s.createSession(tx, user, meta)
		if err != nil {
			return err
		}
		result = &AuthResult{User: user, Tokens: tokens}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "userId", result.User.PublicID)
	return result, nil
}

// SignInUser verifies credentials and opens a new session. Unknown email and
// wrong password produce the same client-facing error; the distinction only
// survives in logs.
func (s *AuthService) SignInUser(email, password string, meta RequestMeta) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(s.db)
	user, err := users.FindByEmailForAuth(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, s.denied("Invalid credentials", "unknown email")
	}
	if !security.CheckPassword(user.Password, password) {
		return nil, s.denied("Invalid credentials", "password mismatch", "userId", user.PublicID)
	}

	tokens, err := s.createSession(s.db, user, meta)
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed in", "userId", user.PublicID)
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// RefreshTokens validates oldRefreshToken against its session and atomically
// rotates: a brand-new pair is issued, the stored hash replaced, and the
// session's provenance and expiry refreshed. Any failure leaves the session
// untouched.
func (s *AuthService) RefreshTokens(oldRefreshToken string, meta RequestMeta) (*models.User, TokenPair, error) {
	if oldRefreshToken == "" {
		return nil, TokenPair{}, apperrors.Authentication("Refresh token is required")
	}
	claims, ok := s.codec.VerifyRefreshToken(oldRefreshToken)
	if !ok {
		return nil, TokenPair{}, s.denied("Invalid refresh token", "verification failed")
	}

	var (
		user   *models.User
		tokens TokenPair
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		sessions := repository.NewSessionRepository(tx)

		u, err := users.FindByPublicID(claims.UserID)
		if err != nil {
			return err
		}
		if u == nil || u.RefreshTokenVersion != claims.TokenVersion {
			return s.denied("Invalid session", "token version mismatch", "userId", claims.UserID)
		}

		session, err := sessions.FindByID(claims.SessionID)
		if err != nil {
			return err
		}
		now := time.Now()
		if session == nil || session.UserID != u.ID || !session.Active(now) {
			return s.denied("Session not found", "revoked, expired or missing", "userId", claims.UserID)
		}
		if !security.CheckRefreshToken(session.TokenHash, oldRefreshToken) {
			return s.denied("Invalid refresh token", "hash mismatch", "sessionId", session.ID)
		}

		access, err := s.codec.IssueAccessToken(u.PublicID, s.cfg.AccessTokenTTL)
		if err != nil {
			return err
		}
		refresh, err := s.codec.IssueRefreshToken(u.PublicID, u.RefreshTokenVersion, session.ID, s.cfg.RefreshTokenTTL)
		if err != nil {
			return err
		}
		hash, err := security.HashRefreshToken(refresh)
		if err != nil {
			return err
		}

		session.TokenHash = hash
		session.DeviceInfo = meta.DeviceInfo
		session.IPAddress = meta.IPAddress
		session.ExpiresAt = now.Add(s.cfg.RefreshTokenTTL)
		session.LastUsedAt = now
		if err := sessions.Rotate(session); err != nil {
			return err
		}

		user = u
		tokens = TokenPair{AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, tokens, nil
}

// SignOutUser revokes a single session. Other devices stay signed in; the
// user-wide token version is only bumped by SignOutAllSessions.
func (s *AuthService) SignOutUser(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		sessions := repository.NewSessionRepository(tx)
		session, err := sessions.FindByID(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return apperrors.Authentication("Session not found")
		}
		if err := sessions.Revoke(session.ID); err != nil {
			return err
		}
		s.log.Info("user signed out", "userId", session.User.PublicID, "sessionId", session.ID)
		return nil
	})
}

// SignOutAllSessions revokes every active session and bumps the user's
// refresh token version, killing outstanding refresh tokens on all devices.
func (s *AuthService) SignOutAllSessions(publicID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		sessions := repository.NewSessionRepository(tx)

		user, err := users.FindByPublicID(publicID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperrors.Authentication("User not found")
		}
		if err := sessions.RevokeAllByUser(user.ID); err != nil {
			return err
		}
		if err := users.BumpTokenVersion(user.ID); err != nil {
			return err
		}
		s.log.Info("all sessions signed out", "userId", user.PublicID)
		return nil
	})
}

func (s *AuthService) GetCurrentUser(publicID string) (*models.User, error) {
	user, err := repository.NewUserRepository(s.db).FindByPublicID(publicID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

// FindSessionForTokens locates the session named by a refresh token and
// confirms the presented token still matches its stored hash. Used by the
// middleware on the access-valid path so a valid access token cannot outlive
// its session.
func (s *AuthService) FindSessionForTokens(user *models.User, refreshToken string) (*models.UserSession, error) {
	claims, ok := s.codec.VerifyRefreshToken(refreshToken)
	if !ok {
		return nil, s.denied("Session not found", "refresh token verification failed", "userId", user.PublicID)
	}
	session, err := repository.NewSessionRepository(s.db).FindByID(claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != user.ID || !session.Active(time.Now()) {
		return nil, s.denied("Session not found", "revoked, expired or missing", "userId", user.PublicID)
	}
	if !security.CheckRefreshToken(session.TokenHash, refreshToken) {
		return nil, s.denied("Session not found", "hash mismatch", "sessionId", session.ID)
	}
	return session, nil
}

// createSession mints a pair and persists the session row holding the new
// refresh token's hash. The session id goes into the refresh claims, which
// is why it is generated before the token.
func (s *AuthService) createSession(tx *gorm.DB, user *models.User, meta RequestMeta) (TokenPair, error) {
	sessionID := uuid.NewString()

	access, err := s.codec.IssueAccessToken(user.PublicID, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefreshToken(user.PublicID, user.RefreshTokenVersion, sessionID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	hash, err := security.HashRefreshToken(refresh)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now()
	session := &models.UserSession{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  hash,
		DeviceInfo: meta.DeviceInfo,
		IPAddress:  meta.IPAddress,
		ExpiresAt:  now.Add(s.cfg.RefreshTokenTTL),
		LastUsedAt: now,
	}
	if err := repository.NewSessionRepository(tx).Create(session); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// denied logs the internal reason and returns the generic 401 the client
// will see.
func (s *AuthService) denied(message, reason string, args ...any) error {
	s.log.Warn("authentication denied", append([]any{"reason", reason}, args...)...)
	return apperrors.AuthenticationReason(message, reason)
}
