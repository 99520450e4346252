package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"finfolio-backend/internal/config"
	"finfolio-backend/internal/http/cookies"
	"finfolio-backend/internal/response"
	"finfolio-backend/internal/services"
	"finfolio-backend/pkg/security"
)

// AuthContext is what authenticated handlers read from the request context.
type AuthContext struct {
	UserID     string
	SessionID  string
	IPAddress  string
	DeviceInfo string
}

type ctxKey struct{}

// FromContext returns the auth context attached by Authenticate.
func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(ctxKey{}).(AuthContext)
	return ac, ok
}

// Authenticator runs the per-request auth state machine:
//
//	no tokens                     -> 401, cookies cleared
//	access valid + session match  -> authenticated
//	access invalid + refresh ok   -> rotate pair, reset cookies, authenticated
//	anything else                 -> 401, cookies cleared
//
// The rotation path reuses AuthService.RefreshTokens, so the auto-refresh
// here and the explicit /auth/refresh-token endpoint behave identically.
type Authenticator struct {
	svc   *services.AuthService
	codec *security.TokenCodec
	cfg   *config.Auth
	log   *slog.Logger
}

func NewAuthenticator(svc *services.AuthService, codec *security.TokenCodec, cfg *config.Auth, log *slog.Logger) *Authenticator {
	return &Authenticator{svc: svc, codec: codec, cfg: cfg, log: log}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := cookieValue(r, cookies.AccessTokenCookie)
		refreshToken := cookieValue(r, cookies.RefreshTokenCookie)

		if accessToken == "" || refreshToken == "" {
			a.reject(w, "Authentication required", "missing auth cookies")
			return
		}

		meta := RequestMeta(r)

		if claims, ok := a.codec.VerifyAccessToken(accessToken); ok {
			user, err := a.svc.GetCurrentUser(claims.UserID)
			if err != nil {
				a.reject(w, "Authentication required", "user not found")
				return
			}
			// A valid access token does not outlive its session: the refresh
			// cookie must still name an active session holding its hash.
			session, err := a.svc.FindSessionForTokens(user, refreshToken)
			if err != nil {
				a.reject(w, "Authentication required", "no active session for tokens")
				return
			}
			next.ServeHTTP(w, r.WithContext(withAuth(r.Context(), AuthContext{
				UserID:     user.PublicID,
				SessionID:  session.ID,
				IPAddress:  meta.IPAddress,
				DeviceInfo: meta.DeviceInfo,
			})))
			return
		}

		// Access token expired or invalid: rotate off the refresh token.
		user, tokens, err := a.svc.RefreshTokens(refreshToken, meta)
		if err != nil {
			cookies.ClearAuth(w, a.cfg)
			response.WriteError(w, err)
			return
		}
		refreshClaims, ok := a.codec.VerifyRefreshToken(tokens.RefreshToken)
		if !ok {
			a.reject(w, "Authentication required", "rotated refresh token failed verification")
			return
		}
		cookies.SetAuth(w, a.cfg, tokens.AccessToken, tokens.RefreshToken)

		next.ServeHTTP(w, r.WithContext(withAuth(r.Context(), AuthContext{
			UserID:     user.PublicID,
			SessionID:  refreshClaims.SessionID,
			IPAddress:  meta.IPAddress,
			DeviceInfo: meta.DeviceInfo,
		})))
	})
}

// RequestMeta captures provenance for session rows: client IP (first
// X-Forwarded-For hop, falling back to RemoteAddr) and the User-Agent.
func RequestMeta(r *http.Request) services.RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ip = strings.TrimSpace(strings.SplitN(ip, ",", 2)[0])
	} else {
		ip = r.RemoteAddr
		if host := strings.LastIndex(ip, ":"); host > 0 {
			ip = ip[:host]
		}
	}
	return services.RequestMeta{IPAddress: ip, DeviceInfo: r.UserAgent()}
}

func withAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

func (a *Authenticator) reject(w http.ResponseWriter, message, reason string) {
	a.log.Warn("request rejected", "reason", reason)
	cookies.ClearAuth(w, a.cfg)
	response.WriteErr(w, http.StatusUnauthorized, message)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
