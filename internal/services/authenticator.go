package services

import (
	"context"
	"time"

	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService verifies a bearer token against the shared secret and
// confirms the subject is a known, active user. Every failure mode
// collapses to domain.ErrAuthenticationFailed so the client cannot
// distinguish a bad signature from an inactive account.
type AuthService struct {
	secret        []byte
	users         domain.UserDirectory
	lookupTimeout time.Duration
	log           logger.Logger
}

func NewAuthService(secret string, users domain.UserDirectory,
	lookupTimeout time.Duration, log logger.Logger) *AuthService {
	return &AuthService{
		secret:        []byte(secret),
		users:         users,
		lookupTimeout: lookupTimeout,
		log:           log,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	// An empty secret would make HMAC verification trivially forgeable.
	if len(s.secret) == 0 || tokenString == "" {
		return "", domain.ErrAuthenticationFailed
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !token.Valid {
		s.log.Debug("Token verification failed", "error", err)
		return "", domain.ErrAuthenticationFailed
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		s.log.Debug("Token has no subject")
		return "", domain.ErrAuthenticationFailed
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	user, err := s.users.FindActiveUser(lookupCtx, subject)
	if err != nil {
		s.log.Error("User directory lookup failed", "user_id", subject, "error", err)
		return "", domain.ErrAuthenticationFailed
	}
	if user == nil || !user.IsActive {
		s.log.Debug("Unknown or inactive user", "user_id", subject)
		return "", domain.ErrAuthenticationFailed
	}

	return user.ID, nil
}
