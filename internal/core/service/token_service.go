package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

// SessionLifetime is fixed at 8 hours from issuance; not configurable per
// request.
const SessionLifetime = 8 * time.Hour

// TokenRevoker abstracts the revocation denylist (Redis). A jti stays
// denylisted for the token's remaining lifetime.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenClaims is the signed session payload. No secrets may be placed here:
// the payload is readable by any token holder.
type TokenClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret  []byte
	revoker TokenRevoker
	log     zerolog.Logger
}

// NewTokenService returns a TokenService signing with HMAC-SHA256 over the
// given secret. The revoker may be nil, in which case logout revocation is
// disabled.
func NewTokenService(secret []byte, revoker TokenRevoker, log zerolog.Logger) ports.TokenService {
	return &tokenService{secret: secret, revoker: revoker, log: log}
}

// Issue signs a session token for the admin. Expiry is always
// SessionLifetime after the issue instant.
func (s *tokenService) Issue(admin *domain.Admin) (string, error) {
	if admin == nil || admin.ID == "" {
		return "", errors.New("issue token: admin is required")
	}

	now := time.Now().UTC()
	claims := TokenClaims{
		Email: admin.Email,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, and revocation state of a token.
// All failures wrap domain.ErrInvalidToken so callers surface one uniform
// signal; the wrapped message names the class for logs and audit trails.
func (s *tokenService) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Denylist unavailable: proceed on signature+expiry alone
			// rather than locking every admin out.
			s.log.Warn().Err(err).Msg("revocation check failed, skipping")
		} else if revoked {
			s.log.Debug().Str("jti", claims.ID).Msg("token rejected: revoked")
			return nil, fmt.Errorf("%w: revoked", domain.ErrInvalidToken)
		}
	}

	return &domain.Principal{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// Revoke denylists the presented token's jti until its natural expiry.
// An already-invalid token is a no-op: there is nothing left to revoke.
func (s *tokenService) Revoke(ctx context.Context, token string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// parse validates structure, signature, and expiry, classifying each
// failure for internal logging while always wrapping domain.ErrInvalidToken.
func (s *tokenService) parse(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidToken, classifyTokenError(err))
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidToken, "not valid")
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidToken, "incomplete claims")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidToken, "timestamps missing")
	}
	return claims, nil
}

// classifyTokenError maps jwt parse failures onto the internal taxonomy.
// The classes never reach API responses.
func classifyTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	default:
		return "unverifiable"
	}
}
