package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

// AuthService implements the privileged login path: domain allow-list,
// rate limiting, credential comparison, then token issuance, with every
// attempt audited under its precise sub-reason. Callers surface a uniform
// "unauthorized" for all credential failures.
type AuthService struct {
	repo           ports.AdminRepository
	tokens         ports.TokenService
	limiter        ports.LoginLimiter
	audit          ports.AuditService
	allowedDomains []string
	log            zerolog.Logger
}

func NewAuthService(
	repo ports.AdminRepository,
	tokens ports.TokenService,
	limiter ports.LoginLimiter,
	audit ports.AuditService,
	allowedDomains []string,
	log zerolog.Logger,
) *AuthService {
	normalized := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &AuthService{
		repo:           repo,
		tokens:         tokens,
		limiter:        limiter,
		audit:          audit,
		allowedDomains: normalized,
		log:            log,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login authenticates an admin and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string, origin domain.Origin) (string, *domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// The allow-list is checked before the password is even looked at.
	if !s.domainAllowed(email) {
		s.limiter.RecordAttempt(email, false)
		s.auditLoginFailure(ctx, email, origin, "email domain not allowed")
		return "", nil, domain.ErrInvalidCredentials
	}

	allowed, _, resetAt := s.limiter.Check(email)
	if !allowed {
		s.auditLoginFailure(ctx, email, origin, "rate limited")
		return "", nil, &domain.RateLimitedError{ResetAt: resetAt}
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.limiter.RecordAttempt(email, false)
		s.auditLoginFailure(ctx, email, origin, "unknown admin")
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.limiter.RecordAttempt(email, false)
		s.auditLoginFailure(ctx, email, origin, "password mismatch")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin)
	if err != nil {
		s.auditLoginFailure(ctx, email, origin, "token issuance failed")
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.limiter.RecordAttempt(email, true)
	s.audit.Record(ctx, ports.AuditInput{
		ActorID:    admin.ID,
		ActorEmail: admin.Email,
		Action:     domain.ActionLogin,
		Origin:     origin,
		Outcome:    domain.OutcomeSuccess,
	})
	return token, admin, nil
}

// Logout revokes the presented token. It always succeeds from the caller's
// view; revocation-store failures are logged and audited.
func (s *AuthService) Logout(ctx context.Context, token string, principal domain.Principal, origin domain.Origin) error {
	outcome := domain.OutcomeSuccess
	errMsg := ""
	if err := s.tokens.Revoke(ctx, token); err != nil {
		s.log.Error().Err(err).Str("admin_id", principal.ID).Msg("token revocation failed")
		outcome = domain.OutcomeFailed
		errMsg = err.Error()
	}
	s.audit.Record(ctx, ports.AuditInput{
		ActorID:      principal.ID,
		ActorEmail:   principal.Email,
		Action:       domain.ActionLogout,
		Origin:       origin,
		Outcome:      outcome,
		ErrorMessage: errMsg,
	})
	return nil
}

// CreateAdmin provisions a new administrative account. Permission checks
// happen at the transport boundary; this method performs and audits the
// action.
func (s *AuthService) CreateAdmin(ctx context.Context, actor domain.Principal, email, password, displayName string, role domain.Role, origin domain.Origin) (*domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || !role.IsValid() {
		return nil, domain.ErrInvalidCredentials
	}
	if !s.domainAllowed(email) {
		s.auditAdminCreation(ctx, actor, email, origin, domain.OutcomeFailed, "email domain not allowed")
		return nil, domain.ErrDomainNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Admin{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.auditAdminCreation(ctx, actor, email, origin, domain.OutcomeFailed, err.Error())
		return nil, err
	}

	s.auditAdminCreation(ctx, actor, created.Email, origin, domain.OutcomeSuccess, "")
	return created, nil
}

func (s *AuthService) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	emailDomain := email[at+1:]
	for _, d := range s.allowedDomains {
		if emailDomain == d {
			return true
		}
	}
	return false
}

func (s *AuthService) auditLoginFailure(ctx context.Context, email string, origin domain.Origin, reason string) {
	s.audit.Record(ctx, ports.AuditInput{
		ActorEmail:   email,
		ActorID:      "unknown",
		Action:       domain.ActionLoginFailed,
		Origin:       origin,
		Outcome:      domain.OutcomeFailed,
		ErrorMessage: reason,
	})
}

func (s *AuthService) auditAdminCreation(ctx context.Context, actor domain.Principal, targetEmail string, origin domain.Origin, outcome domain.AuditOutcome, errMsg string) {
	s.audit.Record(ctx, ports.AuditInput{
		ActorID:      actor.ID,
		ActorEmail:   actor.Email,
		Action:       domain.ActionAdminCreated,
		TargetID:     targetEmail,
		TargetType:   "admin",
		Origin:       origin,
		Outcome:      outcome,
		ErrorMessage: errMsg,
	})
}
