package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
	"github.com/intersect-health/fhir-api/internal/core/token"
)

// AuthService implements registration, login, per-request identity
// resolution and token revocation.
type AuthService struct {
	repo    ports.UserRepository
	issuer  *token.Issuer
	revoker ports.TokenRevoker
	audit   ports.AuditTrail
}

func NewAuthService(repo ports.UserRepository, issuer *token.Issuer, revoker ports.TokenRevoker, audit ports.AuditTrail) *AuthService {
	return &AuthService{repo: repo, issuer: issuer, revoker: revoker, audit: audit}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || !in.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{
		Actor:   created.Email,
		Action:  domain.AuditRegister,
		Outcome: domain.AuditOutcomeSuccess,
	})
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same outcome as a wrong password: no account enumeration.
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(domain.AuditEvent{Actor: email, Action: domain.AuditLogin, Outcome: domain.AuditOutcomeDenied})
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		// Externally indistinguishable from bad credentials.
		s.record(domain.AuditEvent{Actor: email, Action: domain.AuditLogin, Outcome: domain.AuditOutcomeDenied})
		return "", nil, domain.ErrInvalidCredentials
	}

	tkn, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.record(domain.AuditEvent{Actor: email, Action: domain.AuditLogin, Outcome: domain.AuditOutcomeSuccess})
	return tkn, user, nil
}

// CurrentUser resolves a raw bearer token to a live account: signature and
// expiry first, then the revocation list, then a live read of the account.
// A token is never trusted on its own claims; the active flag is checked
// against the store on every request.
func (s *AuthService) CurrentUser(ctx context.Context, rawToken string) (*domain.User, *token.Claims, error) {
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil, nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, domain.ErrTokenRevoked
		}
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrTokenInvalid
		}
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, domain.ErrUserInactive
	}

	return user, claims, nil
}

// Logout revokes the presented token for its remaining lifetime. An already
// expired token needs no list entry.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return err
	}
	if s.revoker == nil {
		return nil
	}

	ttl := s.issuer.Remaining(claims)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	s.record(domain.AuditEvent{Actor: claims.Email, Action: domain.AuditLogout, Outcome: domain.AuditOutcomeSuccess})
	return nil
}

func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.record(domain.AuditEvent{Actor: userID, Action: domain.AuditDeactivate, Outcome: domain.AuditOutcomeSuccess})
	return nil
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.audit.Submit(event)
}
