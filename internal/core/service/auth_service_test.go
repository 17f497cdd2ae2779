package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
	"github.com/intersect-health/fhir-api/internal/core/token"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by email
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = user.Email // deterministic id for tests
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Active = active
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type stubRevoker struct {
	revoked map[string]bool
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]bool)}
}

func (r *stubRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	r.revoked[jti] = true
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.revoked[jti], nil
}

func newTestAuthService() (*AuthService, *stubUserRepo, *stubRevoker) {
	repo := newStubUserRepo()
	revoker := newStubRevoker()
	issuer := token.NewIssuer("secret", time.Hour)
	return NewAuthService(repo, issuer, revoker, nil), repo, revoker
}

func registerNurse(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      domain.RoleNurse,
		Password:  "Secret123!",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := newTestAuthService()

	user := registerNurse(t, svc)
	if user.PasswordHash == "Secret123!" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret123!")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleNurse {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if !user.Active {
		t.Fatalf("expected new account to be active")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService()

	cases := []ports.RegisterInput{
		{Email: "", Password: "pw", Role: domain.RoleNurse},
		{Email: "b@x.com", Password: "", Role: domain.RoleNurse},
		{Email: "b@x.com", Password: "pw", Role: domain.Role("patient")},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("input %+v: expected ErrInvalidCredentials, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuthService()

	registerNurse(t, svc)
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "a@x.com",
		Role:     domain.RolePractitioner,
		Password: "other",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_RoundTrip(t *testing.T) {
	svc, _, _ := newTestAuthService()
	registerNurse(t, svc)

	tkn, user, err := svc.Login(context.Background(), "a@x.com", "Secret123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tkn == "" {
		t.Fatalf("expected token")
	}
	if user.Email != "a@x.com" || user.Role != domain.RoleNurse {
		t.Fatalf("unexpected user: %+v", user)
	}

	current, claims, err := svc.CurrentUser(context.Background(), tkn)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.Email != "a@x.com" {
		t.Fatalf("unexpected email: %s", current.Email)
	}
	if claims.Role != domain.RoleNurse {
		t.Fatalf("unexpected claims role: %s", claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	registerNurse(t, svc)

	// A single flipped character must fail just like a wholly different
	// password.
	for _, pw := range []string{"wrong", "Secret123?", "secret123!", "Secret124!"} {
		if _, _, err := svc.Login(context.Background(), "a@x.com", pw); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	// Unknown account must look exactly like a wrong password.
	if _, _, err := svc.Login(context.Background(), "ghost@x.com", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	svc, _, _ := newTestAuthService()
	user := registerNurse(t, svc)

	if err := svc.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@x.com", "Secret123!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive account, got %v", err)
	}
}

func TestAuthService_CurrentUser_DeactivatedAfterIssue(t *testing.T) {
	svc, _, _ := newTestAuthService()
	user := registerNurse(t, svc)

	tkn, _, err := svc.Login(context.Background(), "a@x.com", "Secret123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Token is still unexpired, but the account is gone dark.
	if err := svc.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := svc.CurrentUser(context.Background(), tkn); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _, revoker := newTestAuthService()
	registerNurse(t, svc)

	tkn, _, err := svc.Login(context.Background(), "a@x.com", "Secret123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), tkn); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected one revoked jti, got %d", len(revoker.revoked))
	}

	if _, _, err := svc.CurrentUser(context.Background(), tkn); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthService_CurrentUser_GarbageToken(t *testing.T) {
	svc, _, _ := newTestAuthService()

	if _, _, err := svc.CurrentUser(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
