package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/storefrontlab/storefront-backend/pkg/auth"
	"github.com/storefrontlab/storefront-backend/pkg/auth/session"
	"github.com/storefrontlab/storefront-backend/pkg/config"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	created []*models.User
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.byEmail[u.Email] = u
	s.created = append(s.created, u)
	return u, nil
}

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.sessions[newID] = token
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(s.sessions, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
}

func testService(t *testing.T) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubUserRepo{byEmail: map[string]*models.User{}}
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{BcryptCost: 4},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password, role string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{BcryptCost: 4})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		ID:           uuid.New(),
		Name:         "Seeded User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	repo.byEmail[email] = u
	return u
}

func TestRegisterCreatesUserAndIssuesTokens(t *testing.T) {
	svc, repo, sessions := testService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.COM",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Fatalf("expected default role, got %s", created.Role)
	}
	if created.PasswordHash == "correct horse" {
		t.Fatalf("password stored in plain text")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != created.ID {
		t.Fatalf("expected user id claim %s, got %s", created.ID, claims.UserID)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatalf("expected session stored for jti %s", claims.ID)
	}
	if resp.User == nil || resp.User.Email != "ada@example.com" {
		t.Fatalf("expected user payload in response")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "taken@example.com", "whatever", models.RoleUser)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dup",
		Email:    "taken@example.com",
		Password: "correct horse",
	})
	if err == nil {
		t.Fatalf("expected error for duplicate email")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	svc, repo, _ := testService(t)
	seeded := seedUser(t, repo, "user@example.com", "s3cret-pass", models.RoleAdmin)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "User@Example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != seeded.ID {
		t.Fatalf("expected user id %s, got %s", seeded.ID, claims.UserID)
	}
	if claims.Role != models.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "user@example.com", "s3cret-pass", models.RoleUser)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), invalidCredentialsMessage) {
		t.Fatalf("expected generic credentials message, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if err == nil {
		t.Fatalf("expected error for unknown email")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, repo, sessions := testService(t)
	seedUser(t, repo, "user@example.com", "s3cret-pass", models.RoleUser)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	oldClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	newClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatalf("expected a fresh session id after rotation")
	}
	if newClaims.UserID != oldClaims.UserID {
		t.Fatalf("rotation changed the user claim")
	}
	if _, ok := sessions.sessions[oldClaims.ID]; ok {
		t.Fatalf("old session should be revoked after rotation")
	}

	// The old refresh token is single use.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err == nil {
		t.Fatalf("expected error reusing rotated refresh token")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsForgedRefreshToken(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "user@example.com", "s3cret-pass", models.RoleUser)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged-token",
	})
	if err == nil {
		t.Fatalf("expected error for forged refresh token")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, repo, sessions := testService(t)
	seedUser(t, repo, "user@example.com", "s3cret-pass", models.RoleUser)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if err := svc.Logout(context.Background(), login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; ok {
		t.Fatalf("session should be gone after logout")
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatalf("expected revoke call for jti %s", claims.ID)
	}
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	svc, _, _ := testService(t)

	err := svc.Logout(context.Background(), "not-a-jwt")
	if err == nil {
		t.Fatalf("expected error for malformed token")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
