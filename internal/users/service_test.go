package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlab/storefront-backend/pkg/config"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
	"github.com/storefrontlab/storefront-backend/pkg/security"
)

type stubUserRepo struct {
	rows map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{rows: map[uuid.UUID]*models.User{}}
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if row, ok := s.rows[id]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, row := range s.rows {
		if row.Email == email {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.rows[user.ID] = &copied
	return user, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	copied := *user
	s.rows[user.ID] = &copied
	return user, nil
}

func (s *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubUserRepo) List(_ context.Context, filter ListFilter, _ pagination.Params, _ *pagination.Order) ([]models.User, int64, error) {
	var out []models.User
	for _, row := range s.rows {
		if filter.Role != "" && row.Role != filter.Role {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func testPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{BcryptCost: 4}
}

func TestCreateUserHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := &service{repo: repo, passwordCfg: testPasswordCfg()}

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Alice",
		Email:    " Alice@Example.COM ",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Fatalf("expected default role user, got %q", created.Role)
	}

	stored := repo.rows[created.ID]
	if stored.PasswordHash == "hunter22" || stored.PasswordHash == "" {
		t.Fatalf("password should be hashed, got %q", stored.PasswordHash)
	}
	if ok, err := security.VerifyPassword("hunter22", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash should verify, ok=%v err=%v", ok, err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := &service{repo: newStubUserRepo(), passwordCfg: testPasswordCfg()}

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Mallory",
		Email:    "m@example.com",
		Password: "pw",
		Role:     "superuser",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUserRehashesPasswordWhenPresent(t *testing.T) {
	repo := newStubUserRepo()
	svc := &service{repo: repo, passwordCfg: testPasswordCfg()}

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "oldpw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldHash := repo.rows[created.ID].PasswordHash

	newPassword := "newpw"
	if _, err := svc.UpdateUser(context.Background(), created.ID, UpdateUserInput{Password: &newPassword}); err != nil {
		t.Fatalf("update: %v", err)
	}

	newHash := repo.rows[created.ID].PasswordHash
	if newHash == oldHash {
		t.Fatal("password hash should change")
	}
	if ok, _ := security.VerifyPassword("newpw", newHash); !ok {
		t.Fatal("new hash should verify new password")
	}
}

func TestUpdateUserSkipsEmptyPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := &service{repo: repo, passwordCfg: testPasswordCfg()}

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldHash := repo.rows[created.ID].PasswordHash

	empty := ""
	name := "Caroline"
	if _, err := svc.UpdateUser(context.Background(), created.ID, UpdateUserInput{Name: &name, Password: &empty}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.rows[created.ID].PasswordHash != oldHash {
		t.Fatal("empty password should not rehash")
	}
	if repo.rows[created.ID].Name != "Caroline" {
		t.Fatalf("name not patched, got %q", repo.rows[created.ID].Name)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc := &service{repo: newStubUserRepo(), passwordCfg: testPasswordCfg()}

	_, err := svc.GetUser(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsersFiltersByRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := &service{repo: repo, passwordCfg: testPasswordCfg()}

	for _, in := range []CreateUserInput{
		{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleAdmin},
		{Name: "B", Email: "b@example.com", Password: "pw"},
	} {
		if _, err := svc.CreateUser(context.Background(), in); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	result, err := svc.ListUsers(context.Background(), ListFilter{Role: models.RoleAdmin}, pagination.Params{}, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Role != models.RoleAdmin {
		t.Fatalf("expected single admin, got %+v", result.Items)
	}
}
