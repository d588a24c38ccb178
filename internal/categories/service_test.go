package category

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

type stubCategoryRepo struct {
	rows map[uuid.UUID]*models.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{rows: map[uuid.UUID]*models.Category{}}
}

func (s *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if row, ok := s.rows[id]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) FindByName(_ context.Context, name string) (*models.Category, error) {
	for _, row := range s.rows {
		if row.Name == name {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) Create(_ context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	copied := *category
	s.rows[category.ID] = &copied
	return category, nil
}

func (s *stubCategoryRepo) Update(_ context.Context, category *models.Category) (*models.Category, error) {
	copied := *category
	s.rows[category.ID] = &copied
	return category, nil
}

func (s *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubCategoryRepo) List(_ context.Context, filter ListFilter, page pagination.Params, _ *pagination.Order) ([]models.Category, int64, error) {
	var out []models.Category
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	svc := &service{repo: newStubCategoryRepo()}

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAndGetCategory(t *testing.T) {
	svc := &service{repo: newStubCategoryRepo()}

	created, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: " Electronics ", Description: " gadgets "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Electronics" || created.Description != "gadgets" {
		t.Fatalf("expected trimmed fields, got %+v", created)
	}

	got, err := svc.GetCategory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Electronics" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

func TestGetCategoryNotFound(t *testing.T) {
	svc := &service{repo: newStubCategoryRepo()}

	_, err := svc.GetCategory(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateCategoryPatchesOnlyProvidedFields(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := &service{repo: repo}

	created, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Books", Description: "paper"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "paper and ink"
	updated, err := svc.UpdateCategory(context.Background(), created.ID, UpdateCategoryInput{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Books" {
		t.Fatalf("name should be untouched, got %q", updated.Name)
	}
	if updated.Description != "paper and ink" {
		t.Fatalf("description not patched, got %q", updated.Description)
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	svc := &service{repo: newStubCategoryRepo()}

	err := svc.DeleteCategory(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCategoriesReturnsEmptyPage(t *testing.T) {
	svc := &service{repo: newStubCategoryRepo()}

	result, err := svc.ListCategories(context.Background(), ListFilter{}, pagination.Params{}, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(result.Items))
	}
	if result.Meta.TotalItems != 0 {
		t.Fatalf("expected zero total, got %d", result.Meta.TotalItems)
	}
}
