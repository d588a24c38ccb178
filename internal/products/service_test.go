package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

type stubProductRepo struct {
	rows map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{rows: map[uuid.UUID]*models.Product{}}
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if row, ok := s.rows[id]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	s.rows[product.ID] = &copied
	return product, nil
}

func (s *stubProductRepo) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	copied := *product
	s.rows[product.ID] = &copied
	return product, nil
}

func (s *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubProductRepo) List(_ context.Context, filter ListFilter, _ pagination.Params, _ *pagination.Order) ([]models.Product, int64, error) {
	var out []models.Product
	for _, row := range s.rows {
		if filter.CategoryID != nil && row.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.UserID != nil && row.UserID != *filter.UserID {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

type stubCategoryLoader struct {
	rows map[uuid.UUID]*models.Category
}

func (s *stubCategoryLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryLoader) FindByName(_ context.Context, name string) (*models.Category, error) {
	for _, row := range s.rows {
		if row.Name == name {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubUserLoader struct {
	rows map[uuid.UUID]*models.User
}

func (s *stubUserLoader) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testService() (*service, *stubProductRepo, uuid.UUID, uuid.UUID) {
	categoryID := uuid.New()
	userID := uuid.New()
	repo := newStubProductRepo()
	svc := &service{
		repo: repo,
		categoryRepo: &stubCategoryLoader{rows: map[uuid.UUID]*models.Category{
			categoryID: {ID: categoryID, Name: "electronics"},
		}},
		userRepo: &stubUserLoader{rows: map[uuid.UUID]*models.User{
			userID: {ID: userID, Role: models.RoleUser},
		}},
	}
	return svc, repo, categoryID, userID
}

func TestCreateProductValidatesCategoryExists(t *testing.T) {
	svc, _, _, userID := testService()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Widget",
		Price:      decimal.NewFromFloat(9.99),
		CategoryID: uuid.New(),
		UserID:     userID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateProductValidatesUserExists(t *testing.T) {
	svc, _, categoryID, _ := testService()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Widget",
		Price:      decimal.NewFromFloat(9.99),
		CategoryID: categoryID,
		UserID:     uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc, _, categoryID, userID := testService()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Widget",
		Price:      decimal.NewFromFloat(-1),
		CategoryID: categoryID,
		UserID:     userID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	svc, repo, categoryID, userID := testService()

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:            " Widget ",
		Description:     "a widget",
		Price:           decimal.NewFromFloat(9.99),
		QuantityInStock: 10,
		CategoryID:      categoryID,
		UserID:          userID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Widget" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	newPrice := decimal.NewFromFloat(12.50)
	updated, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price not patched, got %s", updated.Price)
	}
	if repo.rows[created.ID].QuantityInStock != 10 {
		t.Fatalf("stock should be untouched, got %d", repo.rows[created.ID].QuantityInStock)
	}
}

func TestSearchByCategoryNameUnknownCategory(t *testing.T) {
	svc, _, _, _ := testService()

	_, err := svc.SearchByCategoryName(context.Background(), "no-such-category", pagination.Params{}, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchByCategoryNameListsMatchingProducts(t *testing.T) {
	svc, _, categoryID, userID := testService()

	for _, name := range []string{"TV", "Radio"} {
		if _, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:       name,
			Price:      decimal.NewFromFloat(100),
			CategoryID: categoryID,
			UserID:     userID,
		}); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	result, err := svc.SearchByCategoryName(context.Background(), "electronics", pagination.Params{}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 products, got %d", len(result.Items))
	}
}
