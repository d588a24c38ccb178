package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlab/storefront-backend/pkg/db"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.NewSQLite(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	))

	return NewRepository(client.DB())
}

func seedOrder(t *testing.T, repo *Repository, userID uuid.UUID, name, email string, date time.Time) *models.Order {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Order{
		Date:          date,
		TotalPrice:    decimal.Zero,
		CustomerName:  name,
		CustomerEmail: email,
		UserID:        userID,
	})
	require.NoError(t, err)
	return created
}

func TestRepositoryFindByIDWithItems(t *testing.T) {
	repo := setupOrdersTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	created := seedOrder(t, repo, userID, "Grace Hopper", "grace@example.com", time.Now().UTC())

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.db.Create(&models.OrderItem{
			OrderID:   created.ID,
			ProductID: uuid.New(),
			Quantity:  i + 1,
			UnitPrice: decimal.RequireFromString("3.25"),
		}).Error)
	}

	loaded, err := repo.FindByIDWithItems(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Len(t, loaded.Items, 2)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	repo := setupOrdersTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	otherUser := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedOrder(t, repo, userID, "Repeat Customer", "repeat@example.com", base.Add(time.Duration(i)*time.Hour))
	}
	seedOrder(t, repo, otherUser, "One Off", "oneoff@example.com", base)

	orders, total, err := repo.List(ctx, ListFilter{CustomerEmail: "repeat@example.com"}, pagination.Params{Page: 1, Size: 2}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 2)
	// Default sort is newest first.
	assert.True(t, orders[0].Date.After(orders[1].Date))

	orders, total, err = repo.List(ctx, ListFilter{UserID: &otherUser}, pagination.Params{Page: 1, Size: 10}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "One Off", orders[0].CustomerName)
}

func TestRepositoryListHonorsOrderBy(t *testing.T) {
	repo := setupOrdersTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	early := seedOrder(t, repo, userID, "Early", "early@example.com", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seedOrder(t, repo, userID, "Late", "late@example.com", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	orderBy, err := pagination.ParseOrder("date:asc", map[string]string{"date": "date"})
	require.NoError(t, err)

	orders, _, err := repo.List(ctx, ListFilter{}, pagination.Params{Page: 1, Size: 10}, orderBy)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, early.ID, orders[0].ID)
}

func TestRepositoryDeleteRemovesRow(t *testing.T) {
	repo := setupOrdersTestDB(t)
	ctx := context.Background()

	created := seedOrder(t, repo, uuid.New(), "Gone Soon", "gone@example.com", time.Now().UTC())
	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.FindByID(ctx, created.ID)
	assert.Error(t, err)
}
