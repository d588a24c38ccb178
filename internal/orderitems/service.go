package orderitem

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlab/storefront-backend/pkg/db"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

// Service is the order-line reconciliation engine. Every write keeps three
// pieces of state mutually consistent inside one transaction: the product's
// quantity_in_stock, the order's total_price, and the line itself with its
// captured unit_price.
type Service interface {
	CreateOrderItem(ctx context.Context, input CreateOrderItemInput) (*OrderItemDTO, error)
	GetOrderItem(ctx context.Context, id uuid.UUID) (*OrderItemDTO, error)
	UpdateOrderItem(ctx context.Context, id uuid.UUID, input UpdateOrderItemInput) (*OrderItemDTO, error)
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	ListOrderItems(ctx context.Context, filter ListFilter, page pagination.Params, order *pagination.Order) (*OrderItemListResult, error)
}

// CreateOrderItemInput holds the validated payload to add a line to an order.
// The unit price is never client-supplied; it is captured from the product.
type CreateOrderItemInput struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// UpdateOrderItemInput holds optional mutation values for a line. A nil or
// zero Quantity skips stock and total reconciliation entirely; only the
// remaining fields are patched.
type UpdateOrderItemInput struct {
	Quantity  *int
	ProductID *uuid.UUID
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	policies Policies
}

// NewService constructs the reconciliation engine.
func NewService(repo *Repository, dbClient *db.Client, policies Policies) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order item repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if err := policies.Validate(); err != nil {
		return nil, err
	}
	return &service{repo: repo, dbClient: dbClient, policies: policies}, nil
}

// CreateOrderItem adds a line to an order: the unit price is frozen from the
// product, the order total grows by quantity*price, and stock shrinks by the
// quantity. Equality with the remaining stock is allowed.
func (s *service) CreateOrderItem(ctx context.Context, input CreateOrderItemInput) (*OrderItemDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var created *models.OrderItem
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindProductForUpdate(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		order, err := txRepo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !s.policies.Create.Allows(product.QuantityInStock, input.Quantity) {
			return pkgerrors.New(pkgerrors.CodeValidation, "order quantity exceeds available stock")
		}

		unitPrice := product.Price
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))

		order.TotalPrice = order.TotalPrice.Add(lineTotal)
		if err := txRepo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order total")
		}

		product.QuantityInStock -= input.Quantity
		if err := txRepo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product stock")
		}

		item := &models.OrderItem{
			OrderID:   input.OrderID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
		}
		created, err = txRepo.CreateItem(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderItemDTO(created), nil
}

func (s *service) GetOrderItem(ctx context.Context, id uuid.UUID) (*OrderItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	return NewOrderItemDTO(item), nil
}

// UpdateOrderItem patches a line. When a non-zero quantity is supplied the
// stock and total move by the signed delta against the frozen unit price;
// the update path requires stock strictly above the new quantity.
func (s *service) UpdateOrderItem(ctx context.Context, id uuid.UUID, input UpdateOrderItemInput) (*OrderItemDTO, error) {
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var updated *models.OrderItem
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item, err := txRepo.FindItemForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		reconcile := input.Quantity != nil && *input.Quantity != 0
		if reconcile {
			newQuantity := *input.Quantity

			product, err := txRepo.FindProductForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}

			order, err := txRepo.FindOrderForUpdate(ctx, item.OrderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}

			if !s.policies.Update.Allows(product.QuantityInStock, newQuantity) {
				return pkgerrors.New(pkgerrors.CodeValidation, "order quantity exceeds available stock")
			}

			delta := newQuantity - item.Quantity
			change := item.UnitPrice.Mul(decimal.NewFromInt(int64(abs(delta))))

			if delta <= 0 {
				order.TotalPrice = order.TotalPrice.Sub(change)
			} else {
				order.TotalPrice = order.TotalPrice.Add(change)
			}
			if err := txRepo.SaveOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order total")
			}

			if delta <= 0 {
				product.QuantityInStock += -delta
			} else {
				product.QuantityInStock -= delta
			}
			if err := txRepo.SaveProduct(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product stock")
			}

			item.Quantity = newQuantity
		}

		if input.ProductID != nil && *input.ProductID != item.ProductID {
			if _, err := txRepo.FindProductForUpdate(ctx, *input.ProductID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target product")
			}
			item.ProductID = *input.ProductID
		}

		if err := txRepo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderItemDTO(updated), nil
}

// DeleteOrderItem removes a line and unconditionally returns its quantity to
// the product's stock and subtracts its contribution from the order total.
func (s *service) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item, err := txRepo.FindItemForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		product, err := txRepo.FindProductForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		order, err := txRepo.FindOrderForUpdate(ctx, item.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.TotalPrice = order.TotalPrice.Sub(lineTotal)
		if err := txRepo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order total")
		}

		product.QuantityInStock += item.Quantity
		if err := txRepo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product stock")
		}

		if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order item")
		}
		return nil
	})
}

func (s *service) ListOrderItems(ctx context.Context, filter ListFilter, page pagination.Params, order *pagination.Order) (*OrderItemListResult, error) {
	items, total, err := s.repo.List(ctx, filter, page, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list order items")
	}

	out := make([]OrderItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *NewOrderItemDTO(&items[i]))
	}
	return &OrderItemListResult{Items: out, Meta: pagination.NewMeta(page, total)}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
