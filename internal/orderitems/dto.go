package orderitem

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

// OrderItemDTO represents the order line payload returned to clients.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItemListResult carries one page of order items plus pagination metadata.
type OrderItemListResult struct {
	Items []OrderItemDTO  `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// NewOrderItemDTO builds a DTO from the persisted model.
func NewOrderItemDTO(item *models.OrderItem) *OrderItemDTO {
	return &OrderItemDTO{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
