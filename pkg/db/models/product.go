package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable listing. QuantityInStock and the captured unit prices
// on order items are reconciled exclusively by the order-items service.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Description     string          `gorm:"column:description;not null"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	QuantityInStock int             `gorm:"column:quantity_in_stock;not null;default:0"`
	CategoryID      uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
