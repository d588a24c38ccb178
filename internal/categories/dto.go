package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	"github.com/storefrontlab/storefront-backend/pkg/pagination"
)

// CategoryDTO represents the category payload returned to clients.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListResult carries one page of categories plus pagination metadata.
type CategoryListResult struct {
	Items []CategoryDTO   `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// NewCategoryDTO builds a DTO from the persisted model.
func NewCategoryDTO(category *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
