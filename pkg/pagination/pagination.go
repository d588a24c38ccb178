package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultPage is the first page when a page is not provided.
	DefaultPage = 1
	// DefaultSize is the standard page size when a size is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any list query can request.
	MaxSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Order represents a parsed orderBy directive.
type Order struct {
	Field     string
	Direction string
}

// Normalize enforces the configured defaults and maximum size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset implied by the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Limit returns the row limit implied by the normalized params.
func (p Params) Limit() int {
	return p.Normalize().Size
}

// ParseOrder decodes a "field:direction" orderBy value against the allowed
// column set. An empty value returns nil so callers can apply their default.
func ParseOrder(value string, allowed map[string]string) (*Order, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	parts := strings.SplitN(value, ":", 2)
	field := strings.TrimSpace(parts[0])
	direction := "asc"
	if len(parts) == 2 {
		direction = strings.ToLower(strings.TrimSpace(parts[1]))
	}

	column, ok := allowed[field]
	if !ok {
		return nil, fmt.Errorf("unsupported order field %q", field)
	}
	if direction != "asc" && direction != "desc" {
		return nil, fmt.Errorf("unsupported order direction %q", direction)
	}

	return &Order{Field: column, Direction: direction}, nil
}

// Clause renders the order as a SQL ORDER BY fragment.
func (o *Order) Clause() string {
	return o.Field + " " + strings.ToUpper(o.Direction)
}

// Meta describes a page of results in list responses.
type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}

// NewMeta computes response metadata from the normalized params and row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := total / int64(n.Size)
	if total%int64(n.Size) != 0 {
		pages++
	}
	return Meta{
		Page:       n.Page,
		Size:       n.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
