package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/storefrontlab/storefront-backend/api/responses"
	"github.com/storefrontlab/storefront-backend/api/validators"
	orderitem "github.com/storefrontlab/storefront-backend/internal/orderitems"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

var orderItemSortFields = map[string]string{
	"quantity":   "quantity",
	"unit_price": "unit_price",
	"created_at": "created_at",
}

type orderItemCreateRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// A zero or absent quantity leaves stock and totals alone; only the product
// reference is patched.
type orderItemUpdateRequest struct {
	Quantity  *int       `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// OrderItemCreate handles POST /order-items, running the stock and total
// reconciliation for the new line.
func OrderItemCreate(svc orderitem.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order item service unavailable"))
			return
		}

		var body orderItemCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrderItem(r.Context(), orderitem.CreateOrderItemInput{
			OrderID:   body.OrderID,
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderItemGet handles GET /order-items/{itemId}.
func OrderItemGet(svc orderitem.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order item service unavailable"))
			return
		}

		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetOrderItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderItemUpdate handles PUT /order-items/{itemId}.
func OrderItemUpdate(svc orderitem.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order item service unavailable"))
			return
		}

		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderItemUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateOrderItem(r.Context(), id, orderitem.UpdateOrderItemInput{
			Quantity:  body.Quantity,
			ProductID: body.ProductID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderItemDelete handles DELETE /order-items/{itemId}, returning the line's
// quantity to stock and shrinking the order total.
func OrderItemDelete(svc orderitem.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order item service unavailable"))
			return
		}

		id, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrderItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderItemList handles GET /order-items with order, product, and quantity filters.
func OrderItemList(svc orderitem.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order item service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderBy, err := validators.ParseOrderBy(r, orderItemSortFields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter orderitem.ListFilter
		if raw := r.URL.Query().Get("order_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id"))
				return
			}
			filter.OrderID = &id
		}
		if raw := r.URL.Query().Get("product_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
				return
			}
			filter.ProductID = &id
		}
		if raw := r.URL.Query().Get("quantity"); raw != "" {
			qty, err := strconv.Atoi(raw)
			if err != nil || qty < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity"))
				return
			}
			filter.Quantity = &qty
		}

		result, err := svc.ListOrderItems(r.Context(), filter, page, orderBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
