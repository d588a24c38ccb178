package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlab/storefront-backend/api/responses"
	"github.com/storefrontlab/storefront-backend/api/validators"
	order "github.com/storefrontlab/storefront-backend/internal/orders"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

var orderSortFields = map[string]string{
	"date":        "date",
	"total_price": "total_price",
	"created_at":  "created_at",
}

type orderCreateRequest struct {
	Date          *time.Time `json:"date,omitempty"`
	CustomerName  string     `json:"customer_name" validate:"required,min=1,max=200"`
	CustomerEmail string     `json:"customer_email" validate:"required,email"`
	UserID        uuid.UUID  `json:"user_id" validate:"required"`
}

// The order total is owned by the order item flow; it is not patchable here.
type orderUpdateRequest struct {
	Date          *time.Time `json:"date,omitempty"`
	CustomerName  *string    `json:"customer_name,omitempty" validate:"omitempty,min=1,max=200"`
	CustomerEmail *string    `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// OrderCreate handles POST /orders.
func OrderCreate(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body orderCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), order.CreateOrderInput{
			Date:          body.Date,
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			UserID:        body.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderGet handles GET /orders/{orderId}, returning the order with its lines.
func OrderGet(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderUpdate handles PUT /orders/{orderId}.
func OrderUpdate(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateOrder(r.Context(), id, order.UpdateOrderInput{
			Date:          body.Date,
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderDelete handles DELETE /orders/{orderId}.
func OrderDelete(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderList handles GET /orders with customer filtering.
func OrderList(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderBy, err := validators.ParseOrderBy(r, orderSortFields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := order.ListFilter{
			CustomerName:  validators.SanitizeString(r.URL.Query().Get("customer_name"), 200),
			CustomerEmail: validators.NormalizeEmail(r.URL.Query().Get("customer_email")),
		}
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
				return
			}
			filter.UserID = &id
		}

		result, err := svc.ListOrders(r.Context(), filter, page, orderBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
