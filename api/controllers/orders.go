package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/pagination"
)

type orderLedger interface {
	List(ctx context.Context, params pagination.Params) (orders.Page, error)
	Get(ctx context.Context, id string) (orders.LocalOrder, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.LocalOrder, error)
}

// ResyncRunner runs one resync pass, reporting false when another pass
// holds the lock.
type ResyncRunner interface {
	RunOnce(ctx context.Context) (bool, error)
}

type statusRequest struct {
	Status string `json:"status" validate:"notblank"`
}

// OrderList pages through the local ledger newest first.
func OrderList(ledger orderLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		page, err := ledger.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func OrderDetail(ledger orderLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := ledger.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderUpdateStatus(ledger orderLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").WithDetails(map[string]any{"field": "status"}))
			return
		}
		order, err := ledger.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderResync triggers one resync pass outside the schedule.
func OrderResync(runner ResyncRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "resync is disabled"))
			return
		}
		ran, err := runner.RunOnce(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resync failed"))
			return
		}
		status := http.StatusOK
		if !ran {
			status = http.StatusAccepted
		}
		responses.WriteSuccessStatus(w, status, map[string]bool{"ran": ran})
	}
}
