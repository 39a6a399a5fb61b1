package controllers

import (
	"context"
	"net/http"

	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/internal/requests"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

type requestService interface {
	QuickRefill(ctx context.Context, in requests.RefillInput) (orders.LocalOrder, error)
	ServiceRequest(ctx context.Context, in requests.ServiceInput) (orders.LocalOrder, error)
	Join(ctx context.Context, in requests.JoinInput) error
}

func RequestRefill(svc requestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in requests.RefillInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.QuickRefill(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func RequestService(svc requestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in requests.ServiceInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ServiceRequest(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func RequestJoin(svc requestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in requests.JoinInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Join(r.Context(), in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "received"})
	}
}
