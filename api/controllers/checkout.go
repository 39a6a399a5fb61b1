package controllers

import (
	"context"
	"net/http"

	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/checkout"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

type checkoutFlow interface {
	Status() checkout.Status
	Submit(ctx context.Context, in checkout.Input) (checkout.Confirmation, error)
	Confirm(ctx context.Context) (checkout.Result, error)
	Cancel() error
}

type contactLoader interface {
	Load(ctx context.Context) (checkout.Contact, error)
}

func CheckoutStatus(flow checkoutFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, flow.Status())
	}
}

// CheckoutContact returns the remembered name and phone used to prefill
// the checkout form. A failed read yields an empty contact.
func CheckoutContact(contacts contactLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact, err := contacts.Load(r.Context())
		if err != nil {
			logg.WarnErr(r.Context(), "load checkout contact", err)
		}
		responses.WriteSuccess(w, contact)
	}
}

func CheckoutSubmit(flow checkoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in checkout.Input
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		conf, err := flow.Submit(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conf)
	}
}

func CheckoutConfirm(flow checkoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := flow.Confirm(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CheckoutCancel(flow checkoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := flow.Cancel(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, flow.Status())
	}
}
