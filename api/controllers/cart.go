package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/catalog"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/types"
)

type cartService interface {
	Lines() []cart.Line
	IsEmpty() bool
	Coupon() string
	Totals() cart.Totals
	PaymentProof() string
	Add(p cart.Product, qty int)
	Inc(id string)
	Dec(id string)
	SetQty(id string, qty int)
	Remove(id string)
	Clear()
	SetCoupon(code *string)
	SetPaymentProof(uri string)
}

type productGetter interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

type cartView struct {
	Lines        []cart.Line `json:"lines"`
	Coupon       *string     `json:"coupon"`
	Totals       cart.Totals `json:"totals"`
	TotalDisplay string      `json:"total_display"`
	PaymentProof string      `json:"payment_proof,omitempty"`
}

func newCartView(svc cartService) cartView {
	totals := svc.Totals()
	view := cartView{
		Lines:        svc.Lines(),
		Totals:       totals,
		TotalDisplay: types.FormatNGN(totals.Total),
		PaymentProof: svc.PaymentProof(),
	}
	if code := svc.Coupon(); code != "" {
		view.Coupon = &code
	}
	return view
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"notblank"`
	Option    string `json:"option" validate:"omitempty,oneof=default refill new"`
	Qty       int    `json:"qty" validate:"gte=0,lte=99"`
}

type setQtyRequest struct {
	Qty int `json:"qty" validate:"lte=99"`
}

type couponRequest struct {
	Code *string `json:"code" validate:"omitempty,max=32"`
}

type paymentProofRequest struct {
	URI string `json:"uri" validate:"max=2048"`
}

func CartFetch(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartAddItem resolves the product from the catalog and adds it at the
// chosen price option. A missing qty adds one unit.
func CartAddItem(svc cartService, products productGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := products.Get(r.Context(), strings.TrimSpace(req.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		option := catalog.PriceOption(req.Option)
		if option == "" {
			option = catalog.PriceDefault
		}
		svc.Add(product.CartProduct(option), req.Qty)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(svc))
	}
}

func CartSetQty(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setQtyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.SetQty(chi.URLParam(r, "itemId"), req.Qty)
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func CartIncrement(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Inc(chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func CartDecrement(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Dec(chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func CartRemoveItem(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Remove(chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func CartClear(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Clear()
		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartSetCoupon stores the code as typed; a null or blank code clears it.
// Unknown codes are kept and simply discount nothing.
func CartSetCoupon(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.SetCoupon(req.Code)
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func CartSetPaymentProof(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentProofRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if svc.IsEmpty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty"))
			return
		}
		svc.SetPaymentProof(strings.TrimSpace(req.URI))
		responses.WriteSuccess(w, newCartView(svc))
	}
}
