package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/address"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/maps"
)

type addressBook interface {
	List() []address.Address
	GetByID(id string) (address.Address, bool)
	GetDefault() (address.Address, bool)
	Add(d address.Draft) (address.Address, error)
	Update(id string, patch address.Patch) (address.Address, error)
	Remove(id string) bool
	SetDefault(id string) bool
}

type addressSuggester interface {
	Suggest(ctx context.Context, query string) ([]maps.Place, error)
}

type addressList struct {
	Addresses []address.Address `json:"addresses"`
}

func AddressList(book addressBook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, addressList{Addresses: book.List()})
	}
}

func AddressDefault(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, ok := book.GetDefault()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no default address"))
			return
		}
		responses.WriteSuccess(w, addr)
	}
}

func AddressGet(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, ok := book.GetByID(chi.URLParam(r, "addressId"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "address not found"))
			return
		}
		responses.WriteSuccess(w, addr)
	}
}

func AddressCreate(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft address.Draft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addr, err := book.Add(draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addr)
	}
}

func AddressUpdate(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch address.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addr, err := book.Update(chi.URLParam(r, "addressId"), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addr)
	}
}

func AddressDelete(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !book.Remove(chi.URLParam(r, "addressId")) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "address not found"))
			return
		}
		responses.WriteSuccess(w, addressList{Addresses: book.List()})
	}
}

func AddressSetDefault(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !book.SetDefault(chi.URLParam(r, "addressId")) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "address not found"))
			return
		}
		responses.WriteSuccess(w, addressList{Addresses: book.List()})
	}
}

// AddressSuggest returns place suggestions for q. Queries shorter than the
// suggester's minimum yield an empty list, not an error.
func AddressSuggest(suggester addressSuggester, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if suggester == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "place search is not configured"))
			return
		}
		places, err := suggester.Suggest(r.Context(), validators.QueryString(r, "q", 200))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, places)
	}
}

type acceptSuggestionRequest struct {
	Place       maps.Place `json:"place"`
	MakeDefault bool       `json:"make_default"`
}

// AddressFromSuggestion saves an accepted place suggestion.
func AddressFromSuggestion(book addressBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req acceptSuggestionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addr, err := book.Add(address.FromSuggestion(req.Place, req.MakeDefault))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addr)
	}
}
