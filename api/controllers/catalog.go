package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/naijagasonline/ngo-storefront/api/responses"
	"github.com/naijagasonline/ngo-storefront/api/validators"
	"github.com/naijagasonline/ngo-storefront/internal/catalog"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

type catalogReader interface {
	List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Addons(ctx context.Context, id string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

func CatalogList(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.ListFilter{
			Query: validators.QueryString(r, "q", 100),
			Kg:    validators.QueryString(r, "kg", 16),
		}
		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CatalogProduct(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CatalogAddons(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addons, err := svc.Addons(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addons)
	}
}

func CatalogCategories(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kinds)
	}
}
