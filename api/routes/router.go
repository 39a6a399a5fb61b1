package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/naijagasonline/ngo-storefront/api/controllers"
	"github.com/naijagasonline/ngo-storefront/api/middleware"
	"github.com/naijagasonline/ngo-storefront/internal/address"
	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/catalog"
	"github.com/naijagasonline/ngo-storefront/internal/checkout"
	"github.com/naijagasonline/ngo-storefront/internal/cron"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/internal/requests"
	"github.com/naijagasonline/ngo-storefront/pkg/config"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the router exposes. Resync and Suggester may be
// nil when the feature is switched off.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Pingers     map[string]controllers.Pinger

	Catalog   *catalog.Service
	Cart      *cart.Service
	Addresses *address.Book
	Suggester *address.Suggester
	Checkout  *checkout.Orchestrator
	Contacts  *checkout.ContactStore
	Ledger    *orders.Ledger
	Requests  *requests.Service
	Resync    *cron.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})
	r.Get("/healthz", controllers.HealthLive(cfg))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(d.Catalog, logg))
			r.Get("/products/{productId}", controllers.CatalogProduct(d.Catalog, logg))
			r.Get("/products/{productId}/addons", controllers.CatalogAddons(d.Catalog, logg))
			r.Get("/categories", controllers.CatalogCategories(d.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart))
			r.Delete("/", controllers.CartClear(d.Cart))
			r.Post("/items", controllers.CartAddItem(d.Cart, d.Catalog, logg))
			r.Put("/items/{itemId}", controllers.CartSetQty(d.Cart, logg))
			r.Post("/items/{itemId}/increment", controllers.CartIncrement(d.Cart))
			r.Post("/items/{itemId}/decrement", controllers.CartDecrement(d.Cart))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(d.Cart))
			r.Put("/coupon", controllers.CartSetCoupon(d.Cart, logg))
			r.Put("/payment-proof", controllers.CartSetPaymentProof(d.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(d.Addresses))
			r.Post("/", controllers.AddressCreate(d.Addresses, logg))
			r.Get("/default", controllers.AddressDefault(d.Addresses, logg))
			r.Get("/suggestions", controllers.AddressSuggest(d.Suggester, logg))
			r.Post("/suggestions/accept", controllers.AddressFromSuggestion(d.Addresses, logg))
			r.Get("/{addressId}", controllers.AddressGet(d.Addresses, logg))
			r.Patch("/{addressId}", controllers.AddressUpdate(d.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(d.Addresses, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(d.Addresses, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutStatus(d.Checkout))
			r.Get("/contact", controllers.CheckoutContact(d.Contacts, logg))
			r.Post("/submit", controllers.CheckoutSubmit(d.Checkout, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(d.Checkout, logg))
			r.Post("/cancel", controllers.CheckoutCancel(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.Ledger, logg))
			r.Post("/resync", controllers.OrderResync(resyncRunner(d.Resync), logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.Ledger, logg))
			r.Post("/{orderId}/status", controllers.OrderUpdateStatus(d.Ledger, logg))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/refill", controllers.RequestRefill(d.Requests, logg))
			r.Post("/service", controllers.RequestService(d.Requests, logg))
			r.Post("/join", controllers.RequestJoin(d.Requests, logg))
		})
	})

	return r
}

// resyncRunner keeps a nil *cron.Service from becoming a non-nil interface.
func resyncRunner(s *cron.Service) controllers.ResyncRunner {
	if s == nil {
		return nil
	}
	return s
}
