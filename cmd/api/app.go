package main

import (
	"context"
	"fmt"

	"github.com/naijagasonline/ngo-storefront/api/controllers"
	"github.com/naijagasonline/ngo-storefront/api/routes"
	"github.com/naijagasonline/ngo-storefront/internal/address"
	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/catalog"
	"github.com/naijagasonline/ngo-storefront/internal/checkout"
	"github.com/naijagasonline/ngo-storefront/internal/cron"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/internal/requests"
	"github.com/naijagasonline/ngo-storefront/pkg/config"
	"github.com/naijagasonline/ngo-storefront/pkg/db"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/kv"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/maps"
	"github.com/naijagasonline/ngo-storefront/pkg/metrics"
	"github.com/naijagasonline/ngo-storefront/pkg/migrate"
	"github.com/naijagasonline/ngo-storefront/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

type app struct {
	deps    routes.Deps
	closers []func() error
}

// storage is the device-local key-value store plus whatever backs it.
type storage struct {
	store  kv.Store
	pinger controllers.Pinger
	redis  *redis.Client
	close  func() error
}

func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, error) {
	a := &app{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(reg)

	st, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	gw, closeGateway, err := openGateway(ctx, cfg, logg)
	if err != nil {
		return nil, a.fail(logg, err)
	}
	a.closers = append(a.closers, closeGateway)

	catalogSvc, err := catalog.NewService(gw, logg)
	if err != nil {
		return nil, a.fail(logg, err)
	}

	cartSvc, err := cart.NewService(st.store, cart.NewPricing(cfg.Checkout), logg)
	if err != nil {
		return nil, a.fail(logg, err)
	}
	if err := cartSvc.Load(ctx); err != nil {
		logg.WarnErr(ctx, "cart not loaded; starting empty", err)
	}

	book, err := address.NewBook(st.store, logg)
	if err != nil {
		return nil, a.fail(logg, err)
	}
	if err := book.Load(ctx); err != nil {
		logg.WarnErr(ctx, "address book not loaded; starting empty", err)
	}

	ledger, err := orders.NewLedger(st.store, logg)
	if err != nil {
		return nil, a.fail(logg, err)
	}

	contacts := checkout.NewContactStore(st.store, logg)
	orch, err := checkout.NewOrchestrator(checkout.Params{
		Cart:          cartSvc,
		Addresses:     book,
		Ledger:        ledger,
		Gateway:       gw,
		Contacts:      contacts,
		Metrics:       orderMetrics,
		Logger:        logg,
		RemoteTimeout: cfg.Checkout.RemoteTimeout,
	})
	if err != nil {
		return nil, a.fail(logg, err)
	}

	requestSvc, err := requests.NewService(requests.Params{
		Ledger:        ledger,
		Gateway:       gw,
		Metrics:       orderMetrics,
		Logger:        logg,
		RemoteTimeout: cfg.Checkout.RemoteTimeout,
	})
	if err != nil {
		return nil, a.fail(logg, err)
	}

	var places *maps.Client
	if cfg.GoogleMaps.APIKey != "" {
		places, err = maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return nil, a.fail(logg, err)
		}
	} else {
		logg.Info(ctx, "google maps key not set; address suggestions disabled")
	}
	suggester := address.NewSuggester(nil, cfg.GoogleMaps.Region)
	if places != nil {
		suggester = address.NewSuggester(places, cfg.GoogleMaps.Region)
	}

	var resync *cron.Service
	if cfg.Resync.Enabled {
		resync, err = newResync(cfg, logg, reg, st, ledger, gw, orderMetrics)
		if err != nil {
			return nil, a.fail(logg, err)
		}
	}

	a.deps = routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Pingers:     map[string]controllers.Pinger{},
		Catalog:     catalogSvc,
		Cart:        cartSvc,
		Addresses:   book,
		Suggester:   suggester,
		Checkout:    orch,
		Contacts:    contacts,
		Ledger:      ledger,
		Requests:    requestSvc,
		Resync:      resync,
	}
	if st.pinger != nil {
		a.deps.Pingers["storage"] = st.pinger
	}
	return a, nil
}

func newResync(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, st storage, ledger *orders.Ledger, gw gateway.Gateway, orderMetrics *metrics.OrderMetrics) (*cron.Service, error) {
	job, err := cron.NewResyncJob(cron.ResyncJobParams{
		Ledger:    ledger,
		Gateway:   gw,
		Metrics:   orderMetrics,
		Logger:    logg,
		BatchSize: cfg.Resync.BatchSize,
		Timeout:   cfg.Checkout.RemoteTimeout,
	})
	if err != nil {
		return nil, err
	}

	var lock cron.Lock = cron.NewLocalLock()
	if st.redis != nil {
		lock, err = cron.NewRedisLock(st.redis, st.redis.LockKey(cron.ResyncJobName), 0)
		if err != nil {
			return nil, err
		}
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Resync.Interval,
	})
}

func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logg.Warn(ctx, "memory storage selected; nothing survives a restart")
		return storage{store: kv.NewMemory(), close: noop}, nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			return storage{}, fmt.Errorf("bootstrap redis: %w", err)
		}
		return storage{store: client.KV(), pinger: client, redis: client, close: client.Close}, nil

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		var (
			client *db.Client
			err    error
		)
		if cfg.Storage.Driver == config.StorageDriverSQLite {
			client, err = db.NewSQLite(ctx, cfg.DB, logg)
		} else {
			client, err = db.New(ctx, cfg.DB, logg)
		}
		if err != nil {
			return storage{}, fmt.Errorf("bootstrap %s storage: %w", cfg.Storage.Driver, err)
		}
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return storage{}, err
		}
		store, err := kv.NewGormStore(client.DB(), cfg.Storage.Namespace)
		if err != nil {
			_ = client.Close()
			return storage{}, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return storage{}, fmt.Errorf("ensure kv schema: %w", err)
		}
		return storage{store: store, pinger: client, close: client.Close}, nil
	}
	return storage{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// openGateway connects to the backend database, or returns the offline
// gateway when no DSN is configured.
func openGateway(ctx context.Context, cfg *config.Config, logg *logger.Logger) (gateway.Gateway, func() error, error) {
	if !cfg.Gateway.Enabled() {
		logg.Warn(ctx, "gateway DSN not set; running offline, orders queue for resync")
		return gateway.Offline{}, func() error { return nil }, nil
	}
	client, err := db.Open(ctx, cfg.Gateway.Driver, cfg.Gateway.DSN, cfg.DB, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap gateway: %w", err)
	}
	gw, err := gateway.NewGormGateway(client.DB(), cfg.Gateway.Timeout, logg)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if client.Dialect() == db.DialectSQLite {
		if err := gw.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ensure gateway schema: %w", err)
		}
	} else if err := migrate.MaybeAutoRun(ctx, cfg, logg, client); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return gw, client.Close, nil
}

// flush waits for pending cart, address and contact writes.
func (a *app) flush(ctx context.Context) error {
	var err error
	if a.deps.Cart != nil {
		err = multierr.Append(err, a.deps.Cart.Flush(ctx))
	}
	if a.deps.Addresses != nil {
		err = multierr.Append(err, a.deps.Addresses.Flush(ctx))
	}
	if a.deps.Contacts != nil {
		err = multierr.Append(err, a.deps.Contacts.Flush(ctx))
	}
	return err
}

func (a *app) fail(logg *logger.Logger, err error) error {
	a.close(logg)
	return err
}

func (a *app) close(logg *logger.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logg.Error(context.Background(), "error closing resource", err)
		}
	}
	a.closers = nil
}
