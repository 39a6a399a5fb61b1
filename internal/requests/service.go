package requests

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/metrics"
	"github.com/naijagasonline/ngo-storefront/pkg/validate"
)

const defaultRemoteTimeout = 10 * time.Second

type orderLedger interface {
	AddOrder(ctx context.Context, order orders.LocalOrder) error
	UpdateSync(ctx context.Context, txRef string, sync enums.SyncStatus) error
}

type Params struct {
	Ledger        orderLedger
	Gateway       gateway.Gateway
	Metrics       *metrics.OrderMetrics
	Logger        *logger.Logger
	RemoteTimeout time.Duration
	Now           func() time.Time
}

// Service records quick refills and service bookings in the local ledger
// and mirrors them remotely, the same way checkout does. Join requests
// have no local record and go straight to the backend.
type Service struct {
	ledger        orderLedger
	gw            gateway.Gateway
	metrics       *metrics.OrderMetrics
	logg          *logger.Logger
	remoteTimeout time.Duration
	now           func() time.Time
}

func NewService(p Params) (*Service, error) {
	if p.Ledger == nil {
		return nil, fmt.Errorf("order ledger required")
	}
	if p.Gateway == nil {
		p.Gateway = gateway.Offline{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.RemoteTimeout <= 0 {
		p.RemoteTimeout = defaultRemoteTimeout
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		ledger:        p.Ledger,
		gw:            p.Gateway,
		metrics:       p.Metrics,
		logg:          p.Logger,
		remoteTimeout: p.RemoteTimeout,
		now:           p.Now,
	}, nil
}

// QuickRefill places a single-line refill order priced from RefillPrices.
func (s *Service) QuickRefill(ctx context.Context, in RefillInput) (orders.LocalOrder, error) {
	if err := validate.Struct(in); err != nil {
		s.metrics.IncRejected("refill")
		return orders.LocalOrder{}, err
	}
	kg := strings.TrimSpace(in.Kg)
	price, ok := RefillPrices[kg]
	if !ok {
		s.metrics.IncRejected("refill")
		return orders.LocalOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported cylinder size").
			WithDetails(map[string]string{"kg": "is invalid"})
	}
	delivery := in.Delivery
	if delivery == "" {
		delivery = DeliveryDoor
	}
	method := enums.DeliveryMethodDoor
	if delivery == DeliveryPickup {
		method = enums.DeliveryMethodPickup
	}

	now := s.now()
	ref := orders.NewTxRef(orders.TxRefPrefix, now)
	order := orders.LocalOrder{
		ID:          ref,
		TxRef:       ref,
		CreatedAt:   now.UTC(),
		Name:        strings.TrimSpace(in.FullName),
		PhoneNumber: strings.TrimSpace(in.Phone),
		Address:     joinAddress(in.Address, in.City, in.State),
		Product: []cart.Line{{
			ID:    "kg-" + kg,
			Title: "Quick Refill",
			Price: price,
			Qty:   1,
		}},
		DeliveryMethod: method,
		PaymentMode:    enums.PaymentModeCOD,
		Status:         enums.OrderStatusPlaced,
		Total:          price,
		Sync:           enums.SyncStatusQueued,
		Meta: map[string]string{
			orders.MetaKg:             kg,
			orders.MetaPrice:          strconv.FormatInt(price, 10),
			orders.MetaDeliveryOption: delivery,
			orders.MetaAddress:        strings.TrimSpace(in.Address),
			orders.MetaState:          strings.TrimSpace(in.State),
			orders.MetaCity:           strings.TrimSpace(in.City),
		},
	}
	return s.place(ctx, "refill", order)
}

// ServiceRequest books a service visit. The budget becomes the order total.
func (s *Service) ServiceRequest(ctx context.Context, in ServiceInput) (orders.LocalOrder, error) {
	if err := validate.Struct(in); err != nil {
		s.metrics.IncRejected("service")
		return orders.LocalOrder{}, err
	}
	serviceType := strings.TrimSpace(in.ServiceType)
	if !contains(ServiceTypes, serviceType) {
		s.metrics.IncRejected("service")
		return orders.LocalOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown service type").
			WithDetails(map[string]string{"service_type": "is invalid"})
	}
	urgency := strings.TrimSpace(in.Urgency)
	if !contains(Urgencies, urgency) {
		s.metrics.IncRejected("service")
		return orders.LocalOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown urgency").
			WithDetails(map[string]string{"urgency": "is invalid"})
	}

	now := s.now()
	ref := orders.NewTxRef(orders.ServiceTxRefPrefix, now)
	meta := map[string]string{
		orders.MetaServiceType: serviceType,
		orders.MetaUrgency:     urgency,
		orders.MetaAddress:     strings.TrimSpace(in.Address),
		orders.MetaState:       strings.TrimSpace(in.State),
		orders.MetaCity:        strings.TrimSpace(in.City),
	}
	if in.Budget > 0 {
		meta[orders.MetaBudget] = strconv.FormatInt(in.Budget, 10)
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		meta[orders.MetaNotes] = notes
	}

	order := orders.LocalOrder{
		ID:          ref,
		TxRef:       ref,
		CreatedAt:   now.UTC(),
		Name:        strings.TrimSpace(in.FullName),
		PhoneNumber: strings.TrimSpace(in.Phone),
		Address:     joinAddress(in.Address, in.City, in.State),
		Product: []cart.Line{{
			ID:    "svc-" + serviceType,
			Title: "Service: " + serviceType,
			Price: in.Budget,
			Qty:   1,
		}},
		DeliveryMethod: enums.DeliveryMethodService,
		PaymentMode:    enums.PaymentModeCOD,
		Status:         enums.OrderStatusPlaced,
		Total:          in.Budget,
		Sync:           enums.SyncStatusQueued,
		Meta:           meta,
	}
	return s.place(ctx, "service", order)
}

// Join submits a join request. Unlike orders, a remote failure is returned.
func (s *Service) Join(ctx context.Context, in JoinInput) error {
	if err := validate.Struct(in); err != nil {
		s.metrics.IncRejected("join")
		return err
	}
	row := gateway.Row{
		"full_name": strings.TrimSpace(in.FullName),
		"phone":     strings.TrimSpace(in.Phone),
		"role":      strings.TrimSpace(in.Role),
	}
	for col, v := range map[string]string{"message": in.Message, "state": in.State, "city": in.City} {
		if v = strings.TrimSpace(v); v != "" {
			row[col] = v
		}
	}

	remoteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	start := time.Now()
	err := s.gw.InsertRow(remoteCtx, gateway.TableJoinRequests, row)
	s.metrics.ObserveSync(gateway.TableJoinRequests, err == nil, time.Since(start))
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not submit join request")
	}
	return nil
}

// place commits locally, then tries the remote copy once. Only the local
// write can fail the call.
func (s *Service) place(ctx context.Context, source string, order orders.LocalOrder) (orders.LocalOrder, error) {
	ctx = s.logg.WithTxRef(ctx, order.TxRef)
	if err := s.ledger.AddOrder(ctx, order); err != nil {
		s.logg.Error(ctx, "order commit failed", err)
		return orders.LocalOrder{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "could not save order")
	}
	s.metrics.IncPlaced(source)

	table, row, err := orders.RemoteRow(order)
	if err == nil {
		remoteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		start := time.Now()
		err = s.gw.InsertRow(remoteCtx, table, row)
		cancel()
		s.metrics.ObserveSync(table, err == nil, time.Since(start))
	}
	order.Sync = orders.SyncOutcome(err)
	if err != nil {
		s.logg.WarnErr(s.logg.WithFields(ctx, map[string]any{"table": table, "sync": order.Sync}), "remote submission failed", err)
	}
	if err := s.ledger.UpdateSync(ctx, order.TxRef, order.Sync); err != nil {
		s.logg.WarnErr(ctx, "update order sync status", err)
	}
	return order, nil
}
