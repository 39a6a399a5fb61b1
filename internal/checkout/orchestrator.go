package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/naijagasonline/ngo-storefront/internal/address"
	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/internal/orders"
	"github.com/naijagasonline/ngo-storefront/pkg/enums"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"github.com/naijagasonline/ngo-storefront/pkg/metrics"
	"github.com/naijagasonline/ngo-storefront/pkg/types"
)

const defaultRemoteTimeout = 10 * time.Second

type cartState interface {
	Lines() []cart.Line
	Totals() cart.Totals
	Clear()
	Flush(ctx context.Context) error
}

type addressReader interface {
	GetDefault() (address.Address, bool)
}

type orderLedger interface {
	AddOrder(ctx context.Context, order orders.LocalOrder) error
	Contains(ctx context.Context, txRef string) (bool, error)
	UpdateSync(ctx context.Context, txRef string, sync enums.SyncStatus) error
}

// Input is what the customer submits from the checkout form.
type Input struct {
	Name           string               `json:"name" validate:"max=120"`
	Phone          string               `json:"phone" validate:"max=32"`
	PaymentMode    enums.PaymentMode    `json:"payment_mode"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method,omitempty"`
}

// Confirmation is the summary shown before the customer commits.
type Confirmation struct {
	TxRef          string               `json:"tx_ref"`
	Name           string               `json:"name"`
	Phone          string               `json:"phone"`
	AddressID      string               `json:"address_id"`
	Address        string               `json:"address"`
	PaymentMode    enums.PaymentMode    `json:"payment_mode"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	Lines          []cart.Line          `json:"lines"`
	Totals         cart.Totals          `json:"totals"`
	TotalDisplay   string               `json:"total_display"`
}

// Result describes a completed checkout.
type Result struct {
	Order  orders.LocalOrder `json:"order"`
	Synced bool              `json:"synced"`
}

// Status is a read-only view of the orchestrator.
type Status struct {
	State        State         `json:"state"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	LastTxRef    string        `json:"last_tx_ref,omitempty"`
}

type Params struct {
	Cart          cartState
	Addresses     addressReader
	Ledger        orderLedger
	Gateway       gateway.Gateway
	Contacts      *ContactStore
	Metrics       *metrics.OrderMetrics
	Logger        *logger.Logger
	RemoteTimeout time.Duration
	Now           func() time.Time
}

// Orchestrator drives one checkout attempt at a time from validation to a
// cleared cart. The ledger write is the only step that must succeed; the
// remote copy is best effort and its failure never reaches the caller.
type Orchestrator struct {
	cart          cartState
	addresses     addressReader
	ledger        orderLedger
	gateway       gateway.Gateway
	contacts      *ContactStore
	metrics       *metrics.OrderMetrics
	logg          *logger.Logger
	remoteTimeout time.Duration
	now           func() time.Time

	mu        sync.Mutex
	state     State
	pending   *Confirmation
	lastTxRef string
}

func NewOrchestrator(p Params) (*Orchestrator, error) {
	if p.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if p.Addresses == nil {
		return nil, fmt.Errorf("address book required")
	}
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
	return &Orchestrator{
		cart:          p.Cart,
		addresses:     p.Addresses,
		ledger:        p.Ledger,
		gateway:       p.Gateway,
		contacts:      p.Contacts,
		metrics:       p.Metrics,
		logg:          p.Logger,
		remoteTimeout: p.RemoteTimeout,
		now:           p.Now,
		state:         StateIdle,
	}, nil
}

// Status reports the current state and pending confirmation, if any.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Status{State: o.state, LastTxRef: o.lastTxRef}
	if o.pending != nil {
		c := *o.pending
		c.Lines = cart.CopyLines(c.Lines)
		st.Confirmation = &c
	}
	return st
}

// Submit validates in order name, phone, default address, payment mode and
// cart contents. On failure nothing changes and the machine is idle again.
func (o *Orchestrator) Submit(ctx context.Context, in Input) (Confirmation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !canSubmit[o.state] {
		return Confirmation{}, stateError(o.state, "submit")
	}
	prev := o.pending
	o.state = StateValidating

	conf, err := o.validate(in)
	if err != nil {
		o.state = StateInvalid
		o.metrics.IncRejected(rejectReason(err))
		o.logg.Info(o.logg.WithField(ctx, "reason", err.Error()), "checkout rejected")
		// invalid is absorbing for this attempt only
		o.state = StateIdle
		o.pending = nil
		return Confirmation{}, err
	}

	if prev != nil {
		conf.TxRef = prev.TxRef
	} else {
		conf.TxRef = orders.NewTxRef(orders.TxRefPrefix, o.now())
	}
	o.pending = &conf
	o.state = StateAwaitingConfirmation
	if o.contacts != nil {
		o.contacts.Remember(Contact{Name: conf.Name, Phone: conf.Phone})
	}
	o.logg.Info(o.logg.WithTxRef(ctx, conf.TxRef), "checkout awaiting confirmation")

	out := conf
	out.Lines = cart.CopyLines(conf.Lines)
	return out, nil
}

// Cancel abandons a pending confirmation without side effects.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAwaitingConfirmation {
		return stateError(o.state, "cancel")
	}
	o.pending = nil
	o.state = StateIdle
	return nil
}

// Confirm commits the pending checkout. If the ledger write fails the cart is
// left untouched and the attempt stays awaiting confirmation with the same
// tx_ref, so a retry cannot record the order twice.
func (o *Orchestrator) Confirm(ctx context.Context) (Result, error) {
	o.mu.Lock()
	if o.state != StateAwaitingConfirmation || o.pending == nil {
		st := o.state
		o.mu.Unlock()
		return Result{}, stateError(st, "confirm")
	}
	conf := *o.pending
	o.state = StateSubmitting
	o.mu.Unlock()

	ctx = o.logg.WithTxRef(ctx, conf.TxRef)

	order, err := o.buildOrder(conf)
	if err != nil {
		o.reset(StateIdle, nil)
		return Result{}, err
	}

	if err := o.commit(ctx, order); err != nil {
		o.logg.Error(ctx, "order commit failed", err)
		o.reset(StateAwaitingConfirmation, &conf)
		return Result{}, err
	}
	o.setState(StateLocalCommitted)
	o.metrics.IncPlaced("checkout")

	order.Sync = o.syncRemote(ctx, order)
	synced := order.Sync == enums.SyncStatusOK
	o.setState(StateRemoteSyncAttempted)

	o.cart.Clear()
	if err := o.cart.Flush(ctx); err != nil {
		// the order is committed but the persisted cart still holds its lines;
		// after a restart they reload and checking out again places a second order
		o.logg.WarnErr(o.logg.WithField(ctx, "stale_cart", true), "order committed but cart clear not persisted; a restart restores the ordered lines", err)
	}

	o.mu.Lock()
	o.state = StateCleared
	o.pending = nil
	o.lastTxRef = order.TxRef
	o.mu.Unlock()

	o.logg.Info(o.logg.WithField(ctx, "synced", synced), "checkout completed")
	return Result{Order: order, Synced: synced}, nil
}

func (o *Orchestrator) validate(in Input) (Confirmation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Confirmation{}, fieldError("name", "name is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return Confirmation{}, fieldError("phone", "phone is required")
	}
	addr, ok := o.addresses.GetDefault()
	if !ok {
		return Confirmation{}, fieldError("address", "a default address is required")
	}
	if !in.PaymentMode.IsValid() {
		return Confirmation{}, fieldError("payment_mode", "payment mode is invalid")
	}
	if !in.PaymentMode.IsSupported() {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodePaymentUnsupported, fmt.Sprintf("%s payments are coming soon", in.PaymentMode)).
			WithDetails(map[string]any{"payment_mode": in.PaymentMode})
	}
	method := in.DeliveryMethod
	if method == "" {
		method = enums.DeliveryMethodDoor
	}
	if method != enums.DeliveryMethodDoor && method != enums.DeliveryMethodPickup {
		return Confirmation{}, fieldError("delivery_method", "delivery method is invalid")
	}
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return Confirmation{}, fieldError("cart", "cart is empty")
	}

	totals := o.cart.Totals()
	return Confirmation{
		Name:           name,
		Phone:          phone,
		AddressID:      addr.ID,
		Address:        addr.Text(),
		PaymentMode:    in.PaymentMode,
		DeliveryMethod: method,
		Lines:          lines,
		Totals:         totals,
		TotalDisplay:   types.FormatNGN(totals.Total),
	}, nil
}

// buildOrder snapshots the cart and default address as they are now.
func (o *Orchestrator) buildOrder(conf Confirmation) (orders.LocalOrder, error) {
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return orders.LocalOrder{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart was emptied before confirmation")
	}
	addr, ok := o.addresses.GetDefault()
	if !ok {
		return orders.LocalOrder{}, pkgerrors.New(pkgerrors.CodeStateConflict, "default address was removed before confirmation")
	}
	return orders.LocalOrder{
		ID:             conf.TxRef,
		TxRef:          conf.TxRef,
		CreatedAt:      o.now().UTC(),
		Name:           conf.Name,
		PhoneNumber:    conf.Phone,
		Address:        addr.Text(),
		Product:        lines,
		DeliveryMethod: conf.DeliveryMethod,
		PaymentMode:    conf.PaymentMode,
		Status:         enums.OrderStatusPlaced,
		Total:          o.cart.Totals().Total,
		Sync:           enums.SyncStatusQueued,
	}, nil
}

func (o *Orchestrator) commit(ctx context.Context, order orders.LocalOrder) error {
	exists, err := o.ledger.Contains(ctx, order.TxRef)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "could not save order")
	}
	if exists {
		o.logg.Warn(ctx, "order already in ledger, skipping local insert")
		return nil
	}
	err = o.ledger.AddOrder(ctx, order)
	if err == nil || pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "could not save order")
}

// syncRemote mirrors the order with a bounded timeout and returns the sync
// status it recorded. Failures are logged, never returned.
func (o *Orchestrator) syncRemote(ctx context.Context, order orders.LocalOrder) enums.SyncStatus {
	table, row, err := orders.RemoteRow(order)
	if err != nil {
		o.logg.WarnErr(ctx, "build remote row", err)
		return o.markSync(ctx, order.TxRef, orders.SyncOutcome(err))
	}

	remoteCtx, cancel := context.WithTimeout(ctx, o.remoteTimeout)
	start := time.Now()
	err = o.gateway.InsertRow(remoteCtx, table, row)
	cancel()
	o.metrics.ObserveSync(table, err == nil, time.Since(start))

	if err != nil && !errors.Is(err, gateway.ErrOffline) {
		o.logg.WarnErr(o.logg.WithField(ctx, "table", table), "remote order submission failed", err)
	}
	return o.markSync(ctx, order.TxRef, orders.SyncOutcome(err))
}

func (o *Orchestrator) markSync(ctx context.Context, txRef string, status enums.SyncStatus) enums.SyncStatus {
	if err := o.ledger.UpdateSync(ctx, txRef, status); err != nil {
		o.logg.WarnErr(o.logg.WithField(ctx, "sync", status), "update order sync status", err)
	}
	return status
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) reset(s State, pending *Confirmation) {
	o.mu.Lock()
	o.state = s
	o.pending = pending
	o.mu.Unlock()
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}

func stateError(current State, action string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot %s while %s", action, current)).
		WithDetails(map[string]any{"state": current})
}

func rejectReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "unknown"
	}
	if details, ok := typed.Details().(map[string]any); ok {
		if field, ok := details["field"].(string); ok {
			return field
		}
	}
	return strings.ToLower(string(typed.Code()))
}
