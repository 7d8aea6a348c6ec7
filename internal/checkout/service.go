package checkout

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"github.com/chowpack/chowpack-engine/internal/cart"
	"github.com/chowpack/chowpack-engine/internal/delivery"
	"github.com/chowpack/chowpack-engine/internal/notifications"
	"github.com/chowpack/chowpack-engine/internal/orders"
	"github.com/chowpack/chowpack-engine/internal/pricing"
	"github.com/chowpack/chowpack-engine/internal/profile"
	"github.com/chowpack/chowpack-engine/internal/promotions"
	"github.com/chowpack/chowpack-engine/internal/users"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/chowpack/chowpack-engine/pkg/metrics"
)

// Status is the terminal state of a checkout attempt that is not a hard
// error: the order went through, or the user has something to fix first.
type Status string

const (
	StatusSubmitted         Status = "submitted"
	StatusPackTypeRequired  Status = "pack_type_required"
	StatusInsufficientFunds Status = "insufficient_funds"
)

// Identity is the caller's resolved session: core-API user ID, campus scope,
// and the raw bearer token passed through to upstream calls.
type Identity struct {
	UserID     string
	University string
	Token      string
}

// Request carries the delivery details entered at checkout. Field presence
// is checked inside the validation sequence so each failure keeps its own
// user-visible message.
type Request struct {
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	VendorNote   string `json:"vendorNote"`
	DeliveryNote string `json:"deliveryNote"`
}

// Result reports a finished attempt. PacksNeedingType is populated only for
// StatusPackTypeRequired and lists every offending pack at once.
type Result struct {
	Status           Status      `json:"status"`
	Quote            Quote       `json:"quote"`
	PacksNeedingType []cart.Pack `json:"packsNeedingType,omitempty"`
	AvailableBal     int         `json:"availableBal,omitempty"`
	RedirectTo       string      `json:"redirectTo,omitempty"`
}

// Service validates the cart end to end and submits the order.
type Service interface {
	Quote(ctx context.Context, id Identity) (Quote, error)
	Checkout(ctx context.Context, id Identity, req Request) (Result, error)
}

// Deps are the collaborators the orchestrator drives. Notifier and Metrics
// are optional.
type Deps struct {
	Carts      cart.Service
	PackPrices pricing.TableFetcher
	Delivery   delivery.Fetcher
	Promotions promotions.Fetcher
	Users      users.Client
	Orders     orders.Submitter
	Profiles   profile.Service
	Notifier   notifications.Notifier
	Metrics    *metrics.CheckoutMetrics
}

type service struct {
	deps Deps
	logg *logger.Logger
}

func NewService(deps Deps, logg *logger.Logger) (Service, error) {
	if deps.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service is required")
	}
	if deps.PackPrices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pack price fetcher is required")
	}
	if deps.Delivery == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "delivery fetcher is required")
	}
	if deps.Promotions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "promotions fetcher is required")
	}
	if deps.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users client is required")
	}
	if deps.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders submitter is required")
	}
	if deps.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile service is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{deps: deps, logg: logg}, nil
}

func (s *service) Quote(ctx context.Context, id Identity) (Quote, error) {
	state, err := s.deps.Carts.State(ctx, id.UserID)
	if err != nil {
		return Quote{}, err
	}
	feeTable, _ := s.deps.Delivery.FeeTable(ctx)
	promos := s.deps.Promotions.Active(ctx, id.University)
	return buildQuote(state, feeTable, promos), nil
}

func (s *service) Checkout(ctx context.Context, id Identity, req Request) (Result, error) {
	start := time.Now()
	result, err := s.checkout(ctx, id, req)
	s.observe(outcomeOf(result, err), time.Since(start))
	return result, err
}

func (s *service) checkout(ctx context.Context, id Identity, req Request) (Result, error) {
	ctx = s.logg.WithUserID(ctx, id.UserID)

	state, err := s.deps.Carts.State(ctx, id.UserID)
	if err != nil {
		return Result{}, err
	}
	if !state.HasItems() {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			"Please add items to your cart before placing an order.")
	}

	feeTable, loaded := s.deps.Delivery.FeeTable(ctx)
	if !loaded || len(feeTable) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			"Delivery fee information is not available. Please wait or refresh.")
	}

	promos := s.deps.Promotions.Active(ctx, id.University)
	if promos == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			"Discount information is not available. Please wait or refresh.")
	}

	user, err := s.deps.Users.Fetch(ctx, id.UserID, id.Token)
	if err != nil {
		return Result{}, err
	}

	if req.Address == "" || req.Phone == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			"please input address and PhoneNumber")
	}
	if !validPhone(req.Phone) {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			"Please input a valid phone number")
	}

	tables := s.deps.PackPrices.PackPrices(ctx, state.VendorIDs())
	var needingType []cart.Pack
	for _, pack := range state.Packs {
		_, hasTable := tables[pack.VendorID]
		if pricing.RequiresPackType(pack, hasTable) {
			needingType = append(needingType, pack)
		}
	}
	if len(needingType) > 0 {
		return Result{Status: StatusPackTypeRequired, PacksNeedingType: needingType}, nil
	}

	quote := buildQuote(state, feeTable, promos)
	if user.AvailableBal < quote.GrandTotal {
		// No upstream call is made on a short balance.
		return Result{
			Status:       StatusInsufficientFunds,
			Quote:        quote,
			AvailableBal: user.AvailableBal,
		}, nil
	}

	order := buildOrder(state, quote, req, user.University)
	if err := s.deps.Orders.Submit(ctx, order, id.Token); err != nil {
		return Result{}, err
	}

	if err := s.finalize(ctx, id, req); err != nil {
		// The order is already placed upstream, so bookkeeping failures
		// are logged and swallowed.
		s.logg.Error(ctx, "post-order bookkeeping incomplete", err)
	}
	return Result{Status: StatusSubmitted, Quote: quote, RedirectTo: "/orders"}, nil
}

// finalize runs the post-submission bookkeeping and reports every step that
// failed, not just the first.
func (s *service) finalize(ctx context.Context, id Identity, req Request) error {
	var errs []error
	if err := s.deps.Carts.Clear(ctx, id.UserID); err != nil {
		errs = append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart after order"))
	}
	if err := s.deps.Profiles.Record(ctx, id.UserID, req.Address, req.Phone); err != nil {
		errs = append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording delivery details"))
	}
	if _, err := s.deps.Users.Refresh(ctx, id.UserID, id.Token); err != nil {
		errs = append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refreshing user after order"))
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(ctx, notifications.Event{
			Kind:    notifications.EventOrderNew,
			UserID:  id.UserID,
			Message: "Order placed successfully!",
		})
	}
	return multierr.Combine(errs...)
}

func (s *service) observe(outcome string, elapsed time.Duration) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.Observe(outcome, elapsed)
	}
}

func outcomeOf(result Result, err error) string {
	if err == nil {
		return string(result.Status)
	}
	if coded := pkgerrors.As(err); coded != nil {
		switch coded.Code() {
		case pkgerrors.CodeValidation:
			return "validation_failed"
		case pkgerrors.CodeUnauthorized:
			return "unauthorized"
		case pkgerrors.CodeDependency:
			return "submission_failed"
		}
	}
	return "error"
}

// validPhone mirrors the historical client check: the string parses as a
// number and has at least ten characters.
func validPhone(phone string) bool {
	if len(phone) < 10 {
		return false
	}
	_, err := strconv.ParseFloat(phone, 64)
	return err == nil
}

func buildOrder(state *cart.State, quote Quote, req Request, university string) orders.Order {
	packs := make([]orders.Pack, 0, len(state.Packs))
	for _, pack := range state.Packs {
		items := make([]orders.Item, 0, len(pack.Items))
		for _, item := range pack.Items {
			vendorName := item.VendorName
			if vendorName == "" {
				vendorName = pack.VendorName
			}
			vendorID := item.VendorID
			if vendorID == "" {
				vendorID = pack.VendorID
			}
			items = append(items, orders.Item{
				Name:       item.Name,
				Price:      item.Price,
				Quantity:   item.Quantity,
				Image:      item.Image,
				VendorName: orders.NullableString(vendorName),
				VendorID:   orders.NullableString(vendorID),
			})
		}
		packs = append(packs, orders.Pack{
			Name:       pack.Name,
			VendorName: orders.NullableString(pack.VendorName),
			VendorID:   orders.NullableString(pack.VendorID),
			PackType:   orders.NullableString(string(pack.PackType)),
			PackPrice:  pack.PackPrice,
			Items:      items,
		})
	}
	return orders.Order{
		Subtotal:     quote.orderSubtotal(),
		ServiceFee:   quote.ServiceFee,
		DeliveryFee:  quote.DeliveryFee,
		Address:      req.Address,
		PhoneNumber:  req.Phone,
		University:   university,
		VendorNote:   req.VendorNote,
		DeliveryNote: req.DeliveryNote,
		Packs:        packs,
	}
}
