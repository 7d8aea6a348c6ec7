package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/chowpack/chowpack-engine/api/middleware"
	cartsvc "github.com/chowpack/chowpack-engine/internal/cart"
	checkoutsvc "github.com/chowpack/chowpack-engine/internal/checkout"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubCheckout struct {
	quote  checkoutsvc.Quote
	result checkoutsvc.Result
	err    error
}

func (s *stubCheckout) Quote(context.Context, checkoutsvc.Identity) (checkoutsvc.Quote, error) {
	return s.quote, nil
}

func (s *stubCheckout) Checkout(context.Context, checkoutsvc.Identity, checkoutsvc.Request) (checkoutsvc.Result, error) {
	return s.result, s.err
}

func newCartService(t *testing.T) cartsvc.Service {
	t.Helper()
	svc, err := cartsvc.NewService(cartsvc.NewMemoryStore(), testLogger())
	if err != nil {
		t.Fatalf("building cart service: %v", err)
	}
	return svc
}

func withIdentity(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), "u1", "unilag", "tok"))
}

func testRouter(carts cartsvc.Service, checkouts checkoutsvc.Service) http.Handler {
	logg := testLogger()
	r := chi.NewRouter()
	r.Get("/cart", CartGet(carts, checkouts, logg))
	r.Post("/cart/packs", CartAddPack(carts, logg))
	r.Post("/cart/packs/{packID}/items", CartAddItem(carts, logg))
	r.Patch("/cart/packs/{packID}/type", CartUpdatePackType(carts, logg))
	r.Post("/checkout", Checkout(checkouts, logg))
	return r
}

func seedPackID(t *testing.T, carts cartsvc.Service) string {
	t.Helper()
	state, err := carts.State(context.Background(), "u1")
	if err != nil {
		t.Fatalf("cart state: %v", err)
	}
	return state.Packs[0].ID
}

func TestCartAddItemReturnsSoftResult(t *testing.T) {
	t.Parallel()

	carts := newCartService(t)
	router := testRouter(carts, &stubCheckout{})
	packID := seedPackID(t, carts)

	body := `{"id":"i1","name":"Jollof Rice","price":500,"category":"Carbohydrate","vendorId":"v1","vendorName":"Chop House"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/packs/"+packID+"/items", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Result string        `json:"result"`
			Pack   *cartsvc.Pack `json:"pack"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.Result != "ok" || envelope.Data.Pack == nil {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}

	// Cross-vendor rejection is still a 200 with a soft result.
	body = `{"id":"i2","name":"Suya","price":300,"vendorId":"v2","vendorName":"Other Kitchen"}`
	req = withIdentity(httptest.NewRequest(http.MethodPost, "/cart/packs/"+packID+"/items", strings.NewReader(body)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.Result != "rejected_different_vendor" {
		t.Fatalf("expected rejection result, got %q", envelope.Data.Result)
	}
}

func TestCartUpdatePackTypeValidatesBody(t *testing.T) {
	t.Parallel()

	carts := newCartService(t)
	router := testRouter(carts, &stubCheckout{})
	packID := seedPackID(t, carts)

	req := withIdentity(httptest.NewRequest(http.MethodPatch, "/cart/packs/"+packID+"/type",
		strings.NewReader(`{"packType":"medium","packPrice":100}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req = withIdentity(httptest.NewRequest(http.MethodPatch, "/cart/packs/"+packID+"/type",
		strings.NewReader(`{"packType":"small","packPrice":300}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartGetIncludesQuote(t *testing.T) {
	t.Parallel()

	carts := newCartService(t)
	router := testRouter(carts, &stubCheckout{quote: checkoutsvc.Quote{GrandTotal: 1200}})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/cart", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(envelope.Data.Packs) != 1 {
		t.Fatalf("expected seeded pack, got %+v", envelope.Data.Packs)
	}
	if envelope.Data.Quote == nil || envelope.Data.Quote.GrandTotal != 1200 {
		t.Fatalf("expected quote in response, got %+v", envelope.Data.Quote)
	}
}

func TestCheckoutValidationFailureUsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	router := testRouter(newCartService(t), &stubCheckout{
		err: pkgerrors.New(pkgerrors.CodeValidation, "Please add items to your cart before placing an order."),
	})

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/checkout",
		strings.NewReader(`{"address":"Moremi Hall","phone":"08012345678"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Error.Message != "Please add items to your cart before placing an order." {
		t.Fatalf("expected verbatim message, got %q", envelope.Error.Message)
	}
}

func TestCheckoutSoftStopIsA200(t *testing.T) {
	t.Parallel()

	router := testRouter(newCartService(t), &stubCheckout{
		result: checkoutsvc.Result{Status: checkoutsvc.StatusInsufficientFunds, AvailableBal: 100},
	})

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/checkout",
		strings.NewReader(`{"address":"Moremi Hall","phone":"08012345678"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data checkoutsvc.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.Status != checkoutsvc.StatusInsufficientFunds {
		t.Fatalf("unexpected status %q", envelope.Data.Status)
	}
}
