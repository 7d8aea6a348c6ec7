package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chowpack/chowpack-engine/api/middleware"
	"github.com/chowpack/chowpack-engine/api/responses"
	"github.com/chowpack/chowpack-engine/api/validators"
	cartsvc "github.com/chowpack/chowpack-engine/internal/cart"
	checkoutsvc "github.com/chowpack/chowpack-engine/internal/checkout"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

type cartResponse struct {
	Packs       []cartsvc.Pack     `json:"packs"`
	DeliveryFee int                `json:"deliveryFee"`
	TotalAmount int                `json:"totalAmount"`
	Quote       *checkoutsvc.Quote `json:"quote,omitempty"`
}

// CartGet returns the caller's cart with the derived money breakdown.
func CartGet(carts cartsvc.Service, checkouts checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFromRequest(r)
		state, err := carts.State(r.Context(), id.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := cartResponse{
			Packs:       state.Packs,
			DeliveryFee: state.DeliveryFee,
			TotalAmount: state.TotalAmount(),
		}
		if quote, err := checkouts.Quote(r.Context(), id); err == nil {
			resp.Quote = &quote
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartAddPack appends a new empty pack.
func CartAddPack(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pack, err := carts.AddPack(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pack)
	}
}

// CartDeletePack removes a pack entirely.
func CartDeletePack(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packID := chi.URLParam(r, "packID")
		if err := carts.DeletePack(r.Context(), middleware.UserIDFromContext(r.Context()), packID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": packID})
	}
}

type updatePackTypeRequest struct {
	PackType  string `json:"packType" validate:"required,oneof=small big"`
	PackPrice int    `json:"packPrice" validate:"min=0"`
}

// CartUpdatePackType sets the size selection and surcharge on a pack.
func CartUpdatePackType(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updatePackTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packID := chi.URLParam(r, "packID")
		err := carts.UpdatePackType(r.Context(), middleware.UserIDFromContext(r.Context()),
			packID, cartsvc.PackType(payload.PackType), payload.PackPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"packId": packID, "packType": payload.PackType})
	}
}

type addItemRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Price      int    `json:"price" validate:"min=0"`
	Category   string `json:"category"`
	Image      string `json:"image"`
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
}

type addItemResponse struct {
	Result string        `json:"result"`
	Pack   *cartsvc.Pack `json:"pack,omitempty"`
}

// CartAddItem adds an item to a pack. Vendor and duplicate rejections come
// back as soft results, not errors.
func CartAddItem(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		packID := chi.URLParam(r, "packID")

		result, err := carts.AddItem(r.Context(), ownerID, packID, cartsvc.Item{
			ID:         payload.ID,
			Name:       payload.Name,
			Price:      payload.Price,
			Category:   payload.Category,
			Image:      payload.Image,
			VendorID:   payload.VendorID,
			VendorName: payload.VendorName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := addItemResponse{Result: result.String()}
		if result == cartsvc.AddOK {
			if state, err := carts.State(r.Context(), ownerID); err == nil {
				for i := range state.Packs {
					if state.Packs[i].ID == packID {
						resp.Pack = &state.Packs[i]
						break
					}
				}
			}
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartRemoveItem removes a single item from a pack.
func CartRemoveItem(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packID := chi.URLParam(r, "packID")
		itemID := chi.URLParam(r, "itemID")
		err := carts.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), packID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"removed": itemID})
	}
}

type updateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartUpdateQuantity nudges an item's quantity up or down.
func CartUpdateQuantity(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packID := chi.URLParam(r, "packID")
		itemID := chi.URLParam(r, "itemID")
		err := carts.UpdateQuantity(r.Context(), middleware.UserIDFromContext(r.Context()),
			packID, itemID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"itemId": itemID})
	}
}

type setDeliveryFeeRequest struct {
	Amount int `json:"amount" validate:"min=0"`
}

// CartSetDeliveryFee stores the user-adjusted delivery fee. Clamping against
// the vendor range happens when totals are derived.
func CartSetDeliveryFee(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setDeliveryFeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err := carts.SetDeliveryFee(r.Context(), middleware.UserIDFromContext(r.Context()), payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"deliveryFee": payload.Amount})
	}
}

func identityFromRequest(r *http.Request) checkoutsvc.Identity {
	ctx := r.Context()
	return checkoutsvc.Identity{
		UserID:     middleware.UserIDFromContext(ctx),
		University: middleware.UniversityFromContext(ctx),
		Token:      middleware.TokenFromContext(ctx),
	}
}
