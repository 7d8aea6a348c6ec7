package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chowpack/chowpack-engine/api/controllers"
	"github.com/chowpack/chowpack-engine/api/middleware"
	cartsvc "github.com/chowpack/chowpack-engine/internal/cart"
	checkoutsvc "github.com/chowpack/chowpack-engine/internal/checkout"
	profilesvc "github.com/chowpack/chowpack-engine/internal/profile"
	"github.com/chowpack/chowpack-engine/pkg/config"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/chowpack/chowpack-engine/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	profileService profilesvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, checkoutService, logg))
			r.Put("/delivery-fee", controllers.CartSetDeliveryFee(cartService, logg))

			r.Route("/packs", func(r chi.Router) {
				r.Post("/", controllers.CartAddPack(cartService, logg))
				r.Route("/{packID}", func(r chi.Router) {
					r.Delete("/", controllers.CartDeletePack(cartService, logg))
					r.Patch("/type", controllers.CartUpdatePackType(cartService, logg))
					r.Post("/items", controllers.CartAddItem(cartService, logg))
					r.Route("/items/{itemID}", func(r chi.Router) {
						r.Delete("/", controllers.CartRemoveItem(cartService, logg))
						r.Patch("/quantity", controllers.CartUpdateQuantity(cartService, logg))
					})
				})
			})
		})

		r.Get("/checkout/quote", controllers.CheckoutQuote(checkoutService, logg))
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Get("/profile/delivery-details", controllers.ProfileDeliveryDetails(profileService, logg))
	})

	return r
}
