package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/handler"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Menu    *handler.MenuHandler
	Profile *handler.ProfileHandler
	Stats   *handler.StatsHandler
}

func NewRouter(jwtSecret string, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(jwtSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h.Cart.RegisterRoutes(r)
	h.Order.RegisterRoutes(r)
	h.Menu.RegisterRoutes(r)
	h.Profile.RegisterRoutes(r)
	h.Stats.RegisterRoutes(r)

	return r
}
