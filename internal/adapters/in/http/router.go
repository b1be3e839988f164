package httpin

import (
	"net/http"

	"storefront/internal/adapters/in/http/handlers"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/query/catalog"
	"storefront/internal/application/session"
	"storefront/internal/application/store"
	"storefront/internal/application/usecase"
	udom "storefront/internal/domain/user"
)

// RouterDeps carries everything the HTTP surface needs. Optional fields may
// be nil; the affected routes degrade (auth middleware is skipped, admin
// routes answer 503 through their handler).
type RouterDeps struct {
	Cart     *store.CartStore
	Session  *session.Session
	Catalog  *catalog.Query
	Checkout *usecase.CheckoutUsecase
	Users    udom.Repository

	FirebaseAuth *middleware.FirebaseAuthClient
}

// NewRouter builds the public mux. Middleware order, outermost first:
// CORS, then panic recovery, then per-subtree auth and role guards.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Catalog != nil {
		catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
		mux.Handle("/products", catalogHandler)
		mux.Handle("/products/", catalogHandler)
	}

	if deps.Cart != nil {
		cartHandler := handlers.NewCartHandler(deps.Cart)
		mux.Handle("/cart", cartHandler)
		mux.Handle("/cart/", cartHandler)
	}

	if deps.Session != nil {
		authHandler := handlers.NewAuthHandler(deps.Session)
		mux.Handle("/auth/", authHandler)
	}

	if deps.Checkout != nil {
		var checkout http.Handler = handlers.NewCheckoutHandler(deps.Checkout, deps.Session)
		if deps.FirebaseAuth != nil {
			userAuth := &middleware.UserAuth{FirebaseAuth: deps.FirebaseAuth, Optional: true}
			checkout = userAuth.Handler(checkout)
		}
		mux.Handle("/checkout", checkout)
	}

	if deps.Users != nil {
		adminGuard := &middleware.RoleGuard{
			Session: deps.Session,
			Allowed: []udom.Role{udom.RoleAdmin},
		}
		admin := adminGuard.Handler(handlers.NewAdminHandler(deps.Users))
		mux.Handle("/admin/", admin)
	}

	return middleware.CORS(middleware.Recover(mux))
}
