package http

import (
	"net/http"

	"inventory-tracker/internal/delivery/http/handler"
	"inventory-tracker/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	productHandler    *handler.ProductHandler
	authHandler       *handler.AuthHandler
	healthHandler     *handler.HealthHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	protectProducts   bool
}

func NewRouter(
	productHandler *handler.ProductHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	protectProducts bool,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		productHandler:    productHandler,
		authHandler:       authHandler,
		healthHandler:     healthHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
		protectProducts:   protectProducts,
	}
}

// Setup registers every route and returns the handler wrapped in CORS and access logging.
func (r *Router) Setup() http.Handler {
	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/session", r.authHandler.Session).Methods(http.MethodGet)

	// Product routes
	products := api.PathPrefix("/products").Subrouter()
	if r.protectProducts {
		products.Use(r.authMiddleware.Authenticate)
	}
	products.HandleFunc("", r.productHandler.Create).Methods(http.MethodPost)
	products.HandleFunc("", r.productHandler.List).Methods(http.MethodGet)
	products.HandleFunc("", r.productHandler.Update).Methods(http.MethodPut)
	products.HandleFunc("", r.productHandler.Delete).Methods(http.MethodDelete)

	// CORS runs outside the router so preflight requests never hit method matching
	return r.loggingMiddleware.Handle(r.corsMiddleware.Handle(r.router))
}
