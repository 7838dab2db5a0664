package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-commerce-api/internal/config"
	"go-commerce-api/internal/handler"
	"go-commerce-api/internal/middleware"
	"go-commerce-api/internal/model"
)

func writeEnvelopeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	healthCheck func(context.Context) error,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelopeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelopeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok", "database": "up"}
		if err := healthCheck(req.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
			auth.With(authMiddleware.RequireAuth).Put("/profile", authHandler.UpdateProfile)
			auth.With(authMiddleware.RequireAuth).Put("/change-password", authHandler.ChangePassword)
			auth.With(authMiddleware.RequireAuth).Post("/addresses", authHandler.AddAddress)
			auth.With(authMiddleware.RequireAuth).Put("/addresses/{addressID}", authHandler.UpdateAddress)
			auth.With(authMiddleware.RequireAuth).Delete("/addresses/{addressID}", authHandler.DeleteAddress)
			auth.With(authMiddleware.RequireAuth).Post("/logout", authHandler.Logout)
		})

		api.Route("/products", func(products chi.Router) {
			products.With(authMiddleware.OptionalAuth).Get("/", productHandler.List)
			products.Get("/featured", productHandler.Featured)
			products.With(authMiddleware.OptionalAuth).Get("/{id}", productHandler.Get)
			products.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Post("/", productHandler.Create)
			products.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Put("/{id}", productHandler.Update)
			products.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Delete("/{id}", productHandler.Delete)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin"))
			users.Get("/", userHandler.List)
			users.Get("/{id}", userHandler.Get)
			users.Put("/{id}", userHandler.Update)
			users.Delete("/{id}", userHandler.Delete)
		})

		api.Route("/orders", func(orders chi.Router) {
			orders.Use(authMiddleware.RequireAuth)
			orders.Get("/", orderHandler.List)
			orders.Post("/", orderHandler.Create)
			orders.Get("/{id}", orderHandler.Get)
		})
	})

	return r
}
