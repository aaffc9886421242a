package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/stonelib/library-management/internal/auth"
	"github.com/stonelib/library-management/internal/book"
	"github.com/stonelib/library-management/internal/role"
	"github.com/stonelib/library-management/internal/transport/middleware"
	"github.com/stonelib/library-management/internal/transport/swagger"
	"github.com/stonelib/library-management/internal/user"
)

// RegisterAllRoutes wires the whole HTTP surface. Everything beyond
// login, register and the health probes sits behind authentication, and
// the admin surfaces additionally behind the permission check.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	roleHandler *role.Handler,
	bookHandler *book.Handler,
	loanGuard *book.LoanGuard,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth routes
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)

		// Authenticated routes
		r.Group(func(ar chi.Router) {
			ar.Use(authHandler.Middleware)

			ar.Post("/logout", authHandler.Logout)
			ar.Get("/users/me", authHandler.Me)

			// Admin surfaces behind the permission check
			ar.Group(func(pr chi.Router) {
				pr.Use(authHandler.RequirePermission)

				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", userHandler.GetUsers)
					ur.Post("/", userHandler.CreateUser)
					ur.Get("/{userID}", userHandler.GetUser)
					ur.Put("/{userID}", userHandler.UpdateUser)
					ur.Delete("/{userID}", userHandler.DeleteUser)
					ur.Post("/{userID}/roles", userHandler.AddRoles)
				})

				pr.Route("/roles", func(rr chi.Router) {
					rr.Get("/", roleHandler.GetRoles)
					rr.Post("/", roleHandler.CreateRole)
					rr.Get("/{roleID}", roleHandler.GetRole)
					rr.Put("/{roleID}", roleHandler.UpdateRole)
					rr.Delete("/{roleID}", roleHandler.DeleteRole)
					rr.Post("/{roleID}/permissions", roleHandler.AddPermissions)
					rr.Put("/{roleID}/permissions", roleHandler.RemovePermissions)
				})

				pr.Route("/books", func(br chi.Router) {
					br.Get("/", bookHandler.GetBooks)
					br.Post("/", bookHandler.CreateBook)

					br.With(loanGuard.RequireNoOutstandingLoan).Post("/loan", bookHandler.LoanBooks)
					br.With(loanGuard.RequireOutstandingLoan).Put("/return", bookHandler.ReturnBooks)

					br.Get("/{bookID}", bookHandler.GetBook)
					br.Put("/{bookID}", bookHandler.UpdateBook)
					br.Delete("/{bookID}", bookHandler.DeleteBook)
					br.Put("/{bookID}/validate", bookHandler.ValidateBook)
					br.Post("/{bookID}/reject", bookHandler.RejectBook)
				})
			})
		})
	})
}
