package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/prodline/internal/handler"
	"github.com/prodline/internal/middleware"
	"github.com/prodline/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Session(app.sessions))

	// Health check
	r.Get("/api/health", handler.Health(app.pool))

	// Auth (public endpoints)
	authHandler := handler.NewAuthHandler(app.logger, app.users, app.sessions, app.config.SecureCookies)
	r.With(middleware.RateLimit(rate.Every(2*time.Second), 5)).Post("/api/login", authHandler.Login)
	r.Post("/api/logout", authHandler.Logout)
	r.Get("/login", web.Page("login.html"))

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthPage)
		r.Get("/", web.Page("index.html"))
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminPage)
		r.Get("/admin/users", web.Page("admin_users.html"))
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/me", authHandler.Me)

		orderHandler := handler.NewOrderHandler(app.logger, app.orders)
		r.Get("/api/order/{orderNo}", orderHandler.Get)

		reportHandler := handler.NewReportHandler(app.logger, app.reports)
		r.Post("/api/report", reportHandler.Submit)
		r.Get("/api/reports", reportHandler.List)
		r.Post("/api/reports/clear", reportHandler.Clear)
	})

	// Admin API
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminAPI)

		usersHandler := handler.NewUsersHandler(app.logger, app.users, app.sessions)
		r.Get("/api/admin/users", usersHandler.List)
		r.Post("/api/admin/users", usersHandler.Create)
		r.Put("/api/admin/users/{id}", usersHandler.Update)
		r.Post("/api/admin/users/{id}/reset_password", usersHandler.ResetPassword)
	})

	return r
}
