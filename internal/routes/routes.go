package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/authd/internal/app"
	"github.com/templui/authd/internal/handler"
	"github.com/templui/authd/internal/metrics"
	"github.com/templui/authd/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	health := handler.NewHealthHandler(app.DB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterMetrics(registry)

	mux := http.NewServeMux()

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Auth Actions
	mux.HandleFunc("POST /auth/register", auth.Register)
	mux.HandleFunc("POST /auth/login", auth.Login)
	mux.HandleFunc("POST /auth/forgot-password/{identifier}", auth.ForgotPassword)

	// Token Verifications
	mux.HandleFunc("GET /auth/verify-email/{token}", auth.VerifyEmail)
	mux.HandleFunc("POST /auth/reset-password/{token}", auth.ResetPassword)

	// Session
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(handler.Unauthorized)(auth.Me))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Authenticate(app.AuthService),
	)

	return handler
}
