package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upskillhq/backend/internal/config"
	appsvc "github.com/upskillhq/backend/internal/services/applications"
	authsvc "github.com/upskillhq/backend/internal/services/auth"
	classsvc "github.com/upskillhq/backend/internal/services/classes"
	ledgersvc "github.com/upskillhq/backend/internal/services/ledger"
	ordersvc "github.com/upskillhq/backend/internal/services/orders"
	paymentsvc "github.com/upskillhq/backend/internal/services/payments"
	"github.com/upskillhq/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	OrderService       *ordersvc.Service
	PaymentService     *paymentsvc.Service
	LedgerService      *ledgersvc.Service
	ApplicationService *appsvc.Service
	ClassService       *classsvc.Service
	JWTManager         *authsvc.JWTManager
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	orderHandler := handlers.NewOrderHandler(deps.OrderService)
	paymentHandler := handlers.NewPaymentHandler(deps.PaymentService)
	planHandler := handlers.NewPlanHandler(deps.LedgerService)
	applicationHandler := handlers.NewApplicationHandler(deps.ApplicationService)
	classHandler := handlers.NewClassHandler(deps.ClassService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/orders", orderHandler.Create)
		r.With(authMW).Post("/payments/verify", paymentHandler.Verify)
		r.With(authMW).Get("/payments/history", paymentHandler.History)
		r.With(authMW).Get("/plan", planHandler.Get)
		r.With(authMW).Post("/jobs/{jobID}/apply", applicationHandler.Apply)
		r.With(authMW).Get("/applications", applicationHandler.List)
		r.With(authMW).Post("/classes/{classID}/join", classHandler.Join)
	})
}
