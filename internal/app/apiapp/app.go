package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/upskillhq/backend/internal/config"
	"github.com/upskillhq/backend/internal/infra/mailer"
	"github.com/upskillhq/backend/internal/infra/razorpay"
	"github.com/upskillhq/backend/internal/jobs/sweeper"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	redrepo "github.com/upskillhq/backend/internal/repo/redis"
	appsvc "github.com/upskillhq/backend/internal/services/applications"
	authsvc "github.com/upskillhq/backend/internal/services/auth"
	classsvc "github.com/upskillhq/backend/internal/services/classes"
	ledgersvc "github.com/upskillhq/backend/internal/services/ledger"
	ordersvc "github.com/upskillhq/backend/internal/services/orders"
	paymentsvc "github.com/upskillhq/backend/internal/services/payments"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	allowlistRepo := redrepo.NewAllowlistRepo(redisClient)
	planCacheRepo := redrepo.NewPlanCacheRepo(redisClient, cfg.Ledger.PlanCacheTTL)

	accountRepo := pgrepo.NewAccountRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	jobRepo := pgrepo.NewJobRepo(pool)
	applicationRepo := pgrepo.NewApplicationRepo(pool)
	classRepo := pgrepo.NewClassRepo(pool)
	creditEventRepo := pgrepo.NewCreditEventRepo(pool)
	transactor := pgrepo.NewTransactor(pool)

	var gateway ordersvc.Gateway
	var verifier paymentsvc.SignatureVerifier
	if client, err := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Timeout:   cfg.Razorpay.Timeout,
	}); err != nil {
		log.Warn("razorpay init failed, continuing in degraded mode", zap.Error(err))
	} else {
		gateway = client
		verifier = client
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	ledgerService := ledgersvc.NewService(purchaseRepo, creditEventRepo, planCacheRepo)
	orderService := ordersvc.NewService(accountRepo, purchaseRepo, allowlistRepo, gateway)
	paymentService := paymentsvc.NewService(purchaseRepo, accountRepo, verifier, ledgerService)
	if cfg.SMTP.Host != "" {
		paymentService.AttachMailer(mailer.New(mailer.Config{
			SMTPHost: cfg.SMTP.Host,
			SMTPPort: cfg.SMTP.Port,
			SMTPUser: cfg.SMTP.User,
			SMTPPass: cfg.SMTP.Pass,
			From:     cfg.SMTP.From,
		}))
	}
	applicationService := appsvc.NewService(jobRepo, applicationRepo, ledgerService, transactor)
	classService := classsvc.NewService(classRepo, ledgerService, transactor)

	if pool != nil {
		sweeper.New(jobRepo, log).Start(ctx, cfg.Sweeper.Interval)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		OrderService:       orderService,
		PaymentService:     paymentService,
		LedgerService:      ledgerService,
		ApplicationService: applicationService,
		ClassService:       classService,
		JWTManager:         jwtManager,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
