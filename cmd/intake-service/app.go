package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"intake/internal/config"
	"intake/internal/constants"
	"intake/internal/contact"
	"intake/internal/logger"
	"intake/internal/mailer"
	"intake/pkg/bootstrap"
	"intake/pkg/cel"
	"intake/pkg/health"
	"intake/pkg/metrics"
	"intake/pkg/middleware"
	"intake/pkg/migrations"
	"intake/pkg/ratelimit"
	"intake/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	base           *bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	stores         *bootstrap.Datastores
	repo           contact.Repository
	schema         contact.SchemaSetup
	health         *health.CheckerRegistry
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
	done           chan struct{}
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		health:      health.NewCheckerRegistry(),
		done:        make(chan struct{}),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.config.Tracing, a.config.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.Register()

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.base.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stores, err := a.dbConnector.Connect(initCtx)
	if err != nil {
		return err
	}
	return a.attachStores(initCtx, stores)
}

func (a *App) attachStores(ctx context.Context, stores *bootstrap.Datastores) error {
	a.stores = stores

	repo, schema := a.submissionStore(stores)
	a.repo = contact.NewCircuitBreakerRepository(repo, "contact-"+a.config.Database.Driver, a.config.CircuitBreaker)
	a.schema = schema

	if a.config.Database.RunMigrations {
		if err := schema.Setup(ctx); err != nil {
			return fmt.Errorf("failed to set up schema: %w", err)
		}
		a.logger.InfowCtx(ctx, "Schema setup complete", "driver", a.config.Database.Driver)
	}

	if stores.Postgres != nil {
		a.health.Register(health.NewPostgreSQLChecker(stores.Postgres))
	}
	if stores.Mongo != nil {
		a.health.Register(health.NewMongoDBChecker(stores.Mongo))
	}
	if stores.Redis != nil {
		// The limiter fails open, so Redis only degrades the service.
		a.health.RegisterOptional(health.NewRedisChecker(stores.Redis))
	}

	return nil
}

func (a *App) submissionStore(stores *bootstrap.Datastores) (contact.Repository, contact.SchemaSetup) {
	if stores.Mongo != nil {
		db := a.dbConnector.MongoDatabase(stores.Mongo)
		return contact.NewMongoRepository(db), migrations.NewMongoSetup(db)
	}
	return contact.NewPostgresRepository(stores.Postgres), migrations.NewPostgresSetup(stores.Postgres)
}

func (a *App) newService() (*contact.Service, error) {
	sender, err := mailer.NewSender(a.config.Mail, a.config.CircuitBreaker, a.logger)
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(a.config.Mail.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid mail timezone: %w", err)
	}

	rules := make([]cel.Rule, 0, len(a.config.Screening.Rules))
	for _, r := range a.config.Screening.Rules {
		rules = append(rules, cel.Rule{Name: r.Name, Expression: r.Expression})
	}
	screener, err := cel.NewScreener(rules)
	if err != nil {
		return nil, err
	}

	opts := []contact.Option{
		contact.WithScreener(screener),
		contact.WithSinkTimeout(a.config.Sinks.Timeout),
	}
	if a.base.Producer != nil {
		opts = append(opts, contact.WithEventPublisher(
			contact.NewLeadPublisher(a.base.Producer, a.config.Broker.Kafka.LeadTopic),
		))
	}

	return contact.NewService(
		contact.NewValidator(),
		contact.NewEmailNotifier(sender, a.config.Mail.From, a.config.Mail.To, location),
		contact.NewPersister(a.repo),
		a.logger,
		opts...,
	), nil
}

func (a *App) newLimiter() ratelimit.Limiter {
	rl := a.config.RateLimit
	if rl.Store == constants.RateLimitStoreRedis {
		return ratelimit.NewRedisLimiter(a.stores.Redis, rl.Limit, rl.Window)
	}
	return ratelimit.NewMemoryLimiter(rl.Limit, rl.Window)
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(tracing.GinMiddleware(constants.ServiceName))
	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.logger))

	svc, err := a.newService()
	if err != nil {
		return err
	}

	keyFunc := ratelimit.KeyFuncFor(a.config.RateLimit.KeySource)
	submitGuard := ratelimit.FixedWindowMiddleware(a.newLimiter(), keyFunc, a.logger, nil)

	adminGuards := []gin.HandlerFunc{middleware.BearerAuth(a.config.Admin.JWTSecret)}
	if a.config.Admin.RateLimit.Enabled {
		tb := ratelimit.TokenBucketConfig{
			RPS:             a.config.Admin.RateLimit.RPS,
			Burst:           a.config.Admin.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.Admin.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.Admin.RateLimit.MaxAge) * time.Second,
		}
		adminGuards = append(adminGuards, ratelimit.TokenBucketMiddleware(tb, a.done))
		a.logger.Infow("Admin rate limiting enabled", "rps", tb.RPS, "burst", tb.Burst)
	}
	if a.config.Admin.JWTSecret == "" {
		a.logger.Warnw("Admin routes are unauthenticated, set admin.jwt_secret to protect them")
	}

	reader := contact.NewReader(a.repo, a.logger, a.config.Admin.SurfaceReadErrors)
	handler := contact.NewHandler(svc, reader, a.schema, keyFunc, a.logger)
	handler.RegisterRoutes(router, submitGuard, adminGuards...)

	router.GET("/health", a.health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		a.Shutdown(ctx)
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	return a.base.Shutdown(shutdownCtx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		select {
		case <-a.done:
		default:
			close(a.done)
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return append(errs, a.dbConnector.ShutdownDatabases(ctx, a.stores)...)
	})
}

func runMigrate(ctx context.Context, cfg *config.Config, log logger.Logger, down bool) error {
	connector := bootstrap.NewDatabaseConnector(cfg, log)

	stores := &bootstrap.Datastores{}
	defer connector.ShutdownDatabases(context.Background(), stores)

	switch cfg.Database.Driver {
	case constants.DriverPostgres:
		db, err := connector.InitPostgreSQL(ctx)
		if err != nil {
			return err
		}
		stores.Postgres = db

		setup := migrations.NewPostgresSetup(db)
		if down {
			if err := setup.Down(ctx); err != nil {
				return err
			}
			log.InfowCtx(ctx, "Migrations rolled back")
			return nil
		}
		if err := setup.Setup(ctx); err != nil {
			return err
		}
	case constants.DriverMongoDB:
		if down {
			return fmt.Errorf("--down is only supported for postgres")
		}
		client, err := connector.InitMongoDB(ctx)
		if err != nil {
			return err
		}
		stores.Mongo = client

		if err := migrations.NewMongoSetup(connector.MongoDatabase(client)).Setup(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}

	log.InfowCtx(ctx, "Schema setup complete", "driver", cfg.Database.Driver)
	return nil
}
