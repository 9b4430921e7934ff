package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/keyvend/keyvend/internal/config"
	"github.com/keyvend/keyvend/internal/dedup"
	"github.com/keyvend/keyvend/internal/intent"
	"github.com/keyvend/keyvend/internal/inventory"
	"github.com/keyvend/keyvend/internal/ledger"
	"github.com/keyvend/keyvend/internal/middleware"
	"github.com/keyvend/keyvend/internal/notification"
	"github.com/keyvend/keyvend/internal/shop"
	"github.com/keyvend/keyvend/internal/webhook"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes, and returns the
// intent tracker so the caller can schedule the expiry sweep against it.
func Setup(app *fiber.App, d Deps) (intent.Tracker, error) {
	// Enforce store presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Structured access log on the shared slog handler, one line per request.
	app.Use(middleware.Audit(d.Logger))

	// Health and metrics
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Stores: Postgres when available, in-memory otherwise (dev only).
	var (
		ledgerBackend ledger.Ledger
		keyStore      inventory.Store
		tracker       intent.Tracker
		recorder      dedup.Recorder
	)
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
		keyStore = inventory.NewPostgresStore(d.DB, d.Cfg.Tiers())
		tracker = intent.NewPostgresTracker(d.DB)
		recorder = dedup.NewPostgresRecorder(d.DB)
	} else {
		ledgerBackend = ledger.NewMemory()
		keyStore = inventory.NewMemory(d.Cfg.Tiers())
		tracker = intent.NewMemory()
		recorder = dedup.NewMemory()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)

	shopSvc := shop.NewService(ledgerBackend, keyStore, tracker, notifier,
		d.Cfg.TierPrices, d.Cfg.IntentTTL, d.Cfg.BankAccount, d.Cfg.StrictAmount, d.Logger)
	shopHandler := shop.NewHandler(shopSvc)

	reconciler := webhook.NewReconciler(ledgerBackend, tracker, recorder, notifier,
		d.Cfg.StrictAmount, d.Cfg.SuccessStatus, d.Logger)
	webhookHandler := webhook.NewHandler(reconciler, d.Logger)

	// Provider-facing webhook: no API middleware, its own dedup gate.
	RegisterWebhookRoutes(app, webhookHandler)

	// User and admin API
	api := app.Group("/api/v1")
	if d.Cache != nil {
		api.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	depositLimiter := middleware.DepositRateLimit(d.Cache, d.Cfg.DepositsPerMinute)
	RegisterShopRoutes(api, shopHandler, depositLimiter)

	admin := api.Group("/admin", middleware.AdminAuth(d.Cfg.AdminTokenHash))
	RegisterAdminRoutes(admin, shopHandler)

	return tracker, nil
}
