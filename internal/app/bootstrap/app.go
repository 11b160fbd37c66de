package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/patient-scheduler/internal/api/router"
	appconfig "github.com/wolfman30/patient-scheduler/internal/config"
	httpmiddleware "github.com/wolfman30/patient-scheduler/internal/http/middleware"
	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/observability/metrics"
	"github.com/wolfman30/patient-scheduler/internal/webchat"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

// App is the assembled API process.
type App struct {
	Handler http.Handler
	Chat    *webchat.Handler

	redis   *redis.Client
	pool    *pgxpool.Pool
	db      *sql.DB
	limiter *httpmiddleware.RateLimiter
}

// Options carries what the binary resolved before building the app.
type Options struct {
	// AWS is nil when no component needs AWS.
	AWS *aws.Config
	// Registry receives the scheduling metrics; nil selects a fresh registry.
	Registry *prometheus.Registry
}

// BuildApp wires every component of the API from cfg. Optional backing
// services that are not configured fall back to in-process stand-ins.
func BuildApp(ctx context.Context, cfg *appconfig.Config, opts Options, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	app := &App{}
	app.redis = BuildRedisClient(ctx, cfg, logger, true)
	pool, err := BuildPostgresPool(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.pool = pool
	db, err := BuildSQLDB(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.db = db
	if pool == nil {
		logger.Warn("DATABASE_URL not set; appointment records kept in memory and audit disabled")
	}

	catalog := locale.NewCatalog(cfg.DefaultLocale)
	m := metrics.NewSchedulingMetrics(reg)

	booker, err := BuildBooker(cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	sender := BuildEmailSender(cfg, opts.AWS, logger)
	submitter := BuildSubmitter(cfg, booker, pool, db, sender, catalog, logger)

	factory, err := BuildControllerFactory(cfg, submitter, catalog, m, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	chat, err := webchat.NewHandler(webchat.Config{
		Factory:    factory,
		Backend:    BuildFallbackBackend(cfg, opts.AWS, logger),
		Transcript: BuildTranscriptStore(app.redis, cfg, logger),
		Identity:   httpmiddleware.IdentityFromContext,
		Metrics:    m,
		IdleTTL:    cfg.SessionIdleTTL,
		Logger:     logger,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: webchat: %w", err)
	}
	app.Chat = chat

	if cfg.RateLimitRPS > 0 {
		app.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	readiness := map[string]router.ReadinessCheck{}
	if app.redis != nil {
		client := app.redis
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	if pool != nil {
		readiness["postgres"] = pool.Ping
	}

	app.Handler = router.New(&router.Config{
		Logger:             logger,
		Chat:               chat,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PatientJWTSecret:   cfg.PatientJWTSecret,
		RateLimiter:        app.limiter,
		Readiness:          readiness,
	})
	return app, nil
}

// Close stops background work and releases connections.
func (a *App) Close() {
	if a.Chat != nil {
		a.Chat.Shutdown()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
