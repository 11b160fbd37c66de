package bootstrap

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/patient-scheduler/internal/appointments"
	"github.com/wolfman30/patient-scheduler/internal/chatbackend"
	"github.com/wolfman30/patient-scheduler/internal/compliance"
	appconfig "github.com/wolfman30/patient-scheduler/internal/config"
	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/notify"
	"github.com/wolfman30/patient-scheduler/internal/observability/metrics"
	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"github.com/wolfman30/patient-scheduler/internal/temporal"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

// BuildBooker returns the HTTP scheduling backend client, or a dry-run
// booker when no backend URL is configured outside production.
func BuildBooker(cfg *appconfig.Config, logger *logging.Logger) (appointments.Booker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.SchedulingBackendURL) == "" {
		if strings.EqualFold(strings.TrimSpace(cfg.Env), "production") {
			return nil, fmt.Errorf("bootstrap: SCHEDULING_BACKEND_URL is required in production")
		}
		logger.Warn("no scheduling backend configured; appointments are confirmed in dry-run mode")
		return appointments.DryRunBooker{}, nil
	}
	client, err := appointments.NewClient(appointments.ClientConfig{
		BaseURL: cfg.SchedulingBackendURL,
		APIKey:  cfg.SchedulingAPIKey,
		Timeout: cfg.SchedulingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: scheduling client: %w", err)
	}
	return client, nil
}

// BuildEmailSender selects the confirmation email provider. It returns nil
// when email is disabled or the chosen provider is not configured.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "":
		return nil
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; confirmation email disabled")
			return nil
		}
		return sender
	case "ses":
		if awsCfg == nil {
			logger.Warn("ses selected but AWS is not configured; confirmation email disabled")
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		logger.Warn("unknown email provider; confirmation email disabled", "provider", cfg.EmailProvider)
		return nil
	}
}

// BuildSubmitter wires the submission service around booker. pool, db and
// sender are optional.
func BuildSubmitter(
	cfg *appconfig.Config,
	booker appointments.Booker,
	pool *pgxpool.Pool,
	db *sql.DB,
	sender notify.EmailSender,
	catalog *locale.Catalog,
	logger *logging.Logger,
) *appointments.Service {
	if logger == nil {
		logger = logging.Default()
	}

	var repo appointments.Repository = appointments.NewInMemoryRepository()
	if pool != nil {
		repo = appointments.NewPostgresRepository(pool)
	}

	var audit appointments.Auditor
	if db != nil {
		audit = compliance.NewAuditService(db)
	}

	var mailer appointments.Mailer
	if sender != nil {
		loc := time.Local
		if cfg != nil {
			loc = cfg.Location()
		}
		mailer = notify.NewConfirmationMailer(sender, catalog, loc, logger)
	}

	return appointments.NewService(booker, repo, audit, mailer, logger)
}

// BuildFallbackBackend returns the general chat backend: an SQS queue when
// one is configured, otherwise a canned reply.
func BuildFallbackBackend(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) chatbackend.Backend {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg != nil && strings.TrimSpace(cfg.FallbackQueueURL) != "" && awsCfg != nil {
		logger.Info("general chat routed to SQS", "queue_url", cfg.FallbackQueueURL)
		return chatbackend.NewSQSBackend(sqs.NewFromConfig(*awsCfg), cfg.FallbackQueueURL)
	}
	reply := ""
	if cfg != nil {
		reply = cfg.FallbackReply
	}
	return chatbackend.StaticBackend{Reply: reply}
}

// BuildControllerFactory wires the per-session scheduling controllers.
func BuildControllerFactory(cfg *appconfig.Config, submitter scheduling.Submitter, catalog *locale.Catalog, m *metrics.SchedulingMetrics, logger *logging.Logger) (*scheduling.Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	loc := cfg.Location()
	factory, err := scheduling.NewFactory(scheduling.Config{
		Locale:     cfg.DefaultLocale,
		Resolver:   temporal.NewResolver(loc, nil),
		Submitter:  submitter,
		Catalog:    catalog,
		Location:   loc,
		ResetDelay: cfg.ResetDelay,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: controller factory: %w", err)
	}
	return factory, nil
}

// NeedsAWS reports whether any configured component talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return strings.TrimSpace(cfg.FallbackQueueURL) != "" || cfg.EmailProvider == "ses"
}
