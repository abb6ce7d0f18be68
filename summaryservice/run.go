// Package summaryservice wires configuration, storage, the generation engine
// and the mail transport into the HTTP service and runs it.
package summaryservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/meetbrief/meetbrief/internal/api"
	"github.com/meetbrief/meetbrief/internal/api/recovery"
	"github.com/meetbrief/meetbrief/internal/auth"
	"github.com/meetbrief/meetbrief/internal/config"
	"github.com/meetbrief/meetbrief/internal/genai"
	"github.com/meetbrief/meetbrief/internal/health"
	"github.com/meetbrief/meetbrief/internal/logger"
	"github.com/meetbrief/meetbrief/internal/mailer"
	"github.com/meetbrief/meetbrief/internal/services"
	"github.com/meetbrief/meetbrief/internal/store"
	"github.com/meetbrief/meetbrief/internal/store/postgres"
	"github.com/meetbrief/meetbrief/internal/store/sqlite"
)

// Run starts the summary service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("summary-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("gen_model", cfg.GenModel).
		Str("smtp_host", cfg.SMTPHost).
		Msg("Summary service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize dependencies (store, generation engine, mail transport)
	st, engine, mail, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}

	// Build router
	router := buildRouter(st, engine, mail, cfg, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, mail)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(cfg *config.Config, log zerolog.Logger) (store.Store, *genai.Engine, mailer.Mailer, error) {
	st, err := newStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, err
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, nil, nil, fmt.Errorf("generation provider not configured: OPENAI_API_KEY is empty")
	}
	engine := genai.NewEngine(genai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.GenModel,
		Temperature: cfg.GenTemperature,
		Timeout:     time.Duration(cfg.GenTimeoutSecond) * time.Second,
	}, log)

	mail, err := mailer.NewSMTPMailer(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		Timeout:     time.Duration(cfg.MailTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Error().Stack().Err(err).Msg("Mail transport unavailable")
		return nil, nil, nil, err
	}
	return st, engine, mail, nil
}

// newStore selects the storage backend from the resolved driver.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, engine *genai.Engine, mail mailer.Mailer, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	authorizer := auth.NewMockAuthorizer()

	// Summaries
	summarySvc := services.NewSummaryService(st, engine)
	summary := api.NewSummaryHandler(summarySvc, authorizer)
	root.HandleFunc("/api/summaries", summary.CreateSummary).Methods("POST")
	root.HandleFunc("/api/summaries", summary.ListSummaries).Methods("GET")
	root.HandleFunc("/api/summaries/{summaryId}", summary.GetSummary).Methods("GET")
	root.HandleFunc("/api/summaries/{summaryId}", summary.UpdateSummary).Methods("PUT")
	root.HandleFunc("/api/summaries/{summaryId}", summary.DeleteSummary).Methods("DELETE")

	// Sharing
	shareSvc := services.NewShareService(mail, time.Duration(cfg.MailTimeoutSeconds)*time.Second, log)
	share := api.NewShareHandler(summarySvc, shareSvc, authorizer)
	root.HandleFunc("/api/summaries/{summaryId}/share", share.ShareSummary).Methods("POST")
	root.HandleFunc("/api/mail/test", share.SendTestMail).Methods("POST")

	// Health
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, mail mailer.Mailer) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	mailChecker := mailer.NewMailerHealthChecker(mail, log, probeTimeout)
	go mailChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, mailChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Checkers start unhealthy and need at least one probe cycle to flip.
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
