package main

import (
	"agencysite/config"
	"agencysite/database"
	"agencysite/email"
	"agencysite/handlers"
	"agencysite/intake"
	"agencysite/logging"
	"agencysite/middleware"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	var db *database.DB
	if cfg.HasDatabase() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
	}

	dispatcher, err := newDispatcher(cfg, db, logger)
	if err != nil {
		return err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	var leads handlers.LeadReader
	if db != nil {
		leads = db
	}
	r, err := newRouter(cfg, intake.NewService(dispatcher, logger), leads, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("email_mode", string(cfg.EmailMode())),
			zap.Bool("lead_archive", db != nil))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Email.SendTimeout+10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newDispatcher picks development or live delivery from the config. The
// archive is attached only in live mode.
func newDispatcher(cfg *config.Config, db *database.DB, logger *zap.Logger) (intake.Dispatcher, error) {
	if cfg.EmailMode() == config.EmailModeDevelopment {
		logger.Warn("MAILGUN_API_KEY not set, briefs will be logged instead of emailed")
		return intake.NewDevDispatcher(logger), nil
	}

	sender, err := email.NewMailgunSender(email.MailgunConfig{
		Domain:      cfg.Email.MailgunDomain,
		APIKey:      cfg.Email.MailgunAPIKey,
		APIBase:     cfg.Email.MailgunAPIBase,
		FromEmail:   cfg.Email.FromEmail,
		FromName:    cfg.Email.FromName,
		SendTimeout: cfg.Email.SendTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailgun sender: %w", err)
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	live := intake.NewLiveDispatcher(sender, renderer, intake.LiveOptions{
		NotifyTo:        cfg.Brief.NotifyTo,
		SchedulingURL:   cfg.Brief.SchedulingURL,
		Location:        cfg.Location(),
		FollowUpTimeout: cfg.Email.SendTimeout + 5*time.Second,
	}, logger)
	if db != nil {
		live.WithArchive(db)
	}
	return live, nil
}

// newRouter mounts the lead archive only when leads is non-nil. Forwarded
// headers are honoured only from cfg.TrustedProxies.
func newRouter(cfg *config.Config, svc handlers.BriefSubmitter, leads handlers.LeadReader, logger *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// RequestLogger wraps Recovery so panics are logged with their 500.
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	r.GET("/health", handlers.HealthCheck)

	limiter := middleware.NewClientRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	api := r.Group("/api")
	api.POST("/project-brief", middleware.RateLimit(limiter), handlers.SubmitBrief(svc))
	api.GET("/project-brief", handlers.BriefStatus)

	if leads != nil {
		admin := api.Group("/leads", middleware.AdminRequired(cfg.AdminAPIToken))
		admin.GET("", handlers.ListLeads(leads))
		admin.GET("/:id", handlers.GetLead(leads))
	}

	return r, nil
}
