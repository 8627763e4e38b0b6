package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachly/config"
	"reachly/llm"
	"reachly/middleware"
	"reachly/routes"
	"reachly/services"
	"reachly/store"
	"reachly/utils"
	"reachly/worker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := config.LoadConfig(); err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.AppConfig

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		})
		if err != nil {
			logger.WithError(err).Fatal("sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := config.ConnectDB(); err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}

	st := store.New(config.DB)
	transport := utils.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.FromName, cfg.FromEmail,
		cfg.SMTPTimeout,
	)

	dispatchCfg := services.DispatchConfig{
		BaseURL:         cfg.AppBaseURL,
		MessageIDDomain: utils.MailDomain(cfg.FromEmail),
		PauseEvery:      cfg.SendPauseEvery,
		PauseFor:        cfg.SendPauseFor,
	}
	lifecycle := services.NewLifecycle(st, logger)
	dispatcher := services.NewDispatcher(st, transport, lifecycle, dispatchCfg, logger)
	generator := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	scheduler := worker.NewScheduler(logger)
	registerJobs(scheduler, st, transport, cfg, dispatchCfg, logger)
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:               "reachly",
		DisableStartupMessage: cfg.Environment == "production",
	})
	app.Use(middleware.SetupCORS())
	health := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
	app.Get("/", health)
	app.Get("/health", health)
	routes.SetupRoutes(app, st, dispatcher, generator, logger)

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()
	logger.WithField("port", cfg.ServerPort).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	scheduler.Stop()
	if err := app.Shutdown(); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	logger.Info("shutdown complete")
}

// registerJobs binds the recurring background work. Each job builds its
// collaborators on a fresh store session per invocation so ticks never share
// statement state.
func registerJobs(scheduler *worker.Scheduler, st *store.Store, transport utils.Transport, cfg config.Config, dispatchCfg services.DispatchConfig, logger *logrus.Logger) {
	followUpSpec := "@every " + cfg.FollowUpInterval.String()
	draftSpec := "@every " + cfg.DraftInterval.String()

	err := scheduler.Register("follow-up-evaluation", followUpSpec, func() error {
		engine := services.NewFollowUpEngine(st.WithSession(), logger)
		_, _, err := engine.ProcessDueFollowUps()
		return err
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to register follow-up job")
	}

	err = scheduler.Register("draft-dispatch", draftSpec, func() error {
		session := st.WithSession()
		lifecycle := services.NewLifecycle(session, logger)
		dispatcher := services.NewDispatcher(session, transport, lifecycle, dispatchCfg, logger)
		_, err := dispatcher.RunDrafts(cfg.DraftBatchLimit)
		return err
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to register draft dispatch job")
	}

	err = scheduler.Register("housekeeping", "@daily", func() error {
		return services.NewHousekeeper(st.WithSession(), logger).Run()
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to register housekeeping job")
	}
}
