package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"wellbeing_alert_bot/internal/app"
	"wellbeing_alert_bot/internal/domain/alert"
	"wellbeing_alert_bot/internal/domain/delivery"
	"wellbeing_alert_bot/internal/domain/distress"
	"wellbeing_alert_bot/internal/infra/config"
	idb "wellbeing_alert_bot/internal/infra/database"
	"wellbeing_alert_bot/internal/infra/email"
	"wellbeing_alert_bot/internal/infra/logger"
	"wellbeing_alert_bot/internal/infra/scheduler"
	bottg "wellbeing_alert_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("Wellbeing Alert Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Get().WithField("component", "main")
	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Admin ID: %d", cfg.LogLevel, cfg.Environment, cfg.AdminTelegramID)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	rosterRepo := idb.NewPostgresRosterRepository(db)
	mainLogger.Info("Roster repository initialized.")
	alertRepo := idb.NewPostgresAlertRepository(db)
	mainLogger.Info("Alert repository initialized.")

	// Initialize the classification pipeline
	classifier := distress.NewClassifier(distress.DefaultLexicon(), logger.Get().WithField("component", "classifier"))
	cache := distress.NewCache(classifier, distress.DefaultCacheTTL)
	debouncer := distress.NewDebouncer(cache, distress.DefaultDebounceWindow)
	mainLogger.Info("Distress classification pipeline initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	// Assemble delivery channels per configuration
	var channels []delivery.Channel
	for _, name := range cfg.DeliveryChannels {
		switch name {
		case "telegram":
			channels = append(channels, bottg.NewTelebotChannel(bot))
		case "email":
			if cfg.SendGridAPIKey == "" {
				mainLogger.Warn("Email channel requested but SENDGRID_API_KEY is empty; skipping.")
				continue
			}
			channels = append(channels, email.NewSendGridChannel(cfg.SendGridAPIKey, cfg.AppName, cfg.FromEmail))
		case "console":
			channels = append(channels, email.NewConsoleChannel(logger.Get().WithField("component", "console_channel")))
		}
	}
	if len(channels) == 0 {
		mainLogger.Fatal("FATAL: No delivery channels could be assembled.")
	}
	mainLogger.Infof("Delivery channels ready: %d", len(channels))

	// Initialize NotificationScheduler
	feedback := logger.NewLogFeedback(logger.Get().WithField("component", "feedback"))
	notifScheduler := scheduler.NewNotificationScheduler(
		alert.DefaultRuleSet(),
		rosterRepo,
		channels,
		feedback,
		cache,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDispatch,
		cfg.CronSpecCache,
	)
	if err := notifScheduler.Start(); err != nil {
		mainLogger.Fatalf("FATAL: Could not start notification scheduler: %v", err)
	}

	// Initialize application services
	analysisService := app.NewAnalysisService(cache, debouncer, alertRepo, notifScheduler, logger.Get().WithField("component", "analysis_service"))
	rosterService := app.NewRosterService(rosterRepo, cfg.AdminTelegramID)
	mainLogger.Info("Application services initialized.")

	// Register Handlers
	ctx := context.Background()
	bottg.RegisterStaffHandlers(ctx, bot, rosterService, analysisService, notifScheduler, rosterRepo, cfg.AdminTelegramID, logger.Get().WithField("component", "telegram_handlers"))
	mainLogger.Info("Staff command handlers registered.")

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	debouncer.Stop()
	notifScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
