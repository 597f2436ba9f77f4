package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/actions"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/dispatch"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/email"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/llm"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/normalizer"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/platform"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/tenant"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/handlers"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/repositories"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/services"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/shared/config"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/shared/database"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/shared/utils"

	_ "github.com/wisemantransports-ux/retail-assist-sub005/cmd/automation-api/docs"
)

const processedEventRetention = 7 * 24 * time.Hour

// @title Social Automation API
// @version 1.0
// @description Webhook ingestion and rule-based automation for Facebook, Instagram, WhatsApp and website forms
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel, !cfg.IsProduction())
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting automation-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init database
	db, err := database.NewDB(cfg.DatabaseURL, database.Options{LogLevel: utils.GormLogLevel(cfg.LogLevel)})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect database")
	}
	defer db.Close()

	if db.IsSQLite() {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to migrate sqlite database")
		}
	}

	// Init repositories (use GORM instance)
	ruleRepo := repositories.NewRuleRepo(db.GORM)
	channelRepo := repositories.NewChannelRepo(db.GORM)
	executionRepo := repositories.NewExecutionRepo(db.GORM)
	messageRepo := repositories.NewMessageRepo(db.GORM)
	eventRepo := repositories.NewEventRepo(db.GORM)

	ruleStore := automation.NewCachedRuleStore(ruleRepo, cfg.RuleCacheTTL)
	if !db.IsSQLite() {
		listener := repositories.NewRuleListener(cfg.DatabaseURL, ruleStore)
		go func() {
			if err := listener.Run(ctx); err != nil {
				log.Error().Err(err).Msg("❌ Rule listener stopped, relying on cache TTL")
			}
		}()
	}

	// Init tenant resolver (channel -> workspace/agent)
	resolver := tenant.NewResolver(channelRepo, cfg.RuleCacheTTL)

	// Init platform senders
	graph := platform.NewGraphClient(cfg.GraphAPIBaseURL, cfg.GraphAPIVersion, resolver)
	var waSender platform.Sender
	if cfg.WhatsAppTransport == "whatsmeow" {
		wm := platform.NewWhatsmeowSender(cfg.WhatsAppStoreURL)
		go func() {
			if err := wm.Connect(ctx); err != nil {
				log.Error().Err(err).Msg("❌ WhatsApp session failed to connect")
				return
			}
			wm.StartKeepAlive(ctx, 5*time.Minute)
		}()
		defer wm.Disconnect()
		waSender = wm
	}
	sender := platform.NewRouter(graph, waSender)

	// Init LLM service (multi-provider support)
	llmService, err := llm.NewService(&llm.ProviderConfig{
		Type:        llm.ProviderType(cfg.LLMProvider),
		OpenAIKey:   cfg.OpenAIKey,
		GroqKey:     cfg.GroqAPIKey,
		DeepSeekKey: cfg.DeepSeekAPIKey,
		Model:       cfg.LLMModel,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize LLM provider")
	}
	var generator actions.Generator
	if llmService != nil {
		generator = llmService
	}

	// Init email service (multi-provider support)
	var emailService *email.Service
	emailProvider, err := email.NewProvider(cfg.EmailProvider, cfg.BrevoAPIKey, cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Email service not configured, send_email rules will fail")
	} else {
		emailService = email.NewService(emailProvider)
		log.Info().Str("provider", emailService.GetProviderName()).Msg("📧 Email provider ready")
	}

	// Init executors
	bodies := actions.NewBodyResolver(generator)
	dispatcher := automation.NewDispatcher(cfg.ActionTimeout)
	dispatcher.Register(automation.ActionSendDM, actions.NewDirectMessage(sender, bodies, executionRepo, messageRepo))
	dispatcher.Register(automation.ActionSendPublicReply, actions.NewPublicReply(sender, bodies, executionRepo, messageRepo))
	dispatcher.Register(automation.ActionSendEmail, actions.NewEmail(emailService, bodies, executionRepo, messageRepo))
	dispatcher.Register(automation.ActionSendWebhook, actions.NewWebhook())

	var ledger automation.EventLedger
	if cfg.DedupEvents {
		ledger = eventRepo
	}
	engine := automation.NewEngine(ruleStore, dispatcher, executionRepo, ledger, automation.EngineConfig{
		RuleConcurrency: cfg.RuleConcurrency,
	})

	// Init dispatch queue
	queue, err := dispatch.New(dispatch.Config{
		Mode:      dispatch.Mode(cfg.DispatchMode),
		Workers:   cfg.DispatchWorkers,
		QueueSize: cfg.DispatchQueueSize,
		RedisAddr: cfg.RedisAddr,
	}, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create dispatch queue")
	}
	if err := queue.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start dispatch queue")
	}
	defer queue.Stop()

	// Scheduler for time triggers
	if cfg.SchedulerEnabled {
		scheduler := automation.NewScheduler(ruleRepo, engine, cfg.SchedulerResync)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to start scheduler")
		}
		defer scheduler.Stop()
	}

	// Housekeeping: the redelivery ledger only needs to outlive Meta's retry window
	housekeeping := cron.New()
	housekeeping.AddFunc("@hourly", func() {
		n, err := eventRepo.PurgeBefore(context.Background(), time.Now().UTC().Add(-processedEventRetention))
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to purge processed events")
			return
		}
		log.Debug().Int64("purged", n).Msg("🧹 Processed events purged")
	})
	housekeeping.Start()
	defer housekeeping.Stop()

	// Init services
	webhookService := services.NewWebhookService(services.Secrets{
		Facebook:  cfg.FacebookAppSecret,
		Instagram: cfg.InstagramAppSecret,
		WhatsApp:  cfg.WhatsAppAppSecret,
		Form:      cfg.FormSharedSecret,
	}, normalizer.NewRegistry(nil), resolver, queue)
	ruleService := services.NewRuleService(engine, executionRepo)

	// Init handlers
	webhookHandler := handlers.NewWebhookHandler(webhookService, handlers.WebhookOptions{
		VerifyToken:             cfg.MetaVerifyToken,
		WhatsAppSignatureHeader: cfg.WhatsAppSignatureHeader,
		FormTokenHeader:         cfg.FormTokenHeader,
	})
	ruleHandler := handlers.NewRuleHandler(ruleService)
	healthHandler := handlers.NewHealthHandler(db.DB, cfg.DispatchMode, map[string]string{
		"llm":      llmService.GetProviderName(),
		"email":    emailService.GetProviderName(),
		"whatsapp": cfg.WhatsAppTransport,
	})

	// Init Fiber app
	app := handlers.NewApp("Social Automation API")

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, webhookHandler, ruleHandler, healthHandler)

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("❌ Server shutdown failed")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("❌ Server failed")
	}
}
