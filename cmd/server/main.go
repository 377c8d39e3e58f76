package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"voxarena/config"
	"voxarena/controllers"
	"voxarena/db"
	"voxarena/internal/debate"
	"voxarena/internal/wizard"
	"voxarena/middlewares"
	"voxarena/observability"
	"voxarena/routes"
	"voxarena/services"
	"voxarena/utils"
	"voxarena/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	configPath := flag.String("config", envOr("VOXARENA_CONFIG", "./config/config.yml"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	log := config.NewLogger(cfg)
	gin.SetMode(cfg.Server.Mode)
	utils.SetJWTSecret(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiry)*time.Minute)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.ServiceName, "1.0.0")
		if err != nil {
			log.WithError(err).Warn("Tracing disabled")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	client, database, err := db.ConnectMongoDB(cfg.Database.URI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	router, err := setupRouter(ctx, cfg, database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up server")
	}

	port := strconv.Itoa(cfg.Server.Port)
	log.WithField("port", port).Info("Server starting")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func setupRouter(ctx context.Context, cfg *config.Config, database *mongo.Database, log *logrus.Logger) (*gin.Engine, error) {
	admins := db.NewAdminRepository(database)
	audit := db.NewAuditRepository(database)
	debates := db.NewDebateRepository(database)
	templates := db.NewTemplateRepository(database)
	personas := db.NewPersonaRepository(database)
	modes := db.NewModeRepository(database)
	taxonomy := db.NewTaxonomyRepository(database)
	promptLogs := db.NewPromptLogRepository(database)

	if err := utils.SeedDefaults(ctx, templates, modes, taxonomy, log); err != nil {
		return nil, err
	}

	// Redis backs the event stream, the rate limiter and wizard sessions.
	// Without it the server still serves CRUD and synchronous generation.
	var (
		events   services.GenerationEvents
		source   websocket.EventSource
		limiter  controllers.RateLimiter
		sessions wizard.Store = wizard.NewMemoryStore()
	)
	rdb, err := debate.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, generation events and rate limits disabled")
	} else {
		stream := debate.NewEventStream(rdb, log)
		events, source = stream, stream
		limiter = debate.NewRateLimiter(rdb, debate.RateLimitConfig{
			MaxRequests: cfg.Generation.RateLimit.MaxRequests,
			Window:      cfg.Generation.RateLimit.Window,
		})
		sessions = wizard.NewRedisStore(rdb)
	}

	providers, err := buildProviders(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storage, err := services.NewS3Storage(ctx, services.StorageConfig{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}

	form, err := config.NewFormConfigStore(cfg.PersonaForm.Path, cfg.PersonaForm.DevReload)
	if err != nil {
		return nil, err
	}

	caller := services.NewAICaller(providers, promptLogs, cfg.Generation.Provider, cfg.Generation.Model, log)
	debateService := services.NewDebateService(debates, templates, personas, modes, log)
	templateService := services.NewTemplateService(templates, log)
	modeService := services.NewModeService(modes)
	generation := services.NewGenerationService(debates, personas, modes, taxonomy, caller, events, services.GenerationConfig{
		MaxAttempts:    cfg.Generation.MaxAttempts,
		InitialBackoff: cfg.Generation.InitialBackoff,
		BackoffFactor:  cfg.Generation.BackoffFactor,
		AttemptTimeout: cfg.Generation.Timeout,
	}, log)
	maxUpload := int64(cfg.Server.MaxUploadSizeMB) << 20

	enforcer, err := middlewares.NewMongoEnforcer(cfg.Database.URI, log)
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Dependencies{
		Admins:            admins,
		Audit:             audit,
		Enforcer:          enforcer,
		Log:               log,
		ServiceName:       cfg.Tracing.ServiceName,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		MaxMultipartBytes: maxUpload,

		Admin:     controllers.NewAdminController(admins, log),
		Debates:   controllers.NewDebateController(debateService, generation, services.NewReviewDocumentService(debates, storage, maxUpload, log), services.NewExportService(debates, personas), limiter, log),
		Templates: controllers.NewTemplateController(templateService, log),
		Personas:  controllers.NewPersonaController(services.NewPersonaService(personas, debates, taxonomy, caller, storage, form, cfg.Gemini.ImageModel, log), log),
		Taxonomy:  controllers.NewTaxonomyController(services.NewTaxonomyService(taxonomy), log),
		Modes:     controllers.NewModeController(modeService, log),
		AI:        controllers.NewAIController(services.NewPromptLogService(promptLogs), providers, form, log),
		Wizard:    controllers.NewWizardController(wizard.NewService(sessions, templateService, modeService, debateService, log), log),
		Events:    websocket.NewGenerationRelay(source, cfg.Server.AllowedOrigins, log),
	}), nil
}

// buildProviders registers every provider in the catalog. Providers without
// credentials stay listed as unconfigured.
func buildProviders(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*services.Providers, error) {
	providers := services.NewProviders()

	if cfg.Gemini.ApiKey != "" {
		gemini, err := services.NewGeminiProvider(ctx, cfg.Gemini.ApiKey)
		if err != nil {
			return nil, err
		}
		providers.RegisterText("gemini", gemini, cfg.Gemini.Models)
		providers.RegisterImage(gemini, cfg.Gemini.ImageModel)
	} else {
		providers.RegisterText("gemini", nil, cfg.Gemini.Models)
	}

	if cfg.Anthropic.ApiKey != "" {
		providers.RegisterText("anthropic", services.NewAnthropicProvider(cfg.Anthropic.ApiKey), cfg.Anthropic.Models)
	} else {
		providers.RegisterText("anthropic", nil, cfg.Anthropic.Models)
	}

	if cfg.Openai.GptApiKey != "" {
		providers.RegisterText("openai", services.NewChatGPT(cfg.Openai.GptApiKey, cfg.Openai.BaseURL), cfg.Openai.Models)
	} else {
		providers.RegisterText("openai", nil, cfg.Openai.Models)
	}

	for _, p := range providers.Catalog() {
		log.WithFields(logrus.Fields{"provider": p.Provider, "configured": p.Configured}).Info("AI provider registered")
	}
	return providers, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
