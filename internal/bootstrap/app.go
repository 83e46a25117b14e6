package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-assistant/internal/assistant"
	"resume-assistant/internal/documents"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/llm/gemini"
	"resume-assistant/internal/llm/openai"
	"resume-assistant/internal/services/health"
	"resume-assistant/internal/session"
	"resume-assistant/internal/shared/auth"
	"resume-assistant/internal/shared/config"
	"resume-assistant/internal/shared/server"
	"resume-assistant/internal/shared/storage/db"
	"resume-assistant/internal/shared/storage/object"
	localstore "resume-assistant/internal/shared/storage/object/local"
	s3store "resume-assistant/internal/shared/storage/object/s3"
	"resume-assistant/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Sessions         session.Store
	LLM              llm.Client
	Tokens           *auth.Tokens
	DocumentsService *documents.Service
	AssistantService *assistant.Service
	DocumentsHandler *documents.Handler
	AssistantHandler *assistant.Handler
	HealthHandler    *health.Handler

	closers []func() error
}

// Build prepares shared dependencies and the router. Anything opened before a
// failing step is closed again.
func Build(cfg config.Config) (_ *App, err error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.LLMProvider) == "" {
		cfg.LLMProvider = "none"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.attachDB(sqlDB)

	store, err := BuildObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	client, closer, err := BuildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.LLM = client
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL, cfg.Env)
	if err != nil {
		return nil, err
	}
	app.Tokens = tokens

	if app.DB != nil {
		app.Sessions = session.NewPGStore(app.DB)
	} else {
		app.Sessions = session.NewMemoryStore()
	}

	app.DocumentsService = documents.NewService(app.Store)
	app.AssistantService = assistant.NewService(app.Sessions, app.DocumentsService, app.LLM, cfg.SessionTTL)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, app.AssistantService, cfg.MaxUploadBytes)
	app.AssistantHandler = assistant.NewHandler(app.AssistantService)
	app.HealthHandler = health.NewHandler(health.NewService(app.DB, cfg.LLMProvider))

	router, err := server.NewRouter(server.RouterDeps{
		Config:           cfg,
		Tokens:           app.Tokens,
		HealthHandler:    app.HealthHandler,
		DocumentHandler:  app.DocumentsHandler,
		AssistantHandler: app.AssistantHandler,
	})
	if err != nil {
		return nil, err
	}
	app.Router = router

	return app, nil
}

// attachDB records the database and, outside Lambda, closes it with the app.
// The Lambda pool is shared across invocations and outlives any one App.
func (a *App) attachDB(sqlDB *sql.DB) {
	a.DB = sqlDB
	if sqlDB != nil && !db.IsLambdaRuntime() {
		a.closers = append(a.closers, sqlDB.Close)
	}
}

// Close releases provider clients and the database pool.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildLLMClient returns the configured completion client wrapped with timeout,
// logging and metrics. The returned closer may be nil.
func BuildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, func() error, error) {
	var (
		next   llm.Client
		model  string
		closer func() error
	)
	switch cfg.LLMProvider {
	case "openai":
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
		if err != nil {
			return fallbackClient(cfg, err)
		}
		next, model = c, c.Model()
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return fallbackClient(cfg, err)
		}
		next, model, closer = c, c.Model(), c.Close
	default:
		next = llm.PlaceholderClient{}
	}

	telemetry.Info("bootstrap.llm", map[string]any{
		"provider":   cfg.LLMProvider,
		"model":      model,
		"timeout_ms": cfg.LLMTimeout.Milliseconds(),
	})
	return &llm.Instrumented{
		Next:     next,
		Provider: cfg.LLMProvider,
		Model:    model,
		Timeout:  cfg.LLMTimeout,
	}, closer, nil
}

func fallbackClient(cfg config.Config, err error) (llm.Client, func() error, error) {
	if !cfg.IsDevLike() {
		return nil, nil, fmt.Errorf("llm provider %s: %w", cfg.LLMProvider, err)
	}
	telemetry.Warn("bootstrap.llm_unavailable", map[string]any{
		"provider": cfg.LLMProvider,
		"error":    err.Error(),
	})
	return &llm.Instrumented{Next: llm.PlaceholderClient{}, Provider: "none"}, nil, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.db", map[string]any{"mode": "memory", "reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil && !db.IsLambdaRuntime() {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db", map[string]any{"mode": "memory", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// BuildObjectStore returns the configured upload store.
func BuildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
