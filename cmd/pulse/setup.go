package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/openpulse/pulse/internal/config"
	"github.com/openpulse/pulse/internal/memory"
	"github.com/openpulse/pulse/internal/providers/embed"
	"github.com/openpulse/pulse/internal/providers/llm"
	"github.com/openpulse/pulse/internal/realtime"
	"github.com/openpulse/pulse/internal/reasoning"
	"github.com/openpulse/pulse/internal/storage/sqlite"
	"github.com/openpulse/pulse/pkg/log"
)

const systemInstruction = "Você é o PULSE, um assistente técnico pessoal. " +
	"Responda em português, de forma direta e sem rodeios."

// App holds the fully wired dependency graph for one CLI invocation.
type App struct {
	Cfg        *config.AppConfig
	ReasonCfg  *config.ReasoningConfig
	Vectors    *memory.Store
	Sessions   *memory.SessionStore
	Assembler  *memory.Assembler
	Analytics  *reasoning.Analytics
	Dispatcher *reasoning.Dispatcher

	db *sql.DB
}

// NewApp constructs every component explicitly: config, then storage, then
// the memory tiers, then the dispatcher. Failures at this stage are fatal.
func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	geminiCfg := config.NewGeminiConfig(ctx)
	reasonCfg := config.NewReasoningConfig(ctx)
	realtimeCfg := config.NewRealtimeConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	sessionsRepo := sqlite.NewSessionsRepo(db)
	decisionsRepo := sqlite.NewDecisionsRepo(db)

	// 3. Vector memory
	embedder := embed.NewGeminiEmbedder(geminiCfg.APIKey, geminiCfg.EmbeddingModel)
	vectors, err := memory.NewStore(appCfg.GetVectorPath(), embedder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vector store")
	}

	// 4. Session registry, recovering checkpointed sessions
	sessions, err := memory.NewSessionStore(ctx, sessionsRepo, vectors)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session store")
	}

	// 5. Freshness gate
	gate, err := realtime.NewGate(realtimeCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize freshness gate")
	}

	// 6. Dispatcher
	fast := llm.NewGemini(geminiCfg.APIKey, geminiCfg.FastModel)
	deep := llm.NewGemini(geminiCfg.APIKey, geminiCfg.ReasoningModel)
	analytics := reasoning.NewAnalytics(decisionsRepo)
	dispatcher := reasoning.NewDispatcher(
		fast,
		deep,
		gate,
		reasoning.NewResponseCache(reasonCfg.CacheSize),
		analytics,
		reasonCfg.DeepThreshold,
		systemInstruction,
	)

	return &App{
		Cfg:        appCfg,
		ReasonCfg:  reasonCfg,
		Vectors:    vectors,
		Sessions:   sessions,
		Assembler:  memory.NewAssembler(vectors),
		Analytics:  analytics,
		Dispatcher: dispatcher,
		db:         db,
	}
}

func (a *App) Close() error {
	// Decision logging is fire-and-forget; drain it before the db goes away.
	a.Dispatcher.Flush()
	return a.db.Close()
}

func initEnv(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(".", ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
