// Package app wires the service together: configuration, shared
// service singletons, the audit pipeline, handler plugins, and the
// HTTP server, plus graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bearslyricattack/CompliAd/internal/api"
	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/eventbus"
	"github.com/bearslyricattack/CompliAd/pkg/extract"
	"github.com/bearslyricattack/CompliAd/pkg/fetcher"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/ocr"
	"github.com/bearslyricattack/CompliAd/pkg/pipeline"
	"github.com/bearslyricattack/CompliAd/pkg/plugin"
	"github.com/bearslyricattack/CompliAd/pkg/reasoner"
	"github.com/bearslyricattack/CompliAd/pkg/rules"
	"github.com/bearslyricattack/CompliAd/pkg/store"
	"github.com/bearslyricattack/CompliAd/pkg/transcribe"
	"github.com/bearslyricattack/CompliAd/pkg/translate"
)

// Run boots the service and blocks until a shutdown signal arrives.
func Run(configPath string) error {
	log := logger.GetLogger()

	log.Info("Loading configuration", logger.Fields{"path": configPath})
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.SetLevel(cfg.Logging.Level)

	ctx := context.Background()
	creds := config.EnvCredentials{}

	geminiKey := creds.GeminiAPIKey()
	if geminiKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}

	reasonerClient, err := reasoner.NewGeminiClient(ctx, geminiKey)
	if err != nil {
		return fmt.Errorf("failed to create reasoner client: %w", err)
	}
	translator, err := translate.New(ctx, geminiKey, cfg.Analysis.TranslateModel)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	ocrClient, err := ocr.New(ctx, geminiKey, cfg.Analysis.OCRModel)
	if err != nil {
		return fmt.Errorf("failed to create ocr client: %w", err)
	}

	var transcriber extract.Transcriber
	if key := creds.OpenAIAPIKey(); key != "" {
		transcriber, err = transcribe.New(key, time.Duration(cfg.Pipeline.TranscribeTimeoutSeconds)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create transcriber: %w", err)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, audio and video inputs will fail")
		transcriber = unavailableTranscriber{}
	}

	rulesRepo := rules.NewRepository(cfg.Rules.Root)
	if cfg.Rules.HotReload {
		if err := rulesRepo.Watch(); err != nil {
			log.Warn("Rule pack hot reload unavailable", logger.Fields{"error": err.Error()})
		}
	}
	defer rulesRepo.Close()

	var pool *extract.BrowserPool
	if cfg.Pipeline.EnableHeadlessBrowser {
		pool = extract.NewBrowserPool(
			cfg.Pipeline.BrowserPoolSize,
			time.Duration(cfg.Pipeline.BrowserMaxAgeMins)*time.Minute,
		)
		defer pool.Close()
	}

	httpFetcher := fetcher.FromConfig(cfg.Pipeline)
	catalog := extract.NewCatalog(cfg.Pipeline, httpFetcher, ocrClient, transcriber, pool)
	runner := extract.NewRunner()
	analyzer := reasoner.NewAdapter(reasonerClient, cfg.Analysis, cfg.Pipeline)

	var auditStore *store.MySQL
	dsn := cfg.Database.DSN
	if dsn == "" {
		dsn = creds.DatabaseDSN()
	}
	if cfg.Database.Mode != "off" && dsn != "" {
		auditStore, err = store.Open(dsn)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer auditStore.Close()
	} else {
		log.Warn("Audit persistence disabled", logger.Fields{"mode": cfg.Database.Mode})
	}

	log.Info("Creating event bus")
	eventBus := eventbus.NewEventBus(100)

	services := pipeline.Services{
		Catalog:    catalog,
		Runner:     runner,
		Rules:      rulesRepo,
		Translator: translator,
		Analyzer:   analyzer,
		Bus:        eventBus,
	}
	// Inline mode saves from the pipeline itself; deferred mode leaves
	// saving to the recorder plugin on the event bus.
	if cfg.Database.Mode == "inline" && auditStore != nil {
		services.Store = auditStore
	}
	pipe := pipeline.New(cfg.Pipeline, services)

	log.Info("Initializing plugin manager")
	manager := plugin.NewManager(eventBus)
	if err := manager.LoadPlugins(cfg.Plugins); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}
	if err := manager.StartAll(); err != nil {
		return fmt.Errorf("failed to start plugins: %w", err)
	}

	var history api.HistoryStore
	if auditStore != nil {
		history = auditStore
	}
	server := api.NewServer(api.NewHandler(pipe, history), cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		return err
	}

	log.Info("Application started successfully, waiting for shutdown signal")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Info("Received shutdown signal", logger.Fields{"signal": sig.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server", logger.Fields{"error": err.Error()})
	}
	if err := manager.StopAll(); err != nil {
		log.Error("Failed to stop plugins", logger.Fields{"error": err.Error()})
	}

	log.Info("Application shutdown completed")
	return nil
}

// unavailableTranscriber stands in when no speech-to-text credentials
// are configured; every call fails with a clear message.
type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "", errors.New("transcriber is not configured")
}
