package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ashmitsharp/vendlens-api/internal/config"
	"github.com/ashmitsharp/vendlens-api/internal/notify"
	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/store"
)

// App holds every service shared by the API server and the CLI
type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Repository *store.Repository
	// Storage is nil when no S3 bucket is configured
	Storage   *services.StorageService
	Validator *services.FileValidator
	Matcher   *services.CostMatcher
	Parser    *services.Parser
	Importer  *services.Importer
	Staging   *services.StagingArea
	Commits   *services.CommitEngine
	Notifier  notify.Notifier

	closers []func()
}

// Build wires the services from configuration
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	// 1. Remote storage
	if cfg.S3Bucket != "" {
		storage, err := services.NewStorageService(ctx, cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage service: %w", err)
		}
		a.Storage = storage
		log.Info().Str("bucket", cfg.S3Bucket).Msg("storage service initialized")
	}

	// 2. Key-value store
	kv, err := a.openKV(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repository = store.NewRepository(kv)

	// 3. Import pipeline
	machineNames, err := config.LoadMachineNames(cfg.MachineMapFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	mode, err := services.ParseDateTimeMode(cfg.DateTimeMode)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Parser = services.NewParser(services.ParserConfig{
		DateTimeMode:     mode,
		EnableProfitCalc: cfg.EnableProfitCalc,
		Currency:         cfg.Currency,
	}, services.NewMachineResolver(machineNames))
	a.Matcher = services.NewCostMatcher(a.Repository)
	a.Importer = services.NewImporter(a.Parser, a.Matcher)
	a.Staging = services.NewStagingArea(cfg.StagedBatchTTL)
	a.Commits = services.NewCommitEngine(a.Repository)
	a.Validator = services.NewFileValidator(cfg.MaxUploadBytes)

	// 4. Notifications
	notifiers := notify.Multi{notify.NewLogNotifier()}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			// Notifications are optional; the import path keeps working without them
			log.Warn().Err(err).Msg("telegram notifications disabled")
		} else {
			notifiers = append(notifiers, tg)
			a.closers = append(a.closers, tg.Wait)
		}
	}
	a.Notifier = notifiers

	return a, nil
}

// openKV picks Postgres when a database URL is configured and memory otherwise,
// optionally mirrored to S3
func (a *App) openKV(ctx context.Context) (store.KV, error) {
	cfg := a.Config

	var kv store.KV
	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConnections), cfg.DBConnectionTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		pg := store.NewPostgresKV(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		kv = pg
		a.Log.Info().Msg("connected to database")
	} else {
		kv = store.NewMemoryKV()
		a.Log.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}

	if !cfg.S3MirrorEnabled || a.Storage == nil {
		return kv, nil
	}

	mirror := store.NewMirroredKV(kv, a.Storage, a.Log)
	restored, err := mirror.Restore(ctx, store.AllKeys...)
	if err != nil {
		a.Log.Warn().Err(err).Msg("failed to restore from mirror")
	} else if restored > 0 {
		a.Log.Info().Int("keys", restored).Msg("restored state from mirror")
	}
	// Closers run in reverse, so pending mirror writes finish before the pool closes
	a.closers = append(a.closers, mirror.Wait)
	return mirror, nil
}

// Close releases connections and waits for background writes
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
