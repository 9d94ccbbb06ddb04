package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"RankingsScanner/internal/config"
	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/infrastructure/discovery"
	"RankingsScanner/internal/infrastructure/fetch"
	"RankingsScanner/internal/infrastructure/output"
	"RankingsScanner/internal/infrastructure/parser"
	"RankingsScanner/internal/infrastructure/scheduler"
	"RankingsScanner/internal/infrastructure/storage"
	"RankingsScanner/internal/infrastructure/telegram"
	"RankingsScanner/internal/logging"
	"RankingsScanner/internal/ports"
	"RankingsScanner/internal/ranking"
	"RankingsScanner/internal/scanner"
	"RankingsScanner/internal/usecase"
)

// Options adjust a single invocation.
type Options struct {
	// RefreshDiscovery ignores the cached endpoint set.
	RefreshDiscovery bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	discovery *discovery.Service
	pipeline  *usecase.Pipeline
}

// New builds a runnable application. The database is opened only when the
// store or the database discovery cache is enabled.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Database.Enabled || cfg.Discovery.Cache.Kind == "database" {
		if _, err := a.openDB(ctx); err != nil {
			return nil, err
		}
	}

	fetcher := fetch.NewClient(fetch.Options{
		Attempts:         cfg.Fetch.Attempts,
		BaseDelay:        cfg.Fetch.BaseDelay,
		Timeout:          cfg.Fetch.Timeout,
		UserAgent:        cfg.Fetch.UserAgent,
		CloudflareBypass: cfg.Fetch.CloudflareBypass,
	}, baseLogger.With("component", "fetch"))

	svc, err := a.newDiscovery(opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.discovery = svc

	overrides, err := parser.LoadOverrides(cfg.Endpoints.OverridesFile)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := scanner.NewRegistry()
	parser.RegisterDefaults(registry, parser.Options{
		Overrides:     parser.MergeOverrides(overrides, cfg.Endpoints.Overrides),
		States:        cfg.Extraction.States,
		SampleRows:    cfg.Extraction.SampleRows,
		ScanAllTables: cfg.Extraction.ScanAllTables,
		DetailDelay:   cfg.Extraction.DetailDelay,
		MaxLinks:      cfg.Extraction.MaxLinks,
	}, baseLogger.With("component", "parser"))
	cascade, err := registry.Cascade(cfg.Extraction.Strategies, baseLogger.With("component", "cascade"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build cascade: %w", err)
	}
	source := parser.NewStrategySource(cascade, fetcher, baseLogger.With("component", "source"))

	var repository ports.CollegeRepository
	if cfg.Database.Enabled {
		repository = storage.NewCollegeRepository(a.db, cfg.Database.Driver)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIBase)
	}

	loc := cfg.Scheduler.Location()
	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Discoverer: svc,
		Source:     source,
		Merger:     ranking.NewMerger(cfg.Ranking.Preference, cfg.Ranking.MaxRecords),
		Enricher: ranking.Enricher{
			DataVersion: cfg.Output.DataVersion,
			Country:     cfg.Output.Country,
			SourceLabel: cfg.Output.SourceLabel,
			Now:         func() time.Time { return time.Now().In(loc) },
		},
		Writer:     output.NewFileWriter(cfg.Output.Path, cfg.Output.Format),
		Repository: repository,
		Notifier:   notifier,
		Fallback:   svc.BaseEndpoints(cfg.Discovery.Year),
		Year:       cfg.Discovery.Year,
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

func (a *Application) newDiscovery(opts Options) (*discovery.Service, error) {
	cfg := a.cfg.Discovery
	prober, err := discovery.NewCollyProber(discovery.ProberOptions{
		Interval:  cfg.ProbeInterval,
		Timeout:   a.cfg.Fetch.Timeout,
		UserAgent: a.cfg.Fetch.UserAgent,
	}, a.logger.With("component", "prober"))
	if err != nil {
		return nil, err
	}

	var cache ports.DiscoveryCache
	if cfg.Cache.Kind == "database" {
		cache = storage.NewEndpointCache(a.db, a.cfg.Database.Driver)
	} else {
		cache = discovery.NewFileCache(cfg.Cache.Path)
	}

	return discovery.NewService(prober, cache, discovery.Config{
		URLTemplate: cfg.URLTemplate,
		Categories:  cfg.Categories,
		Bands:       cfg.Bands,
		Refresh:     opts.RefreshDiscovery,
	}, a.logger.With("component", "discovery")), nil
}

func (a *Application) openDB(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// Build performs a single pipeline execution.
func (a *Application) Build(ctx context.Context) (usecase.BuildResult, error) {
	return a.pipeline.Build(ctx)
}

// Discover runs discovery only.
func (a *Application) Discover(ctx context.Context) ([]domain.DiscoveredEndpoint, error) {
	return a.discovery.Discover(ctx, a.cfg.Discovery.Year)
}

// Load upserts a previously written dataset artifact into the record store.
func (a *Application) Load(ctx context.Context, path string) (domain.ImportSummary, error) {
	ds, err := output.ReadDataset(path)
	if err != nil {
		return domain.ImportSummary{}, err
	}
	db, err := a.openDB(ctx)
	if err != nil {
		return domain.ImportSummary{}, err
	}
	return storage.NewCollegeRepository(db, a.cfg.Database.Driver).Upsert(ctx, ds)
}

// Query runs a filtered query over the record store.
func (a *Application) Query(ctx context.Context, filter domain.CollegeFilter) ([]domain.College, error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	return storage.NewCollegeRepository(db, a.cfg.Database.Driver).Query(ctx, filter)
}

// Watch builds now and then on every scheduler interval until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
