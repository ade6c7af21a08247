package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	goflags "github.com/jessevdk/go-flags"

	"stocktake-dashboard/internal/config"
	"stocktake-dashboard/internal/middleware"
	"stocktake-dashboard/internal/observability"
	"stocktake-dashboard/internal/server"
	"stocktake-dashboard/internal/services"
	"stocktake-dashboard/internal/storage"
	"stocktake-dashboard/internal/ui/templates"
)

const (
	version = "1.0.0"

	renderTimeout = 10 * time.Second
	loadTimeout   = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

type options struct {
	Config     string `short:"c" long:"config" description:"Path to YAML config file"`
	Listen     string `short:"l" long:"listen" description:"Listen address, overrides config host:port"`
	Source     string `long:"source" description:"Event source: csv or sqlite" choice:"csv" choice:"sqlite"`
	CSVFile    string `long:"csv" description:"Path to the check-event CSV file"`
	SQLitePath string `long:"db" description:"Path to the SQLite event database"`
	Payloads   string `long:"payloads" description:"Path to the product payload JSON dump"`
	POSLabels  string `long:"pos-labels" description:"Path to the point-of-sale label YAML file"`
	Version    bool   `short:"v" long:"version" description:"Print version and exit"`
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// applyFlags lets command-line flags win over file and environment config.
func applyFlags(cfg *config.Config, opts *options) {
	if opts.Source != "" {
		cfg.Events.Source = opts.Source
	}
	if opts.CSVFile != "" {
		cfg.Events.CSVFile = opts.CSVFile
	}
	if opts.SQLitePath != "" {
		cfg.Events.SQLitePath = opts.SQLitePath
	}
	if opts.Payloads != "" {
		cfg.Events.PayloadsFile = opts.Payloads
	}
	if opts.POSLabels != "" {
		cfg.Events.POSLabelsFile = opts.POSLabels
	}
}

func main() {
	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "stocktake-dashboard"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return
		}
		os.Exit(1)
	}
	if opts.Version {
		os.Stdout.WriteString("stocktake-dashboard " + version + "\n")
		return
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, &opts)

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"source", cfg.Events.Source,
	)

	analytics := services.NewAnalytics()
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	var store *storage.SQLiteStore
	start := time.Now()
	switch cfg.Events.Source {
	case config.SourceSQLite:
		store, err = storage.Open(cfg.Events.SQLitePath)
		if err != nil {
			logger.Error("failed to open event store", "error", err)
			os.Exit(1)
		}
		if err := analytics.LoadFromStore(ctx, store); err != nil {
			logger.Error("failed to load events from store", "error", err)
			os.Exit(1)
		}
	default:
		if err := analytics.LoadFromCSV(ctx, cfg.Events.CSVFile); err != nil {
			logger.Error("failed to load CSV data", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("event data loaded", "duration", time.Since(start))

	if cfg.Events.PayloadsFile != "" {
		if err := analytics.LoadProductPayloads(cfg.Events.PayloadsFile); err != nil {
			logger.Warn("failed to load product payloads", "error", err)
		}
	}
	if cfg.Events.POSLabelsFile != "" {
		if err := analytics.LoadPOSLabels(cfg.Events.POSLabelsFile); err != nil {
			logger.Warn("failed to load point-of-sale labels", "error", err)
		}
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	addr := cfg.Address()
	if opts.Listen != "" {
		addr = opts.Listen
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	if store != nil {
		gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
			logger.Info("closing event store")
			return store.Close()
		})
	}

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
