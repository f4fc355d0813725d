package entrypoint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	syncstore "github.com/mrlokans/bookshelf/internal/database/sync"
	"github.com/mrlokans/bookshelf/internal/entities"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/recognition"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		slog.Info("starting server", "host", cfg.HTTP.Host, "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// Resources go after in-flight requests have drained.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	slog.Info("server exiting")
}

// NewCoverFetcher assembles both resolution tiers from configuration. The
// returned closer releases the page loader (a headless browser in browser
// mode).
func NewCoverFetcher(cfg *config.Config, store covers.BookStore) (*covers.Fetcher, io.Closer) {
	var loader interface {
		covers.PageLoader
		io.Closer
	}
	switch cfg.Covers.ScraperMode {
	case config.ScraperModeBrowser:
		slog.Info("cover scraper uses headless browser")
		loader = covers.NewBrowserLoader(cfg.Covers.FetchTimeout)
	default:
		loader = covers.NewHTTPLoader(cfg.Covers.FetchTimeout)
	}

	scraper := covers.NewSiteScraper(cfg.Covers.MarketplaceDomain, cfg.Covers.MarketplaceOrigin, loader)
	search := metadata.NewGoogleBooksClient(metadata.GoogleBooksOptions{
		BaseURL:      cfg.GoogleBooks.APIURL,
		APIKey:       cfg.GoogleBooks.APIKey,
		RateInterval: cfg.GoogleBooks.RateInterval,
	})

	resolver := covers.NewResolver(scraper, search)
	return covers.NewFetcher(store, resolver, cfg.Covers.BatchDelay), loader
}

func Run(cfg *config.Config, version string) {
	slog.Info("starting bookshelf", "version", version)

	db, err := database.NewDatabase(cfg.Database.Path, database.WithLogLevel(cfg.Database.LogLevel))
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}

	bookRepo := books.NewRepository(db.DB)
	categoryRepo := categories.NewRepository(db.DB)
	syncProgress := syncstore.NewRepository(db.DB)

	fetcher, loader := NewCoverFetcher(cfg, bookRepo)
	fetcher.SetProgressReporter(syncProgress)

	// Image import needs a vision API key
	var importer http_controllers.ImageImporter
	if cfg.Import.AnthropicAPIKey != "" {
		recognizer := recognition.NewAnthropicClient(cfg.Import.AnthropicAPIKey, cfg.Import.AnthropicAPIURL, cfg.Import.AnthropicModel)
		importer = recognition.NewImporter(recognizer, bookRepo)
	} else {
		slog.Warn("ANTHROPIC_API_KEY is not set, image import is disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())

	var cleanup *scheduler.CategoryCleanupScheduler
	if cfg.CategoryCleanup.Enabled {
		cleanup = scheduler.NewCategoryCleanupScheduler(categoryRepo, entities.DefaultCategory, cfg.CategoryCleanup.Schedule)
		if err := cleanup.Start(ctx); err != nil {
			slog.Error("category cleanup scheduler not started", "error", err)
			cleanup = nil
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		BookStore:      bookRepo,
		CategoryStore:  categoryRepo,
		Database:       db,
		CoverFetcher:   fetcher,
		SyncStatus:     syncProgress,
		Importer:       importer,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		StaticPath:     cfg.UI.StaticPath,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Version:        version,
	})

	onShutdown := func(context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
		cancel()
		if err := loader.Close(); err != nil {
			slog.Warn("failed to close page loader", "error", err)
		}
		if err := db.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
