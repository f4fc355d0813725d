package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ScraperMode string

const (
	ScraperModeHTTP    ScraperMode = "http"    // Plain GET + markup parse (default)
	ScraperModeBrowser ScraperMode = "browser" // Headless Chrome via chromedp
)

type (
	Config struct {
		HTTP
		Global
		Logging
		Database
		UI
		CORS
		Covers
		GoogleBooks
		Import
		CategoryCleanup
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Logging struct {
		Level string // debug, info, warn, error
	}
	Database struct {
		Path     string
		LogLevel string // silent, error, warn, info
	}
	UI struct {
		StaticPath string
	}
	CORS struct {
		AllowedOrigins []string
	}
	Covers struct {
		MarketplaceDomain string        // Host suffix that enables the primary-site tier
		MarketplaceOrigin string        // Prefix for relative image paths
		FetchTimeout      time.Duration // Upper bound for the primary-site request
		ScraperMode       ScraperMode
		BatchDelay        time.Duration // Pause between consecutive batch items
	}
	GoogleBooks struct {
		APIURL       string
		APIKey       string
		RateInterval time.Duration // Minimum spacing between calls, 0 disables
	}
	Import struct {
		AnthropicAPIKey string
		AnthropicAPIURL string
		AnthropicModel  string
		MaxUploadBytes  int64
	}
	CategoryCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("static_path", "./public")
	v.SetDefault("cors_allowed_origins", "*")

	// Cover pipeline defaults
	v.SetDefault("cover_marketplace_domain", DefaultMarketplaceDomain)
	v.SetDefault("cover_marketplace_origin", DefaultMarketplaceOrigin)
	v.SetDefault("cover_fetch_timeout", "15s")
	v.SetDefault("cover_scraper_mode", string(ScraperModeHTTP))
	v.SetDefault("cover_batch_delay", "800ms")
	v.SetDefault("google_books_api_url", DefaultGoogleBooksAPIURL)
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("google_books_rate_interval", "0s")

	// Image import defaults
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_api_url", DefaultAnthropicAPIURL)
	v.SetDefault("anthropic_model", DefaultAnthropicModel)
	v.SetDefault("import_max_upload_bytes", 5*1024*1024)

	v.SetDefault("category_cleanup_enabled", false)
	v.SetDefault("category_cleanup_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Logging: Logging{
			Level: v.GetString("LOG_LEVEL"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		UI: UI{
			StaticPath: v.GetString("STATIC_PATH"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Covers: Covers{
			MarketplaceDomain: v.GetString("COVER_MARKETPLACE_DOMAIN"),
			MarketplaceOrigin: strings.TrimRight(v.GetString("COVER_MARKETPLACE_ORIGIN"), "/"),
			FetchTimeout:      v.GetDuration("COVER_FETCH_TIMEOUT"),
			ScraperMode:       ScraperMode(strings.ToLower(v.GetString("COVER_SCRAPER_MODE"))),
			BatchDelay:        v.GetDuration("COVER_BATCH_DELAY"),
		},
		GoogleBooks: GoogleBooks{
			APIURL:       v.GetString("GOOGLE_BOOKS_API_URL"),
			APIKey:       v.GetString("GOOGLE_BOOKS_API_KEY"),
			RateInterval: v.GetDuration("GOOGLE_BOOKS_RATE_INTERVAL"),
		},
		Import: Import{
			AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
			AnthropicAPIURL: v.GetString("ANTHROPIC_API_URL"),
			AnthropicModel:  v.GetString("ANTHROPIC_MODEL"),
			MaxUploadBytes:  v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
		},
		CategoryCleanup: CategoryCleanup{
			Enabled:  v.GetBool("CATEGORY_CLEANUP_ENABLED"),
			Schedule: v.GetString("CATEGORY_CLEANUP_SCHEDULE"),
		},
	}
}

// splitList turns a comma separated value into trimmed, non-empty items.
func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
