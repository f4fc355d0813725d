package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	syncstore "github.com/mrlokans/bookshelf/internal/database/sync"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// FetchCoversCommand runs a batch cover fetch outside the server
type FetchCoversCommand struct {
	DatabasePath string
	IDs          []uint
	Missing      bool
	Delay        time.Duration
	Mode         string

	cfg *config.Config
}

// NewFetchCoversCommand creates a new FetchCoversCommand
func NewFetchCoversCommand(cfg *config.Config) *FetchCoversCommand {
	return &FetchCoversCommand{cfg: cfg}
}

// ParseFlags parses command line flags
func (cmd *FetchCoversCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fetch-covers", flag.ContinueOnError)

	var ids string
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.StringVar(&ids, "ids", "", "Comma separated book ids to process")
	fs.BoolVar(&cmd.Missing, "missing", false, "Process every book with a marketplace link and no cover")
	fs.DurationVar(&cmd.Delay, "delay", cmd.cfg.Covers.BatchDelay, "Pause between consecutive books")
	fs.StringVar(&cmd.Mode, "mode", string(cmd.cfg.Covers.ScraperMode), "Page loader: http or browser")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fetch-covers [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Resolve and store book covers one book at a time.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s fetch-covers -missing\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s fetch-covers -ids 3,7,12 -delay 2s -mode browser\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if ids != "" {
		parsed, err := parseIDList(ids)
		if err != nil {
			return err
		}
		cmd.IDs = parsed
	}

	if len(cmd.IDs) == 0 && !cmd.Missing {
		return fmt.Errorf("either -ids or -missing is required")
	}
	if len(cmd.IDs) > 0 && cmd.Missing {
		return fmt.Errorf("-ids and -missing are mutually exclusive")
	}
	if cmd.Delay < 0 {
		return fmt.Errorf("-delay must not be negative")
	}

	switch config.ScraperMode(cmd.Mode) {
	case config.ScraperModeHTTP, config.ScraperModeBrowser:
	default:
		return fmt.Errorf("unknown -mode %q, expected http or browser", cmd.Mode)
	}

	return nil
}

// Run executes the batch and prints a per-book summary
func (cmd *FetchCoversCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.WithLogLevel(cmd.cfg.Database.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	bookRepo := books.NewRepository(db.DB)

	ids := cmd.IDs
	if cmd.Missing {
		missing, err := bookRepo.ListBooksMissingCovers()
		if err != nil {
			return err
		}
		for _, book := range missing {
			ids = append(ids, book.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("No books need a cover.")
		return nil
	}

	cfg := *cmd.cfg
	cfg.Covers.BatchDelay = cmd.Delay
	cfg.Covers.ScraperMode = config.ScraperMode(cmd.Mode)

	fetcher, loader := entrypoint.NewCoverFetcher(&cfg, bookRepo)
	defer loader.Close()
	fetcher.SetProgressReporter(syncstore.NewRepository(db.DB))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Fetching covers for %d books (delay %s, mode %s)\n", len(ids), cmd.Delay, cmd.Mode)
	report := fetcher.FetchAll(ctx, ids)
	printReport(report)

	if report.Failed > 0 && report.Succeeded == 0 && report.Skipped == 0 {
		return fmt.Errorf("no cover could be fetched")
	}
	return nil
}

func printReport(report *covers.BatchReport) {
	for _, item := range report.Results {
		switch item.Outcome {
		case covers.OutcomeSucceeded:
			fmt.Printf("  ✓ #%d %s [%s] %s\n", item.ID, item.Title, item.Source, item.CoverURL)
		case covers.OutcomeSkipped:
			fmt.Printf("  - #%d %s: %s\n", item.ID, item.Title, item.Error)
		default:
			fmt.Printf("  ✗ #%d %s: %s\n", item.ID, item.Title, item.Error)
		}
	}
	fmt.Println(report.Message)
}

// parseIDList parses "1,2, 3" into book ids. Order and duplicates are kept.
func parseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid book id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
