package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lepinkainen/humanlog"

	"github.com/mrlokans/bookshelf/internal/cli"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every subcommand in internal/cli.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()
	initLogging(cfg.Logging.Level)

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version+" ("+Commit+")")
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "fetch-covers":
		cmd = cli.NewFetchCoversCommand(cfg)
	case "cleanup-categories":
		cmd = cli.NewCleanupCategoriesCommand(cfg)
	case "version":
		fmt.Printf("bookshelf %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogging(level string) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: parseLogLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve               Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  fetch-covers        Resolve covers for a list of books or every book missing one\n")
	fmt.Fprintf(os.Stderr, "  cleanup-categories  Delete categories no book uses\n")
	fmt.Fprintf(os.Stderr, "  version             Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
