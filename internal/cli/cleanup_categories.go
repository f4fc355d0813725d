package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CleanupCategoriesCommand removes categories no book uses
type CleanupCategoriesCommand struct {
	DatabasePath string
	DryRun       bool

	cfg *config.Config
}

// NewCleanupCategoriesCommand creates a new CleanupCategoriesCommand
func NewCleanupCategoriesCommand(cfg *config.Config) *CleanupCategoriesCommand {
	return &CleanupCategoriesCommand{cfg: cfg}
}

// ParseFlags parses command line flags
func (cmd *CleanupCategoriesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-categories", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "List the categories that would be removed")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-categories [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete every category no book uses. %q is always kept.\n\n", entities.DefaultCategory)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the cleanup
func (cmd *CleanupCategoriesCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.WithLogLevel(cmd.cfg.Database.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := categories.NewRepository(db.DB)

	if cmd.DryRun {
		unused, err := repo.ListUnusedCategories(entities.DefaultCategory)
		if err != nil {
			return err
		}
		fmt.Printf("%d unused categories would be deleted\n", len(unused))
		for _, category := range unused {
			fmt.Printf("  - %s\n", category.Name)
		}
		return nil
	}

	deleted, err := repo.DeleteUnusedCategories(entities.DefaultCategory)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d unused categories\n", deleted)
	return nil
}
