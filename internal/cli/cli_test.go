package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func testConfig(dbPath string) *config.Config {
	cfg := &config.Config{}
	cfg.Database.Path = dbPath
	cfg.Covers.BatchDelay = 800 * time.Millisecond
	cfg.Covers.ScraperMode = config.ScraperModeHTTP
	cfg.Covers.MarketplaceDomain = config.DefaultMarketplaceDomain
	cfg.Covers.MarketplaceOrigin = config.DefaultMarketplaceOrigin
	return cfg
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("3, 1,3,,12")
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 3, 12}, ids)

	_, err = parseIDList("1,abc")
	assert.Error(t, err)

	_, err = parseIDList("0")
	assert.Error(t, err)
}

func TestFetchCoversCommand_ParseFlags(t *testing.T) {
	t.Run("uses configured defaults", func(t *testing.T) {
		cmd := NewFetchCoversCommand(testConfig("shelf.db"))

		require.NoError(t, cmd.ParseFlags([]string{"-missing"}))
		assert.Equal(t, "shelf.db", cmd.DatabasePath)
		assert.Equal(t, 800*time.Millisecond, cmd.Delay)
		assert.Equal(t, "http", cmd.Mode)
		assert.True(t, cmd.Missing)
	})

	t.Run("overrides", func(t *testing.T) {
		cmd := NewFetchCoversCommand(testConfig("shelf.db"))

		require.NoError(t, cmd.ParseFlags([]string{"-ids", "4,2", "-delay", "2s", "-mode", "browser", "-db", "other.db"}))
		assert.Equal(t, []uint{4, 2}, cmd.IDs)
		assert.Equal(t, 2*time.Second, cmd.Delay)
		assert.Equal(t, "browser", cmd.Mode)
		assert.Equal(t, "other.db", cmd.DatabasePath)
	})

	t.Run("invalid combinations", func(t *testing.T) {
		for _, args := range [][]string{
			{},
			{"-ids", "1", "-missing"},
			{"-ids", "1", "-mode", "curl"},
			{"-ids", "1", "-delay", "-1s"},
			{"-ids", "x"},
		} {
			cmd := NewFetchCoversCommand(testConfig("shelf.db"))
			assert.Error(t, cmd.ParseFlags(args), "args %v", args)
		}
	})
}

func TestFetchCoversCommand_RunSkipsBooksWithoutLinks(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shelf.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	book := &entities.Book{Title: "Dune", Author: "Herbert"}
	require.NoError(t, books.NewRepository(db.DB).CreateBook(book))
	require.NoError(t, db.Close())

	cmd := NewFetchCoversCommand(testConfig(dbPath))
	require.NoError(t, cmd.ParseFlags([]string{"-ids", "1", "-delay", "0s"}))
	require.NoError(t, cmd.Run())
}

func TestFetchCoversCommand_RunWithNothingMissing(t *testing.T) {
	cmd := NewFetchCoversCommand(testConfig(filepath.Join(t.TempDir(), "shelf.db")))
	require.NoError(t, cmd.ParseFlags([]string{"-missing"}))
	require.NoError(t, cmd.Run())
}

func TestCleanupCategoriesCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shelf.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, books.NewRepository(db.DB).CreateBook(&entities.Book{Title: "Dune", Author: "Herbert", Category: "Fiction"}))
	require.NoError(t, db.Close())

	dryRun := NewCleanupCategoriesCommand(testConfig(dbPath))
	require.NoError(t, dryRun.ParseFlags([]string{"-dry-run"}))
	require.NoError(t, dryRun.Run())

	cmd := NewCleanupCategoriesCommand(testConfig(dbPath))
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())

	db, err = database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	list, err := categories.NewRepository(db.DB).ListCategories()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fiction", list[0].Name)
	assert.Equal(t, entities.DefaultCategory, list[1].Name)
}
