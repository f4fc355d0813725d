package http

import (
	"github.com/mrlokans/bookshelf/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	BookStore     BookStore
	CategoryStore CategoryStore
	Database      *database.Database

	// Cover pipeline
	CoverFetcher CoverFetcher
	SyncStatus   SyncStatusReader

	// Image import (optional)
	Importer       ImageImporter
	MaxUploadBytes int64

	// Frontend and browser access
	StaticPath  string
	CORSOrigins []string

	// Application info
	Version string
}
