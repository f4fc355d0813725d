package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.CORSOrigins))

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BookStore)
	categoriesController := NewCategoriesController(cfg.CategoryStore)
	importController := NewImportController(cfg.Importer, cfg.MaxUploadBytes)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Books
	api.GET("/books", booksController.ListBooks)
	api.POST("/books", booksController.CreateBook)
	api.GET("/books/:id", booksController.GetBook)
	api.PUT("/books/:id", booksController.UpdateBook)
	api.DELETE("/books/:id", booksController.DeleteBook)

	// Categories
	api.GET("/categories", categoriesController.ListCategories)
	api.POST("/categories", categoriesController.CreateCategory)
	api.DELETE("/categories/:id", categoriesController.DeleteCategory)
	api.DELETE("/categories/cleanup/unused", categoriesController.CleanupUnused)

	// Covers
	if cfg.CoverFetcher != nil {
		coversController := NewCoversController(cfg.BookStore, cfg.CoverFetcher, cfg.SyncStatus)
		api.POST("/books/:id/fetch-cover", coversController.FetchCover)
		api.POST("/books/batch-fetch-covers", coversController.BatchFetchCovers)
		api.GET("/books/batch-fetch-covers/status", coversController.BatchStatus)
	}

	// Image import
	api.POST("/books/import-from-image", importController.ImportFromImage)

	// Frontend
	if cfg.StaticPath != "" {
		router.StaticFile("/", cfg.StaticPath+"/index.html")
		router.Static("/static", cfg.StaticPath)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found"})
	})

	return router
}
