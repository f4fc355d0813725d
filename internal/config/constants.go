package config

const (
	// DefaultDatabasePath is the default path for the shelf database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultMarketplaceDomain is the bookstore whose product pages are scraped for covers
	DefaultMarketplaceDomain = "books.com.tw"
	DefaultMarketplaceOrigin = "https://www.books.com.tw"

	DefaultGoogleBooksAPIURL = "https://www.googleapis.com/books/v1/volumes"

	DefaultAnthropicAPIURL = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel  = "claude-opus-4-5-20251101"
)
