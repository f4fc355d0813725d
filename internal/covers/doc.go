// Package covers resolves cover images for shelf books.
//
// Resolution runs two tiers in order and stops at the first success:
//
//  1. primary-site: the book's alternate marketplace link is loaded and the
//     cover is read from the product page. Only attempted when the link is on
//     the configured marketplace domain.
//  2. search-api: a title/author query against the public book search API.
//
// A failed resolution returns *ResolveError carrying the reason of every tier
// that ran. Fetcher applies a Resolver to one book or to an ordered batch,
// storing each cover as soon as it is found.
//
// # Usage
//
//	scraper := covers.NewSiteScraper("books.com.tw", "https://www.books.com.tw", covers.NewHTTPLoader(15*time.Second))
//	resolver := covers.NewResolver(scraper, metadata.NewGoogleBooksClient(metadata.GoogleBooksOptions{}))
//	fetcher := covers.NewFetcher(booksRepo, resolver, 800*time.Millisecond)
//	report := fetcher.FetchAll(ctx, []uint{1, 2, 3})
package covers
