package covers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
)

// DefaultBatchDelay is the pause between consecutive books in a batch.
const DefaultBatchDelay = 800 * time.Millisecond

// BookStore is the subset of the books repository the fetcher needs.
type BookStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	UpdateCoverURL(id uint, coverURL string) error
}

// CoverResolver resolves a cover from a book's fields.
type CoverResolver interface {
	Resolve(ctx context.Context, alternateURL, title, author string) (*Result, error)
}

// ProgressReporter receives batch progress. Errors are logged and ignored.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
}

// Outcome is the per-book result of a batch.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// ItemResult describes what happened to one identifier of a batch.
type ItemResult struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title,omitempty"`
	Author   string  `json:"author,omitempty"`
	Outcome  Outcome `json:"outcome"`
	Source   Source  `json:"source,omitempty"`
	CoverURL string  `json:"cover_url,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// BatchReport aggregates a batch run. Succeeded+Failed+Skipped == Total.
type BatchReport struct {
	Message   string         `json:"message"`
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	Sources   map[Source]int `json:"sources"`
	Results   []ItemResult   `json:"results"`
}

func (r *BatchReport) record(item ItemResult) {
	r.Results = append(r.Results, item)
	switch item.Outcome {
	case OutcomeSucceeded:
		r.Succeeded++
		r.Sources[item.Source]++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Fetcher resolves covers and stores them on the book records.
type Fetcher struct {
	store    BookStore
	resolver CoverResolver
	delay    time.Duration
	progress ProgressReporter
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher pausing delay between batch items.
func NewFetcher(store BookStore, resolver CoverResolver, delay time.Duration) *Fetcher {
	if delay < 0 {
		delay = 0
	}
	return &Fetcher{
		store:    store,
		resolver: resolver,
		delay:    delay,
		sleep:    sleepContext,
	}
}

// SetProgressReporter attaches a progress sink for batch runs (optional).
func (f *Fetcher) SetProgressReporter(reporter ProgressReporter) {
	f.progress = reporter
}

// Delay returns the configured pause between batch items.
func (f *Fetcher) Delay() time.Duration {
	return f.delay
}

// FetchCover resolves the cover of a loaded book and stores it. A book
// without an alternate URL is rejected with a validation error. Resolution
// failures are returned as *ResolveError.
func (f *Fetcher) FetchCover(ctx context.Context, book *entities.Book) (*Result, error) {
	if !book.HasAlternateURL() {
		return nil, errors.Validation("book has no alternate URL")
	}

	result, err := f.resolver.Resolve(ctx, book.AlternateURL, book.Title, book.Author)
	if err != nil {
		return nil, err
	}

	if err := f.store.UpdateCoverURL(book.ID, result.CoverURL); err != nil {
		return nil, fmt.Errorf("store cover: %w", err)
	}
	book.CoverURL = result.CoverURL

	slog.Info("cover stored", "book_id", book.ID, "tier", result.Source, "cover_url", result.CoverURL)
	return result, nil
}

// FetchAll processes ids one after another, pausing between consecutive
// identifiers. A failure on one book never stops the batch; cancelling ctx
// marks the remaining identifiers failed.
func (f *Fetcher) FetchAll(ctx context.Context, ids []uint) *BatchReport {
	report := &BatchReport{
		Total:   len(ids),
		Sources: map[Source]int{SourcePrimarySite: 0, SourceSearchAPI: 0},
		Results: make([]ItemResult, 0, len(ids)),
	}

	f.reportStart(len(ids))

	for i, id := range ids {
		if i > 0 && f.delay > 0 && ctx.Err() == nil {
			// A cancelled sleep falls through to the ctx check below.
			_ = f.sleep(ctx, f.delay)
		}

		var item ItemResult
		if err := ctx.Err(); err != nil {
			item = ItemResult{ID: id, Outcome: OutcomeFailed, Error: "batch cancelled: " + err.Error()}
		} else {
			item = f.fetchOne(ctx, id)
		}
		report.record(item)

		f.reportProgress(report, item.Title)
	}

	report.Message = fmt.Sprintf("Processed %d books: %d succeeded, %d failed, %d skipped",
		report.Total, report.Succeeded, report.Failed, report.Skipped)

	errMsg := ""
	if err := ctx.Err(); err != nil {
		errMsg = err.Error()
	}
	f.reportComplete(errMsg)

	slog.Info("batch cover fetch finished",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped)
	return report
}

func (f *Fetcher) fetchOne(ctx context.Context, id uint) ItemResult {
	item := ItemResult{ID: id}

	book, err := f.store.GetBookByID(id)
	if err != nil {
		item.Outcome = OutcomeFailed
		if errors.Is(err, errors.ErrNotFound) {
			item.Error = "book not found"
		} else {
			item.Error = err.Error()
		}
		return item
	}
	item.Title = book.Title
	item.Author = book.Author

	if !book.HasAlternateURL() {
		item.Outcome = OutcomeSkipped
		item.Error = "no alternate URL"
		return item
	}

	result, err := f.FetchCover(ctx, book)
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		slog.Warn("cover fetch failed", "book_id", id, "error", err)
		return item
	}

	item.Outcome = OutcomeSucceeded
	item.Source = result.Source
	item.CoverURL = result.CoverURL
	return item
}

func (f *Fetcher) reportStart(total int) {
	if f.progress == nil {
		return
	}
	if err := f.progress.StartSync(total); err != nil {
		slog.Warn("failed to record batch start", "error", err)
	}
}

func (f *Fetcher) reportProgress(report *BatchReport, current string) {
	if f.progress == nil {
		return
	}
	processed := len(report.Results)
	if err := f.progress.UpdateProgress(processed, report.Succeeded, report.Failed, report.Skipped, current); err != nil {
		slog.Warn("failed to record batch progress", "error", err)
	}
}

func (f *Fetcher) reportComplete(errMsg string) {
	if f.progress == nil {
		return
	}
	if err := f.progress.CompleteSync(errMsg == "", errMsg); err != nil {
		slog.Warn("failed to record batch completion", "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
