// Package sync persists progress of batch cover runs so the status endpoint
// can report on a batch driven by another request or by the CLI.
//
// # Interface Implementation
//
//	var _ covers.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(12)
//	progress, err := repo.GetSyncProgress()
package sync

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
)

// StaleAfter is how long a running record may go without updates before it
// is treated as interrupted.
const StaleAfter = 10 * time.Minute

// Repository stores one progress row per sync type.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
	now      func() time.Time
}

// NewRepository creates a repository tracking batch cover runs.
func NewRepository(db *gorm.DB) *Repository {
	return NewRepositoryWithType(db, entities.SyncTypeCovers)
}

// NewRepositoryWithType creates a repository for a specific sync type.
func NewRepositoryWithType(db *gorm.DB, syncType entities.SyncType) *Repository {
	return &Repository{db: db, syncType: syncType, now: time.Now}
}

// GetSyncProgress returns the latest run, or a not-found error when nothing
// has ever run.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("no %s run recorded", r.syncType)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s progress: %w", r.syncType, err)
	}
	return &progress, nil
}

// StartSync creates the progress row or resets it for a new run.
func (r *Repository) StartSync(totalItems int) error {
	now := r.now()
	progress := entities.SyncProgress{
		SyncType:   r.syncType,
		Status:     entities.SyncStatusRunning,
		TotalItems: totalItems,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	var existing entities.SyncProgress
	result := r.db.Where("sync_type = ?", r.syncType).Limit(1).Find(&existing)
	if result.Error != nil {
		return fmt.Errorf("start %s run: %w", r.syncType, result.Error)
	}
	if result.RowsAffected == 0 {
		return r.db.Create(&progress).Error
	}

	progress.ID = existing.ID
	// Save writes zero values too, clearing counters and CompletedAt.
	return r.db.Save(&progress).Error
}

// UpdateProgress records per-item counters of the current run.
func (r *Repository) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   r.now(),
		}).Error
}

// CompleteSync marks the run as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := r.now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"status":       status,
			"current_item": "",
			"error":        errorMsg,
			"updated_at":   now,
			"completed_at": now,
		}).Error
}

// IsSyncRunning reports whether a run is in progress. A running record that
// has not been touched for StaleAfter is marked failed and reported idle.
func (r *Repository) IsSyncRunning() (bool, error) {
	var progress entities.SyncProgress
	result := r.db.Where("sync_type = ? AND status = ?", r.syncType, entities.SyncStatusRunning).Limit(1).Find(&progress)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if progress.UpdatedAt.Before(r.now().Add(-StaleAfter)) {
		if err := r.CompleteSync(false, "run was interrupted"); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
