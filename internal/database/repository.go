package database

import (
	"strings"
	"time"

	"github.com/actionsum/appctl/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for session events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new session event into the database
func (r *Repository) Create(event *models.SessionEvent) error {
	event.AppName = strings.ToLower(event.AppName)
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert session event")
	}
	return nil
}

// GetByID retrieves a session event by its ID
func (r *Repository) GetByID(id uint) (*models.SessionEvent, error) {
	var event models.SessionEvent
	result := r.db.First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get session event")
	}
	return &event, nil
}

// GetEventsSince retrieves all session events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.SessionEvent, error) {
	var events []*models.SessionEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC, id ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session events")
	}

	return events, nil
}

// GetSession retrieves the events of one launch or attach cycle in order
func (r *Repository) GetSession(sessionID string) ([]*models.SessionEvent, error) {
	var events []*models.SessionEvent
	result := r.db.Where("session_id = ?", sessionID).Order("timestamp ASC, id ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session")
	}

	return events, nil
}

// GetAppSummarySince returns per-application counts and average wait times
// since a given time
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.SessionEvent{}).
		Select(`app_name,
			SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS launches,
			SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS attaches,
			SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS terminations,
			SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS failures,
			COALESCE(AVG(CASE WHEN kind = ? THEN elapsed_ms END), 0) AS avg_launch_ms,
			COALESCE(AVG(CASE WHEN kind = ? THEN elapsed_ms END), 0) AS avg_window_ms,
			COUNT(*) AS event_count`,
			models.KindLaunched, models.KindAttached, models.KindTerminated, models.KindFailed,
			models.KindLaunched, models.KindWindowFound).
		Where("timestamp >= ?", since).
		Group("app_name").
		Order("launches DESC, app_name ASC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}

	return summaries, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.SessionEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// GetLatest retrieves the most recent session event
func (r *Repository) GetLatest() (*models.SessionEvent, error) {
	var event models.SessionEvent
	result := r.db.Order("timestamp DESC, id DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorsSince retrieves error logs since a given time, newest first
func (r *Repository) GetErrorsSince(since time.Time) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp DESC, id DESC").Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all session events and error logs from the database
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM session_events"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear session events")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
