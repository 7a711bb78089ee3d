// Package tracker journals application lifecycle events to the database.
package tracker

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/internal/database"
	"github.com/actionsum/appctl/internal/models"
	"github.com/actionsum/appctl/pkg/app"
	"github.com/actionsum/appctl/pkg/apperr"
)

// Recorder is an app.Observer that stores every event as a SessionEvent and
// every failure as an ErrorLog. Storage errors are logged, never returned to
// the application.
type Recorder struct {
	repo          *database.Repository
	displayServer string
	logger        zerolog.Logger
}

func NewRecorder(repo *database.Repository, displayServer string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		repo:          repo,
		displayServer: displayServer,
		logger:        logger.With().Str("component", "tracker").Logger(),
	}
}

func (r *Recorder) Observe(e app.Event) {
	event := &models.SessionEvent{
		Timestamp:     e.Time,
		SessionID:     e.SessionID,
		Kind:          string(e.Kind),
		AppName:       e.App,
		ExePath:       e.Path,
		Version:       e.Version,
		PID:           e.PID,
		WindowID:      e.WindowID,
		WindowTitle:   e.WindowTitle,
		ElapsedMs:     e.Elapsed.Milliseconds(),
		DisplayServer: r.displayServer,
	}

	if err := r.repo.Create(event); err != nil {
		r.logger.Error().Err(err).Str("kind", event.Kind).Msg("failed to save event")
	}

	if e.Kind == app.EventFailed && e.Err != nil {
		r.storeError(e.SessionID, e.Err)
	}
}

func (r *Recorder) storeError(sessionID string, err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Code:      apperr.CodeOf(err).String(),
		ErrorMsg:  err.Error(),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		errorLog.Op = appErr.Op
	}

	if dbErr := r.repo.CreateErrorLog(errorLog); dbErr != nil {
		r.logger.Error().Err(dbErr).AnErr("cause", err).Msg("failed to store error in database")
		return
	}
	r.logger.Debug().Err(err).Msg("error logged to database")
}
