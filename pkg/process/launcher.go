package process

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
	"github.com/actionsum/appctl/pkg/utils"
)

const (
	DefaultPollInterval = time.Second
	DefaultTimeout      = 20 * time.Second
)

// LaunchState is a step of the launch protocol.
type LaunchState int

const (
	LaunchIdle LaunchState = iota
	LaunchLaunching
	LaunchConfirmed
	LaunchTimedOut
	LaunchFailed
)

func (s LaunchState) String() string {
	switch s {
	case LaunchIdle:
		return "idle"
	case LaunchLaunching:
		return "launching"
	case LaunchConfirmed:
		return "confirmed"
	case LaunchTimedOut:
		return "timed_out"
	case LaunchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Launcher starts an executable and identifies the process it created.
//
// The start request yields no pid, so a launch is confirmed by the count of
// running processes named after the executable growing by exactly one. An
// instance started by someone else during the wait is indistinguishable.
type Launcher struct {
	dir      *Directory
	starter  Starter
	interval time.Duration
	logger   zerolog.Logger
}

// NewLauncher creates a Launcher polling dir every interval.
// A non-positive interval selects DefaultPollInterval.
func NewLauncher(dir *Directory, starter Starter, interval time.Duration, logger zerolog.Logger) *Launcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Launcher{
		dir:      dir,
		starter:  starter,
		interval: interval,
		logger:   logger,
	}
}

// PollInterval returns the interval between process table queries.
func (l *Launcher) PollInterval() time.Duration {
	return l.interval
}

// Launch starts path and returns the handle of the new process.
// It fails with LaunchTimeout when no new instance shows up within timeout.
func (l *Launcher) Launch(ctx context.Context, path string, timeout time.Duration) (Handle, error) {
	name := filepath.Base(path)
	log := l.logger.With().Str("exe", name).Logger()

	state := LaunchIdle
	transition := func(next LaunchState) {
		log.Debug().Stringer("from", state).Stringer("to", next).Msg("launch state")
		state = next
	}

	before, err := l.dir.FindByName(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	startCount := len(before)

	transition(LaunchLaunching)
	started := time.Now()
	if err := l.starter.Start(path); err != nil {
		transition(LaunchFailed)
		return Handle{}, &apperr.Error{Op: "launch", Code: apperr.CodeLaunchFailed, Path: path, Err: err}
	}

	current := before
	for len(current) != startCount+1 {
		if err := utils.Sleep(ctx, l.interval); err != nil {
			transition(LaunchFailed)
			return Handle{}, err
		}
		if time.Since(started) > timeout {
			transition(LaunchTimedOut)
			log.Warn().Dur("timeout", timeout).Int("instances", len(current)).Msg("application did not start")
			return Handle{}, apperr.Newf("launch", apperr.CodeLaunchTimeout,
				"application did not start, waiting timed out after %s", timeout).WithPath(path)
		}
		if current, err = l.dir.FindByName(ctx, name); err != nil {
			transition(LaunchFailed)
			return Handle{}, err
		}
	}

	transition(LaunchConfirmed)
	h := current[len(current)-1]
	log.Info().Int("pid", h.PID).Dur("elapsed", time.Since(started)).Msg("application started")
	return h, nil
}
