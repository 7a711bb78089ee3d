package window

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
	"github.com/actionsum/appctl/pkg/utils"
)

// WaitState is a step of the window wait protocol.
type WaitState int

const (
	WaitIdle WaitState = iota
	WaitWaiting
	WaitConfirmed
	WaitTimedOut
	WaitFailed
)

func (s WaitState) String() string {
	switch s {
	case WaitIdle:
		return "idle"
	case WaitWaiting:
		return "waiting"
	case WaitConfirmed:
		return "confirmed"
	case WaitTimedOut:
		return "timed_out"
	case WaitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Waiter waits for a process to open a window whose title contains a given text.
type Waiter struct {
	dir      *Directory
	interval time.Duration
	logger   zerolog.Logger
}

// NewWaiter creates a Waiter polling dir every interval.
func NewWaiter(dir *Directory, interval time.Duration, logger zerolog.Logger) *Waiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Waiter{dir: dir, interval: interval, logger: logger}
}

// Wait returns a window owned by pid, titled with title, that did not exist
// when Wait was called. If several appear between two polls the one with the
// lowest id wins.
func (w *Waiter) Wait(ctx context.Context, pid int, title string, timeout time.Duration) (Handle, error) {
	log := w.logger.With().Int("pid", pid).Str("title", title).Logger()

	state := WaitIdle
	transition := func(next WaitState) {
		log.Debug().Stringer("from", state).Stringer("to", next).Msg("window wait state")
		state = next
	}

	filter := Filter{OwnerPID: pid, TitleContains: title}
	initial, err := w.dir.Find(ctx, filter)
	if err != nil {
		return Handle{}, err
	}
	seen := make(map[ID]struct{}, len(initial))
	for _, h := range initial {
		seen[h.ID] = struct{}{}
	}

	transition(WaitWaiting)
	started := time.Now()
	for {
		if err := utils.Sleep(ctx, w.interval); err != nil {
			transition(WaitFailed)
			return Handle{}, err
		}
		if time.Since(started) > timeout {
			transition(WaitTimedOut)
			log.Warn().Dur("timeout", timeout).Msg("application window not found")
			return Handle{}, apperr.Newf("wait window", apperr.CodeWindowWaitTimeout,
				"application window not found, waiting timed out after %s", timeout).WithPID(pid)
		}

		current, err := w.dir.Find(ctx, filter)
		if err != nil {
			transition(WaitFailed)
			return Handle{}, err
		}
		// current is ordered by id, so the first unseen window is the lowest new id
		for _, h := range current {
			if _, ok := seen[h.ID]; ok {
				continue
			}
			transition(WaitConfirmed)
			log.Info().Uint64("window", uint64(h.ID)).Dur("elapsed", time.Since(started)).Msg("application window found")
			return h, nil
		}
	}
}
