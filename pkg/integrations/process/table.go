// Package process implements the process table over gopsutil.
package process

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	gopsproc "github.com/shirou/gopsutil/v4/process"

	"github.com/actionsum/appctl/pkg/process"
	"github.com/actionsum/appctl/pkg/utils"
)

const exitPollInterval = 100 * time.Millisecond

// Table reads the live OS process table.
type Table struct {
	logger zerolog.Logger
}

var _ process.Table = (*Table)(nil)

func NewTable(logger zerolog.Logger) *Table {
	return &Table{logger: logger}
}

// Enumerate lists every process it can read. Processes that exit or deny
// access while being read are skipped.
func (t *Table) Enumerate(ctx context.Context) ([]process.Handle, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list processes")
	}

	handles := make([]process.Handle, 0, len(procs))
	for _, p := range procs {
		h, err := readHandle(ctx, p)
		if err != nil {
			continue
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func readHandle(ctx context.Context, p *gopsproc.Process) (process.Handle, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return process.Handle{}, err
	}
	h := process.Handle{PID: int(p.Pid), Name: name}

	// exe and create time are unreadable for other users' processes on some systems
	if exe, err := p.ExeWithContext(ctx); err == nil {
		h.ExePath = exe
	}
	if ms, err := p.CreateTimeWithContext(ctx); err == nil {
		h.CreateTime = time.UnixMilli(ms)
	}

	h.Status = statusOf(p.StatusWithContext(ctx))
	return h, nil
}

// statusOf maps a status read. Windows has no process states: gopsutil
// answers a single empty state along with a not-implemented error. A process
// that could be opened and named there is alive.
func statusOf(statuses []string, err error) process.Status {
	if len(statuses) > 0 && statuses[0] == "" {
		return process.StatusRunning
	}
	if err != nil {
		return process.StatusUnknown
	}
	return mapStatus(statuses)
}

// mapStatus folds gopsutil states into Status. Sleeping and idle processes
// are alive and count as running; most GUI programs sleep between events.
func mapStatus(statuses []string) process.Status {
	if len(statuses) == 0 {
		return process.StatusUnknown
	}
	switch statuses[0] {
	case gopsproc.Running, gopsproc.Sleep, gopsproc.Idle, gopsproc.Wait, gopsproc.Lock, gopsproc.Blocked:
		return process.StatusRunning
	case gopsproc.Stop:
		return process.StatusStopped
	case gopsproc.Zombie:
		return process.StatusZombie
	default:
		return process.StatusUnknown
	}
}

// Terminate asks the process to exit. A process that is already gone is not an error.
func (t *Table) Terminate(ctx context.Context, pid int) error {
	p, err := gopsproc.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, gopsproc.ErrorProcessNotRunning) {
			return nil
		}
		return errors.Wrapf(err, "failed to open process %d", pid)
	}

	if err := p.TerminateWithContext(ctx); err != nil {
		if exists, _ := gopsproc.PidExistsWithContext(ctx, int32(pid)); !exists {
			return nil
		}
		return errors.Wrapf(err, "failed to terminate process %d", pid)
	}

	t.logger.Debug().Int("pid", pid).Msg("termination requested")
	return nil
}

// WaitForExit blocks until pid no longer exists or is a zombie.
func (t *Table) WaitForExit(ctx context.Context, pid int) error {
	for {
		exited, err := t.exited(ctx, pid)
		if err != nil {
			return err
		}
		if exited {
			return nil
		}
		if err := utils.Sleep(ctx, exitPollInterval); err != nil {
			return err
		}
	}
}

func (t *Table) exited(ctx context.Context, pid int) (bool, error) {
	exists, err := gopsproc.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false, errors.Wrapf(err, "failed to check process %d", pid)
	}
	if !exists {
		return true, nil
	}

	p, err := gopsproc.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return true, nil
	}
	return statusOf(p.StatusWithContext(ctx)) == process.StatusZombie, nil
}
