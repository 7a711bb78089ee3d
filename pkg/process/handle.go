// Package process finds, launches and terminates OS processes by executable name.
package process

import (
	"context"
	"fmt"
	"time"
)

// Status is the coarse run state of a process at query time.
type Status int

const (
	StatusUnknown Status = iota
	StatusRunning
	StatusStopped
	StatusZombie
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusZombie:
		return "zombie"
	default:
		return "unknown"
	}
}

// Handle is a snapshot of one process table entry. It is never updated;
// query the table again for fresh state.
type Handle struct {
	PID        int
	Name       string
	ExePath    string
	CreateTime time.Time
	Status     Status
}

func (h Handle) String() string {
	return fmt.Sprintf("Process (name='%s', pid=%d, exe='%s', started='%s')",
		h.Name, h.PID, h.ExePath, h.CreateTime.Format(time.RFC3339))
}

// Table is the OS process table capability.
type Table interface {
	// Enumerate returns every process visible to the caller
	Enumerate(ctx context.Context) ([]Handle, error)

	// Terminate requests termination of pid. A pid that no longer exists is not an error.
	Terminate(ctx context.Context, pid int) error

	// WaitForExit blocks until pid has exited or ctx is done
	WaitForExit(ctx context.Context, pid int) error
}

// Starter issues the OS request that starts an executable. It does not
// report the new process id.
type Starter interface {
	Start(path string) error
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(path string) error

func (f StarterFunc) Start(path string) error { return f(path) }
