// Package app binds an executable to the process and main window it creates,
// and controls that pair.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
	"github.com/actionsum/appctl/pkg/detector"
	"github.com/actionsum/appctl/pkg/process"
	"github.com/actionsum/appctl/pkg/version"
	"github.com/actionsum/appctl/pkg/window"
)

// Application is an executable together with the process and windows it
// is bound to. An Application is not safe for concurrent use.
type Application struct {
	path    string
	name    string
	title   string
	version *version.SemanticVersion

	procs    *process.Directory
	launcher *process.Launcher
	windows  *window.Directory
	waiter   *window.Waiter
	// set when no window table could be opened; window operations return it
	windowErr error

	lock     LaunchLock
	observer Observer
	logger   zerolog.Logger

	sessionID string
	proc      *process.Handle
	wins      []window.Handle
}

// New binds the executable at path. windowTitle is the text the main window
// title must contain. No process is started.
//
// It fails with FileNotFound when path does not exist and with
// VersionUnavailable when the executable carries no readable version.
func New(path, windowTitle string, opts ...Option) (*Application, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &apperr.Error{Op: "new", Code: apperr.CodeFileNotFound, Path: path, Msg: "file not found", Err: err}
	}
	if info.IsDir() {
		return nil, apperr.New("new", apperr.CodeFileNotFound, "path is a directory").WithPath(path)
	}

	logger := o.logger.With().Str("exe", filepath.Base(path)).Logger()

	if o.metadata == nil {
		o.metadata = detector.NewMetadataReader(nil)
	}
	v, err := version.NewReader(o.metadata, logger).Read(path)
	if err != nil {
		return nil, err
	}

	if o.processTable == nil {
		o.processTable = detector.NewProcessTable(logger)
	}
	if o.starter == nil {
		o.starter = process.NewExecStarter(logger)
	}

	a := &Application{
		path:     path,
		name:     filepath.Base(path),
		title:    windowTitle,
		version:  v,
		procs:    process.NewDirectory(o.processTable),
		lock:     o.lock,
		observer: o.observer,
		logger:   logger,
	}
	a.launcher = process.NewLauncher(a.procs, o.starter, o.pollInterval, logger)

	if o.windowTable == nil {
		o.windowTable, a.windowErr = detector.NewWindowTable(logger)
	}
	if o.windowTable != nil {
		a.windows = window.NewDirectory(o.windowTable, logger)
		a.waiter = window.NewWaiter(a.windows, a.launcher.PollInterval(), logger)
	}

	return a, nil
}

// Start launches the executable and waits for its main window, each step
// bounded by timeout. The process stays bound when only the window wait fails,
// including when no window table is available.
func (a *Application) Start(ctx context.Context, timeout time.Duration) error {
	a.sessionID = uuid.NewString()
	a.proc = nil
	a.wins = nil

	if a.lock != nil {
		release, err := a.lock.Acquire(ctx, a.path)
		if err != nil {
			err = &apperr.Error{Op: "start", Code: apperr.CodeLaunchFailed, Path: a.path, Msg: "launch lock", Err: err}
			a.emit(Event{Kind: EventFailed, Err: err})
			return err
		}
		defer func() {
			if err := release(); err != nil {
				a.logger.Warn().Err(err).Msg("failed to release launch lock")
			}
		}()
	}

	started := time.Now()
	h, err := a.launcher.Launch(ctx, a.path, timeout)
	if err != nil {
		a.emit(Event{Kind: EventFailed, Elapsed: time.Since(started), Err: err})
		return err
	}
	a.proc = &h
	a.emit(Event{Kind: EventLaunched, PID: h.PID, Elapsed: time.Since(started)})

	if a.waiter == nil {
		err := &apperr.Error{Op: "wait window", Code: apperr.CodePlatform, Path: a.path, PID: h.PID, Msg: "no window table", Err: a.windowErr}
		a.emit(Event{Kind: EventFailed, PID: h.PID, Err: err})
		return err
	}

	started = time.Now()
	w, err := a.waiter.Wait(ctx, h.PID, a.title, timeout)
	if err != nil {
		a.emit(Event{Kind: EventFailed, PID: h.PID, Elapsed: time.Since(started), Err: err})
		return err
	}
	a.wins = []window.Handle{w}
	a.emit(Event{Kind: EventWindowFound, PID: h.PID, WindowID: uint64(w.ID), WindowTitle: w.Title, Elapsed: time.Since(started)})

	return nil
}

// Attach binds an already running process of this executable together with
// its windows whose title contains the configured text. Nothing changes if
// the process runs a different executable.
func (a *Application) Attach(ctx context.Context, h process.Handle) error {
	if !samePath(h.ExePath, a.path) {
		return apperr.Newf("attach", apperr.CodePathMismatch,
			"process executable %s differs from application executable", h.ExePath).WithPath(a.path).WithPID(h.PID)
	}
	if a.windows == nil {
		return a.windowErr
	}

	found, err := a.windows.Find(ctx, window.Filter{OwnerPID: h.PID, TitleContains: a.title})
	if err != nil {
		return err
	}

	a.sessionID = uuid.NewString()
	a.proc = &h
	a.wins = found

	ev := Event{Kind: EventAttached, PID: h.PID}
	if len(found) > 0 {
		ev.WindowID, ev.WindowTitle = uint64(found[0].ID), found[0].Title
	}
	a.emit(ev)
	a.logger.Info().Int("pid", h.PID).Int("windows", len(found)).Msg("attached to process")
	return nil
}

// Terminate asks the bound process to exit and blocks until it has. There
// is no timeout; cancel ctx to stop waiting.
func (a *Application) Terminate(ctx context.Context) error {
	if a.proc == nil {
		return apperr.New("terminate", apperr.CodeNoProcessBound, "no process bound").WithPath(a.path)
	}
	h := *a.proc
	table := a.procs.Table()

	started := time.Now()
	if err := table.Terminate(ctx, h.PID); err != nil {
		err = &apperr.Error{Op: "terminate", Code: apperr.CodeTerminationFailed, Path: a.path, PID: h.PID, Err: err}
		a.emit(Event{Kind: EventFailed, PID: h.PID, Err: err})
		return err
	}
	if err := table.WaitForExit(ctx, h.PID); err != nil {
		return err
	}

	a.proc = nil
	a.wins = nil
	a.emit(Event{Kind: EventTerminated, PID: h.PID, Elapsed: time.Since(started)})
	a.logger.Info().Int("pid", h.PID).Msg("application terminated")
	return nil
}

// TerminateAllInstances terminates every running process named after the
// executable. All termination requests are sent before any exit is awaited.
// A failure on one process does not stop the others; the failures are
// joined into the returned error and the processes that exited are returned.
func (a *Application) TerminateAllInstances(ctx context.Context) ([]process.Handle, error) {
	matches, err := a.procs.FindByName(ctx, a.name)
	if err != nil {
		return nil, err
	}
	table := a.procs.Table()

	var errs []error
	requested := make([]process.Handle, 0, len(matches))
	for _, h := range matches {
		if err := table.Terminate(ctx, h.PID); err != nil {
			a.logger.Warn().Int("pid", h.PID).Err(err).Msg("termination request failed")
			errs = append(errs, &apperr.Error{Op: "terminate", Code: apperr.CodeTerminationFailed, Path: h.ExePath, PID: h.PID, Err: err})
			continue
		}
		requested = append(requested, h)
	}

	exited := make([]process.Handle, 0, len(requested))
	for _, h := range requested {
		if err := table.WaitForExit(ctx, h.PID); err != nil {
			errs = append(errs, &apperr.Error{Op: "terminate", Code: apperr.CodeTerminationFailed, Path: h.ExePath, PID: h.PID, Err: err})
			continue
		}
		exited = append(exited, h)
		if a.proc != nil && a.proc.PID == h.PID {
			a.proc = nil
			a.wins = nil
		}
		a.emit(Event{Kind: EventTerminated, PID: h.PID})
	}

	a.logger.Info().Int("found", len(matches)).Int("terminated", len(exited)).Msg("terminated all instances")
	return exited, errors.Join(errs...)
}

// IsRunning reports whether the bound process is still alive.
func (a *Application) IsRunning(ctx context.Context) (bool, error) {
	if a.proc == nil {
		return false, nil
	}
	_, ok, err := a.procs.Find(ctx, a.proc.PID)
	return ok, err
}

func (a *Application) primary(op string) (window.Handle, error) {
	if len(a.wins) == 0 {
		return window.Handle{}, apperr.New(op, apperr.CodeNoWindowBound, "no window bound").WithPath(a.path)
	}
	return a.wins[0], nil
}

func (a *Application) control(op string, fn func(window.Handle) error) error {
	w, err := a.primary(op)
	if err != nil {
		return err
	}
	return fn(w)
}

// Focus brings the main window to the front.
func (a *Application) Focus() error {
	return a.control("focus", func(w window.Handle) error { return a.windows.Focus(w) })
}

// Minimize minimizes the main window.
func (a *Application) Minimize() error {
	return a.control("minimize", func(w window.Handle) error { return a.windows.Minimize(w) })
}

// Maximize maximizes the main window.
func (a *Application) Maximize() error {
	return a.control("maximize", func(w window.Handle) error { return a.windows.Maximize(w) })
}

// Close asks the main window to close.
func (a *Application) Close() error {
	return a.control("close", func(w window.Handle) error { return a.windows.Close(w) })
}

// IsForeground reports whether the main window is the active one.
func (a *Application) IsForeground() (bool, error) {
	w, err := a.primary("is foreground")
	if err != nil {
		return false, err
	}
	return a.windows.IsForeground(w)
}

func (a *Application) Name() string { return a.name }

func (a *Application) Path() string { return a.path }

func (a *Application) WindowTitle() string { return a.title }

func (a *Application) Version() *version.SemanticVersion { return a.version }

// SessionID identifies the current launch or attach cycle, "" before the first.
func (a *Application) SessionID() string { return a.sessionID }

// Process returns the bound process.
func (a *Application) Process() (process.Handle, bool) {
	if a.proc == nil {
		return process.Handle{}, false
	}
	return *a.proc, true
}

// Window returns the main window, the lowest id among the bound windows.
func (a *Application) Window() (window.Handle, bool) {
	if len(a.wins) == 0 {
		return window.Handle{}, false
	}
	return a.wins[0], true
}

// Windows returns all bound windows.
func (a *Application) Windows() []window.Handle {
	out := make([]window.Handle, len(a.wins))
	copy(out, a.wins)
	return out
}

func (a *Application) String() string {
	started := "-"
	if a.proc != nil && !a.proc.CreateTime.IsZero() {
		started = a.proc.CreateTime.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Application (name='%s', exe='%s', started='%s')", a.name, a.path, started)
}

func (a *Application) emit(e Event) {
	if a.observer == nil {
		return
	}
	e.Time = time.Now()
	e.SessionID = a.sessionID
	e.App = a.name
	e.Path = a.path
	e.Version = a.version.String()
	a.observer.Observe(e)
}
