package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/internal/config"
	"github.com/actionsum/appctl/internal/database"
	"github.com/actionsum/appctl/internal/lockfile"
	"github.com/actionsum/appctl/internal/logging"
	"github.com/actionsum/appctl/internal/tracker"
	"github.com/actionsum/appctl/pkg/app"
	"github.com/actionsum/appctl/pkg/apperr"
	"github.com/actionsum/appctl/pkg/detector"
	"github.com/actionsum/appctl/pkg/process"
)

func defaultConfigPath() string {
	return config.DefaultConfigPath()
}

// environment carries what every command needs once flags are parsed.
type environment struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *database.DB
}

func (e *environment) setup(cfgPath string, logOut io.Writer) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	e.cfg = cfg

	e.logger, err = logging.New(cfg.Log.Level, cfg.Log.JSON, logOut)
	if err != nil {
		return err
	}
	e.logger.Debug().Str("config", cfgPath).Msg("configuration loaded")
	return nil
}

func (e *environment) close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *environment) repository() (*database.Repository, error) {
	if e.db == nil {
		db, err := database.Connect(e.cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		if err := db.Initialize(); err != nil {
			db.Close()
			return nil, err
		}
		e.db = db
	}
	return database.NewRepository(e.db), nil
}

func (e *environment) processes() *process.Directory {
	return process.NewDirectory(detector.NewProcessTable(e.logger))
}

// newApp builds an Application wired to the configured lock, journal and
// version pins.
func (e *environment) newApp(exePath, title string) (*app.Application, error) {
	opts := []app.Option{
		app.WithLogger(e.logger),
		app.WithPollInterval(e.cfg.Launch.PollInterval),
		app.WithVersionReader(detector.NewMetadataReader(e.cfg.Versions)),
	}
	if e.cfg.Launch.LockDir != "" {
		opts = append(opts, app.WithLaunchLock(lockfile.New(e.cfg.Launch.LockDir)))
	}
	if e.cfg.Journal.Enabled {
		repo, err := e.repository()
		if err != nil {
			e.logger.Warn().Err(err).Msg("journal unavailable, events will not be recorded")
		} else {
			opts = append(opts, app.WithObserver(tracker.NewRecorder(repo, detector.DetectDisplayServer(), e.logger)))
		}
	}
	return app.New(exePath, title, opts...)
}

// attach binds a to a running instance. With pid 0 the newest instance
// running the same executable is used.
func (e *environment) attach(ctx context.Context, a *app.Application, pid int) error {
	matches, err := e.processes().FindByName(ctx, filepath.Base(a.Path()))
	if err != nil {
		return err
	}

	for i := len(matches) - 1; i >= 0; i-- {
		h := matches[i]
		if pid != 0 && h.PID != pid {
			continue
		}
		err := a.Attach(ctx, h)
		if apperr.IsPathMismatch(err) && pid == 0 {
			continue
		}
		return err
	}

	if pid != 0 {
		return apperr.Newf("attach", apperr.CodeNoProcessBound, "process %d is not an instance of %s", pid, a.Name()).WithPID(pid)
	}
	return apperr.Newf("attach", apperr.CodeNoProcessBound, "%s is not running", a.Name()).WithPath(a.Path())
}
