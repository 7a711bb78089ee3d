package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/process"
	"github.com/actionsum/appctl/pkg/version"
	"github.com/actionsum/appctl/pkg/window"
)

// LaunchLock serializes launches of one executable across callers.
type LaunchLock interface {
	Acquire(ctx context.Context, exePath string) (release func() error, err error)
}

type options struct {
	logger       zerolog.Logger
	processTable process.Table
	starter      process.Starter
	windowTable  window.Table
	metadata     version.MetadataReader
	pollInterval time.Duration
	lock         LaunchLock
	observer     Observer
}

// Option configures an Application.
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProcessTable replaces the OS process table.
func WithProcessTable(t process.Table) Option {
	return func(o *options) { o.processTable = t }
}

// WithStarter replaces the OS process start request.
func WithStarter(s process.Starter) Option {
	return func(o *options) { o.starter = s }
}

// WithWindowTable replaces the OS window table.
func WithWindowTable(t window.Table) Option {
	return func(o *options) { o.windowTable = t }
}

// WithVersionReader replaces the executable version metadata source.
func WithVersionReader(m version.MetadataReader) Option {
	return func(o *options) { o.metadata = m }
}

// WithPollInterval sets how often the process and window tables are polled
// while starting.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithLaunchLock holds lock for the duration of each launch.
func WithLaunchLock(lock LaunchLock) Option {
	return func(o *options) { o.lock = lock }
}

// WithObserver receives lifecycle events.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}
