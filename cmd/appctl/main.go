package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/actionsum/appctl/pkg/app"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "appctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	env := &environment{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Launch, find and control desktop applications",
		Long: `appctl starts an executable and waits for its main window, or attaches to an
already running instance, and then focuses, minimizes, maximizes, closes or
terminates it.

Environment Variables:
  APPCTL_CONFIG           Config file path
  APPCTL_TIMEOUT          Launch and window wait timeout in seconds
  APPCTL_POLL_INTERVAL    Poll interval in milliseconds
  APPCTL_LOCK_DIR         Directory for launch locks
  APPCTL_JOURNAL          Record lifecycle events (true/false)
  APPCTL_DB_PATH          Journal database file path
  APPCTL_LOG_LEVEL        Log level (debug, info, warn, error)`,
		Example: `  appctl start /usr/bin/gedit --title gedit
  appctl ps gedit
  appctl maximize /usr/bin/gedit --title gedit
  appctl kill /usr/bin/gedit
  appctl history week --json`,
		Version:       fmt.Sprintf("%s (commit %s, built %s) %s/%s", version, commit, date, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				cfgPath = os.Getenv("APPCTL_CONFIG")
			}
			if cfgPath == "" {
				cfgPath = defaultConfigPath()
			}
			return env.setup(cfgPath, cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.close()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/appctl/config.toml)")

	root.AddCommand(
		newStartCmd(env),
		newPsCmd(env),
		newWindowsCmd(env),
		newKillCmd(env),
		newTerminateCmd(env),
		newVersionCmd(env),
		newControlCmd(env, "focus", "Bring the main window to the front", (*app.Application).Focus),
		newControlCmd(env, "minimize", "Minimize the main window", (*app.Application).Minimize),
		newControlCmd(env, "maximize", "Maximize the main window", (*app.Application).Maximize),
		newControlCmd(env, "close", "Ask the main window to close", (*app.Application).Close),
		newHistoryCmd(env),
	)

	return root
}
