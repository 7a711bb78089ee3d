package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/appctl/internal/reporter"
	"github.com/actionsum/appctl/pkg/app"
	"github.com/actionsum/appctl/pkg/detector"
	"github.com/actionsum/appctl/pkg/utils"
	"github.com/actionsum/appctl/pkg/window"
)

func newStartCmd(env *environment) *cobra.Command {
	var (
		title   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "start <exe>",
		Short: "Start an executable and wait for its main window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				timeout = env.cfg.Launch.Timeout
			}

			a, err := env.newApp(args[0], title)
			if err != nil {
				return err
			}
			if err := a.Start(cmd.Context(), timeout); err != nil {
				if p, ok := a.Process(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Started: %s\n", p)
				}
				return err
			}

			p, _ := a.Process()
			w, _ := a.Window()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started: %s\n", p)
			fmt.Fprintf(out, "Window:  %s\n", w)
			fmt.Fprintf(out, "Version: %s\n", a.Version())
			fmt.Fprintf(out, "Session: %s\n", a.SessionID())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "text the main window title contains")
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "bound for the process start and the window wait each")
	return cmd
}

func newPsCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "ps <name>",
		Short: "List running processes whose name contains name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := env.processes().FindByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No running process matches %q\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%-8s %-20s %-19s %-6s %s\n", "PID", "Name", "Started", "Up", "Executable")
			for _, h := range matches {
				fmt.Fprintf(out, "%-8d %-20s %-19s %-6s %s\n",
					h.PID, h.Name, h.CreateTime.Format("2006-01-02 15:04:05"),
					utils.FormatRoundedUnit(time.Since(h.CreateTime)), h.ExePath)
			}
			return nil
		},
	}
}

func newWindowsCmd(env *environment) *cobra.Command {
	var (
		pid int
		all bool
	)

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List visible windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := detector.NewWindowTable(env.logger)
			if err != nil {
				return err
			}
			defer table.Close()

			dir := window.NewDirectory(table, env.logger)
			var found []window.Handle
			if pid != 0 {
				found, err = dir.ForProcess(cmd.Context(), pid)
			} else {
				found, err = dir.All(cmd.Context(), env.cfg.Windows.TitlesOnly && !all)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Display: %s\n\n", table.Name())
			fmt.Fprintf(out, "%-12s %-8s %s\n", "ID", "PID", "Title")
			for _, w := range found {
				fmt.Fprintf(out, "0x%-10x %-8d %s\n", uint64(w.ID), w.OwnerPID, w.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pid, "pid", 0, "only windows owned by this process")
	cmd.Flags().BoolVar(&all, "all", false, "include untitled windows")
	return cmd
}

func newKillCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <exe>",
		Short: "Terminate every running instance of an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.newApp(args[0], "")
			if err != nil {
				return err
			}

			exited, err := a.TerminateAllInstances(cmd.Context())
			for _, h := range exited {
				fmt.Fprintf(cmd.OutOrStdout(), "Terminated: %s\n", h)
			}
			return err
		},
	}
}

func newTerminateCmd(env *environment) *cobra.Command {
	var pid int

	cmd := &cobra.Command{
		Use:   "terminate <exe>",
		Short: "Terminate one running instance and wait for it to exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.newApp(args[0], "")
			if err != nil {
				return err
			}
			if err := env.attach(cmd.Context(), a, pid); err != nil {
				return err
			}
			p, _ := a.Process()
			if err := a.Terminate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Terminated: %s\n", p)
			return nil
		},
	}

	cmd.Flags().IntVar(&pid, "pid", 0, "instance to terminate (default newest)")
	return cmd
}

func newVersionCmd(env *environment) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "version <exe>",
		Short: "Print the version of an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.newApp(args[0], "")
			if err != nil {
				return err
			}
			v := a.Version()
			fmt.Fprintln(cmd.OutOrStdout(), v)

			if constraint == "" {
				return nil
			}
			ok, err := v.Satisfies(constraint)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("version %s does not satisfy %q", v, constraint)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&constraint, "check", "", "fail unless the version satisfies this constraint, e.g. \">= 2.0, < 3\"")
	return cmd
}

func newControlCmd(env *environment, use, short string, action func(*app.Application) error) *cobra.Command {
	var (
		title string
		pid   int
	)

	cmd := &cobra.Command{
		Use:   use + " <exe>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.newApp(args[0], title)
			if err != nil {
				return err
			}
			if err := env.attach(cmd.Context(), a, pid); err != nil {
				return err
			}
			if err := action(a); err != nil {
				return err
			}
			w, _ := a.Window()
			env.logger.Info().Str("action", use).Stringer("window", w).Msg("window updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "text the window title contains")
	cmd.Flags().IntVar(&pid, "pid", 0, "instance to control (default newest)")
	return cmd
}

func newHistoryCmd(env *environment) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "history [day|week|month]",
		Short:     "Summarize recorded launches",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			repo, err := env.repository()
			if err != nil {
				return err
			}
			rep := reporter.New(repo)

			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return err
			}

			if jsonOutput {
				out, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.FormatReportText(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}
