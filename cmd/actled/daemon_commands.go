package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"actled/internal/config"
	"actled/internal/daemonctl"
	"actled/internal/led"
	"actled/internal/preflight"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show instance state and preflight checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.Probe(cfg)
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout())
			writeStatus(out, cfg, ctx.configSource(), status)
			fmt.Fprintln(out.w)
			out.header("preflight")
			out.checks(preflight.RunAll(cfg))
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			status, err := daemonctl.Stop(cmd.Context(), cfg, cfg.StopTimeout())
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(stdout, "actled is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Stopped actled (pid %d)\n", status.PID)
			return nil
		},
	}

	return []*cobra.Command{statusCmd, stopCmd}
}

func writeStatus(out printer, cfg *config.Config, configSource string, status daemonctl.Status) {
	out.header("actled status")
	if status.Running {
		out.line("Instance", toneOK, fmt.Sprintf("running (pid %d)", status.PID))
	} else {
		out.line("Instance", toneWarn, "not running")
	}
	out.line("Config", toneInfo, configSource)
	out.line("Source", toneInfo, fmt.Sprintf("%s (%s)", titleCase(string(cfg.SourceKind())), cfg.SourcePath()))
	out.line("Sink", toneInfo, describeSink(cfg))
	out.line("Refresh", toneInfo, cfg.RefreshInterval().String())
	out.line("Lock", toneInfo, fmt.Sprintf("%s (held: %s)", status.LockPath, yesNo(status.Running)))
}

func describeSink(cfg *config.Config) string {
	if cfg.SinkKind() == led.KindGPIO {
		line, err := cfg.GPIOLine()
		if err != nil {
			return fmt.Sprintf("GPIO pin %d (%v)", cfg.GPIOPin(), err)
		}
		return fmt.Sprintf("GPIO pin %d (line %d, %s)", cfg.GPIOPin(), line, cfg.GPIO.Scheme)
	}
	return fmt.Sprintf("LED %s (%s)", cfg.LEDName(), cfg.Brightness.Path)
}
