package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"actled/internal/config"
	"actled/internal/daemonctl"
	"actled/internal/daemonrun"
	"actled/internal/faults"
	"actled/internal/led"
)

type runFlags struct {
	detach  bool
	refresh int
	pin     int
	source  string
	sink    string
	readyFD int
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the indicator until interrupted",
		Long: "Poll the kernel I/O counters and switch the indicator on while they change.\n" +
			"The indicator is switched off and the LED trigger restored on exit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg, flags); err != nil {
				return err
			}

			// A child started by --detach never detaches again.
			if flags.readyFD == 0 && (flags.detach || cfg.Daemon.Detach) {
				return launchDetached(cmd, ctx, flags)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				ReadyFD:  flags.readyFD,
				Detached: flags.readyFD > 0,
			})
		},
	}

	cmd.Flags().BoolVarP(&flags.detach, "detach", "d", false, "Detach from the terminal and run in the background")
	cmd.Flags().IntVarP(&flags.refresh, "refresh", "r", config.DefaultRefreshMS, fmt.Sprintf("Polling interval in milliseconds (minimum %d)", config.MinRefreshMS))
	cmd.Flags().IntVarP(&flags.pin, "pin", "p", config.DiskPin, fmt.Sprintf("GPIO pin for the gpio sink, 0-%d (default %d for disk, %d for net)", led.MaxWiringPiPin, config.DiskPin, config.NetPin))
	cmd.Flags().StringVar(&flags.source, "source", "", "Counter source (disk or net)")
	cmd.Flags().StringVar(&flags.sink, "sink", "", "Output sink (brightness or gpio)")
	cmd.Flags().IntVar(&flags.readyFD, strings.TrimPrefix(daemonctl.ReadyFlag, "--"), 0, "Descriptor for the readiness report")
	_ = cmd.Flags().MarkHidden(strings.TrimPrefix(daemonctl.ReadyFlag, "--"))

	return cmd
}

// applyRunFlags overrides cfg with the flags given on the command line and
// revalidates it.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	changed := cmd.Flags().Changed
	if changed("source") {
		cfg.Source.Kind = strings.ToLower(strings.TrimSpace(flags.source))
	}
	if changed("sink") {
		cfg.Sink.Kind = strings.ToLower(strings.TrimSpace(flags.sink))
	}
	if changed("refresh") {
		cfg.Daemon.RefreshMS = flags.refresh
	}
	if changed("pin") {
		if flags.pin < 0 || flags.pin > led.MaxWiringPiPin {
			return faults.Wrap(faults.ErrConfiguration, "cli", "pin", fmt.Sprintf("pin number must be between 0 and %d", led.MaxWiringPiPin), nil)
		}
		cfg.GPIO.Pin = flags.pin
	}
	return cfg.Validate()
}

func launchDetached(cmd *cobra.Command, ctx *commandContext, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	executable, err := os.Executable()
	if err != nil {
		return faults.Wrap(faults.ErrResource, "cli", "detach", "resolve executable", err)
	}

	pid, err := daemonctl.Launch(cmd.Context(), executable, childArgs(cmd, ctx, flags), cfg.ReadyTimeout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "actled started in the background (pid %d)\n", pid)
	return nil
}

// childArgs rebuilds the run invocation for the detached child without
// --detach.
func childArgs(cmd *cobra.Command, ctx *commandContext, flags runFlags) []string {
	args := []string{"run"}
	if path := ctx.configFlagValue(); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		args = append(args, "--config", path)
	}
	if ctx.logLevelFlag != nil && strings.TrimSpace(*ctx.logLevelFlag) != "" {
		args = append(args, "--log-level", strings.TrimSpace(*ctx.logLevelFlag))
	}
	changed := cmd.Flags().Changed
	if changed("refresh") {
		args = append(args, "--refresh", strconv.Itoa(flags.refresh))
	}
	if changed("pin") {
		args = append(args, "--pin", strconv.Itoa(flags.pin))
	}
	if changed("source") {
		args = append(args, "--source", flags.source)
	}
	if changed("sink") {
		args = append(args, "--sink", flags.sink)
	}
	return args
}
