package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/logbridge/pkg/config"
	"github.com/jingkaihe/logbridge/pkg/logging"
)

// crashMonitorCmd is started by emit --panic-hook with the parent's crash
// output on stdin. It exits quietly when the parent exits cleanly.
var crashMonitorCmd = &cobra.Command{
	Use:    "crash-monitor",
	Short:  "Report a fatal crash of the emitting process",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runCrashMonitor,
}

func init() {
	rootCmd.AddCommand(crashMonitorCmd)
}

func runCrashMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgViper)
	if err != nil {
		return err
	}
	return logging.RunCrashMonitor(cmd.InOrStdin(), func() (logging.Sink, error) {
		return openSink(cfg, appLogger)
	})
}
