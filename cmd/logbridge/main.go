package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/logbridge/pkg/config"
)

var (
	cfgFile   string
	verbose   bool
	cfgViper  = config.NewViper()
	appLogger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "logbridge",
	Short: "Relay timestamped log events from a background process to one listener",
	Long: `logbridge relays log events from a background process to a single observer.

  logbridge tail                 listen on the socket and print incoming events
  logbridge emit -l net hello    send one event through the relay`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		appLogger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return config.ReadFile(cfgViper, cfgFile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")
	flags.String(config.KeySocket, config.DefaultSocket(), "Unix socket shared by tail and emit")

	cfgViper.BindPFlag(config.KeySocket, flags.Lookup(config.KeySocket))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
