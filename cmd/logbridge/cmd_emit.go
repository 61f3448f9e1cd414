package main

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/logbridge/internal/errx"
	"github.com/jingkaihe/logbridge/pkg/beats"
	"github.com/jingkaihe/logbridge/pkg/config"
	"github.com/jingkaihe/logbridge/pkg/logging"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] [message...]",
	Short: "Send events through the relay",
	Long: `Initialize the process relay with a socket (or Beats) sink and emit events.

With --stdin every input line becomes one event; otherwise the arguments form
a single message.`,
	Example: `  logbridge emit --level warn --label disk "90% full"
  tail -f app.log | logbridge emit --stdin --label app
  LOGBRIDGE_BEATS_ENDPOINT=logstash:5044 logbridge emit hello`,
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().StringP("level", "L", "info", "Event severity: error, warn, info, debug or trace")
	emitCmd.Flags().StringP(config.KeyLabel, "l", config.DefaultLabel, "Event label")
	emitCmd.Flags().Bool("stdin", false, "Emit one event per line read from stdin")
	emitCmd.Flags().Bool(config.KeyPanicHook, false, "Report fatal panics through a crash monitor process")
	emitCmd.Flags().String(config.KeyBeatsEndpoint, "", "Send to a Beats/Logstash endpoint (host:port) instead of the socket")
	emitCmd.Flags().Duration(config.KeyBeatsTimeout, config.DefaultBeatsTimeout, "Beats send timeout")

	cfgViper.BindPFlag(config.KeyLabel, emitCmd.Flags().Lookup(config.KeyLabel))
	cfgViper.BindPFlag(config.KeyPanicHook, emitCmd.Flags().Lookup(config.KeyPanicHook))
	cfgViper.BindPFlag(config.KeyBeatsEndpoint, emitCmd.Flags().Lookup(config.KeyBeatsEndpoint))
	cfgViper.BindPFlag(config.KeyBeatsTimeout, emitCmd.Flags().Lookup(config.KeyBeatsTimeout))

	rootCmd.AddCommand(emitCmd)
}

func runEmit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgViper)
	if err != nil {
		return err
	}
	levelName, _ := cmd.Flags().GetString("level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	fromStdin, _ := cmd.Flags().GetBool("stdin")
	if !fromStdin && len(args) == 0 {
		return ErrMessage
	}

	sink, err := openSink(cfg, appLogger)
	if err != nil {
		return err
	}
	relay := logging.Default()
	if err := relay.Init(sink, initOptions(cfg)...); err != nil {
		// The sink is registered regardless; carry on without the hook.
		appLogger.Warn("relay initialized without panic hook", "error", err)
	}
	defer sink.Close()
	defer relay.Recover()

	if fromStdin {
		err = emitLines(relay, cmd.InOrStdin(), level, cfg.Label)
	} else {
		relay.Log(level, cfg.Label, strings.Join(args, " "))
	}
	if err != nil {
		return err
	}
	if serr := sinkErr(sink); serr != nil {
		return errx.Wrap(ErrDeliverEvent, serr)
	}
	return nil
}

type closableSink interface {
	logging.Sink
	io.Closer
}

// openSink connects to the Beats endpoint when configured, else the socket.
func openSink(cfg *config.Config, logger *slog.Logger) (closableSink, error) {
	if cfg.BeatsEndpoint != "" {
		s, err := beats.Dial(cfg.BeatsEndpoint, cfg.BeatsTimeout, logger)
		if err != nil {
			return nil, errx.Wrap(ErrDialBeats, err)
		}
		return s, nil
	}
	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		return nil, errx.Wrap(ErrDialSocket, err)
	}
	return logging.NewStreamSink(conn, logger), nil
}

func initOptions(cfg *config.Config) []logging.InitOption {
	if cfg.PanicHook {
		return []logging.InitOption{logging.WithPanicHook(monitorCommand(cfg))}
	}
	return nil
}

// monitorCommand re-executes this binary as a crash monitor delivering to
// the same sink as cfg. It returns nil if the executable cannot be found,
// which makes hook installation fail without stopping emit.
func monitorCommand(cfg *config.Config) *exec.Cmd {
	exe, err := os.Executable()
	if err != nil {
		appLogger.Debug("cannot locate executable for crash monitor", "error", err)
		return nil
	}
	cmd := exec.Command(exe, crashMonitorCmd.Name())
	cmd.Env = append(os.Environ(),
		config.EnvName(config.KeySocket)+"="+cfg.Socket,
		config.EnvName(config.KeyBeatsEndpoint)+"="+cfg.BeatsEndpoint,
		config.EnvName(config.KeyBeatsTimeout)+"="+cfg.BeatsTimeout.String(),
	)
	cmd.Stderr = os.Stderr
	return cmd
}

func emitLines(relay *logging.Relay, r io.Reader, level logging.Level, label string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		relay.Log(level, label, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errx.Wrap(ErrReadStdin, err)
	}
	return nil
}

// sinkErr reports a latched delivery error, ignoring a clean close.
func sinkErr(sink logging.Sink) error {
	e, ok := sink.(interface{ Err() error })
	if !ok {
		return nil
	}
	err := e.Err()
	if errors.Is(err, logging.ErrSinkClosed) || errors.Is(err, beats.ErrSinkClosed) {
		return nil
	}
	return err
}
