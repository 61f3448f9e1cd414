package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jingkaihe/logbridge/internal/errx"
	"github.com/jingkaihe/logbridge/pkg/config"
	"github.com/jingkaihe/logbridge/pkg/logging"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Listen for relayed events and print them",
	Long: `Listen on the unix socket and print every event written by a producer.

Output is human-readable on a terminal and one JSON tuple per line
([elapsed_millis, message, severity, label]) otherwise; --format overrides.`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().String(config.KeyFormat, config.FormatAuto, "Output format: auto, text or json")
	cfgViper.BindPFlag(config.KeyFormat, tailCmd.Flags().Lookup(config.KeyFormat))

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgViper)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithSignal(cmd.Context())
	defer cancel()

	if err := os.Remove(cfg.Socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errx.Wrap(ErrRemoveSocket, err)
	}
	l, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return errx.Wrap(ErrListen, err)
	}
	defer os.Remove(cfg.Socket)

	appLogger.Info("listening", "socket", cfg.Socket)
	return serveListener(ctx, l, newPrinter(cmd.OutOrStdout(), cfg.Format), appLogger)
}

// serveListener accepts producers until ctx is done and copies their events
// into out. It returns nil on cancellation.
func serveListener(ctx context.Context, l net.Listener, out logging.Sink, logger *slog.Logger) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errx.Wrap(ErrAccept, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(ctx, conn, out, logger)
		}()
	}
}

// serveConn decodes one producer's stream until it disconnects or ctx ends.
func serveConn(ctx context.Context, conn net.Conn, out logging.Sink, logger *slog.Logger) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger = logger.With("conn", "conn-"+uuid.New().String()[:8])
	logger.Debug("producer connected")

	dec := logging.NewDecoder(conn)
	for {
		event, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				logger.Debug("producer disconnected")
			} else {
				logger.Warn("dropping producer", "error", err)
			}
			return
		}
		out.Send(event)
	}
}

// newPrinter picks the tail output sink. Auto selects text on a terminal.
func newPrinter(w io.Writer, format string) logging.Sink {
	switch format {
	case config.FormatText:
		return logging.NewTextWriter(w)
	case config.FormatJSON:
		return logging.NewJSONLWriter(w)
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logging.NewTextWriter(w)
	}
	return logging.NewJSONLWriter(w)
}
