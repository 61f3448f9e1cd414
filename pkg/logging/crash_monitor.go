package logging

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// CrashStartEnv passes the relay's start instant, in Unix nanoseconds, to the
// crash monitor so its event continues the monitored process's elapsed time.
const CrashStartEnv = "LOGBRIDGE_CRASH_START"

// maxCrashOutput bounds how much crash output the monitor keeps. The rest is
// read and discarded so the crashing process never blocks on the pipe.
const maxCrashOutput = 64 << 10

// Replaced in tests.
var (
	newPipe            = os.Pipe
	startMonitor       = (*exec.Cmd).Start
	installCrashOutput = func(f *os.File) error {
		// The runtime keeps its own duplicate of the descriptor.
		defer f.Close()
		return debug.SetCrashOutput(f, debug.CrashOptions{})
	}
)

// installPanicHook starts monitor with the read end of a pipe as its stdin
// and points the runtime's crash output at the write end. A fatal panic then
// streams its report to a separate process that is still able to run code
// and deliver the event.
func (r *Relay) installPanicHook(monitor *exec.Cmd) error {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	if r.hookInstalled {
		return nil
	}
	if monitor == nil {
		return errx.With(ErrInstallHook, ": no crash monitor command")
	}

	pr, pw, err := newPipe()
	if err != nil {
		return errx.Wrap(ErrInstallHook, err)
	}

	env := monitor.Env
	if env == nil {
		env = os.Environ()
	}
	if start, ok := r.Start(); ok {
		env = append(env, fmt.Sprintf("%s=%d", CrashStartEnv, start.UnixNano()))
	}
	monitor.Env = env
	monitor.Stdin = pr

	if err := startMonitor(monitor); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return errx.Wrap(ErrInstallHook, err)
	}
	// The monitor holds its own copy of the read end.
	_ = pr.Close()
	// Reaps the monitor once it sees EOF, whichever way that happens.
	go func() { _ = monitor.Wait() }()

	if err := installCrashOutput(pw); err != nil {
		return errx.Wrap(ErrInstallHook, err)
	}
	r.hookInstalled = true
	return nil
}

// RunCrashMonitor is the body of a crash monitor process. It reads the
// monitored process's crash output from r until EOF; if any arrived, it opens
// a sink and sends one error event labelled PanicLabel, then closes the sink
// if it implements io.Closer. A process that exits without crashing leaves r
// empty, and RunCrashMonitor returns nil without opening a sink.
func RunCrashMonitor(r io.Reader, open func() (Sink, error)) error {
	report, err := readCrashOutput(r)
	if err != nil {
		return errx.Wrap(ErrReadCrashOutput, err)
	}
	if report == "" {
		return nil
	}

	sink, err := open()
	if err != nil {
		return errx.Wrap(ErrOpenCrashSink, err)
	}
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}
	elapsed := crashElapsedMillis(os.Getenv(CrashStartEnv), time.Now())
	sink.Send(NewEvent(LevelError, PanicLabel, panicMessage(report), elapsed))
	return nil
}

// readCrashOutput drains r and returns the panic header plus the faulting
// goroutine's stack. Other goroutines' stacks are dropped.
func readCrashOutput(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxCrashOutput))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}

	blocks := strings.SplitN(strings.TrimSpace(string(data)), "\n\n", 3)
	if len(blocks) > 2 {
		blocks = blocks[:2]
	}
	return strings.Join(blocks, "\n\n"), nil
}

func crashElapsedMillis(startNanos string, now time.Time) int64 {
	n, err := strconv.ParseInt(startNanos, 10, 64)
	if err != nil {
		return 0
	}
	ms := now.Sub(time.Unix(0, n)).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
