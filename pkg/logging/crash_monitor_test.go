package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helperRoleEnv = "LOGBRIDGE_TEST_HELPER"
	helperOutEnv  = "LOGBRIDGE_TEST_OUT"
)

// TestHelperProcess is not a real test. Subprocess tests re-run the test
// binary with helperRoleEnv set so it plays a crashing host or its monitor.
func TestHelperProcess(t *testing.T) {
	switch os.Getenv(helperRoleEnv) {
	case "crasher":
		crashWithPanicHook()
	case "monitor":
		monitorToFile()
	}
}

func helperCommand(role string) *exec.Cmd {
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), helperRoleEnv+"="+role)
	return cmd
}

type fileSink struct {
	*LineWriter
	io.Closer
}

func openOutput() (*fileSink, error) {
	f, err := os.OpenFile(os.Getenv(helperOutEnv), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileSink{LineWriter: NewTextWriter(f), Closer: f}, nil
}

func crashWithPanicHook() {
	sink, err := openOutput()
	if err != nil {
		os.Exit(3)
	}
	r := NewRelay()
	if err := r.Init(sink, WithPanicHook(helperCommand("monitor"))); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(3)
	}
	r.Log(LevelInfo, "pre", "before crash")

	// Enough parked goroutines that a full traceback overflows a pipe buffer.
	block := make(chan struct{})
	for i := 0; i < 3000; i++ {
		go func() { <-block }()
	}
	go func() { panic("boom") }()
	<-block
}

func monitorToFile() {
	err := RunCrashMonitor(os.Stdin, func() (Sink, error) { return openOutput() })
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	os.Exit(0)
}

func TestPanicHook_ReportsRealCrash(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns subprocesses")
	}
	out := filepath.Join(t.TempDir(), "events.log")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(),
		helperRoleEnv+"=crasher",
		helperOutEnv+"="+out,
		"GOTRACEBACK=all",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	require.NoError(t, ctx.Err(), "crashing process hung")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Contains(t, stderr.String(), "panic: boom", "the runtime still prints its own report")

	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(out)
		return strings.Contains(string(data), "panic occurred: panic: boom")
	}, 10*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Contains(t, lines[0], "INFO pre: before crash")
	assert.Contains(t, string(data), "ERROR panic: panic occurred: panic: boom")
	assert.Contains(t, string(data), "goroutine ", "the faulting goroutine's stack is kept")
}

func TestRunCrashMonitor_CleanExit(t *testing.T) {
	err := RunCrashMonitor(strings.NewReader(""), func() (Sink, error) {
		t.Fatal("no sink is opened when nothing crashed")
		return nil, nil
	})
	assert.NoError(t, err)
}

func TestRunCrashMonitor_ReportsCrash(t *testing.T) {
	start := time.Now().Add(-1500 * time.Millisecond)
	t.Setenv(CrashStartEnv, strconv.FormatInt(start.UnixNano(), 10))

	crash := "panic: boom\n\ngoroutine 7 [running]:\nmain.work()\n\t/src/main.go:12\n\n" +
		"goroutine 1 [chan receive]:\nmain.main()\n\t/src/main.go:20\n"
	sink := &captureSink{}
	err := RunCrashMonitor(strings.NewReader(crash), func() (Sink, error) { return sink, nil })
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, LevelError, event.Level)
	assert.Equal(t, PanicLabel, event.Label)
	assert.Equal(t, "panic occurred: panic: boom\n\ngoroutine 7 [running]:\nmain.work()\n\t/src/main.go:12", event.Message)
	assert.GreaterOrEqual(t, event.ElapsedMillis, int64(1500))
	assert.True(t, sink.Closed(), "the monitor closes its sink")
}

func TestRunCrashMonitor_DrainsLargeOutput(t *testing.T) {
	head := "fatal error: concurrent map writes\n\ngoroutine 9 [running]:\nmain.write()\n\n"
	tail := strings.Repeat("goroutine 10 [select]:\nmain.idle()\n\n", 50000)
	r := io.MultiReader(strings.NewReader(head), strings.NewReader(tail))

	sink := &captureSink{}
	require.NoError(t, RunCrashMonitor(r, func() (Sink, error) { return sink, nil }))

	n, _ := r.Read(make([]byte, 1))
	assert.Zero(t, n, "all crash output is consumed")
	require.Len(t, sink.Events(), 1)
	assert.Equal(t, "panic occurred: fatal error: concurrent map writes\n\ngoroutine 9 [running]:\nmain.write()", sink.Events()[0].Message)
}

func TestRunCrashMonitor_OpenFailure(t *testing.T) {
	err := RunCrashMonitor(strings.NewReader("panic: boom"), func() (Sink, error) {
		return nil, errors.New("connection refused")
	})
	assert.ErrorIs(t, err, ErrOpenCrashSink)
}

func TestCrashElapsedMillis(t *testing.T) {
	now := time.Date(2026, 2, 23, 14, 30, 0, 0, time.UTC)
	at := func(d time.Duration) string { return strconv.FormatInt(now.Add(-d).UnixNano(), 10) }

	assert.Equal(t, int64(250), crashElapsedMillis(at(250*time.Millisecond), now))
	assert.Equal(t, int64(0), crashElapsedMillis(at(-time.Second), now), "clamped at zero")
	assert.Equal(t, int64(0), crashElapsedMillis("", now))
	assert.Equal(t, int64(0), crashElapsedMillis("yesterday", now))
}
