package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	registered bool

	calls []string
	err   error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isRegistered(context.Context) bool { return f.registered }
func (f *fakeExec) Register(context.Context) error {
	f.registered = true
	return f.record("register")
}
func (f *fakeExec) Upload(context.Context) error { return f.record("upload") }
func (f *fakeExec) Enqueue(_ context.Context, path string) error {
	return f.record("enqueue " + path)
}
func (f *fakeExec) Notify(_ context.Context, kind string) error {
	return f.record("notify " + kind)
}
func (f *fakeExec) Token(_ context.Context, token string) error {
	return f.record("token " + token)
}
func (f *fakeExec) Messages(_ context.Context, args []string) error {
	return f.record(strings.TrimSpace("messages " + strings.Join(args, " ")))
}
func (f *fakeExec) Status(context.Context) error { return f.record("status") }
func (f *fakeExec) Log(context.Context) error    { return f.record("log") }

// capturePrintln collects user-facing output for the duration of the test.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"register",
		"",
		"upload",
		"enqueue /tmp/a.csv",
		"notify test",
		"notify survey",
		"token abc",
		"messages",
		"messages rm 42",
		"status",
		"log",
		"exit",
		"upload",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"register", "upload", "enqueue /tmp/a.csv", "notify test", "notify survey",
		"token abc", "messages", "messages rm 42", "status", "log",
	}, exec.calls)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := capturePrintln(t)

	input := strings.NewReader("enqueue\nnotify\nnotify later\ntoken\nfoobar\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Usage: enqueue <path>")
	assert.Contains(t, joined, "Usage: notify test|survey")
	assert.Contains(t, joined, "Usage: token <fcm token>")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_HelpDependsOnRegistration(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" },
		bufio.NewScanner(strings.NewReader("help\nregister\nhelp\n")))

	assert.Contains(t, *out, helpUnregistered)
	assert.Contains(t, *out, helpRegistered)
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" },
		bufio.NewScanner(strings.NewReader("upload\nstatus\n")))

	assert.Equal(t, []string{"upload", "status"}, exec.calls)
	assert.Contains(t, *out, "Error: boom")
}
