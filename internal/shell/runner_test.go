package shell

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRunner(execute func(ctx context.Context, name string, args ...string) (string, string, int, error)) *SSHRunner {
	r := NewSSHRunner("10.0.0.1", "root", 3*time.Second, 5*time.Second)
	r.execute = execute
	return r
}

func TestRunReturnsStdout(t *testing.T) {
	var gotName string
	var gotArgs []string
	r := newTestRunner(func(_ context.Context, name string, args ...string) (string, string, int, error) {
		gotName = name
		gotArgs = args
		return "hello\n", "", 0, nil
	})

	out, err := r.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello\n" {
		t.Fatalf("unexpected stdout %q", out)
	}
	if gotName != "ssh" {
		t.Fatalf("expected ssh invocation, got %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "echo hello" {
		t.Fatalf("expected command as final arg, got %v", gotArgs)
	}
	if gotArgs[len(gotArgs)-2] != "root@10.0.0.1" {
		t.Fatalf("expected user@host arg, got %v", gotArgs)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	r := newTestRunner(func(context.Context, string, ...string) (string, string, int, error) {
		return "", "iftop: command not found", 127, nil
	})

	_, err := r.Run(context.Background(), "iftop")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 127 {
		t.Fatalf("expected exit code 127, got %d", exitErr.Code)
	}
	if exitErr.Stderr != "iftop: command not found" {
		t.Fatalf("unexpected stderr %q", exitErr.Stderr)
	}
}

func TestRunTimeout(t *testing.T) {
	r := newTestRunner(func(ctx context.Context, _ string, _ ...string) (string, string, int, error) {
		<-ctx.Done()
		return "", "", 0, ctx.Err()
	})
	r.CommandTimeout = 10 * time.Millisecond

	_, err := r.Run(context.Background(), "sleep 60")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRunTransportFailure(t *testing.T) {
	spawnErr := errors.New("exec: \"ssh\": executable file not found in $PATH")
	r := newTestRunner(func(context.Context, string, ...string) (string, string, int, error) {
		return "", "", 0, spawnErr
	})

	_, err := r.Run(context.Background(), "true")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, spawnErr) {
		t.Fatalf("expected wrapped spawn error, got %v", err)
	}
}
