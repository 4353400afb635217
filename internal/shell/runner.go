package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes one command on the remote gateway and returns its stdout.
// Implementations must bound every call with a timeout; failures come back
// as ErrTimeout, *ExitError or *TransportError.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

const stderrTailLimit = 256

// SSHRunner runs commands on the gateway through the system ssh client in
// batch mode. Authentication is key-based; an interactive prompt would make
// ssh fail fast instead of hanging the poll.
type SSHRunner struct {
	Host           string
	User           string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration

	// execute is swapped out in tests.
	execute func(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

func NewSSHRunner(host, user string, connectTimeout, commandTimeout time.Duration) *SSHRunner {
	return &SSHRunner{
		Host:           host,
		User:           user,
		ConnectTimeout: connectTimeout,
		CommandTimeout: commandTimeout,
		execute:        runProcess,
	}
}

func (r *SSHRunner) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.CommandTimeout)
	defer cancel()

	args := []string{
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(r.ConnectTimeout.Seconds())),
		"-o", "BatchMode=yes",
		r.User + "@" + r.Host,
		command,
	}
	stdout, stderr, exitCode, err := r.execute(ctx, "ssh", args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &TransportError{Err: err}
	}
	if exitCode != 0 {
		return "", &ExitError{Code: exitCode, Stderr: stderrTail(stderr)}
	}
	return stdout, nil
}

func runProcess(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
		}
		return "", "", 0, err
	}
	return stdout.String(), stderr.String(), 0, nil
}

func stderrTail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if len(trimmed) <= stderrTailLimit {
		return trimmed
	}
	return trimmed[len(trimmed)-stderrTailLimit:]
}
