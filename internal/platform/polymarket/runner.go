package polymarket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultMaxOutput = 20 << 20
	maxStderrInError = 512
)

// Runner executes one CLI invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// RunnerConfig configures an ExecRunner.
type RunnerConfig struct {
	Binary    string
	Timeout   time.Duration
	MaxOutput int
}

// ExecRunner runs the polymarket CLI as a child process with JSON output
// enabled. Failures are classified onto the domain error kinds.
type ExecRunner struct {
	binary    string
	timeout   time.Duration
	maxOutput int
}

// NewExecRunner creates an ExecRunner, filling unset limits with defaults.
func NewExecRunner(cfg RunnerConfig) *ExecRunner {
	r := &ExecRunner{
		binary:    cfg.Binary,
		timeout:   cfg.Timeout,
		maxOutput: cfg.MaxOutput,
	}
	if r.binary == "" {
		r.binary = "polymarket"
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.maxOutput <= 0 {
		r.maxOutput = defaultMaxOutput
	}
	return r
}

// Binary returns the configured executable name or path.
func (r *ExecRunner) Binary() string {
	return r.binary
}

// Run executes `<binary> -o json <args...>`.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	full := append([]string{"-o", "json"}, args...)
	cmd := exec.CommandContext(ctx, r.binary, full...)

	stdout := &cappedBuffer{limit: r.maxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil && stdout.overflow:
		return nil, fmt.Errorf("polymarket: %s: output exceeds %d bytes: %w", args0(args), r.maxOutput, domain.ErrMalformedResponse)
	case err == nil:
		return stdout.Bytes(), nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("polymarket: binary not found: %s: %w", r.binary, domain.ErrSourceUnavailable)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("polymarket: %s: after %s: %w", args0(args), r.timeout, domain.ErrTimeout)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("polymarket: %s: %w", args0(args), ctx.Err())
	default:
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderrInError {
			msg = msg[:maxStderrInError]
		}
		return nil, fmt.Errorf("polymarket: %s: %w: %v: %s", args0(args), domain.ErrCommandFailed, err, msg)
	}
}

func args0(args []string) string {
	if len(args) >= 2 {
		return args[0] + " " + args[1]
	}
	if len(args) == 1 {
		return args[0]
	}
	return "<no args>"
}

// cappedBuffer discards writes past limit and records the overflow.
type cappedBuffer struct {
	bytes.Buffer
	limit    int
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.Len()
	if room <= 0 {
		b.overflow = len(p) > 0 || b.overflow
		return len(p), nil
	}
	if len(p) > room {
		b.overflow = true
		b.Buffer.Write(p[:room])
		return len(p), nil
	}
	return b.Buffer.Write(p)
}
