package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"self-improving-agent/internal/domain"
	"self-improving-agent/internal/usecase/tools"
)

var (
	ErrStart              = domain.ErrProcessStart
	ErrCommandNotAllowed  = fmt.Errorf("command %w", domain.ErrNotAllowed)
	ErrArgumentNotAllowed = fmt.Errorf("argument %w", domain.ErrNotAllowed)
)

type Runner struct {
	dir     string
	allow   []string
	deny    []string
	timeout time.Duration
}

// NewRunner returns a Runner executing in dir. Commands must be bare names
// matching one of the allow globs (none means any command, paths included);
// argument tokens
// are matched against the deny globs. A zero timeout disables it.
func NewRunner(dir string, allow, deny []string, timeout time.Duration) (*Runner, error) {
	for _, p := range append(append([]string(nil), allow...), deny...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	return &Runner{
		dir:     dir,
		allow:   allow,
		deny:    deny,
		timeout: timeout,
	}, nil
}

// Run executes command with arguments split on whitespace. Quoting is not
// supported.
func (r *Runner) Run(ctx context.Context, command, arguments string) (tools.ProcessResult, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return tools.ProcessResult{}, fmt.Errorf("%w: empty command", ErrStart)
	}

	if !r.allowed(command) {
		return tools.ProcessResult{}, fmt.Errorf("%w: %s", ErrCommandNotAllowed, command)
	}

	args := strings.Fields(arguments)
	for _, arg := range args {
		for _, p := range r.deny {
			if ok, _ := doublestar.Match(p, arg); ok {
				return tools.ProcessResult{}, fmt.Errorf("%w: %s matches %s", ErrArgumentNotAllowed, arg, p)
			}
		}
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, command, args...)
	cmd.Dir = r.dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return tools.ProcessResult{}, ctx.Err()
	}

	result := tools.ProcessResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	// ErrWaitDelay means the process exited but a leftover child still held
	// the output pipes.
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		if cmd.ProcessState != nil {
			result.ExitCode = cmd.ProcessState.ExitCode()
		}
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if runCtx.Err() != nil {
			result.Stderr += fmt.Sprintf("\nprocess timed out after %s", r.timeout)
		}
		return result, nil
	}

	return tools.ProcessResult{}, fmt.Errorf("%w: %s: %v", ErrStart, command, err)
}

func (r *Runner) allowed(command string) bool {
	if len(r.allow) == 0 {
		return true
	}

	if strings.ContainsRune(command, '/') || filepath.Base(command) != command {
		return false
	}
	for _, p := range r.allow {
		if ok, _ := doublestar.Match(p, command); ok {
			return true
		}
	}
	return false
}
