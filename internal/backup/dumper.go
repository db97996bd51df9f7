package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"hearth/internal/config"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, env []string, stdout io.Writer) error
}

// Option configures the dumper.
type Option func(*Dumper)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *Dumper) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// Dumper wraps mysqldump invocations.
type Dumper struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewDumper constructs a mysqldump client.
func NewDumper(binary string, timeoutSeconds int, opts ...Option) (*Dumper, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mysqldump binary required")
	}
	dumper := &Dumper{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(dumper)
	}
	return dumper, nil
}

// Dump streams a dump of the configured database to w. The password is
// passed through the child environment, never on the argument list.
func (d *Dumper) Dump(ctx context.Context, mysqlCfg config.MySQL, extraArgs []string, w io.Writer) error {
	if strings.TrimSpace(mysqlCfg.Database) == "" {
		return errors.New("database name required")
	}

	dumpCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		dumpCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := []string{
		"--host", mysqlCfg.Host,
		"--port", strconv.Itoa(mysqlCfg.Port),
		"--user", mysqlCfg.User,
	}
	args = append(args, extraArgs...)
	args = append(args, mysqlCfg.Database)

	var env []string
	if mysqlCfg.Password != "" {
		env = append(env, "MYSQL_PWD="+mysqlCfg.Password)
	}

	if err := d.exec.Run(dumpCtx, d.binary, args, env, w); err != nil {
		if errors.Is(dumpCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("mysqldump timed out after %s: %w", d.timeout, err)
		}
		return fmt.Errorf("mysqldump %s@%s: %w", mysqlCfg.User, net.JoinHostPort(mysqlCfg.Host, strconv.Itoa(mysqlCfg.Port)), err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, env []string, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = stdout
	cmd.Env = append(os.Environ(), env...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
