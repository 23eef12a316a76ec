package dumptool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"celldump/internal/logging"
	"celldump/internal/nativeplugin"
	"celldump/internal/services"
)

const component = "dumptool"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger; the client logs under the dumptool component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, component)
	}
}

// WithTempDir sets where plugin images are staged before the tool reads them.
func WithTempDir(dir string) Option {
	return func(c *Client) {
		c.tempDir = strings.TrimSpace(dir)
	}
}

// WithTimeout overrides the per-invocation timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// Client wraps skyrim-cell-dump CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	tempDir string
	exec    Executor
	logger  *slog.Logger
}

var _ nativeplugin.Parser = (*Client)(nil)

// New constructs a client for the given binary.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "parser binary required", nil)
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
		logger:  logging.NewComponentLogger(nil, component),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Parse stages data in a temporary file and decodes the tool's JSON graph.
func (c *Client) Parse(ctx context.Context, data []byte) (*nativeplugin.Plugin, error) {
	if c == nil {
		return nil, errNilClient("parse")
	}
	path, cleanup, err := c.stage(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	runCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	stdout, stderr, err := c.exec.Run(runCtx, c.binary, []string{path, "--format", "json"})
	if err != nil {
		return nil, c.classify(runCtx, "parse", stderr, err)
	}

	plugin, err := decode(stdout)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, c.logger).Debug("plugin parsed",
		logging.Int("size_bytes", len(data)),
		logging.Int("worlds", len(plugin.Worlds)),
		logging.Int("cells", len(plugin.Cells)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return plugin, nil
}

// Version reports the tool's --version output.
func (c *Client) Version(ctx context.Context) (string, error) {
	if c == nil {
		return "", errNilClient("version")
	}
	runCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	stdout, stderr, err := c.exec.Run(runCtx, c.binary, []string{"--version"})
	if err != nil {
		return "", c.classify(runCtx, "version", stderr, err)
	}
	version := strings.TrimSpace(string(stdout))
	if version == "" {
		return "", services.Wrap(services.ErrValidation, component, "version", "empty version output", nil)
	}
	return version, nil
}

func (c *Client) stage(data []byte) (string, func(), error) {
	file, err := os.CreateTemp(c.tempDir, "celldump-*.esp")
	if err != nil {
		return "", nil, fmt.Errorf("stage plugin: %w", err)
	}
	path := file.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("failed to remove staged plugin",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		cleanup()
		return "", nil, fmt.Errorf("stage plugin: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stage plugin: %w", err)
	}
	return path, cleanup, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) classify(runCtx context.Context, operation string, stderr []byte, err error) error {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, component, operation,
			fmt.Sprintf("%s exceeded %s", c.binary, c.timeout), err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		message := strings.TrimSpace(string(stderr))
		if message == "" {
			message = fmt.Sprintf("%s exited with status %d", c.binary, exitErr.ExitCode())
		}
		return services.Wrap(services.ErrExternalTool, component, operation, message, err)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrExternalTool, component, operation,
			fmt.Sprintf("binary %q not found", c.binary), err)
	}
	return services.Wrap(services.ErrExternalTool, component, operation, "", err)
}

// document mirrors the tool's JSON output; a missing header is rejected.
type document struct {
	Header *nativeplugin.Header `json:"header"`
	Worlds []nativeplugin.World `json:"worlds"`
	Cells  []nativeplugin.Cell  `json:"cells"`
}

func decode(output []byte) (*nativeplugin.Plugin, error) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return nil, services.Wrap(services.ErrValidation, component, "decode", "empty output", nil)
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "decode", "invalid JSON", err)
	}
	if doc.Header == nil {
		return nil, services.Wrap(services.ErrValidation, component, "decode", "missing header", nil)
	}
	plugin := &nativeplugin.Plugin{
		Header: *doc.Header,
		Worlds: doc.Worlds,
		Cells:  doc.Cells,
	}
	if plugin.Header.Masters == nil {
		plugin.Header.Masters = []string{}
	}
	return plugin, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func errNilClient(op string) error {
	return services.Wrap(services.ErrConfiguration, "dumptool", op, "client is nil", nil)
}
