// Package bst drives the BuildStream command line.
package bst

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

// ShowFormat is the --format string passed to `bst show`.
const ShowFormat = "%{name}||%{full-key}||%{state}"

const (
	maxStderr    = 4 * 1024
	closeTimeout = time.Minute
)

// CommandError is a bst invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("bst %s exited with status %d", e.Args[0], e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

// Client implements domain.BuildGraph on top of the bst executable.
type Client struct {
	binary     string
	timeout    time.Duration
	projectDir string
	version    Version
	cmds       commandSet
	log        logger.Logger
}

// New checks that bst is installed, detects its version and returns a client
// running commands from projectDir. Every failure is a configuration error.
func New(ctx context.Context, cfg domain.BSTConfig, projectDir string, log logger.Logger) (*Client, error) {
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		return nil, domain.ConfigErrorf("BuildStream does not seem to be installed (%s not found)", cfg.Binary)
	}
	c := &Client{
		binary:     cfg.Binary,
		timeout:    cfg.Timeout,
		projectDir: projectDir,
		log:        logger.Named(log, "bst"),
	}
	out, err := c.run(ctx, "--version")
	if err != nil {
		return nil, domain.ConfigError("bst --version", err)
	}
	v, err := ParseVersion(string(out))
	if err != nil {
		return nil, domain.ConfigError("bst --version", err)
	}
	cmds, err := commandsFor(v)
	if err != nil {
		return nil, domain.ConfigError("bst --version", err)
	}
	c.version, c.cmds = v, cmds
	c.log.Debug().Str("version", v.String()).Bool("workspace_checkout", cmds.workspace).Msg("detected BuildStream")
	return c, nil
}

// Version returns the detected BuildStream version.
func (c *Client) Version() Version { return c.version }

// Show lists roots and their dependencies with full keys and states.
func (c *Client) Show(ctx context.Context, roots []domain.ElementRef, kind domain.DependencyKind) ([]domain.Element, error) {
	args := []string{"show", "--deps", string(kind), "--format", ShowFormat}
	args = append(args, refStrings(roots)...)
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseShow(out)
}

// ParseShow parses `bst show` output produced with ShowFormat. Names may
// contain "||", so fields are split from the right.
func ParseShow(out []byte) ([]domain.Element, error) {
	var elements []domain.Element
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rest, state, ok := cutLast(line, "||")
		if !ok {
			return nil, fmt.Errorf("unexpected bst show line %q", line)
		}
		name, key, ok := cutLast(rest, "||")
		if !ok || name == "" {
			return nil, fmt.Errorf("unexpected bst show line %q", line)
		}
		elements = append(elements, domain.Element{
			Ref:   domain.ElementRef(name),
			Key:   domain.ContentKey(strings.TrimSpace(key)),
			State: domain.ElementState(strings.TrimSpace(state)),
		})
	}
	return elements, nil
}

// Track updates the pinned source references of refs in one invocation.
func (c *Client) Track(ctx context.Context, refs []domain.ElementRef) error {
	if len(refs) == 0 {
		return nil
	}
	_, err := c.run(ctx, append(append([]string(nil), c.cmds.track...), refStrings(refs)...)...)
	return err
}

// Fetch downloads sources for refs, continuing past individual failures. The
// result for each element shows up in the state column of the next Show.
func (c *Client) Fetch(ctx context.Context, refs []domain.ElementRef) error {
	if len(refs) == 0 {
		return nil
	}
	_, err := c.run(ctx, append(append([]string(nil), c.cmds.fetch...), refStrings(refs)...)...)
	return err
}

// Checkout materializes the sources of ref under dir, which must exist and be
// empty. It returns domain.ErrNoSources when nothing was checked out.
func (c *Client) Checkout(ctx context.Context, ref domain.ElementRef, dir string) (string, error) {
	if c.cmds.workspace {
		return c.checkoutWorkspace(ctx, ref, dir)
	}
	if _, err := c.run(ctx, "source", "checkout", "--deps", "none", string(ref), "--directory", dir); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading checkout: %w", err)
	}
	if len(entries) == 0 {
		return "", domain.ErrNoSources
	}
	// source checkout creates one directory named after the element.
	return filepath.Join(dir, entries[0].Name()), nil
}

// checkoutWorkspace uses `workspace open` on BuildStream 1.x and always
// closes the workspace again, even when opening failed half way.
func (c *Client) checkoutWorkspace(ctx context.Context, ref domain.ElementRef, dir string) (string, error) {
	_, openErr := c.run(ctx, "--colors", "workspace", "open", string(ref), dir)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if _, err := c.run(closeCtx, "workspace", "close", string(ref)); err != nil {
		c.log.Debug().Err(err).Str("element", string(ref)).Msg("workspace close failed")
	}
	if openErr != nil {
		return "", openErr
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading checkout: %w", err)
	}
	if len(entries) == 0 {
		return "", domain.ErrNoSources
	}
	return dir, nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var stdout bytes.Buffer
	stderr := &tailBuffer{max: maxStderr}
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = c.projectDir
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	c.log.Trace().Strs("args", args).Dur("took", time.Since(start)).Err(err).Msg("bst finished")
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && c.timeout > 0 {
			return nil, fmt.Errorf("bst %s timed out after %s", args[0], c.timeout)
		}
		return nil, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return nil, fmt.Errorf("running bst %s: %w", args[0], err)
}

func refStrings(refs []domain.ElementRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}

func cutLast(s, sep string) (before, after string, ok bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// tailBuffer keeps the last max bytes written; bst prints progress first and
// the error summary last.
type tailBuffer struct {
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string { return string(b.buf) }

var _ domain.BuildGraph = (*Client)(nil)
