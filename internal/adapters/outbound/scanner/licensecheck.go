// Package scanner runs the licensecheck tool against a staged source tree.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

var skipDirs = map[string]bool{
	".git": true,
	".svn": true,
	".bzr": true,
	".hg":  true,
}

const maxStderr = 4 * 1024

// Licensecheck implements domain.LicenseScanner by shelling out to
// `licensecheck -mr .` inside the staged directory.
type Licensecheck struct {
	binary  string
	args    []string
	timeout time.Duration
	invalid []string
	log     logger.Logger
}

// New builds a scanner from the tool config. invalid lists the values that
// mean "no license detected".
func New(cfg domain.ScannerConfig, invalid []string, log logger.Logger) *Licensecheck {
	return &Licensecheck{
		binary:  cfg.Binary,
		args:    cfg.Args,
		timeout: cfg.Timeout,
		invalid: invalid,
		log:     logger.Named(log, "scanner"),
	}
}

// Check reports a configuration error when the tool is not on PATH.
func (s *Licensecheck) Check() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return domain.ConfigErrorf("licensecheck does not seem to be installed (%s not found)", s.binary)
	}
	return nil
}

// Scan runs the tool with dir as working directory. Any normal exit is parsed,
// even a non-zero one: licensecheck exits 1 on files it cannot classify.
// Crashes, timeouts and unreadable trees come back as StatusScanFailed.
// The error is non-nil only when ctx was cancelled.
func (s *Licensecheck) Scan(ctx context.Context, dir string) (domain.ScanOutcome, error) {
	files, err := countFiles(dir)
	if err != nil {
		return failed("source tree is not readable: %v", pathless(err)), nil
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	stderr := &limitedBuffer{max: maxStderr}
	cmd := exec.CommandContext(runCtx, s.binary, s.args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return domain.ScanOutcome{}, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return failed("%s timed out after %s", filepath.Base(s.binary), s.timeout), nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(runErr, &exitErr) && exitErr.ExitCode() == -1:
		return failed("%s crashed: %v %s", filepath.Base(s.binary), exitErr, stderr.Trimmed()), nil
	case errors.As(runErr, &exitErr):
		s.log.Debug().Int("exit_code", exitErr.ExitCode()).Str("stderr", stderr.Trimmed()).Msg("scanner exited non-zero, parsing output")
	case runErr != nil:
		return failed("running %s: %v", filepath.Base(s.binary), runErr), nil
	}

	raw := stdout.Bytes()
	if raw == nil {
		raw = []byte{}
	}
	licenses := Normalize(raw, s.invalid)
	s.log.Debug().Int("files", files).Int("licenses", len(licenses)).Dur("took", time.Since(start)).Msg("scan finished")
	return domain.ScanOutcome{
		Status:   domain.StatusCheckoutSucceeded,
		Licenses: licenses,
		Raw:      raw,
		Files:    files,
	}, nil
}

func failed(format string, args ...any) domain.ScanOutcome {
	return domain.ScanOutcome{
		Status:     domain.StatusScanFailed,
		Diagnostic: strings.TrimSpace(fmt.Sprintf(format, args...)),
		Licenses:   []string{},
	}
}

// countFiles walks the tree the way licensecheck -r does, skipping VCS metadata.
func countFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		n++
		return nil
	})
	return n, err
}

// pathless drops the scratch path from fs errors; diagnostics end up in the
// report and must not differ between runs.
func pathless(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) Trimmed() string { return strings.TrimSpace(b.buf.String()) }

var _ domain.LicenseScanner = (*Licensecheck)(nil)

