package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// Workspace holds the absolute work and output directories of a run.
type Workspace struct {
	WorkDir   string
	OutputDir string
}

// PrepareWorkspace creates both directories if needed. The output directory
// must be empty and must differ from the work directory. All failures are
// configuration errors.
func PrepareWorkspace(workDir, outputDir string) (Workspace, error) {
	if workDir == "" || outputDir == "" {
		return Workspace{}, domain.ConfigErrorf("both --work and --output are required")
	}
	work, err := prepareDir(workDir)
	if err != nil {
		return Workspace{}, err
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return Workspace{}, domain.ConfigError("output directory", err)
	}
	if out == work {
		return Workspace{}, domain.ConfigErrorf("cannot use the same path for the output directory and the work directory (%s)", out)
	}
	if _, err := prepareDir(out); err != nil {
		return Workspace{}, err
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		return Workspace{}, domain.ConfigError("output directory", err)
	}
	if len(entries) > 0 {
		return Workspace{}, domain.ConfigErrorf("output directory %s is not empty", out)
	}
	return Workspace{WorkDir: work, OutputDir: out}, nil
}

func prepareDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", domain.ConfigError("directory", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return "", domain.ConfigError("directory", fmt.Errorf("insufficient permissions to create %s", abs))
		}
		return "", domain.ConfigError("directory", fmt.Errorf("creating %s: %w", abs, err))
	}
	return abs, nil
}
