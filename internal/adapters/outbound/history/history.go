package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// File is the history location relative to the work directory.
const File = "history/runs.json"

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the work directory's run history.
func (h *FileHistory) Save(workDir string, entry domain.RunEntry) error {
	entries, err := h.Load(workDir)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	fp := filepath.Join(workDir, File)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fp)
}

// Load returns every recorded run, oldest first. A missing file is empty history.
func (h *FileHistory) Load(workDir string) ([]domain.RunEntry, error) {
	fp := filepath.Join(workDir, File)

	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", File, err)
	}

	return entries, nil
}

var _ domain.RunHistory = (*FileHistory)(nil)
