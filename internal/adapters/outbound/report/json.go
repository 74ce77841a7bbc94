package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// WriteJSON writes the structured summary. The bytes depend only on the
// results, so unchanged inputs give an identical file.
func WriteJSON(r *domain.Report, outputDir string) error {
	return writeFile(filepath.Join(outputDir, SummaryJSON), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r.Summarize())
	})
}

// ReadJSON loads a summary written by WriteJSON.
func ReadJSON(outputDir string) (domain.Summary, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, SummaryJSON))
	if err != nil {
		return domain.Summary{}, err
	}
	var s domain.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}
