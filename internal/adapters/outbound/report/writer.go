// Package report writes a finished run into the output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
	"go.uber.org/multierr"
)

// File names inside the output directory.
const (
	SummaryJSON = "license_check_summary.json"
	SummaryHTML = "license_check_summary.html"
	SummarySPDX = "license_check_summary.spdx.json"
)

// Options selects the optional outputs.
type Options struct {
	SPDX bool
}

// Writer writes the payload copies and every summary format. It implements
// domain.ReportWriter.
type Writer struct {
	formats []format
	log     logger.Logger
}

type format struct {
	name  string
	write func(r *domain.Report, outputDir string) error
}

// New builds the writer for opts.
func New(opts Options, log logger.Logger) *Writer {
	w := &Writer{log: logger.Named(log, "report")}
	w.formats = []format{
		{"payloads", CopyPayloads},
		{SummaryJSON, WriteJSON},
		{SummaryHTML, WriteHTML},
	}
	if opts.SPDX {
		w.formats = append(w.formats, format{SummarySPDX, WriteSPDX})
	}
	return w
}

// Write stops at the first failing format; a partial report is still a
// failed run.
func (w *Writer) Write(r *domain.Report, outputDir string) error {
	if got, want := len(r.Summarize().DependencyList), len(r.Results); got != want {
		return domain.OutputError("summary", fmt.Errorf("summary has %d records for %d results", got, want))
	}
	for _, f := range w.formats {
		if err := f.write(r, outputDir); err != nil {
			return domain.OutputError(f.name, err)
		}
		w.log.Debug().Str("format", f.name).Msg("wrote report output")
	}
	return nil
}

// writeFile creates path and lets fill stream into it, reporting close errors.
func writeFile(path string, fill func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return fill(f)
}

// CopyPayloads copies every result's raw scanner output next to the
// summaries, under the same base name it has in the work directory.
func CopyPayloads(r *domain.Report, outputDir string) error {
	for _, res := range r.Results {
		if res.OutputPath == "" {
			continue
		}
		data, err := os.ReadFile(res.OutputPath)
		if err != nil {
			return fmt.Errorf("reading payload for %s: %w", res.Ref, err)
		}
		dst := filepath.Join(outputDir, res.OutputFilename())
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("copying payload for %s: %w", res.Ref, err)
		}
	}
	return nil
}

var _ domain.ReportWriter = (*Writer)(nil)
