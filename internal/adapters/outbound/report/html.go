package report

import (
	_ "embed"
	"html/template"
	"os"
	"path/filepath"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

//go:embed summary.html.tmpl
var summaryTemplate string

var htmlTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"explain": explain,
	"denied":  func(r *domain.Report, ref domain.ElementRef) []string { return r.Violations[ref] },
}).Parse(summaryTemplate))

// explain describes a result that carries no license list.
func explain(s domain.CheckoutStatus) string {
	switch s {
	case domain.StatusNoSources:
		return "The element has no sources (for example a stack or filter element). This is the expected result for such elements."
	case domain.StatusCheckoutFailed:
		return "BuildStream was unable to check out the sources of this element. This usually means there is an error in the element."
	case domain.StatusFetchFailed:
		return "BuildStream was unable to fetch the sources of this element. There may be a mistake in a source URL, or an external resource may not be available right now."
	case domain.StatusNotTracked:
		return "The element has no pinned source reference. Track the element, or re-run with --track."
	case domain.StatusTrackFailed:
		return "BuildStream could not update the source reference of this element, so the pinned sources may be out of date. The element was not scanned."
	case domain.StatusScanFailed:
		return "The sources were checked out but the license scanner could not process them."
	default:
		return ""
	}
}

type htmlView struct {
	Title  string
	Report *domain.Report
}

// WriteHTML renders the human-readable summary.
func WriteHTML(r *domain.Report, outputDir string) error {
	title := "BuildStream license checker - Results Summary"
	if r.Project != "" {
		title = r.Project + " - License Check Summary"
	}
	return writeFile(filepath.Join(outputDir, SummaryHTML), func(f *os.File) error {
		return htmlTemplate.Execute(f, htmlView{Title: title, Report: r})
	})
}
