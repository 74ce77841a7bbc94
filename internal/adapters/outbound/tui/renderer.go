package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	infoStyle     = lipgloss.NewStyle().Foreground(info)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport renders the end-of-run summary printed on stdout.
func RenderReport(r *domain.Report, stats domain.RunStats, outputDir string) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("bst-license-checker")
	subtitle := dimStyle.Render("License Check Summary")
	if r.Project != "" {
		subtitle = dimStyle.Render(r.Project)
	}
	counts := fmt.Sprintf("%s   %s   %s",
		passStyle.Render(fmt.Sprintf("%d cached", stats.CacheHits)),
		infoStyle.Render(fmt.Sprintf("%d scanned", stats.Scanned)),
		failureStyle(stats.Failed).Render(fmt.Sprintf("%d failed", stats.Failed)),
	)
	elements := titleStyle.Render(fmt.Sprintf("%d elements", len(r.Results)))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + elements + "\n" + counts))
	b.WriteString("\n")

	renderFailures(&b, r)
	renderViolations(&b, r)

	b.WriteString("\n")
	b.WriteString("  " + separatorLine + "\n")
	b.WriteString("  " + hintStyle.Render("Report written to "+outputDir) + "\n")
	return b.String()
}

func renderFailures(b *strings.Builder, r *domain.Report) {
	n := r.Failures()
	if n == 0 {
		b.WriteString("\n  " + passStyle.Render("Every element was scanned.") + "\n")
		return
	}
	fmt.Fprintf(b, "\n  %s %s\n", sectionStyle.Render("Not scanned"), dimStyle.Render(fmt.Sprintf("(%d)", n)))
	for _, res := range r.Results {
		if !res.Status.Failed() {
			continue
		}
		fmt.Fprintf(b, "    %s %s  %s\n", failStyle.Render("●"), res.Ref, warnStyle.Render(string(res.Status)))
		if res.Diagnostic != "" {
			fmt.Fprintf(b, "         %s\n", faintStyle.Render(res.Diagnostic))
		}
	}
}

func renderViolations(b *strings.Builder, r *domain.Report) {
	if len(r.Violations) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s %s\n", sectionStyle.Render("Denied licenses"), dimStyle.Render(fmt.Sprintf("(%d elements)", len(r.Violations))))
	for _, res := range r.Results {
		denied := r.Violations[res.Ref]
		if len(denied) == 0 {
			continue
		}
		fmt.Fprintf(b, "    %s %s  %s\n", errorTagStyle.Render("deny"), res.Ref, dimStyle.Render(strings.Join(denied, ", ")))
	}
}

func failureStyle(n int) lipgloss.Style {
	if n > 0 {
		return failStyle
	}
	return dimStyle
}

// RenderHistory formats the run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 16 {
			ts = strings.Replace(ts[:16], "T", " ", 1)
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			titleStyle.Render(fmt.Sprintf("%3d elements", e.Elements)),
			passStyle.Render(fmt.Sprintf("%d cached", e.CacheHits)),
			infoStyle.Render(fmt.Sprintf("%d scanned", e.Scanned)),
		)
		if e.Failed > 0 {
			line += "  " + failStyle.Render(fmt.Sprintf("%d failed", e.Failed))
		}
		if e.Violations > 0 {
			line += "  " + errorTagStyle.Render(fmt.Sprintf("%d denied", e.Violations))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderCacheEntries lists the cached outcomes of one element.
func RenderCacheEntries(ref domain.ElementRef, entries []domain.CacheEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render(fmt.Sprintf("No cache entries for %s.", ref)) + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n\n", titleStyle.Render(string(ref)), dimStyle.Render(fmt.Sprintf("(%d keys)", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(&b, "    %s %s  %s\n", passStyle.Render("●"), faintStyle.Render(string(e.Key)), dimStyle.Render(string(e.Status)))
		if len(e.Licenses) > 0 {
			fmt.Fprintf(&b, "         %s\n", strings.Join(e.Licenses, ", "))
		}
	}
	return b.String()
}
