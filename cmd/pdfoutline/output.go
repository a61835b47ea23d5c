package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/brunobiangulo/pdfoutline/batch"
)

var (
	// titleStyle for bold box headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for the run summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// printSummary renders the run summary box followed by one line per failure.
func printSummary(w io.Writer, s *batch.Summary) {
	status := successStyle.Render("OK")
	switch {
	case s.Total == 0:
		status = warnStyle.Render("NO DOCUMENTS")
	case s.Skipped > 0:
		status = warnStyle.Render("INTERRUPTED")
	case s.Failed() > 0:
		status = errorStyle.Render("PARTIAL")
	}

	line1 := fmt.Sprintf("%s %d/%d succeeded  %s %d  %s %d",
		dimStyle.Render("Documents:"), s.Succeeded, s.Total,
		dimStyle.Render("Failed:"), s.Failed(),
		dimStyle.Render("Skipped:"), s.Skipped,
	)
	line2 := fmt.Sprintf("%s %d  %s %.1fs  %s",
		dimStyle.Render("Workers:"), s.Workers,
		dimStyle.Render("Elapsed:"), s.Elapsed.Seconds(),
		status,
	)
	line3 := fmt.Sprintf("%s %s", dimStyle.Render("Output:"), s.OutputDir)

	content := titleStyle.Render("Run "+s.RunID.String()) + "\n" + line1 + "\n" + line2 + "\n" + line3
	fmt.Fprintln(w, boxStyle.Render(content))

	failed := make([]batch.Result, 0, s.Failed())
	for _, r := range s.Results {
		if !r.Success() {
			failed = append(failed, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	for _, r := range failed {
		fmt.Fprintf(w, "%s %s %s %s\n",
			errorStyle.Render("✗"),
			r.Name,
			dimStyle.Render(fmt.Sprintf("[%s, %s]", r.Kind, r.Duration.Round(time.Millisecond))),
			r.Err)
	}
}
