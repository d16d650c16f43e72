// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintState outputs a summary of a wizard snapshot.
func (p *Printer) PrintState(st *types.AppState) {
	if st == nil {
		return
	}

	var sb strings.Builder

	name := strings.TrimSpace(st.PersonalDetails.Get("firstName") + " " + st.PersonalDetails.Get("lastName"))
	if name == "" {
		name = "(no name)"
	}
	sb.WriteString(fmt.Sprintf("Name:      %s\n", name))
	if role := st.PersonalDetails.Get("jobTitle"); role != "" {
		sb.WriteString(fmt.Sprintf("Role:      %s\n", role))
	}
	sb.WriteString(fmt.Sprintf("Step:      %d (%s)\n", int(st.CurrentStep), st.CurrentStep))

	template := string(st.SelectedTemplate)
	if template == "" {
		template = "(none)"
	} else {
		template += fmt.Sprintf(" [%s]", st.SelectedTemplate.Layout())
	}
	sb.WriteString(fmt.Sprintf("Template:  %s\n", template))
	sb.WriteString(fmt.Sprintf("Photo:     %v\n", st.HasPhoto()))
	sb.WriteString("\n")

	sb.WriteString("Entries:\n")
	for _, c := range types.Collections {
		records := st.Experiences.Records(c)
		if len(records) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  • %-11s %d\n", c, len(records)))
	}
	if st.Experiences.ReferencesOnRequest {
		sb.WriteString("  References available on request\n")
	}

	p.printBox("WIZARD STATE", sb.String())
}

// PrintDocument outputs the section outline of a rendered document.
func (p *Printer) PrintDocument(doc *document.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template:  %s (%s)\n", doc.Template, doc.Layout))
	sb.WriteString("\n")

	titles := doc.SectionTitles()
	if len(titles) == 0 {
		sb.WriteString("No sections\n")
	}
	for i, title := range titles {
		if i >= maxItemsToShow*2 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(titles)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, title))
	}

	p.printBox("DOCUMENT OUTLINE", sb.String())
}

// PrintExport outputs the result of an export.
func (p *Printer) PrintExport(file *export.File, path string, elapsed time.Duration) {
	if file == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:      %s\n", file.Name))
	if path != "" {
		sb.WriteString(fmt.Sprintf("Path:      %s\n", path))
	}
	sb.WriteString(fmt.Sprintf("Size:      %s\n", formatBytes(len(file.Data))))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s\n", elapsed.Round(time.Millisecond)))

	p.printBox("EXPORT COMPLETE", sb.String())
}

// PrintProgress outputs one export progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event export.ProgressEvent) {
	fmt.Fprintf(p.out, "  → %-9s %s\n", event.Stage, event.Message)
}

// PrintValidationErrors outputs snapshot validation failures.
func (p *Printer) PrintValidationErrors(source string, problems []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:    %s\n", source))
	sb.WriteString("\n")
	if len(problems) == 0 {
		sb.WriteString("✓ Snapshot is valid\n")
	}
	count := min(len(problems), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  ✗ %s\n", problems[i]))
	}
	if len(problems) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(problems)-maxItemsToShow))
	}

	p.printBox("SNAPSHOT VALIDATION", sb.String())
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
