package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/sitescout/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have no entries.
	showEmpty bool

	// verbose appends the raw text of every page.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose appends the raw page text to the report.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.ScrapeResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeSocial(&sb, result)
	w.writeContact(&sb, result)
	w.writeTeam(&sb, result)
	w.writeProducts(&sb, result)
	w.writeNews(&sb, result)
	w.writePages(&sb, result)
	if w.verbose {
		w.writeRawText(&sb, result)
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *model.ScrapeResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SITESCOUT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Company:        %s\n", orDash(r.CompanyName))
	fmt.Fprintf(sb, "Website:        %s\n", r.SeedURL)
	if r.Description != "" {
		fmt.Fprintf(sb, "Description:    %s\n", truncateString(r.Description, 200))
	}
	fmt.Fprintf(sb, "Scraped At:     %s\n", r.ScrapedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Scraped:  %d of %d found\n", r.PageCount(), r.TotalPagesFound)

	if r.Partial {
		sb.WriteString("Status:         DEADLINE REACHED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

// writeSection writes a section heading, or nothing when the section is
// empty and empty sections are hidden. It reports whether the caller
// should write entries.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string, n int) bool {
	if n == 0 && !w.showEmpty {
		return false
	}
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s (%d)\n", title, n)
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	if n == 0 {
		sb.WriteString("  none found\n\n")
		return false
	}
	return true
}

func (w *SimpleWriter) writeSocial(sb *strings.Builder, r *model.ScrapeResult) {
	if !w.writeSection(sb, "SOCIAL LINKS", len(r.SocialLinks)) {
		return
	}
	for _, platform := range slices.Sorted(maps.Keys(r.SocialLinks)) {
		fmt.Fprintf(sb, "  %-10s %s\n", platform+":", r.SocialLinks[platform])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeContact(sb *strings.Builder, r *model.ScrapeResult) {
	c := r.ContactInfo
	n := 0
	if c != nil {
		n = len(c.Emails) + len(c.Phones) + len(c.Addresses)
	}
	if !w.writeSection(sb, "CONTACT", n) {
		return
	}
	for _, e := range c.Emails {
		fmt.Fprintf(sb, "  Email:    %s\n", e)
	}
	for _, p := range c.Phones {
		fmt.Fprintf(sb, "  Phone:    %s\n", p)
	}
	for _, a := range c.Addresses {
		fmt.Fprintf(sb, "  Address:  %s\n", a)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTeam(sb *strings.Builder, r *model.ScrapeResult) {
	if !w.writeSection(sb, "TEAM", len(r.TeamInfo)) {
		return
	}
	for _, m := range r.TeamInfo {
		if m.Title != "" {
			fmt.Fprintf(sb, "  - %s, %s\n", m.Name, m.Title)
		} else {
			fmt.Fprintf(sb, "  - %s\n", m.Name)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeProducts(sb *strings.Builder, r *model.ScrapeResult) {
	if !w.writeSection(sb, "PRODUCTS AND SERVICES", len(r.ProductsServices)) {
		return
	}
	for _, p := range r.ProductsServices {
		fmt.Fprintf(sb, "  - %s\n", p.Title)
		if p.Description != "" {
			fmt.Fprintf(sb, "      %s\n", truncateString(p.Description, 120))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeNews(sb *strings.Builder, r *model.ScrapeResult) {
	if !w.writeSection(sb, "NEWS", len(r.NewsData)) {
		return
	}
	for _, n := range r.NewsData {
		if n.Date != "" {
			fmt.Fprintf(sb, "  - [%s] %s\n", n.Date, n.Title)
		} else {
			fmt.Fprintf(sb, "  - %s\n", n.Title)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, r *model.ScrapeResult) {
	if !w.writeSection(sb, "PAGES", len(r.PagesScraped)) {
		return
	}
	for _, p := range r.PagesScraped {
		fmt.Fprintf(sb, "  %-9s %5d words  %s\n", p.Type, p.WordCount, p.URL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRawText(sb *strings.Builder, r *model.ScrapeResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nRAW TEXT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(r.RawText)
	sb.WriteString("\n")
}
