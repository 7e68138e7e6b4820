package report

import (
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitescout/internal/model"
)

// MarkdownWriter outputs results in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.ScrapeResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAbout(md, result)
	w.writeSocial(md, result)
	if result.HasEntities() {
		w.writeContact(md, result)
		w.writeTeam(md, result)
		w.writeProducts(md, result)
		w.writeNews(md, result)
	} else {
		md.Note("No contact details, team members, products or news were found.")
		md.PlainText("")
	}
	w.writePages(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.ScrapeResult) {
	title := r.CompanyName
	if title == "" {
		title = r.SeedURL
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Website", r.SeedURL},
			{"Scraped At", r.ScrapedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Scraped", strconv.Itoa(r.PageCount())},
			{"Internal Pages Found", strconv.Itoa(r.TotalPagesFound)},
		},
	})
	md.PlainText("")

	if r.Partial {
		md.Warningf("The crawl deadline was reached. Only %d page(s) were scraped.", r.PageCount())
		md.PlainText("")
	}
	if r.Description != "" {
		md.PlainText(r.Description)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeAbout(md *markdown.Markdown, r *model.ScrapeResult) {
	if r.AboutPage == nil {
		return
	}
	md.H2("About")
	md.PlainText("")
	md.Details("About page text", truncateString(*r.AboutPage, 2000))
	md.PlainText("")
}

func (w *MarkdownWriter) writeSocial(md *markdown.Markdown, r *model.ScrapeResult) {
	if len(r.SocialLinks) == 0 {
		return
	}
	md.H2("Social Links")
	md.PlainText("")

	rows := make([][]string, 0, len(r.SocialLinks))
	for _, platform := range slices.Sorted(maps.Keys(r.SocialLinks)) {
		rows = append(rows, []string{platform, r.SocialLinks[platform]})
	}
	md.Table(markdown.TableSet{Header: []string{"Platform", "URL"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeContact(md *markdown.Markdown, r *model.ScrapeResult) {
	if r.ContactInfo.IsEmpty() {
		return
	}
	md.H2("Contact")
	md.PlainText("")

	var rows [][]string
	for _, e := range r.ContactInfo.Emails {
		rows = append(rows, []string{"Email", e})
	}
	for _, p := range r.ContactInfo.Phones {
		rows = append(rows, []string{"Phone", p})
	}
	for _, a := range r.ContactInfo.Addresses {
		rows = append(rows, []string{"Address", a})
	}
	md.Table(markdown.TableSet{Header: []string{"Type", "Value"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTeam(md *markdown.Markdown, r *model.ScrapeResult) {
	if len(r.TeamInfo) == 0 {
		return
	}
	md.H2("Team")
	md.PlainText("")

	rows := make([][]string, len(r.TeamInfo))
	for i, m := range r.TeamInfo {
		rows[i] = []string{m.Name, orDash(m.Title)}
	}
	md.Table(markdown.TableSet{Header: []string{"Name", "Title"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeProducts(md *markdown.Markdown, r *model.ScrapeResult) {
	if len(r.ProductsServices) == 0 {
		return
	}
	md.H2("Products and Services")
	md.PlainText("")

	rows := make([][]string, len(r.ProductsServices))
	for i, p := range r.ProductsServices {
		rows[i] = []string{p.Title, orDash(truncateString(p.Description, 100))}
	}
	md.Table(markdown.TableSet{Header: []string{"Title", "Description"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeNews(md *markdown.Markdown, r *model.ScrapeResult) {
	if len(r.NewsData) == 0 {
		return
	}
	md.H2("News")
	md.PlainText("")

	rows := make([][]string, len(r.NewsData))
	for i, n := range r.NewsData {
		rows[i] = []string{orDash(n.Date), n.Title}
	}
	md.Table(markdown.TableSet{Header: []string{"Date", "Title"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, r *model.ScrapeResult) {
	md.H2("Pages Scraped")
	md.PlainText("")

	rows := make([][]string, len(r.PagesScraped))
	words := make(map[model.Label]int)
	var order []model.Label
	for i, p := range r.PagesScraped {
		rows[i] = []string{p.Type.String(), orDash(truncateString(p.Title, 60)), strconv.Itoa(p.WordCount), p.URL}
		if _, ok := words[p.Type]; !ok {
			order = append(order, p.Type)
		}
		words[p.Type] += p.WordCount
	}
	md.Table(markdown.TableSet{Header: []string{"Type", "Title", "Words", "URL"}, Rows: rows})
	md.PlainText("")

	if len(order) > 1 {
		w.writeWordChart(md, order, words)
	}
}

// writeWordChart writes a mermaid pie chart of words per page type.
func (w *MarkdownWriter) writeWordChart(md *markdown.Markdown, order []model.Label, words map[model.Label]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Words by Page Type"),
		piechart.WithShowData(true),
	)
	for _, l := range order {
		if words[l] > 0 {
			chart.LabelAndIntValue(l.String(), uint64(words[l]))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitescout](https://github.com/nao1215/sitescout)*")
}
