package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// minLineLength is the shortest line kept by CleanText.
const minLineLength = 3

// blockElements start a new line in extracted text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true, "button": true,
}

// Text returns the visible text of sel with one line per block element.
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "br":
				b.WriteByte('\n')
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// Phrase families removed from inside lines.
var phrasePatterns = []*regexp.Regexp{
	// navigation
	regexp.MustCompile(`(?i)\b(skip to (main )?content|skip navigation|back to top|toggle navigation|main menu|open menu|close menu|you are here:?)`),
	// privacy and consent
	regexp.MustCompile(`(?i)\b(we use cookies[^.]*\.?|accept (all )?cookies|cookie (policy|settings|preferences)|privacy policy|terms (of service|of use|and conditions)|manage consent)`),
	// social call to action
	regexp.MustCompile(`(?i)\b((follow|like|find|connect with) us on|share (this|on))\b.*`),
	// advertising and calls to action
	regexp.MustCompile(`(?i)\b(advertisement|sponsored content|(sign up|subscribe) (for|to) (our|the) newsletter)`),
	// form fields
	regexp.MustCompile(`(?i)\b((enter|type) your (email( address)?|name|message)|required fields?|this field is required)`),
	// technical and error messages
	regexp.MustCompile(`(?i)\b((please )?enable javascript[^.]*\.?|javascript is (required|disabled)|your browser does not support[^.]*\.?|something went wrong)`),
}

// uiLinePatterns drop a whole line.
var uiLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page \d+ of \d+$`),
	regexp.MustCompile(`(?i)^loading(\.\.\.|…)?$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`(?i)^(©|\(c\)|copyright\b).*`),
	regexp.MustCompile(`(?i)^all rights reserved\.?$`),
	regexp.MustCompile(`(?i)^(menu|search|close|open|toggle|submit|cancel|next|previous|prev|back|more|read more|learn more|show more|see all|view all|home|login|log in|sign in|sign up)$`),
	regexp.MustCompile(`^[\p{P}\p{S}\s]+$`),
}

var spaceRun = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)

// CleanText removes line-level noise from extracted text. Each line is
// whitespace-collapsed, noise phrases are stripped, and lines that end
// up shorter than three characters or consist only of UI chrome are
// dropped. Consecutive duplicate lines are collapsed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		for _, p := range phrasePatterns {
			line = p.ReplaceAllString(line, "")
		}
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if len([]rune(line)) < minLineLength || isUILine(line) {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == line {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isUILine(line string) bool {
	for _, p := range uiLinePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
