package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// squash collapses whitespace runs to single spaces.
func squash(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// runeLen returns the number of runes in s.
func runeLen(s string) int {
	return len([]rune(s))
}

// selText returns the whitespace-collapsed text of sel.
func selText(sel *goquery.Selection) string {
	return squash(sel.Text())
}

// containers returns the div/section/article elements whose class or id
// matches the given patterns, in document order.
func containers(root *goquery.Selection, classPattern, idPattern *regexp.Regexp, extra string) *goquery.Selection {
	found := root.Find("div, section, article").FilterFunction(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && classPattern.MatchString(class) {
			return true
		}
		if id, ok := s.Attr("id"); ok && idPattern != nil && idPattern.MatchString(id) {
			return true
		}
		return false
	})
	if extra != "" {
		found = found.AddSelection(root.Find(extra))
	}
	return found
}

// innermost drops containers that wrap another container of the set.
func innermost(sel *goquery.Selection) *goquery.Selection {
	return sel.NotSelection(sel.HasSelection(sel))
}
