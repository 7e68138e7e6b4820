package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// Team member name and title limits.
const (
	minNameWords   = 2
	maxNameWords   = 4
	maxNameLength  = 50
	maxMemberTitle = 100
	titleSiblings  = 3
)

var (
	teamClassPattern = regexp.MustCompile(`(?i)team|member|founder|leadership|staff|employee`)
	teamIDPattern    = regexp.MustCompile(`(?i)team|member|founder|leadership|staff`)
)

// sectionWords mark headings such as "Meet our team" that are not names.
var sectionWords = map[string]bool{
	"team": true, "leadership": true, "about": true, "contact": true, "our": true, "meet": true,
}

// Team extracts people from team-like containers. Each name is a
// heading or bold text of two to four words; the role is taken from the
// following siblings or the enclosing element.
func Team(doc *cleaner.Document) ([]model.TeamMember, error) {
	return guard("team", func() ([]model.TeamMember, error) {
		var members []model.TeamMember
		seen := make(map[string]bool)

		sections := containers(doc.Content.Selection, teamClassPattern, teamIDPattern,
			"div[data-team], section[data-team], article[data-team]")
		sections.Find("h1, h2, h3, h4, h5, h6, strong, b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			name := selText(s)
			if !looksLikeName(name) {
				return true
			}
			member := model.TeamMember{Name: name, Title: memberTitle(s, name)}
			if seen[member.Key()] {
				return true
			}
			seen[member.Key()] = true
			members = append(members, member)
			return len(members) < model.MaxEntities
		})
		return members, nil
	})
}

func looksLikeName(text string) bool {
	words := strings.Fields(text)
	if len(words) < minNameWords || len(words) > maxNameWords || runeLen(text) >= maxNameLength {
		return false
	}
	for _, w := range words {
		if sectionWords[strings.Trim(strings.ToLower(w), ".,:;!?'’")] {
			return false
		}
	}
	return true
}

// memberTitle looks for a role next to the name element: one of the
// next few p/div/span/h6 siblings, or else the first p/span/div of the
// parent.
func memberTitle(name *goquery.Selection, nameText string) string {
	var title string
	checked := 0
	name.NextAllFiltered("p, div, span, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		checked++
		if t := selText(s); t != "" && runeLen(t) < maxMemberTitle {
			title = t
			return false
		}
		return checked < titleSiblings
	})
	if title != "" {
		return title
	}

	parent := name.Parent()
	if parent.Length() == 0 {
		return ""
	}
	first := parent.Find("p, span, div").First()
	t := selText(first)
	if t == "" || strings.Contains(t, nameText) {
		return ""
	}
	return truncate(t, maxMemberTitle)
}
