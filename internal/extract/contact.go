package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// Phone numbers must carry this many digits.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// maxAddressLength bounds a single address match.
const maxAddressLength = 200

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// placeholderEmailDomains are template addresses never worth reporting.
var placeholderEmailDomains = []string{"@example.com", "@domain.com", "@yoursite.com"}

// imageSuffixes catch retina asset names such as logo@2x.png.
var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

var phonePatterns = []*regexp.Regexp{
	// North American style, optional country code and area code parens.
	regexp.MustCompile(`\+?1?[-. ]?\(?[0-9]{3}\)?[-. ]?[0-9]{3}[-. ]?[0-9]{4}`),
	// International groups.
	regexp.MustCompile(`\+?[0-9]{1,3}[-. ]?[0-9]{1,4}[-. ]?[0-9]{1,4}[-. ]?[0-9]{1,9}`),
}

// isoDate matches dates the international phone pattern would accept.
var isoDate = regexp.MustCompile(`^[0-9]{4}[-./][0-9]{1,2}[-./][0-9]{1,2}$`)

const streetSuffix = `(?:street|st|avenue|ave|road|rd|drive|dr|boulevard|blvd|lane|ln)`

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\baddress[:\s]+([^.\n]*\b` + streetSuffix + `\b[^.\n]*)`),
	regexp.MustCompile(`(?i)\b(?:located at|headquarters|office)[:\s]+([^.\n]*\b(?:street|st|avenue|ave|road|rd)\b[^.\n]*)`),
	regexp.MustCompile(`(?i)\b([0-9]+ +[a-z][a-z ]*?\b` + streetSuffix + `\b[^.\n]*)`),
}

// Contact extracts emails, phone numbers and postal addresses from the
// text of doc. mailto: and tel: links from the raw view are included.
// It returns nil when nothing is found.
func Contact(doc *cleaner.Document) (*model.ContactInfo, error) {
	return guard("contact", func() (*model.ContactInfo, error) {
		text := cleaner.Text(doc.Content.Find("body"))
		mailto, tel := contactLinks(doc.Raw.Selection)

		info := &model.ContactInfo{
			Emails:    findEmails(text, mailto),
			Phones:    findPhones(text, tel),
			Addresses: findAddresses(text),
		}
		if info.IsEmpty() {
			return nil, nil
		}
		return info, nil
	})
}

// contactLinks returns the targets of mailto: and tel: links.
func contactLinks(root *goquery.Selection) (emails, phones []string) {
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			addr, _, _ := strings.Cut(href[len("mailto:"):], "?")
			if v, err := url.PathUnescape(addr); err == nil {
				addr = v
			}
			emails = append(emails, strings.TrimSpace(addr))
		case strings.HasPrefix(lower, "tel:"):
			num := href[len("tel:"):]
			if v, err := url.PathUnescape(num); err == nil {
				num = v
			}
			phones = append(phones, strings.TrimSpace(num))
		}
	})
	return emails, phones
}

func findEmails(text string, extra []string) []string {
	var out []string
	seen := make(map[string]bool)
	candidates := append(emailPattern.FindAllString(text, -1), extra...)
	for _, email := range candidates {
		key := strings.ToLower(email)
		if seen[key] || !validEmail(key) {
			continue
		}
		seen[key] = true
		out = append(out, email)
		if len(out) == model.MaxEmails {
			break
		}
	}
	return out
}

func validEmail(lower string) bool {
	if !emailPattern.MatchString(lower) {
		return false
	}
	for _, d := range placeholderEmailDomains {
		if strings.Contains(lower, d) {
			return false
		}
	}
	for _, s := range imageSuffixes {
		if strings.HasSuffix(lower, s) {
			return false
		}
	}
	return true
}

func findPhones(text string, extra []string) []string {
	var out []string
	var seenDigits []string

	add := func(phone string) bool {
		phone = strings.TrimSpace(phone)
		d := digits(phone)
		if isoDate.MatchString(phone) || len(d) < minPhoneDigits || len(d) > maxPhoneDigits {
			return false
		}
		for _, s := range seenDigits {
			if strings.Contains(s, d) {
				return false
			}
		}
		seenDigits = append(seenDigits, d)
		out = append(out, phone)
		return len(out) == model.MaxPhones
	}

	for _, phone := range extra {
		if add(phone) {
			return out
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for _, p := range phonePatterns {
			for _, phone := range p.FindAllString(line, -1) {
				if add(phone) {
					return out
				}
			}
		}
	}
	return out
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findAddresses(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range addressPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			addr := truncate(squash(strings.Trim(m[1], " ,;:")), maxAddressLength)
			key := strings.ToLower(addr)
			if addr == "" || seen[key] || coveredBy(out, key) {
				continue
			}
			seen[key] = true
			out = append(out, addr)
			if len(out) == model.MaxAddresses {
				return out
			}
		}
	}
	return out
}

// coveredBy reports whether key is part of an address already kept.
func coveredBy(kept []string, key string) bool {
	for _, k := range kept {
		if strings.Contains(strings.ToLower(k), key) {
			return true
		}
	}
	return false
}
