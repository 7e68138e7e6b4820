package classify

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/sitescout/internal/model"
)

// PriorityOptions tunes Prioritize.
type PriorityOptions struct {
	// KeyTypes is the order in which labels get a reserved slot.
	// Empty means model.DefaultKeyTypes. Careers pages are only
	// selected when careers is listed here.
	KeyTypes []model.Label
}

// Validate rejects unknown and repeated key types.
func (o PriorityOptions) Validate() error {
	seen := make(map[model.Label]bool, len(o.KeyTypes))
	for _, l := range o.KeyTypes {
		if !slices.Contains(model.AllLabels(), l) {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: %q", ErrDuplicateKeyType, l)
		}
		seen[l] = true
	}
	return nil
}

func (o PriorityOptions) keyTypes() []model.Label {
	if len(o.KeyTypes) == 0 {
		return model.DefaultKeyTypes()
	}
	return o.KeyTypes
}

// Prioritize selects at most budget-1 pages to fetch; one slot belongs
// to the seed. Each key type first gets the earliest candidate carrying
// its label. Remaining slots go to the other candidates, shallowest
// path first and then by URL. Careers pages are never chosen unless
// careers is a configured key type.
func Prioritize(classified []model.PageClassification, budget int, opts PriorityOptions) []model.PrioritizedPage {
	slots := budget - 1
	if slots <= 0 || len(classified) == 0 {
		return nil
	}

	keyTypes := opts.keyTypes()
	careersAllowed := slices.Contains(keyTypes, model.LabelCareers)

	selected := make([]bool, len(classified))
	pages := make([]model.PrioritizedPage, 0, min(slots, len(classified)))

	add := func(i int, label model.Label) {
		selected[i] = true
		pages = append(pages, model.PrioritizedPage{
			URL:     classified[i].URL(),
			Label:   label,
			Rank:    len(pages),
			Context: classified[i].Candidate.Context(),
		})
	}

	for _, label := range keyTypes {
		if len(pages) == slots {
			return pages
		}
		for i, c := range classified {
			if !selected[i] && c.Has(label) {
				add(i, label)
				break
			}
		}
	}

	var rest []int
	for i, c := range classified {
		if selected[i] || (!careersAllowed && c.Has(model.LabelCareers)) {
			continue
		}
		rest = append(rest, i)
	}
	slices.SortStableFunc(rest, func(a, b int) int {
		ua, ub := classified[a].URL(), classified[b].URL()
		if d := cmp.Compare(segmentCount(ua), segmentCount(ub)); d != 0 {
			return d
		}
		return strings.Compare(ua, ub)
	})

	for _, i := range rest {
		if len(pages) == slots {
			break
		}
		add(i, classified[i].PrimaryLabel())
	}
	return pages
}

// segmentCount returns the number of non-empty path segments.
func segmentCount(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			n++
		}
	}
	return n
}
