package cleaner

import (
	"slices"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Acme Rockets</title>
  <meta name="description" content="Acme builds reusable rockets.">
  <meta property="og:site_name" content="Acme">
</head>
<body>
  <!-- tracking pixel goes here -->
  <nav><a href="/about">About</a><a href="/team">Team</a></nav>
  <div class="cookie-banner">We use cookies to track you.</div>
  <main>
    <h1>Welcome</h1>
    <p>Acme builds rockets.</p>
  </main>
  <footer><a href="https://twitter.com/acme">Twitter</a> Footer text</footer>
  <script>var tracking = true;</script>
</body>
</html>`

func TestCleanerClean(t *testing.T) {
	t.Parallel()

	doc, err := Default().Clean([]byte(samplePage))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	t.Run("main text excludes noise", func(t *testing.T) {
		t.Parallel()
		want := "Welcome\nAcme builds rockets."
		if got := doc.MainText(); got != want {
			t.Errorf("MainText() = %q, want %q", got, want)
		}
	})

	t.Run("raw view keeps navigation and footer", func(t *testing.T) {
		t.Parallel()
		if n := doc.Raw.Find("nav a").Length(); n != 2 {
			t.Errorf("raw nav links = %d, want 2", n)
		}
		if n := doc.Raw.Find("footer a").Length(); n != 1 {
			t.Errorf("raw footer links = %d, want 1", n)
		}
	})

	t.Run("content view drops noise regions", func(t *testing.T) {
		t.Parallel()
		for _, sel := range []string{"nav", "footer", ".cookie-banner", "script"} {
			if n := doc.Content.Find(sel).Length(); n != 0 {
				t.Errorf("content %s count = %d, want 0", sel, n)
			}
		}
	})

	t.Run("comments are removed from both views", func(t *testing.T) {
		t.Parallel()
		for name, view := range map[string]string{"raw": mustHTML(t, doc.Raw.Html), "content": mustHTML(t, doc.Content.Html)} {
			if strings.Contains(view, "tracking pixel") {
				t.Errorf("%s view still contains comment", name)
			}
		}
	})

	t.Run("head metadata survives", func(t *testing.T) {
		t.Parallel()
		if got := doc.Title(); got != "Acme Rockets" {
			t.Errorf("Title() = %q", got)
		}
		if got := doc.Meta("description"); got != "Acme builds reusable rockets." {
			t.Errorf("Meta(description) = %q", got)
		}
		if got := doc.Meta("OG:SITE_NAME"); got != "Acme" {
			t.Errorf("Meta(og:site_name) = %q", got)
		}
		if got := doc.Meta("keywords"); got != "" {
			t.Errorf("Meta(keywords) = %q, want empty", got)
		}
	})
}

func mustHTML(t *testing.T, fn func() (string, error)) string {
	t.Helper()
	s, err := fn()
	if err != nil {
		t.Fatalf("Html() error = %v", err)
	}
	return s
}

func TestCleanerProtectsContentContainers(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="nav-wrapper"><main>
  <header class="post-header"><h2>Quarterly update</h2></header>
  <p>Revenue grew.</p>
</main></div>
<aside>Related links</aside>
</body></html>`

	doc, err := Default().Clean([]byte(page))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if doc.Content.Find(".nav-wrapper").Length() != 1 {
		t.Error("wrapper of a content container was removed")
	}
	if doc.Content.Find("main header").Length() != 1 {
		t.Error("header inside a content container was removed")
	}
	if doc.Content.Find("aside").Length() != 0 {
		t.Error("aside outside content containers was kept")
	}
	want := "Quarterly update\nRevenue grew."
	if got := doc.MainText(); got != want {
		t.Errorf("MainText() = %q, want %q", got, want)
	}
}

func TestCleanerKeywordMatching(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="heading">Keep heading</div>
<div class="ad-slot">Buy now</div>
<div class="ads">Sponsored stuff</div>
<div id="header-top">Top bar</div>
<div class="loader">Keep loader</div>
<div role="menubar">Menu bar</div>
</body></html>`

	doc, err := Default().Clean([]byte(page))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	text := Text(doc.Content.Find("body"))

	for _, kept := range []string{"Keep heading", "Keep loader"} {
		if !strings.Contains(text, kept) {
			t.Errorf("text %q missing %q", text, kept)
		}
	}
	for _, removed := range []string{"Buy now", "Sponsored stuff", "Top bar", "Menu bar"} {
		if strings.Contains(text, removed) {
			t.Errorf("text %q still contains %q", text, removed)
		}
	}
}

func TestCleanerCustomRules(t *testing.T) {
	t.Parallel()

	base := DefaultRules()
	rules := base.With([]string{".promo", " ", ".promo"}, []string{"Testimonial"})

	if len(base.StructuralSelectors) == len(rules.StructuralSelectors) {
		t.Fatal("With() did not add selectors")
	}
	if slices.Contains(base.StructuralSelectors, ".promo") {
		t.Error("With() modified the receiver")
	}
	if got := len(rules.StructuralSelectors) - len(base.StructuralSelectors); got != 1 {
		t.Errorf("added %d selectors, want 1", got)
	}
	if !slices.Contains(rules.NoiseKeywords, "testimonial") {
		t.Error("keyword was not lowercased and added")
	}

	page := `<html><body><div class="promo">Half price</div><section class="testimonials-list">Great!</section><p>Real content here.</p></body></html>`
	doc, err := New(rules).Clean([]byte(page))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got := doc.MainText(); got != "Real content here." {
		t.Errorf("MainText() = %q", got)
	}
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultRules().Validate(); err != nil {
		t.Errorf("DefaultRules().Validate() error = %v", err)
	}
	if err := DefaultRules().With([]string{"div[["}, nil).Validate(); err == nil {
		t.Error("Validate() accepted a broken selector")
	}
}

func TestCleanerEmptyInput(t *testing.T) {
	t.Parallel()

	doc, err := Default().Clean(nil)
	if err != nil {
		t.Fatalf("Clean(nil) error = %v", err)
	}
	if got := doc.MainText(); got != "" {
		t.Errorf("MainText() = %q, want empty", got)
	}
	if got := doc.Title(); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	doc, err := Default().Clean([]byte(`<html><body><p>first<br>second</p><div>third <b>bold</b></div><ul><li>one</li><li>two</li></ul></body></html>`))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	got := CleanText(Text(doc.Content.Find("body")))
	want := "first\nsecond\nthird bold\none\ntwo"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "collapses whitespace", in: "  lots   of \t space  ", want: "lots of space"},
		{name: "drops short lines", in: "ab\nabc", want: "abc"},
		{name: "dedupes consecutive lines", in: "Hello world\nHello world\nNext line", want: "Hello world\nNext line"},
		{name: "keeps non consecutive duplicates", in: "Alpha\nBeta\nAlpha", want: "Alpha\nBeta\nAlpha"},
		{name: "pagination", in: "Page 3 of 10\nResults", want: "Results"},
		{name: "loading", in: "Loading...\nReady", want: "Ready"},
		{name: "slide counter", in: "1/5\nSlide text", want: "Slide text"},
		{name: "copyright", in: "© 2024 Acme Inc.\nAll rights reserved.", want: ""},
		{name: "skip to content", in: "Skip to content\nReal text", want: "Real text"},
		{name: "ui words", in: "Menu\nRead more\nProduct details", want: "Product details"},
		{name: "punctuation only", in: "-- | --\nText", want: "Text"},
		{name: "social call to action", in: "Follow us on Twitter for updates", want: ""},
		{name: "cookie notice inside line", in: "We use cookies to improve your experience. Our team builds tools.", want: "Our team builds tools."},
		{name: "javascript notice", in: "Please enable JavaScript to view this site.", want: ""},
		{name: "form field", in: "Enter your email address", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
