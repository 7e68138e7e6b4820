package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/fetch"
	"github.com/nao1215/sitescout/internal/model"
)

const (
	homePage = `<html><head><title>Acme Rockets | Reusable launch</title>
<meta name="description" content="Acme builds reusable rockets."></head>
<body>
<nav><a href="/about">About</a> <a href="/team">Team</a> <a href="/contact">Contact</a> <a href="/gone">Old page</a></nav>
<main><h1>Acme Rockets</h1><p>We launch small satellites every month.</p></main>
<footer><a href="https://twitter.com/acmerockets">Twitter</a></footer>
</body></html>`

	aboutPage = `<html><head><title>About Acme</title></head><body>
<main><h1>Our story</h1><p>Acme was founded in 2010 to make launches affordable.</p></main>
</body></html>`

	teamPage = `<html><head><title>Team</title></head><body>
<main><h1>Leadership</h1>
<div class="team-grid">
  <div class="team-member"><h3>Jane Doe</h3><p>Chief Executive Officer</p></div>
  <div class="team-member"><h3>John Smith</h3><p>Chief Technology Officer</p></div>
</div>
</main></body></html>`

	contactPage = `<html><head><title>Contact</title></head><body>
<main><h1>Get in touch</h1>
<p>Email us at hello@acme.io or call +1 (555) 123-4567.</p>
<p>Address: 500 Market Street, San Francisco</p>
</main></body></html>`
)

// newSite serves pages by path; handlers override individual paths.
// Every other path answers 404.
func newSite(t *testing.T, pages map[string]string, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func cleanSitePages() map[string]string {
	return map[string]string{
		"/":        homePage,
		"/about":   aboutPage,
		"/team":    teamPage,
		"/contact": contactPage,
	}
}

func gone(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusGone)
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.CrawlDelay = 0
	cfg.RetryBackoff = time.Millisecond
	cfg.SaveToDB = false
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRecorder collects crawl telemetry.
type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
	pages    map[model.Label][2]int
	kept     int
	dropped  int
}

func (f *fakeRecorder) ObserveLinks(kept, dropped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kept += kept
	f.dropped += dropped
}

func (f *fakeRecorder) ObservePage(label model.Label, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages == nil {
		f.pages = make(map[model.Label][2]int)
	}
	counts := f.pages[label]
	if ok {
		counts[0]++
	} else {
		counts[1]++
	}
	f.pages[label] = counts
}

func (f *fakeRecorder) ObserveCrawl(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

func pageTypes(r *model.ScrapeResult) []string {
	var out []string
	for _, p := range r.PagesScraped {
		out = append(out, string(p.Type))
	}
	return out
}

func TestCrawlCleanSite(t *testing.T) {
	t.Parallel()

	server := newSite(t, cleanSitePages(), map[string]http.HandlerFunc{"/gone": gone})
	rec := &fakeRecorder{}

	result, err := Crawl(context.Background(), server.URL, 5,
		WithConfig(testConfig()), WithCrawlLogger(quietLogger()), WithRecorder(rec))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := strings.Join(pageTypes(result), ","); got != "main,about,team,contact" {
		t.Errorf("pages scraped = %s, want main,about,team,contact", got)
	}
	if result.PagesScraped[1].URL != server.URL+"/about" {
		t.Errorf("first content page = %s", result.PagesScraped[1].URL)
	}
	if result.TotalPagesFound != 3 {
		t.Errorf("TotalPagesFound = %d, want 3 (dead link and guessed paths excluded)", result.TotalPagesFound)
	}
	for _, p := range result.PagesScraped {
		if strings.HasSuffix(p.URL, "/gone") {
			t.Error("dead link was fetched")
		}
	}

	if result.CompanyName != "Acme Rockets" {
		t.Errorf("CompanyName = %q", result.CompanyName)
	}
	if result.Description != "Acme builds reusable rockets." {
		t.Errorf("Description = %q", result.Description)
	}
	if result.SocialLinks["twitter"] != "https://twitter.com/acmerockets" {
		t.Errorf("SocialLinks = %v", result.SocialLinks)
	}
	if result.AboutPage == nil || !strings.Contains(*result.AboutPage, "founded in 2010") {
		t.Errorf("AboutPage = %v", result.AboutPage)
	}

	if len(result.TeamInfo) != 2 || result.TeamInfo[0].Name != "Jane Doe" || result.TeamInfo[0].Title != "Chief Executive Officer" {
		t.Errorf("TeamInfo = %+v", result.TeamInfo)
	}
	if result.ContactInfo == nil || len(result.ContactInfo.Emails) != 1 || result.ContactInfo.Emails[0] != "hello@acme.io" {
		t.Errorf("ContactInfo = %+v", result.ContactInfo)
	}
	if len(result.ContactInfo.Addresses) == 0 {
		t.Error("address was not extracted")
	}

	if !strings.HasPrefix(result.RawText, "--- MAIN PAGE ---\n") {
		t.Errorf("RawText does not start with the main banner: %q", result.RawText)
	}
	aboutAt := strings.Index(result.RawText, "--- ABOUT PAGE: "+server.URL+"/about ---")
	teamAt := strings.Index(result.RawText, "--- TEAM PAGE: "+server.URL+"/team ---")
	contactAt := strings.Index(result.RawText, "--- CONTACT PAGE: "+server.URL+"/contact ---")
	if aboutAt < 0 || teamAt < aboutAt || contactAt < teamAt {
		t.Errorf("banners missing or out of order in %q", result.RawText)
	}

	if result.Partial {
		t.Error("result marked partial")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != OutcomeOK {
		t.Errorf("recorded outcomes = %v", rec.outcomes)
	}
	if rec.pages[model.LabelTeam][0] != 1 {
		t.Errorf("recorded pages = %v", rec.pages)
	}
}

func TestCrawlFailedPageDegrades(t *testing.T) {
	t.Parallel()

	var teamGets atomic.Int32
	server := newSite(t, cleanSitePages(), map[string]http.HandlerFunc{
		"/gone": gone,
		"/team": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				return
			}
			teamGets.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	result, err := Crawl(context.Background(), server.URL, 5,
		WithConfig(testConfig()), WithCrawlLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.TeamInfo != nil {
		t.Errorf("TeamInfo = %+v, want nil", result.TeamInfo)
	}
	if result.AboutPage == nil || result.ContactInfo == nil {
		t.Error("about and contact data must survive a failed team page")
	}
	if got := strings.Join(pageTypes(result), ","); got != "main,about,contact" {
		t.Errorf("pages scraped = %s, want main,about,contact", got)
	}
	if result.TotalPagesFound != 3 {
		t.Errorf("TotalPagesFound = %d, want 3", result.TotalPagesFound)
	}
	if n := teamGets.Load(); n != fetch.DefaultMaxAttempts {
		t.Errorf("team page requested %d times, want %d", n, fetch.DefaultMaxAttempts)
	}
	if strings.Contains(result.RawText, "TEAM PAGE") {
		t.Error("failed page has a raw text banner")
	}
}

func TestCrawlSeedFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			wantErr: fetch.ErrStatus,
		},
		{
			name: "not html",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"ok":true}`)
			},
			wantErr: fetch.ErrNotHTML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newSite(t, nil, map[string]http.HandlerFunc{"/": tt.handler})
			rec := &fakeRecorder{}

			result, err := Crawl(context.Background(), server.URL, 3,
				WithConfig(testConfig()), WithCrawlLogger(quietLogger()), WithRecorder(rec))
			if result != nil {
				t.Errorf("result = %+v, want nil", result)
			}
			if !errors.Is(err, ErrSeedFetch) || !errors.Is(err, tt.wantErr) {
				t.Errorf("Crawl() error = %v, want ErrSeedFetch wrapping %v", err, tt.wantErr)
			}
			if len(rec.outcomes) != 1 || rec.outcomes[0] != OutcomeFailed {
				t.Errorf("recorded outcomes = %v", rec.outcomes)
			}
		})
	}
}

func TestCrawlInvalidRequest(t *testing.T) {
	t.Parallel()

	if _, err := Crawl(context.Background(), "https://acme.io", 0, WithCrawlLogger(quietLogger())); !errors.Is(err, model.ErrInvalidBudget) {
		t.Errorf("zero budget error = %v", err)
	}
	if _, err := Crawl(context.Background(), "ftp://acme.io", 3, WithCrawlLogger(quietLogger())); !errors.Is(err, model.ErrInvalidSeed) {
		t.Errorf("ftp seed error = %v", err)
	}

	cfg := testConfig()
	cfg.KeyTypes = []string{"pricing"}
	if _, err := Crawl(context.Background(), "https://acme.io", 3, WithConfig(cfg), WithCrawlLogger(quietLogger())); err == nil {
		t.Error("unknown key type accepted")
	}
}

func TestCrawlBudgetOfOne(t *testing.T) {
	t.Parallel()

	var contentGets atomic.Int32
	pages := cleanSitePages()
	server := newSite(t, pages, map[string]http.HandlerFunc{
		"/about": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				contentGets.Add(1)
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, aboutPage)
		},
	})

	result, err := Crawl(context.Background(), server.URL, 1,
		WithConfig(testConfig()), WithCrawlLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if result.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", result.PageCount())
	}
	if contentGets.Load() != 0 {
		t.Error("content page fetched with a budget of one")
	}
	if result.TotalPagesFound != 3 {
		t.Errorf("TotalPagesFound = %d, want 3", result.TotalPagesFound)
	}
}

func TestCrawlProbesLinkPoorSite(t *testing.T) {
	t.Parallel()

	server := newSite(t, map[string]string{
		"/":         `<html><head><title>Acme</title></head><body><main><p>Hello there.</p></main></body></html>`,
		"/about-us": aboutPage,
		"/contact":  contactPage,
	}, nil)

	result, err := Crawl(context.Background(), server.URL, 5,
		WithConfig(testConfig()), WithCrawlLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.TotalPagesFound != 2 {
		t.Errorf("TotalPagesFound = %d, want 2", result.TotalPagesFound)
	}
	if got := strings.Join(pageTypes(result), ","); got != "main,about,contact" {
		t.Errorf("pages scraped = %s, want main,about,contact", got)
	}
	if result.PagesScraped[1].URL != server.URL+"/about-us" {
		t.Errorf("about page = %s", result.PagesScraped[1].URL)
	}
}

func TestCrawlDeadlineReturnsPartialResult(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := newSite(t, cleanSitePages(), map[string]http.HandlerFunc{
		"/gone": gone,
		"/team": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				cancel()
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, teamPage)
		},
	})
	rec := &fakeRecorder{}

	result, err := Crawl(ctx, server.URL, 5,
		WithConfig(testConfig()), WithCrawlLogger(quietLogger()), WithRecorder(rec))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if !result.Partial {
		t.Error("result not marked partial")
	}
	types := pageTypes(result)
	if len(types) < 2 || types[0] != "main" || types[1] != "about" {
		t.Errorf("pages scraped = %v, want main and about first", types)
	}
	for _, p := range result.PagesScraped {
		if p.Type == model.LabelContact {
			t.Error("contact page fetched after the deadline")
		}
	}
	if result.TotalPagesFound != 3 {
		t.Errorf("TotalPagesFound = %d, want 3", result.TotalPagesFound)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != OutcomePartial {
		t.Errorf("recorded outcomes = %v", rec.outcomes)
	}
}

func TestCrawlCanceledBeforeSeed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Crawl(ctx, "https://acme.io", 3, WithConfig(testConfig()), WithCrawlLogger(quietLogger()))
	if !errors.Is(err, ErrSeedFetch) || !errors.Is(err, context.Canceled) {
		t.Errorf("Crawl() error = %v, want seed error wrapping context.Canceled", err)
	}
}

func TestCrawlerSiteConfig(t *testing.T) {
	t.Parallel()

	var gotCookie atomic.Value
	pages := cleanSitePages()
	server := newSite(t, pages, map[string]http.HandlerFunc{
		"/gone": gone,
		"/": func(w http.ResponseWriter, r *http.Request) {
			gotCookie.Store(r.Header.Get("Cookie"))
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, homePage)
		},
	})

	cfg := testConfig()
	cfg.SiteConfigs = &config.File{
		Sites: map[string]config.SiteConfig{
			"127.0.0.1": {
				Cookie:         "session=abc",
				PageBudget:     2,
				KeyTypes:       []string{"contact", "about"},
				IgnorePatterns: []string{"/team"},
			},
		},
	}

	c := NewCrawler(WithConfig(cfg), WithCrawlLogger(quietLogger()))
	budget := c.BudgetFor(server.URL)
	if budget != 2 {
		t.Fatalf("BudgetFor() = %d, want 2", budget)
	}

	result, err := c.Crawl(context.Background(), server.URL, budget)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if got := strings.Join(pageTypes(result), ","); got != "main,contact" {
		t.Errorf("pages scraped = %s, want main,contact", got)
	}
	if result.TotalPagesFound != 2 {
		t.Errorf("TotalPagesFound = %d, want 2 (ignored path excluded)", result.TotalPagesFound)
	}
	if v, _ := gotCookie.Load().(string); v != "session=abc" {
		t.Errorf("Cookie header = %q", v)
	}
}
