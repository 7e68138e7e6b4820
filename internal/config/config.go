package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitescout"

	// DefaultUserAgent is the fixed identity header sent with every request.
	// A desktop browser string keeps sites from serving bot-specific pages.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultSeedTimeout bounds the fetch of the seed page.
	DefaultSeedTimeout = 20 * time.Second

	// DefaultPageTimeout bounds the fetch of every prioritized page.
	DefaultPageTimeout = 15 * time.Second

	// DefaultExistsTimeout bounds a single link existence check.
	DefaultExistsTimeout = 4 * time.Second

	// DefaultMaxAttempts is the number of tries for a request that keeps
	// failing with 5xx or 429.
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the first retry delay. It doubles per attempt.
	DefaultRetryBackoff = 500 * time.Millisecond

	// DefaultCrawlDelay is the politeness delay between content page fetches.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultPageBudget is the total number of pages fetched per crawl,
	// seed included.
	DefaultPageBudget = 5

	// MaxPageBudget is the largest page budget accepted from flags, the
	// config file or API clients.
	MaxPageBudget = 50

	// DefaultVerifyConcurrency is the number of parallel existence checks.
	DefaultVerifyConcurrency = 6

	// MinVerifyConcurrency and MaxVerifyConcurrency bound VerifyConcurrency.
	MinVerifyConcurrency = 1
	MaxVerifyConcurrency = 8

	// DefaultBatchSize is the number of seeds crawled concurrently.
	DefaultBatchSize = 2

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultServeAddr is the listen address of the API server.
	DefaultServeAddr = ":8080"
)

// Config holds all runtime options for sitescout.
// It is populated from CLI flags and the optional config file and passed
// down explicitly; nothing reads it from global state.
type Config struct {
	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// SeedTimeout, PageTimeout and ExistsTimeout bound individual requests.
	SeedTimeout   time.Duration
	PageTimeout   time.Duration
	ExistsTimeout time.Duration

	// MaxAttempts is the total number of tries for retryable responses.
	MaxAttempts int

	// RetryBackoff is the initial retry delay.
	RetryBackoff time.Duration

	// CrawlDelay is the delay between content page fetches.
	CrawlDelay time.Duration

	// PageBudget is the total number of pages per crawl, seed included.
	PageBudget int

	// VerifyConcurrency is the size of the link verification pool.
	VerifyConcurrency int

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// Deadline bounds the whole crawl. Zero means no deadline.
	// When it expires the crawl returns a partial result.
	Deadline time.Duration

	// RespectRobots enables the robots.txt gate for content pages.
	RespectRobots bool

	// KeyTypes overrides the reserved-slot label order. Empty means the
	// default order (about, team, products, contact, news).
	KeyTypes []string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the config file.
	ConfigFilePath string

	// SiteConfigs holds the loaded config file, if any.
	SiteConfigs *File

	// DBDir is the directory of the results database.
	DBDir string

	// SaveToDB stores every result in the database.
	SaveToDB bool

	// Targets is the list of seed URLs.
	Targets []string
}

// NewConfig creates a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		UserAgent:         DefaultUserAgent,
		SeedTimeout:       DefaultSeedTimeout,
		PageTimeout:       DefaultPageTimeout,
		ExistsTimeout:     DefaultExistsTimeout,
		MaxAttempts:       DefaultMaxAttempts,
		RetryBackoff:      DefaultRetryBackoff,
		CrawlDelay:        DefaultCrawlDelay,
		PageBudget:        DefaultPageBudget,
		VerifyConcurrency: DefaultVerifyConcurrency,
		BatchSize:         DefaultBatchSize,
		MaxBodySize:       DefaultMaxBodySize,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for sitescout.
// On Linux: ~/.local/share/sitescout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitescout.
// On Linux: ~/.config/sitescout
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration of a crawl run and returns the
// first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.ValidateSettings()
}

// ValidateSettings checks everything but the targets. The API server
// uses it since targets arrive per request.
func (c *Config) ValidateSettings() error {
	if c.SeedTimeout <= 0 || c.PageTimeout <= 0 || c.ExistsTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if !validPageBudget(c.PageBudget) {
		return ErrInvalidPageBudget
	}
	if err := c.validateSiteBudgets(); err != nil {
		return err
	}
	if c.VerifyConcurrency < MinVerifyConcurrency || c.VerifyConcurrency > MaxVerifyConcurrency {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Deadline < 0 {
		return ErrInvalidDeadline
	}
	if err := validateKeyTypes(c.KeyTypes); err != nil {
		return err
	}
	return nil
}

func validPageBudget(n int) bool {
	return n >= 1 && n <= MaxPageBudget
}

// validateSiteBudgets checks the page budgets of the loaded config file.
// Zero means the budget is not overridden.
func (c *Config) validateSiteBudgets() error {
	if c.SiteConfigs == nil {
		return nil
	}
	if n := c.SiteConfigs.Defaults.PageBudget; n != 0 && !validPageBudget(n) {
		return fmt.Errorf("%w: defaults", ErrInvalidPageBudget)
	}
	for _, host := range slices.Sorted(maps.Keys(c.SiteConfigs.Sites)) {
		if n := c.SiteConfigs.Sites[host].PageBudget; n != 0 && !validPageBudget(n) {
			return fmt.Errorf("%w: site %s", ErrInvalidPageBudget, host)
		}
	}
	return nil
}

// validateKeyTypes rejects unknown or repeated labels.
func validateKeyTypes(keyTypes []string) error {
	known := map[string]bool{
		"about": true, "team": true, "products": true,
		"contact": true, "news": true, "careers": true,
	}
	seen := make(map[string]bool, len(keyTypes))
	for _, k := range keyTypes {
		if !known[k] || seen[k] {
			return ErrInvalidKeyTypes
		}
		seen[k] = true
	}
	return nil
}
