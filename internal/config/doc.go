// Package config provides the runtime configuration of sitescout: request
// timeouts and retry policy, crawl budget and politeness, report output,
// and the optional YAML config file with per-site overrides and noise
// filter extensions.
package config
