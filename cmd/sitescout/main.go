// Package main provides the entry point for the sitescout CLI.
//
// sitescout crawls a company website from its home page, picks the
// pages most likely to describe the company and extracts a structured
// profile: name, description, social links, contact details, team,
// products and news.
//
// Usage:
//
//	sitescout crawl <url>...
//	sitescout history --list
//	sitescout serve --addr :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
