// Package report renders scrape results for people and tools.
//
// Writers:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter and FullJSONWriter: JSON for tool integration
//   - MarkdownWriter: Markdown for sharing
//
// Every writer implements Writer, so they can be chosen by Format at
// runtime and combined with MultiWriter.
package report
