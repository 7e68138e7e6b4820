// Package classify labels candidate pages by type and picks the pages a
// crawl fetches within its budget.
//
// A Classifier scores a URL path, its anchor text and, once fetched, the
// page content against keyword tables for six labels (about, team,
// products, contact, news, careers). Prioritize then reserves one slot
// per key type before filling the rest with the shallowest pages.
package classify
