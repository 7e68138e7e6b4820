// Package crawler discovers, normalizes and verifies the internal links
// of a site.
//
// # Discovery
//
// A Discoverer reads the raw view of a cleaned page and unions four
// sources of candidates: anchors, elements with a data-href attribute,
// menu entries that are not anchors, and page-type words in the visible
// text ("about", "team", "contact", ...), which are turned into guessed
// paths such as /about-us. Candidates outside the site, on known social
// platforms, behind login or legal paths, or pointing at non-HTML files
// are never produced.
//
// # Identity
//
// Canonicalize resolves and normalizes URLs. Two URLs are the same page
// when host and path (without trailing slash) match; query and fragment
// are ignored. Dedupe keeps the first candidate per page and Seen is the
// shared "already fetched" set.
//
// # Verification
//
// A Verifier checks candidates through a Checker (the fetch client's
// existence check) with a bounded errgroup pool:
//
//	v := crawler.NewVerifier(client, 6, logger)
//	alive := v.Verify(ctx, candidates)
//	if len(alive) < crawler.ProbeThreshold {
//		alive = append(alive, v.Probe(ctx, origin, seen)...)
//	}
package crawler
