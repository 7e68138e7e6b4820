// Package api serves crawls and stored results over HTTP.
//
// Routes:
//
//	POST   /api/scrape        crawl a seed and return the result
//	GET    /api/results       list stored results, newest first
//	GET    /api/results/{id}  fetch a stored result
//	DELETE /api/results/{id}  delete a stored result
//	GET    /api/search?q=     search stored results
//	GET    /api/health        liveness and store status
//	GET    /metrics           Prometheus metrics
//
// The result endpoints answer 503 when the server runs without a store.
package api
