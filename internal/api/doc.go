// Package api exposes the REST surface: capture, archive listing,
// recall, pattern analysis, and GitHub context sync. Handlers map
// validation failures to 400, rate limits to 429, and upstream
// failures to 500 with a detail string.
package api
