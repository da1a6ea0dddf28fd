// Package githubctx derives the user's project context from their GitHub
// account: the most recently updated repositories are scanned (description
// plus README) for a fixed technology keyword list, producing the flat tag
// set the recall engine consumes as context. Results are cached in storage
// for 24 hours.
package githubctx
