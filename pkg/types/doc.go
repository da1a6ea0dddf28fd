// Package types defines the shared domain model for the Memoria service:
// archive items captured by the user, the context supplied at recall time,
// and the scored matches the recall engine produces.
//
// All timestamps are epoch milliseconds to match the wire format.
package types
