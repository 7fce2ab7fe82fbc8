// Package domain defines the core business entities of the task tracker.
//
// Entities validate themselves: constructors return validated values and
// mutating methods leave the entity untouched when validation fails. The
// package has no knowledge of persistence, caching or HTTP.
package domain
