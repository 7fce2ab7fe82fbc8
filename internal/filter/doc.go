// Package filter compiles the optional, untrusted query parameters of a task
// list request into a deterministic Plan: an ordered conjunction of
// predicates plus an ordering rule.
//
// Each predicate stage is independent and never fails; a value it cannot
// interpret simply contributes nothing. Sort fields come from a fixed
// whitelist so user input never reaches a store's ordering clause.
package filter
