// Package postgres provides the PostgreSQL implementation of the task store
// defined in the internal/store package, together with the embedded schema
// migrations it depends on.
//
// Queries are built only from compiled filter plans: values always travel as
// positional parameters and ORDER BY columns come from a fixed mapping.
package postgres
