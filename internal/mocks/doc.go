// Package mocks provides configurable test doubles for service interfaces.
package mocks
