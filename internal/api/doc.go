// Package api handles incoming HTTP requests for tasks: request decoding and
// validation, mapping of service errors to status codes, and response
// formatting. It translates HTTP concerns to task service operations.
package api
