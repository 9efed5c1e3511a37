// Package provider contains typed HTTP clients for the external services the
// pipeline depends on: the content-generation API, the keyword-research API,
// and the discussion-forum API. Clients never retry or throttle themselves;
// callers submit provider calls through the throttle dispatcher.
package provider

import "fmt"

// Error is returned when a provider responds with a non-2xx status.
//
// Clients should populate RawResponse with the provider response body bytes.
// RawResponse must never include API keys.
type Error struct {
	Service     string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Service, e.Message)
}
