package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	// ErrTableNotFound is the structural failure: the page carries no
	// ranking table at all. It aborts the page instead of producing an
	// empty result.
	ErrTableNotFound = errors.New("ranking table not found")

	ErrConsentFormNotFound = errors.New("cookie wall form not found")
	ErrConsentReturnURL    = errors.New("cookie wall return URL not found")
	ErrMaxRetries          = errors.New("max retries exceeded")
	ErrInvalidURL          = errors.New("invalid URL")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps errors that occur while parsing a page.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur in an export sink.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
