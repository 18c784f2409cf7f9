package domain

import "errors"

var (
	// ErrBrandNotFound is returned by read paths when the requested brand
	// has never been ingested.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrEmptyWeek is returned when the requested week holds zero reviews.
	// Reporting callers treat it as a null report, not a failure.
	ErrEmptyWeek = errors.New("no reviews in requested week")

	// ErrEndOfPages signals normal pagination termination, not a failure.
	ErrEndOfPages = errors.New("no more pages")

	// ErrMalformedPage means a fetched page is missing expected fields.
	// It aborts the current brand's pagination only.
	ErrMalformedPage = errors.New("malformed source page")

	// ErrSourceUnavailable is the transient classification: retries were
	// exhausted on network/5xx/429 failures. Callers keep partial results.
	ErrSourceUnavailable = errors.New("source unavailable")
)
