package model

import "errors"

var (
	// ErrNotFound covers both a missing record and an ownership mismatch so
	// callers cannot probe for other owners' records.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks locally rejected input; no external call was made.
	ErrValidation = errors.New("validation error")

	// ErrProvider is the uniform failure for the generation call, regardless
	// of whether the provider timed out, errored, or returned nothing.
	ErrProvider = errors.New("provider error")

	// ErrAllDeliveriesFailed is returned by a share call when no recipient
	// could be delivered to. Partial failure is reported as data instead.
	ErrAllDeliveriesFailed = errors.New("all deliveries failed")
)
