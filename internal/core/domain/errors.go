package domain

import "errors"

var (
	// ErrQueryIncomplete means the query is still QUEUED or RUNNING. It is a
	// control signal for the caller to retry later, not a failure.
	ErrQueryIncomplete = errors.New("query incomplete")

	// ErrQueryFailed means the query engine reported a terminal failure.
	ErrQueryFailed = errors.New("query failed")

	// ErrUnknownStatus means the query engine reported a status this system
	// does not recognise.
	ErrUnknownStatus = errors.New("unknown query status")

	// ErrEmptyResultSet means the finished query produced no samples.
	ErrEmptyResultSet = errors.New("empty result set")

	// ErrMalformedRow means a result row's parallel lists disagree in length.
	ErrMalformedRow = errors.New("malformed result row")

	// ErrDatasetTooLarge means the result set exceeded MaxSamples.
	ErrDatasetTooLarge = errors.New("dataset too large")

	// ErrContourFailed means a frame's samples could not be interpolated.
	// Renderers recover from it by omitting the contour layer.
	ErrContourFailed = errors.New("contour computation failed")

	// ErrEmptyAnimation means the composer was given no frames.
	ErrEmptyAnimation = errors.New("empty animation")

	// ErrInvalidRequest means the invocation payload failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")
)
