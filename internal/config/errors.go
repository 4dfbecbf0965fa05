package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate().
var (
	// ErrNoSource is returned when neither a base URL nor a project is given.
	ErrNoSource = errors.New("no documentation source: provide a base URL or --project")

	// ErrInvalidBaseURL is returned when the base URL cannot be parsed or uses
	// a scheme other than http, https or file.
	ErrInvalidBaseURL = errors.New("invalid base URL: expected an http, https or file URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the number of attempts is not positive.
	ErrInvalidRetries = errors.New("invalid retries: must be at least 1")

	// ErrInvalidWorkers is returned when the worker count is negative.
	ErrInvalidWorkers = errors.New("invalid workers: must be non-negative")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("output directory cannot be empty")

	// ErrEmptyFormat is returned when no output format is configured.
	ErrEmptyFormat = errors.New("output format cannot be empty")

	// ErrInvalidName is returned when the output name contains a path separator.
	ErrInvalidName = errors.New("invalid output name: must not contain path separators")
)
