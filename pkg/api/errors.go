package api

import "errors"

var (
	// ErrPathRequired is returned when a file validation request has no path
	ErrPathRequired = errors.New("path is required")

	// ErrPathNotLocal is returned for absolute paths or paths escaping the data directory
	ErrPathNotLocal = errors.New("path must be relative to the data directory and must not contain '..'")

	// ErrTooManyLines is returned when a lines request exceeds the per-request cap
	ErrTooManyLines = errors.New("too many lines in request")

	// ErrStorageFull is returned when the report store is over its disk limit
	ErrStorageFull = errors.New("report storage limit exceeded")
)
