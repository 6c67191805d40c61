package ingest

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types no loader handles
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when a file exceeds the configured limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyFile is returned for zero-byte uploads
	ErrEmptyFile = errors.New("file is empty")
	// ErrOutsideDirectory is returned when a path escapes the configured directory
	ErrOutsideDirectory = errors.New("path is outside configured directory")
)
