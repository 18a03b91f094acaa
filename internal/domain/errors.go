package domain

import "errors"

var (
	// ErrDocumentNotFound is returned by stores when a document path has no document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrQuizNotFound indicates the requested quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidGrade is returned for grade segments that are not non-negative integers.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrInvalidPath indicates a malformed store path.
	ErrInvalidPath = errors.New("invalid path")
)
