package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNotMarkdown = errors.New("not a markdown file")
	ErrNotFolder   = errors.New("not a folder")
	ErrUnavailable = errors.New("state unavailable")
)
