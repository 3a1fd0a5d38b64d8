package tracker

import (
	"errors"
	"fmt"
)

// Causes of an ItemError.
var (
	ErrNoPublishDate      = errors.New("item has no publish date")
	ErrInvalidPublishDate = errors.New("item has an invalid publish date")
	ErrNoTitle            = errors.New("item has no title")
	ErrNoLink             = errors.New("item has no link")
	ErrNoDescription      = errors.New("item has no description")
)

// ParseError reports a feed body that could not be parsed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ItemError reports a feed item that violates a required-field assumption.
type ItemError struct {
	URL string
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("feed %s: %v", e.URL, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
