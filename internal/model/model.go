// Package model defines the domain types used across the application.
package model

import "time"

// Content is a normalized feed item ready to be published.
type Content struct {
	Title       string
	Link        string
	Description string
	// ImageURL is the media:content url of the item, empty when absent.
	ImageURL  string
	Published time.Time
}

// PublishOptions holds the attachments of an outbound post.
// The zero value means a post without media.
type PublishOptions struct {
	MediaID string
}

// HasMedia reports whether the post carries an uploaded attachment.
func (o PublishOptions) HasMedia() bool {
	return o.MediaID != ""
}

// FilterKind defines the type of filter rule.
type FilterKind string

// Supported filter kinds.
const (
	FilterInclude   FilterKind = "include"
	FilterExclude   FilterKind = "exclude"
	FilterIncludeRe FilterKind = "include_re"
	FilterExcludeRe FilterKind = "exclude_re"
)

// FilterScope defines which part of the content a filter matches against.
type FilterScope string

// Supported filter scopes.
const (
	ScopeTitle   FilterScope = "title"
	ScopeContent FilterScope = "content"
	ScopeAll     FilterScope = "all"
)

// Filter is a single filtering rule applied to new content.
type Filter struct {
	Kind  FilterKind
	Scope FilterScope
	Value string
}
