// Package tracker keeps per-feed state and computes which items are new
// since the previous check.
package tracker

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/mmcdole/gofeed"

	"pleroma_rss/internal/model"
)

// Source downloads a feed body.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Tracker owns a feed URL and its watermark: the publish time of the newest
// item already handed out.
type Tracker struct {
	url      string
	lastPost time.Time
	source   Source
	parser   *gofeed.Parser
	log      *slog.Logger
}

// New creates a Tracker for url. A zero lastPost treats every item present
// at the first check as new.
func New(url string, lastPost time.Time, source Source, log *slog.Logger) *Tracker {
	return &Tracker{
		url:      url,
		lastPost: lastPost,
		source:   source,
		parser:   gofeed.NewParser(),
		log:      log,
	}
}

// InitialWatermark returns the starting watermark: now (at second precision)
// in only-new mode, zero otherwise.
func InitialWatermark(onlyNew bool, now time.Time) time.Time {
	if !onlyNew {
		return time.Time{}
	}
	return now.Truncate(time.Second)
}

// URL returns the feed URL.
func (t *Tracker) URL() string { return t.url }

// LastPost returns the watermark and whether it has been set.
func (t *Tracker) LastPost() (time.Time, bool) {
	return t.lastPost, !t.lastPost.IsZero()
}

// Check fetches and parses the feed and returns the items published after
// the watermark, oldest first, advancing the watermark past them.
//
// Publish dates are validated for every item, including stale ones, so a
// single bad date fails the whole check and leaves the watermark untouched.
func (t *Tracker) Check(ctx context.Context) ([]model.Content, error) {
	t.log.Debug("checking feed", "url", t.url)

	body, err := t.source.Fetch(ctx, t.url)
	if err != nil {
		return nil, err
	}

	feed, err := t.parser.ParseString(string(body))
	if err != nil {
		return nil, &ParseError{URL: t.url, Err: err}
	}

	// Feeds are conventionally newest first.
	items := slices.Clone(feed.Items)
	slices.Reverse(items)

	dated := make([]Dated, 0, len(items))
	for _, item := range items {
		published, err := publishDate(item)
		if err != nil {
			return nil, &ItemError{URL: t.url, Err: err}
		}
		dated = append(dated, Dated{Published: published, Item: item})
	}

	watermark, fresh := Advance(dated, t.lastPost)
	t.lastPost = watermark

	contents := make([]model.Content, 0, len(fresh))
	for _, d := range fresh {
		c, err := newContent(d)
		if err != nil {
			return nil, &ItemError{URL: t.url, Err: err}
		}
		t.log.Debug("new item", "url", t.url, "title", c.Title, "published", c.Published)
		contents = append(contents, c)
	}
	return contents, nil
}
