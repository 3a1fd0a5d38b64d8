// Package publisher turns feed content into posts on the target instance.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"pleroma_rss/internal/mastodon"
	"pleroma_rss/internal/model"
)

// StatusPoster submits a status.
type StatusPoster interface {
	PostStatus(ctx context.Context, text string, mediaIDs []string) (*mastodon.Status, error)
}

// Attacher computes the attachments of a post.
type Attacher interface {
	Attach(ctx context.Context, c model.Content) (model.PublishOptions, error)
}

// PostError reports a failed status submission.
type PostError struct {
	Title string
	Err   error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post %q: %v", e.Title, e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }

// Publisher posts content, with an optional attachment, to the instance.
type Publisher struct {
	poster   StatusPoster
	attacher Attacher
	log      *slog.Logger
}

// New creates a Publisher.
func New(poster StatusPoster, attacher Attacher, log *slog.Logger) *Publisher {
	return &Publisher{
		poster:   poster,
		attacher: attacher,
		log:      log,
	}
}

// Post publishes c. Attachment failures are returned wrapped as is; a
// failed status submission is returned as *PostError. Neither is retried.
func (p *Publisher) Post(ctx context.Context, c model.Content) error {
	p.log.Info("posting", "title", c.Title)

	opts, err := p.attacher.Attach(ctx, c)
	if err != nil {
		return fmt.Errorf("attach media to %q: %w", c.Title, err)
	}

	var mediaIDs []string
	if opts.HasMedia() {
		mediaIDs = []string{opts.MediaID}
	}

	st, err := p.poster.PostStatus(ctx, FormatStatus(c), mediaIDs)
	if err != nil {
		return &PostError{Title: c.Title, Err: err}
	}
	p.log.Info("posted", "title", c.Title, "status_id", st.ID, "media_id", opts.MediaID)
	return nil
}
