package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pleroma_rss/internal/mastodon"
	"pleroma_rss/internal/pace"
)

// Defaults for WaitOptions.
const (
	DefaultMaxAttempts = 5
	DefaultPollDelay   = 500 * time.Millisecond
)

// MediaGetter polls the processing state of an uploaded attachment.
type MediaGetter interface {
	GetMedia(ctx context.Context, id string) (*mastodon.Attachment, error)
}

// MediaTimeoutError is returned when an upload is still processing after
// the last allowed poll.
type MediaTimeoutError struct {
	MediaID  string
	Attempts int
}

func (e *MediaTimeoutError) Error() string {
	return fmt.Sprintf("media %s not ready after %d attempts", e.MediaID, e.Attempts)
}

// WaitOptions bounds the polling of an asynchronous upload.
type WaitOptions struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       pace.SleepFunc
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Delay <= 0 {
		o.Delay = DefaultPollDelay
	}
	if o.Sleep == nil {
		o.Sleep = pace.Sleep
	}
	return o
}

type mediaState int

const (
	statePending mediaState = iota
	stateReady
	stateFailed
)

func classify(err error) mediaState {
	switch {
	case err == nil:
		return stateReady
	case errors.Is(err, mastodon.ErrPartialContent):
		return statePending
	default:
		return stateFailed
	}
}

// WaitForMedia polls id until the server reports it ready and returns the
// resolved attachment id. A poll failing with anything but "still
// processing" is returned as is. After opts.MaxAttempts pending polls it
// fails with *MediaTimeoutError.
func WaitForMedia(ctx context.Context, getter MediaGetter, id string, opts WaitOptions) (string, error) {
	opts = opts.withDefaults()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		a, err := getter.GetMedia(ctx, id)
		switch classify(err) {
		case stateReady:
			return a.ID, nil
		case stateFailed:
			return "", err
		}

		if attempt < opts.MaxAttempts {
			if err := opts.Sleep(ctx, opts.Delay); err != nil {
				return "", err
			}
		}
	}
	return "", &MediaTimeoutError{MediaID: id, Attempts: opts.MaxAttempts}
}
