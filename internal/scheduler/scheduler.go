// Package scheduler drives the poll, detect, publish and pace cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pleroma_rss/internal/fetcher"
	"pleroma_rss/internal/filter"
	"pleroma_rss/internal/model"
	"pleroma_rss/internal/pace"
	"pleroma_rss/internal/publisher"
)

// Checker reports the new items of a single feed.
type Checker interface {
	URL() string
	Check(ctx context.Context) ([]model.Content, error)
}

// Poster publishes a single item.
type Poster interface {
	Post(ctx context.Context, c model.Content) error
}

// Alerter receives operator alerts.
type Alerter interface {
	Alert(text string)
}

// Options configures a Scheduler.
type Options struct {
	// DryRun prints items to Out instead of publishing them.
	DryRun bool
	// ItemDelay is slept after every published item.
	ItemDelay time.Duration
	// RoundDelay is slept after every full round over the feeds.
	RoundDelay time.Duration
	// Filters drops items before publishing. Nil passes everything.
	Filters *filter.Rules
	// Alerter, if set, is told about every loop error.
	Alerter Alerter
	// Out receives dry-run output. Defaults to os.Stdout.
	Out io.Writer
}

// Scheduler checks every feed in order, publishes new items and sleeps
// between rounds until a fatal error occurs or ctx is cancelled.
type Scheduler struct {
	feeds  []Checker
	poster Poster
	opts   Options
	log    *slog.Logger
	sleep  pace.SleepFunc
}

// New creates a Scheduler over feeds, checked in the given order.
func New(feeds []Checker, poster Poster, opts Options, log *slog.Logger) *Scheduler {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Scheduler{
		feeds:  feeds,
		poster: poster,
		opts:   opts,
		log:    log,
		sleep:  pace.Sleep,
	}
}

// IsTransient reports whether err is a network or remote API failure that
// the next round may recover from.
func IsTransient(err error) bool {
	var fe *fetcher.FetchError
	var pe *publisher.PostError
	return errors.As(err, &fe) || errors.As(err, &pe)
}

// Run loops over the feeds forever. It returns nil once ctx is cancelled and
// the first fatal error otherwise.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.checkAll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.alert(fmt.Sprintf("pleroma-rss stopped: %v", err))
			return err
		}

		s.log.Info("waiting for new items", "sleep", s.opts.RoundDelay)
		if err := s.sleep(ctx, s.opts.RoundDelay); err != nil {
			return nil
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) error {
	s.log.Info("checking feeds", "count", len(s.feeds))

	for _, feed := range s.feeds {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.processFeed(ctx, feed); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !IsTransient(err) {
				return err
			}
			s.log.Warn("feed round failed", "url", feed.URL(), "error", err)
			s.alert(fmt.Sprintf("pleroma-rss: %v", err))
		}
	}
	return nil
}

func (s *Scheduler) processFeed(ctx context.Context, feed Checker) error {
	contents, err := feed.Check(ctx)
	if err != nil {
		return err
	}
	if len(contents) > 0 {
		s.log.Info("found new items", "url", feed.URL(), "count", len(contents))
	}

	for _, c := range contents {
		if !s.opts.Filters.Match(c) {
			s.log.Debug("filtered out", "url", feed.URL(), "title", c.Title)
			continue
		}

		if s.opts.DryRun {
			s.log.Info("dry run, not posting", "title", c.Title)
			if _, err := fmt.Fprintln(s.opts.Out, publisher.FormatDryRun(c)); err != nil {
				return fmt.Errorf("write dry run output: %w", err)
			}
			continue
		}

		if err := s.poster.Post(ctx, c); err != nil {
			return err
		}
		if err := s.sleep(ctx, s.opts.ItemDelay); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) alert(text string) {
	if s.opts.Alerter != nil {
		s.opts.Alerter.Alert(text)
	}
}
