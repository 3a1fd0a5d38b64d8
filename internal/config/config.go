// Package config handles application configuration from flags and environment variables.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"pleroma_rss/internal/filter"
	"pleroma_rss/internal/model"
)

// Config holds the application configuration.
type Config struct {
	AccessToken string
	BaseURL     string
	FeedsFile   string
	Feeds       []string

	OnlyNew    bool
	DryRun     bool
	ItemDelay  time.Duration
	RoundDelay time.Duration

	PreviewTemplate     string
	DefaultPreviewImage string
	PreviewDir          string

	Filters []model.Filter

	TelegramToken  string
	TelegramChatID int64

	LogLevel string
}

// PreviewEnabled reports whether posts carry a rendered preview image.
func (c *Config) PreviewEnabled() bool {
	return c.PreviewTemplate != ""
}

// filterFlag collects repeated filter rules of one kind.
type filterFlag struct {
	kind  model.FilterKind
	rules *[]model.Filter
}

func (f filterFlag) String() string { return "" }

func (f filterFlag) Set(raw string) error {
	rule, err := filter.ParseRule(f.kind, raw)
	if err != nil {
		return err
	}
	*f.rules = append(*f.rules, rule)
	return nil
}

// Load parses args, with defaults taken from the environment, and validates
// the result. The feed list file is read as part of loading.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("pleroma-rss", flag.ContinueOnError)

	fs.StringVar(&cfg.AccessToken, "access-token", os.Getenv("PLEROMA_ACCESS_TOKEN"), "bot access token")
	fs.StringVar(&cfg.BaseURL, "base-url", os.Getenv("PLEROMA_BASE_URL"), "instance base URL")
	fs.StringVar(&cfg.FeedsFile, "feeds-file", os.Getenv("FEEDS_FILE"), "file with one feed URL per line")
	fs.StringVar(&cfg.PreviewTemplate, "preview-template", os.Getenv("PREVIEW_TEMPLATE"), "HTML template for preview images")
	fs.StringVar(&cfg.DefaultPreviewImage, "default-preview-image", os.Getenv("DEFAULT_PREVIEW_IMAGE"), "image used when an item has none")
	fs.StringVar(&cfg.PreviewDir, "preview-dir", envOrDefault("PREVIEW_DIR", "."), "directory for transient preview files")
	fs.StringVar(&cfg.TelegramToken, "telegram-token", os.Getenv("TELEGRAM_BOT_TOKEN"), "telegram bot token for alerts")
	fs.StringVar(&cfg.LogLevel, "log-level", envOrDefault("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	chatID := fs.String("telegram-chat-id", os.Getenv("TELEGRAM_ALERT_CHAT_ID"), "telegram chat receiving alerts")

	onlyNew, err := envBool("ONLY_NEW")
	if err != nil {
		return nil, err
	}
	dryRun, err := envBool("DRY_RUN")
	if err != nil {
		return nil, err
	}
	fs.BoolVar(&cfg.OnlyNew, "only-new", onlyNew, "skip items published before startup")
	fs.BoolVar(&cfg.DryRun, "dry-run", dryRun, "print items instead of posting")

	itemDelay, err := envDuration("ITEM_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	roundDelay, err := envDuration("ROUND_DELAY", 30*time.Second)
	if err != nil {
		return nil, err
	}
	fs.DurationVar(&cfg.ItemDelay, "item-delay", itemDelay, "pause after each post")
	fs.DurationVar(&cfg.RoundDelay, "round-delay", roundDelay, "pause after each round over all feeds")

	fs.Var(filterFlag{model.FilterInclude, &cfg.Filters}, "include", "post only items containing `[scope:]word` (repeatable)")
	fs.Var(filterFlag{model.FilterExclude, &cfg.Filters}, "exclude", "skip items containing `[scope:]word` (repeatable)")
	fs.Var(filterFlag{model.FilterIncludeRe, &cfg.Filters}, "include-re", "post only items matching `[scope:]regex` (repeatable)")
	fs.Var(filterFlag{model.FilterExcludeRe, &cfg.Filters}, "exclude-re", "skip items matching `[scope:]regex` (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if *chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(*chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", *chatID, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Feeds, err = ReadFeeds(cfg.FeedsFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AccessToken == "" && !c.DryRun {
		return errors.New("access token is required unless -dry-run is set")
	}
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.FeedsFile == "" {
		return errors.New("feeds file is required")
	}
	if c.ItemDelay < 0 || c.RoundDelay < 0 {
		return errors.New("delays must not be negative")
	}

	if c.PreviewTemplate != "" {
		if c.DefaultPreviewImage == "" {
			return errors.New("default preview image is required with a preview template")
		}
		for _, path := range []string{c.PreviewTemplate, c.DefaultPreviewImage} {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("check preview file: %w", err)
			}
		}
	}

	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("telegram chat id is required with a telegram token")
	}
	return nil
}

// ReadFeeds reads one absolute feed URL per line from path. Blank lines are
// skipped; any other line that is not an absolute URL is an error.
func ReadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var feeds []string
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid feed URL: %w", path, n, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("%s:%d: feed URL %q is not absolute", path, n, line)
		}
		feeds = append(feeds, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s has no feeds", path)
	}
	return feeds, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
