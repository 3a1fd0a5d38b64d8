// Package filter implements the content matching engine.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"pleroma_rss/internal/model"
)

// Rules is a compiled set of filters.
type Rules struct {
	includes []matcher
	excludes []matcher
}

type matcher struct {
	scope model.FilterScope
	word  string
	re    *regexp.Regexp
}

// Compile validates filters and prepares them for matching.
// Regular expressions are case-insensitive.
func Compile(filters []model.Filter) (*Rules, error) {
	r := &Rules{}
	for _, f := range filters {
		m := matcher{scope: f.Scope}
		switch f.Kind {
		case model.FilterInclude, model.FilterExclude:
			m.word = strings.ToLower(f.Value)
		case model.FilterIncludeRe, model.FilterExcludeRe:
			re, err := regexp.Compile("(?i)" + f.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid regex %q: %w", f.Value, err)
			}
			m.re = re
		default:
			return nil, fmt.Errorf("unknown filter kind %q", f.Kind)
		}

		switch f.Kind {
		case model.FilterInclude, model.FilterIncludeRe:
			r.includes = append(r.includes, m)
		default:
			r.excludes = append(r.excludes, m)
		}
	}
	return r, nil
}

// Empty reports whether no rule is configured.
func (r *Rules) Empty() bool {
	return r == nil || len(r.includes)+len(r.excludes) == 0
}

// Match checks whether content passes the rules.
// With no rules every item passes.
// Include rules use OR logic (at least one must match).
// Exclude rules use AND logic (none must match).
func (r *Rules) Match(c model.Content) bool {
	if r.Empty() {
		return true
	}
	for _, m := range r.excludes {
		if m.matches(c) {
			return false
		}
	}
	if len(r.includes) == 0 {
		return true
	}
	for _, m := range r.includes {
		if m.matches(c) {
			return true
		}
	}
	return false
}

func (m matcher) matches(c model.Content) bool {
	text := textForScope(c, m.scope)
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), m.word)
}

func textForScope(c model.Content, scope model.FilterScope) string {
	switch scope {
	case model.ScopeTitle:
		return c.Title
	case model.ScopeContent:
		return c.Description
	default:
		return c.Title + " " + c.Description
	}
}

// ParseRule parses a command-line rule value of the form
// "[title:|content:|all:]value" into a filter of the given kind.
func ParseRule(kind model.FilterKind, raw string) (model.Filter, error) {
	scope := model.ScopeAll
	value := raw
	if prefix, rest, ok := strings.Cut(raw, ":"); ok {
		switch model.FilterScope(prefix) {
		case model.ScopeTitle, model.ScopeContent, model.ScopeAll:
			scope = model.FilterScope(prefix)
			value = rest
		}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Filter{}, fmt.Errorf("filter value is required")
	}
	f := model.Filter{Kind: kind, Scope: scope, Value: value}
	if kind == model.FilterIncludeRe || kind == model.FilterExcludeRe {
		if _, err := regexp.Compile("(?i)" + value); err != nil {
			return model.Filter{}, fmt.Errorf("invalid regex: %w", err)
		}
	}
	return f, nil
}
