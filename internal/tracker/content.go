package tracker

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"pleroma_rss/internal/model"
)

var markupRe = regexp.MustCompile(`<[^>]*>|&#?[0-9A-Za-z]+;`)

// StripHTML removes HTML tags and character entities from s. Entities are
// dropped, not decoded.
func StripHTML(s string) string {
	return markupRe.ReplaceAllString(s, "")
}

// obsoleteZones maps the RFC 2822 obsolete zone names to numeric offsets.
// Military zones carry no reliable offset and are read as -0000.
var obsoleteZones = map[string]string{
	"UT": "+0000", "GMT": "+0000",
	"EST": "-0500", "EDT": "-0400",
	"CST": "-0600", "CDT": "-0500",
	"MST": "-0700", "MDT": "-0600",
	"PST": "-0800", "PDT": "-0700",
}

// normalizeZone rewrites an obsolete trailing zone name as a numeric offset.
func normalizeZone(raw string) string {
	if i := strings.IndexByte(raw, '('); i >= 0 {
		raw = raw[:i]
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return raw
	}
	zone := strings.ToUpper(fields[len(fields)-1])
	offset, ok := obsoleteZones[zone]
	if !ok && len(zone) == 1 && zone[0] >= 'A' && zone[0] <= 'Z' && zone[0] != 'J' {
		offset, ok = "-0000", true
	}
	if !ok {
		return raw
	}
	fields[len(fields)-1] = offset
	return strings.Join(fields, " ")
}

// publishDate parses the RFC 2822 pubDate of an item. gofeed falls back to
// dc:date when pubDate is absent; such a value is reported as missing unless
// it happens to be RFC 2822 itself.
func publishDate(item *gofeed.Item) (time.Time, error) {
	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		return time.Time{}, ErrNoPublishDate
	}
	t, err := mail.ParseDate(normalizeZone(raw))
	if err != nil {
		if fromDublinCore(item, raw) {
			return time.Time{}, ErrNoPublishDate
		}
		return time.Time{}, ErrInvalidPublishDate
	}
	return t, nil
}

func fromDublinCore(item *gofeed.Item, published string) bool {
	dc := item.DublinCoreExt
	return dc != nil && len(dc.Date) > 0 && strings.TrimSpace(dc.Date[0]) == published
}

// decodeLink percent-decodes every valid %XX escape in link. A '%' not
// followed by two hex digits is kept as is.
func decodeLink(link string) string {
	if !strings.Contains(link, "%") {
		return link
	}
	var b strings.Builder
	b.Grow(len(link))
	for i := 0; i < len(link); i++ {
		if link[i] == '%' && i+2 < len(link) && isHex(link[i+1]) && isHex(link[i+2]) {
			b.WriteByte(unhex(link[i+1])<<4 | unhex(link[i+2]))
			i += 2
			continue
		}
		b.WriteByte(link[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// mediaURL returns the url attribute of the first media:content element.
func mediaURL(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	contents := media["content"]
	if len(contents) == 0 {
		return ""
	}
	return contents[0].Attrs["url"]
}

func newContent(d Dated) (model.Content, error) {
	item := d.Item
	if item.Title == "" {
		return model.Content{}, ErrNoTitle
	}
	if item.Link == "" {
		return model.Content{}, ErrNoLink
	}
	if item.Description == "" {
		return model.Content{}, ErrNoDescription
	}
	return model.Content{
		Title:       item.Title,
		Link:        decodeLink(item.Link),
		Description: StripHTML(item.Description),
		ImageURL:    mediaURL(item),
		Published:   d.Published,
	}, nil
}
