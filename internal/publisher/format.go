package publisher

import (
	"fmt"
	"strings"

	"pleroma_rss/internal/model"
)

// FormatStatus formats content as the plain-text body of a post.
func FormatStatus(c model.Content) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", c.Title, c.Description, c.Link)
}

// FormatDryRun formats content for display when nothing is published.
func FormatDryRun(c model.Content) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:       %s\n", c.Title)
	fmt.Fprintf(&b, "Link:        %s\n", c.Link)
	fmt.Fprintf(&b, "Published:   %s\n", c.Published.UTC().Format("2006-01-02 15:04:05 UTC"))
	if c.ImageURL != "" {
		fmt.Fprintf(&b, "Image:       %s\n", c.ImageURL)
	}
	fmt.Fprintf(&b, "Description: %s\n", c.Description)
	return b.String()
}
