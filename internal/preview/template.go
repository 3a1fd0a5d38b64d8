package preview

import (
	"html"
	"strings"

	"pleroma_rss/internal/model"
)

// descriptionLimit is the rune count after which the description is cut at
// the next space.
const descriptionLimit = 320

// truncateDescription keeps the first descriptionLimit runes and then
// continues up to, not including, the next space.
func truncateDescription(s string) string {
	var b strings.Builder
	for i, r := range []rune(s) {
		if i >= descriptionLimit && r == ' ' {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FillTemplate substitutes the {{title}}, {{description}}, {{link}} and
// {{image-src}} placeholders of tmpl. Values are HTML-escaped and replaced in
// a single pass, so placeholders inside values are left alone.
func FillTemplate(tmpl string, c model.Content, imageSrc string) string {
	r := strings.NewReplacer(
		"{{title}}", html.EscapeString(c.Title),
		"{{description}}", html.EscapeString(truncateDescription(c.Description)),
		"{{link}}", html.EscapeString(c.Link),
		"{{image-src}}", html.EscapeString(imageSrc),
	)
	return r.Replace(tmpl)
}
