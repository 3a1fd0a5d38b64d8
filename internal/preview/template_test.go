package preview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pleroma_rss/internal/model"
)

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("a", 318) + " bcdef ghi"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short text untouched", in: "short text", want: "short text"},
		{name: "cut at first space after the limit", in: long, want: strings.Repeat("a", 318) + " bcdef"},
		{
			name: "space exactly at the limit",
			in:   strings.Repeat("b", 320) + " tail",
			want: strings.Repeat("b", 320),
		},
		{
			name: "no space after the limit keeps everything",
			in:   strings.Repeat("c", 400),
			want: strings.Repeat("c", 400),
		},
		{
			name: "counts runes not bytes",
			in:   strings.Repeat("я", 321) + " хвост",
			want: strings.Repeat("я", 321),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, truncateDescription(tt.in)); diff != "" {
				t.Errorf("truncateDescription() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFillTemplate(t *testing.T) {
	tmpl := `<h1>{{title}}</h1><p>{{description}}</p><a href="{{link}}">{{link}}</a><img src="{{image-src}}">`
	c := model.Content{
		Title:       "Fish & Chips",
		Description: "mentions {{title}} literally",
		Link:        "https://example.com/a b",
	}

	got := FillTemplate(tmpl, c, "/srv/img/default.png")
	want := `<h1>Fish &amp; Chips</h1><p>mentions {{title}} literally</p>` +
		`<a href="https://example.com/a b">https://example.com/a b</a><img src="/srv/img/default.png">`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FillTemplate() mismatch (-want +got):\n%s", diff)
	}
}
