// Package preview attaches a rendered preview image to outgoing posts.
//
// Two attachers are provided: None, which never attaches anything, and
// Preview, which fills an HTML template with the item, renders it to PNG,
// uploads it and waits for the instance to finish processing it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"pleroma_rss/internal/mastodon"
	"pleroma_rss/internal/model"
)

// None is the attacher used when previews are disabled.
type None struct{}

// Attach returns empty options.
func (None) Attach(context.Context, model.Content) (model.PublishOptions, error) {
	return model.PublishOptions{}, nil
}

// MediaUploader uploads media and polls its processing state.
type MediaUploader interface {
	MediaGetter
	UploadMedia(ctx context.Context, path string) (*mastodon.Upload, error)
}

// Options configures a Preview attacher.
type Options struct {
	// TemplatePath is the HTML template, read on every attach.
	TemplatePath string
	// DefaultImage is used as {{image-src}} when an item has no image.
	DefaultImage string
	// Dir receives the transient HTML and PNG files.
	Dir  string
	Wait WaitOptions
}

// Preview renders, uploads and attaches a preview image.
type Preview struct {
	opts     Options
	renderer Renderer
	media    MediaUploader
	log      *slog.Logger
	newID    func() string
}

// New creates a Preview attacher. The default image path is made absolute
// so the renderer can load it regardless of where the HTML file lives.
func New(opts Options, renderer Renderer, media MediaUploader, log *slog.Logger) (*Preview, error) {
	abs, err := filepath.Abs(opts.DefaultImage)
	if err != nil {
		return nil, fmt.Errorf("resolve default image: %w", err)
	}
	opts.DefaultImage = abs
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return &Preview{
		opts:     opts,
		renderer: renderer,
		media:    media,
		log:      log,
		newID:    uuid.NewString,
	}, nil
}

// Attach renders c into a preview image and uploads it. The transient HTML
// and image files are removed on every return path.
func (p *Preview) Attach(ctx context.Context, c model.Content) (opts model.PublishOptions, err error) {
	src := c.ImageURL
	if src == "" {
		src = p.opts.DefaultImage
	}

	tmpl, err := os.ReadFile(p.opts.TemplatePath)
	if err != nil {
		return model.PublishOptions{}, fmt.Errorf("read template: %w", err)
	}

	id := p.newID()
	htmlPath := filepath.Join(p.opts.Dir, id+".html")
	imagePath := filepath.Join(p.opts.Dir, id+".png")
	defer func() {
		if rmErr := removeArtifacts(htmlPath, imagePath); rmErr != nil {
			opts, err = model.PublishOptions{}, errors.Join(err, rmErr)
			return
		}
		p.log.Debug("preview artifacts removed", "html", htmlPath, "image", imagePath)
	}()

	if err := os.WriteFile(htmlPath, []byte(FillTemplate(string(tmpl), c, src)), 0o600); err != nil {
		return model.PublishOptions{}, fmt.Errorf("write preview html: %w", err)
	}
	p.log.Debug("rendering preview", "title", c.Title, "image_src", src, "html", htmlPath)

	if err := p.renderer.Render(ctx, htmlPath, imagePath); err != nil {
		return model.PublishOptions{}, fmt.Errorf("render preview: %w", err)
	}

	p.log.Info("uploading preview", "title", c.Title, "path", imagePath)
	up, err := p.media.UploadMedia(ctx, imagePath)
	if err != nil {
		return model.PublishOptions{}, fmt.Errorf("upload preview: %w", err)
	}

	mediaID := up.ID
	if up.Pending {
		p.log.Debug("waiting for media processing", "media_id", up.ID)
		mediaID, err = WaitForMedia(ctx, p.media, up.ID, p.opts.Wait)
		if err != nil {
			return model.PublishOptions{}, fmt.Errorf("wait for media %s: %w", up.ID, err)
		}
	}
	return model.PublishOptions{MediaID: mediaID}, nil
}

func removeArtifacts(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}
