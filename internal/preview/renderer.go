package preview

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Renderer turns an HTML file into an image file.
type Renderer interface {
	Render(ctx context.Context, htmlPath, imagePath string) error
}

// WKHTMLToImage renders with the wkhtmltoimage command.
type WKHTMLToImage struct {
	// Bin is the executable to run. Defaults to "wkhtmltoimage" on PATH.
	Bin string
}

// Render runs the renderer and waits for it to exit. A non-zero exit status
// is an error carrying the command output.
func (w WKHTMLToImage) Render(ctx context.Context, htmlPath, imagePath string) error {
	bin := w.Bin
	if bin == "" {
		bin = "wkhtmltoimage"
	}
	cmd := exec.CommandContext(ctx, bin,
		"--enable-local-file-access",
		"--enable-smart-width",
		htmlPath,
		imagePath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", bin, err, bytes.TrimSpace(out))
	}
	return nil
}
