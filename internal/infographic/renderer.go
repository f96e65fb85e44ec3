package infographic

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/greenlens/autoposter/internal/content"
)

// Renderer turns slide HTML into 1080x1080 PNG files via headless Chrome.
type Renderer struct {
	tmpDir string
}

func NewRenderer(tmpDir string) *Renderer {
	return &Renderer{tmpDir: tmpDir}
}

// Render produces one PNG per slide (cover first) and returns the file paths
// in swipe order.
func (r *Renderer) Render(ctx context.Context, c *content.Generated, style, coverImagePath string) ([]string, error) {
	htmls, err := BuildSlides(c, style, coverImagePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating tmp dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timestamp := time.Now().UnixMilli()
	paths := make([]string, 0, len(htmls))
	for i, html := range htmls {
		outputPath := filepath.Join(r.tmpDir, fmt.Sprintf("slide-%d-%d.png", timestamp, i+1))
		if err := r.renderSlide(browserCtx, html, outputPath); err != nil {
			return nil, fmt.Errorf("error rendering slide %d/%d: %w", i+1, len(htmls), err)
		}
		paths = append(paths, outputPath)
		slog.Info("slide rendered", "slide", i+1, "total", len(htmls))
	}
	return paths, nil
}

func (r *Renderer) renderSlide(ctx context.Context, html, outputPath string) error {
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var buf []byte
	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(1080, 1080),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		// give web fonts a beat to settle before the screenshot
		chromedp.Sleep(300*time.Millisecond),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, buf, 0o644)
}
