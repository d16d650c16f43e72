// Package browser rasterizes rendered CV pages with a headless Chrome.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/types"
)

// DefaultTimeout bounds a whole capture, browser start included.
const DefaultTimeout = 30 * time.Second

// Options configures the Chrome process.
type Options struct {
	// ExecPath overrides the Chrome binary. Empty uses the chromedp lookup.
	ExecPath string
	Timeout  time.Duration
	Verbose  bool
}

// CaptureOptions configures one capture.
type CaptureOptions struct {
	// Scale is the device pixel oversampling factor.
	Scale float64
	// CrossOrigin allows images from other origins to load into the capture.
	CrossOrigin bool
	// Logging forwards Chrome devtools logs.
	Logging bool
}

// DefaultCaptureOptions returns scale 2 with cross-origin images on and
// logging off.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{Scale: 2, CrossOrigin: true, Logging: false}
}

// Rasterizer captures the #resume element of an HTML page as a PNG.
type Rasterizer struct {
	opts Options
}

// New returns a Rasterizer. Chrome is started per capture.
func New(opts Options) *Rasterizer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Rasterizer{opts: opts}
}

// Capture loads html into a blank tab, waits until the page reports that
// rendering is complete and screenshots the document root.
func (r *Rasterizer) Capture(ctx context.Context, html string, co CaptureOptions) (*types.Bitmap, error) {
	if err := CheckTarget(html); err != nil {
		return nil, err
	}
	if co.Scale <= 0 {
		co.Scale = 1
	}

	if r.opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser for capture (%d bytes, scale %.1f)", len(html), co.Scale)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if co.CrossOrigin {
		allocOpts = append(allocOpts, chromedp.Flag("disable-web-security", true))
	}
	if r.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	var ctxOpts []chromedp.ContextOption
	if co.Logging {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(log.Printf))
	}
	browserCtx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.opts.Timeout)
	defer cancel()

	var pic []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady(fmt.Sprintf(`body[%s="true"]`, rendering.MarkerAttr), chromedp.ByQuery),
		chromedp.ScreenshotScale("#"+rendering.RootID, co.Scale, &pic, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &CaptureError{Message: "browser capture failed", Cause: err}
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(pic))
	if err != nil {
		return nil, &CaptureError{Message: "capture is not a valid png", Cause: err}
	}

	if r.opts.Verbose {
		log.Printf("[BROWSER] Captured %dx%d px (%d bytes)", cfg.Width, cfg.Height, len(pic))
	}

	return &types.Bitmap{PNG: pic, Width: cfg.Width, Height: cfg.Height}, nil
}

// CheckTarget verifies html has exactly one capture root and the completion
// script, so a broken page fails before Chrome is started.
func CheckTarget(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &CaptureError{Message: "failed to parse page", Cause: err}
	}
	if n := doc.Find("#" + rendering.RootID).Length(); n != 1 {
		return &CaptureError{Message: fmt.Sprintf("page must contain one #%s element, found %d", rendering.RootID, n)}
	}
	hasMarker := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		hasMarker = strings.Contains(s.Text(), rendering.MarkerAttr)
		return !hasMarker
	})
	if !hasMarker {
		return &CaptureError{Message: "page never signals render completion"}
	}
	return nil
}

// CaptureError reports a rasterization failure.
type CaptureError struct {
	Message string
	Cause   error
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capture error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("capture error: %s", e.Message)
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}
