package surface

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// 80mm stock expressed in inches for Page.printToPDF.
const paperWidthInches = 80.0 / 25.4

// ChromeFactory allocates one hidden Chrome tab per job.
type ChromeFactory struct {
	execPath string
}

// NewChromeFactory builds the production factory. execPath may be empty, in
// which case chromedp resolves the browser itself; DetectChrome provides an
// explicit path when the default lookup is not trusted.
func NewChromeFactory(execPath string) *ChromeFactory {
	return &ChromeFactory{execPath: execPath}
}

// New allocates a fresh browser context bound to ctx: cancelling the job
// context tears the surface down even if Close is never reached.
func (f *ChromeFactory) New(ctx context.Context) (Surface, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
	)
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromeSurface{ctx: tabCtx}
	s.close = func() {
		tabCancel()
		allocCancel()
	}
	return s, nil
}

type chromeSurface struct {
	ctx   context.Context
	close func()
	once  sync.Once
}

// Load navigates the tab to a data URL so generated HTML reaches Chrome
// without touching disk.
func (s *chromeSurface) Load(_ context.Context, html string) error {
	err := chromedp.Run(s.ctx,
		chromedp.Navigate("data:text/html,"+urlEncode(html)),
	)
	if err != nil {
		return fmt.Errorf("surface load: %w", err)
	}
	return nil
}

func (s *chromeSurface) PrintToPDF(_ context.Context) ([]byte, error) {
	var pdf []byte
	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Content-sized height: printToPDF has no auto-height mode, so
			// measure the document and size the page to it.
			var heightPx float64
			if err := chromedp.Evaluate(`document.documentElement.scrollHeight`, &heightPx).Do(ctx); err != nil {
				return err
			}
			heightInches := heightPx / 96.0
			if heightInches < 1 {
				heightInches = 1
			}
			buf, _, err := page.PrintToPDF().
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPrintBackground(true).
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(heightInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print instruction: %w", err)
	}
	return pdf, nil
}

func (s *chromeSurface) Screenshot(_ context.Context) ([]byte, error) {
	var png []byte
	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithCaptureBeyondViewport(true).
				Do(ctx)
			if err != nil {
				return err
			}
			png = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("surface capture: %w", err)
	}
	return png, nil
}

func (s *chromeSurface) Close() {
	s.once.Do(s.close)
}

func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
