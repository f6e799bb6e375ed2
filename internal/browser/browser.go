// Package browser drives a local Chrome through chromedp. Each opened page is
// its own tab, which stays open until the page is closed so that a challenge
// can be solved in it by hand.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

// DefaultSettle is how long a page is left alone after scrolling, so lazy
// content can render before the snapshot.
const DefaultSettle = 800 * time.Millisecond

type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Cookie     string
	Settle     time.Duration
}

const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['ko-KR', 'ko', 'en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = { runtime: {} };
`

const scrollScript = `window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`

type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	log         *ui.Logger
}

// New starts Chrome. The returned Browser must be closed.
func New(opts Options, log *ui.Logger) (*Browser, error) {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))

	// Run with no actions launches the browser.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Debugf("browser started (headless=%t)", opts.Headless)

	return &Browser{ctx: ctx, cancel: cancel, allocCancel: allocCancel, opts: opts, log: log}, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.WindowSize(1280, 960),
	}

	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Headless {
		out = append(out, chromedp.Flag("headless", "new"))
	}
	if opts.ChromePath != "" {
		out = append(out, chromedp.ExecPath(opts.ChromePath))
	}

	return out
}

func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// Open loads url in a new tab and waits for its body. Cancelling ctx closes
// the tab.
func (b *Browser) Open(ctx context.Context, url string) (providers.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(b.ctx)
	t := &tab{browser: b, ctx: tabCtx, cancel: cancel, url: url}
	t.stop = context.AfterFunc(ctx, cancel)

	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
	if b.opts.Cookie != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{
			"Cookie": strings.TrimSpace(b.opts.Cookie),
		}))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		_ = t.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("open %s: %w", url, err)
	}

	return t, nil
}

type tab struct {
	browser *Browser
	ctx     context.Context
	cancel  context.CancelFunc
	stop    func() bool
	url     string
	once    sync.Once
}

func (t *tab) URL() string {
	return t.url
}

// Document scrolls to the bottom, waits for the page to settle and returns
// what the tab shows.
func (t *tab) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var html string
	err := chromedp.Run(t.ctx,
		chromedp.Evaluate(scrollScript, nil),
		chromedp.Sleep(t.browser.opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("snapshot %s: %w", t.url, err)
	}

	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (t *tab) Reveal(context.Context) error {
	if t.browser.opts.Headless {
		t.browser.log.Warnf("browser is headless; rerun without --headless to solve the challenge on %s", t.url)
	}

	return chromedp.Run(t.ctx, page.BringToFront())
}

func (t *tab) Close() error {
	t.once.Do(func() {
		t.stop()
		t.cancel()
	})

	return nil
}
