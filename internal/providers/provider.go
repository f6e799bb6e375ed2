package providers

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned by an extractor when a reachable page has no
// episode body. It is how an anti-bot interstitial shows up.
var ErrNoContent = errors.New("episode content not found")

// Page is one loaded page. Document may be called more than once; each call
// returns the page as it currently is. Close releases whatever backs the page
// and is safe to call more than once.
type Page interface {
	URL() string
	Document(ctx context.Context) (*goquery.Document, error)
	// Reveal puts the page in front of the user so a challenge can be solved.
	Reveal(ctx context.Context) error
	Close() error
}

type Opener interface {
	Open(ctx context.Context, url string) (Page, error)
}

// Listing is the result of walking every listing page of one novel.
type Listing struct {
	Title string
	Pages int
	// Links are in page order, then document order: newest episode first.
	Links []string
}

// FetchDocument opens url, takes one snapshot of it and closes the page.
func FetchDocument(ctx context.Context, o Opener, url string) (*goquery.Document, error) {
	p, err := o.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = p.Close()
	}()

	return p.Document(ctx)
}
