package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

// ErrStatus is returned for responses that cannot carry a page.
var ErrStatus = errors.New("unexpected HTTP status")

// HTTPOpener loads pages with plain GET requests. There is no window to show
// a challenge in, so Reveal only tells the user where to go.
type HTTPOpener struct {
	client *http.Client
	log    *ui.Logger
}

func NewHTTPOpener(client *http.Client, log *ui.Logger) *HTTPOpener {
	return &HTTPOpener{client: client, log: log}
}

func (o *HTTPOpener) Open(ctx context.Context, url string) (providers.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &httpPage{opener: o, url: url}, nil
}

type httpPage struct {
	opener *HTTPOpener
	url    string
}

func (p *httpPage) URL() string {
	return p.url
}

// Document requests the page again on every call, so a retry after a solved
// challenge sees fresh content.
func (p *httpPage) Document(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.opener.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if !parseable(resp.StatusCode) {
		return nil, fmt.Errorf("%s: %w %d", p.url, ErrStatus, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (p *httpPage) Reveal(context.Context) error {
	p.opener.log.Warnf("open %s in your browser and solve the challenge", p.url)
	return nil
}

func (p *httpPage) Close() error {
	return nil
}

// parseable reports whether a response body may hold the page or the
// challenge that replaced it.
func parseable(code int) bool {
	switch {
	case code >= 200 && code < 300:
		return true
	case code == http.StatusForbidden, code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		return true
	}

	return false
}
