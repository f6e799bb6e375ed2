package booktoki

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/ui"
	"golang.org/x/time/rate"
)

// DefaultPageDelay spaces listing page requests.
const DefaultPageDelay = 300 * time.Millisecond

type Paginator struct {
	opener  providers.Opener
	table   Table
	limiter *rate.Limiter
	// wait runs before every page request.
	wait func(ctx context.Context) error
	log  *ui.Logger
}

func NewPaginator(o providers.Opener, table Table, pageDelay time.Duration, log *ui.Logger) *Paginator {
	if pageDelay <= 0 {
		pageDelay = DefaultPageDelay
	}

	p := &Paginator{
		opener:  o,
		table:   table,
		limiter: rate.NewLimiter(rate.Every(pageDelay), 1),
		log:     log,
	}
	p.wait = p.limiter.Wait

	return p
}

// PageURL returns the listing URL of the 1-based page n.
func PageURL(base string, n int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?spage=" + strconv.Itoa(n)
	}

	q := u.Query()
	q.Set("spage", strconv.Itoa(n))
	u.RawQuery = q.Encode()

	return u.String()
}

// Discover walks listing pages 1..pages and collects episode links. With
// pages 0 the count is read from the pagination of the first page.
//
// Discovery is best effort: a page that fails to load or matches no list
// selector adds no links and the walk continues. The only error returned is
// ctx's.
func (p *Paginator) Discover(ctx context.Context, base string, pages int) (providers.Listing, error) {
	var out providers.Listing

	for n := 1; pages == 0 || n <= pages; n++ {
		if err := p.wait(ctx); err != nil {
			return out, err
		}

		pageURL := PageURL(base, n)
		doc, err := providers.FetchDocument(ctx, p.opener, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			p.log.Warnf("listing page %d failed: %v", n, err)
		}

		if n == 1 {
			if pages == 0 {
				pages = 1
				if doc != nil {
					pages = DetectPages(doc)
				}
				p.log.Debugf("detected %d listing pages", pages)
			}
			if doc != nil {
				out.Title = p.NovelTitle(doc)
			}
		}

		if doc == nil {
			continue
		}

		links := p.links(doc, pageURL)
		if len(links) == 0 {
			p.log.Warnf("listing page %d has no episode links", n)
		}
		p.log.Debugf("listing page %d: %d links", n, len(links))
		out.Links = append(out.Links, links...)
	}

	out.Pages = pages
	return out, nil
}

func (p *Paginator) links(doc *goquery.Document, pageURL string) []string {
	var out []string

	providers.FirstMatch(doc.Selection, p.table.List).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			href, ok = a.Find("a[href]").First().Attr("href")
		}

		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}

		out = append(out, resolveURL(pageURL, href))
	})

	return out
}

// NovelTitle reads the novel's name from a listing page, or "" if absent.
func (p *Paginator) NovelTitle(doc *goquery.Document) string {
	t, _ := providers.Resolve(doc.Selection, p.table.NovelTitle)
	return t
}

// DetectPages returns the highest spage number linked from the pagination
// block, or 1 when there is none.
func DetectPages(doc *goquery.Document) int {
	last := 1

	doc.Find(paginationSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}

		if n, err := strconv.Atoi(u.Query().Get("spage")); err == nil && n > last {
			last = n
		}
	})

	return last
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
