// Package memory is an in-process providers.Opener backed by canned HTML.
// It exists for tests: the crawler and booktoki packages drive whole crawls
// through it without a network or a browser. Nothing in the command uses it.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/yeorinhieut/novel-dl/internal/providers"
)

var ErrNotFound = errors.New("page not found")

// Site serves snapshots per URL. Each Document call on a URL returns the next
// snapshot; the last one repeats.
type Site struct {
	mu        sync.Mutex
	pages     map[string][]string
	errs      map[string]error
	docCalls  map[string]int
	opens     map[string]int
	closes    map[string]int
	revealed  []string
	openPages int
}

func New() *Site {
	return &Site{
		pages:    map[string][]string{},
		errs:     map[string]error{},
		docCalls: map[string]int{},
		opens:    map[string]int{},
		closes:   map[string]int{},
	}
}

func (s *Site) Set(url string, snapshots ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = snapshots
}

// Fail makes Open of url return err.
func (s *Site) Fail(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[url] = err
}

func (s *Site) Open(ctx context.Context, url string) (providers.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	if _, ok := s.pages[url]; !ok {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}

	s.opens[url]++
	s.openPages++
	return &page{site: s, url: url}, nil
}

// DocumentCalls is how many times url's document was read.
func (s *Site) DocumentCalls(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docCalls[url]
}

func (s *Site) Opens(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens[url]
}

func (s *Site) Closes(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes[url]
}

// OpenPages is the number of pages opened and not yet closed.
func (s *Site) OpenPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openPages
}

func (s *Site) Revealed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.revealed...)
}

type page struct {
	site *Site
	url  string
	once sync.Once
}

func (p *page) URL() string {
	return p.url
}

func (p *page) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.site.mu.Lock()
	snaps := p.site.pages[p.url]
	i := p.site.docCalls[p.url]
	p.site.docCalls[p.url]++
	p.site.mu.Unlock()

	if len(snaps) == 0 {
		return nil, fmt.Errorf("%s: %w", p.url, ErrNotFound)
	}
	if i >= len(snaps) {
		i = len(snaps) - 1
	}

	return goquery.NewDocumentFromReader(strings.NewReader(snaps[i]))
}

func (p *page) Reveal(context.Context) error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	p.site.revealed = append(p.site.revealed, p.url)
	return nil
}

func (p *page) Close() error {
	p.once.Do(func() {
		p.site.mu.Lock()
		defer p.site.mu.Unlock()
		p.site.closes[p.url]++
		p.site.openPages--
	})

	return nil
}
