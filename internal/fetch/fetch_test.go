package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

func newTestClient(t *testing.T, opts HTTPClientOptions) *http.Client {
	t.Helper()

	opts.Transport = &http.Transport{}
	c, err := NewHTTPClient(opts)
	require.NoError(t, err)

	return c
}

func TestClientSetsHeaders(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("\n  cf_clearance=abc  \nignored=1\n"), 0o600))

	c := newTestClient(t, HTTPClientOptions{UserAgent: "test-agent", Cookie: "a=1", CookieFile: cookieFile})
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "a=1; cf_clearance=abc", gotCookie)
}

func TestCookieHeader(t *testing.T) {
	assert.Equal(t, "a=1", CookieHeader(" a=1 ", ""))
	assert.Equal(t, "a=1", CookieHeader("a=1", filepath.Join(t.TempDir(), "missing")))

	f := filepath.Join(t.TempDir(), "c")
	require.NoError(t, os.WriteFile(f, []byte("b=2"), 0o600))
	assert.Equal(t, "b=2", CookieHeader("", f))
}

func TestPickUserAgent(t *testing.T) {
	assert.Equal(t, "custom", PickUserAgent("  custom "))
	assert.Contains(t, userAgents, PickUserAgent(""))
}

func TestDocumentRefetches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`<form id="challenge"></form>`))
			return
		}
		_, _ = w.Write([]byte(`<div id="novel_content">ok</div>`))
	}))
	defer srv.Close()

	o := NewHTTPOpener(newTestClient(t, HTTPClientOptions{}), ui.NewNopLogger())
	page, err := o.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer page.Close()

	doc, err := page.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#challenge").Length())

	require.NoError(t, page.Reveal(context.Background()))

	doc, err = page.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("#novel_content").Text())
	assert.EqualValues(t, 2, hits.Load())
}

func TestDocumentStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	o := NewHTTPOpener(newTestClient(t, HTTPClientOptions{}), ui.NewNopLogger())
	page, err := o.Open(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = page.Document(context.Background())
	assert.ErrorIs(t, err, ErrStatus)
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewHTTPOpener(newTestClient(t, HTTPClientOptions{}), ui.NewNopLogger())
	_, err := o.Open(ctx, "http://example.invalid")
	assert.ErrorIs(t, err, context.Canceled)
}
