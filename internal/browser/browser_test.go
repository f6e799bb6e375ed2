package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(Options{}))

	assert.Len(t, allocatorOptions(Options{Headless: true}), base+1)
	assert.Len(t, allocatorOptions(Options{Headless: true, ChromePath: "/bin/chrome", UserAgent: "ua"}), base+3)
}

// Needs a local Chrome; set NOVEL_DL_CHROME_TEST=1 to run.
func TestOpenAndSnapshot(t *testing.T) {
	if os.Getenv("NOVEL_DL_CHROME_TEST") == "" {
		t.Skip("NOVEL_DL_CHROME_TEST not set")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="novel_content">hello</div></body></html>`))
	}))
	defer srv.Close()

	b, err := New(Options{Headless: true, Settle: 10 * time.Millisecond}, ui.NewNopLogger())
	require.NoError(t, err)
	defer b.Close()

	p, err := b.Open(context.Background(), srv.URL)
	require.NoError(t, err)

	doc, err := p.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("#novel_content").Text())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}
