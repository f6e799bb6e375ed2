package providers

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestResolvePriorityOrder(t *testing.T) {
	doc := mustDoc(t, `<h1 class="title">Second</h1><div class="toon-title" title="First"> text </div>`)

	got, ok := Resolve(doc.Selection, Table([]string{".toon-title", "h1.title"}, TitleAttrOrText))
	require.True(t, ok)
	assert.Equal(t, "First", got)
}

func TestResolveFallsThroughRejectedMatch(t *testing.T) {
	doc := mustDoc(t, `<div class="toon-title"> </div><h1 class="title">Fallback</h1>`)

	got, ok := Resolve(doc.Selection, Table([]string{".toon-title", "h1.title"}, TitleAttrOrText))
	require.True(t, ok)
	assert.Equal(t, "Fallback", got)
}

func TestResolveFirstStopsAtFirstElement(t *testing.T) {
	doc := mustDoc(t, `<div class="toon-title" title=""> </div><h1 class="title">Fallback</h1>`)
	table := Table([]string{".toon-title", "h1.title"}, TitleAttrOrText)

	_, ok := ResolveFirst(doc.Selection, table)
	assert.False(t, ok)

	doc = mustDoc(t, `<h1 class="title">Only</h1>`)
	got, ok := ResolveFirst(doc.Selection, table)
	require.True(t, ok)
	assert.Equal(t, "Only", got)
}

func TestResolveNoMatch(t *testing.T) {
	doc := mustDoc(t, `<p>nothing here</p>`)

	_, ok := Resolve(doc.Selection, Table([]string{"#novel_content"}, InnerHTML))
	assert.False(t, ok)
}

func TestInnerHTMLAcceptsEmptyElement(t *testing.T) {
	doc := mustDoc(t, `<div id="novel_content"></div>`)

	got, ok := Resolve(doc.Selection, Table([]string{"#novel_content"}, InnerHTML))
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestFirstMatchDoesNotMerge(t *testing.T) {
	doc := mustDoc(t, `
		<a class="list-subject" href="/a">a</a>
		<a class="item-subject" href="/b">b</a>
		<a class="item-subject" href="/c">c</a>`)

	sel := FirstMatch(doc.Selection, []string{".missing", ".item-subject", "a.list-subject"})
	assert.Equal(t, 2, sel.Length())

	none := FirstMatch(doc.Selection, []string{".missing"})
	assert.Equal(t, 0, none.Length())
}

func TestTableSkipsBlankSelectors(t *testing.T) {
	assert.Len(t, Table([]string{" ", "a", ""}, Text), 1)
}

func TestAttrExtractor(t *testing.T) {
	doc := mustDoc(t, `<meta property="og:title" content=" Novel ">`)

	got, ok := Resolve(doc.Selection, []Strategy{{Selector: `meta[property="og:title"]`, Extract: Attr("content")}})
	require.True(t, ok)
	assert.Equal(t, "Novel", got)
}
