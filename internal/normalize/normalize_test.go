package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextExample(t *testing.T) {
	got := Text("<p>Hello</p><br><div>World &amp; friends</div>")
	assert.Equal(t, "Hello\n\nWorld & friends", got)
}

func TestTextCases(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"line breaks", "one<br/>two<BR>three<br class=\"x\">four", "one\n\ntwo\n\nthree\n\nfour"},
		{"image", "<p>before</p><img src=\"a.png\" alt=\"x\"><p>after</p>", "before\n\n[skipped image]\n\nafter"},
		{"attributes on tags", "<p class=\"c\">a <span style=\"x\">b</span></p>", "a b"},
		{"spaces collapse", "<p>a     b</p>", "a b"},
		{"nbsp does not leave double spaces", "a &nbsp;b", "a b"},
		{"trim and drop blank lines", "  x  \n\n\n\n   \n  y ", "x\n\ny"},
		{"quote entities", "&quot;hi&quot; &#39;there&#39; &#34;x&#34;", "\"hi\" 'there' \"x\""},
		{"typographic entities", "&ldquo;a&rdquo; &lsquo;b&rsquo; &ndash; &mdash;", "“a” ‘b’ – —"},
		{"single pass decode", "&amp;lt;", "&lt;"},
		{"empty", "<div></div>", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Text(tc.in))
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	fragments := []string{
		"<p>Hello</p><br><div>World &amp; friends</div>",
		"<div><p>  one  </p>\n\n\n<p>two&nbsp;&nbsp;three</p></div>",
		"text with\ttabs <br> and <img src=x> images",
		"<p>&ldquo;quoted&rdquo;</p><p></p><p>   </p><p>end</p>",
		"no markup at all",
		strings.Repeat("<p>para</p>\n", 5),
	}

	for _, f := range fragments {
		once := Text(f)
		assert.Equal(t, once, Text(once), "fragment %q", f)
		assert.NotContains(t, once, "\n\n\n")
		assert.NotContains(t, once, "  ")
		assert.NotRegexp(t, `<[^>]*>`, once)
	}
}

func TestTextDecodesEntitiesOnce(t *testing.T) {
	// Escaped entities come out as entities. Normalizing again decodes them,
	// so these fragments are the exception to idempotence.
	cases := []struct {
		in, once, twice string
	}{
		{"AT&amp;amp;T", "AT&amp;T", "AT&T"},
		{"a &amp;nbsp; b", "a &nbsp; b", "a b"},
		{"&lt;p&gt;x&lt;/p&gt;", "<p>x</p>", "x"},
	}

	for _, c := range cases {
		once := Text(c.in)
		assert.Equal(t, c.once, once, "fragment %q", c.in)
		assert.Equal(t, c.twice, Text(once), "fragment %q", c.in)
	}
}

func TestStripTitle(t *testing.T) {
	assert.Equal(t, "body text", StripTitle("Episode 1\n\nbody text", "Episode 1"))
	assert.Equal(t, "body text", StripTitle("body text", "Episode 1"))
	assert.Equal(t, "body", StripTitle("body", ""))
}
