// Package normalize turns episode body HTML into plain text with one blank
// line between paragraphs.
package normalize

import (
	"regexp"
	"strings"
)

// ImagePlaceholder replaces every <img> tag.
const ImagePlaceholder = "[skipped image]"

var (
	reDiv       = regexp.MustCompile(`(?i)</?div>`)
	reParagraph = regexp.MustCompile(`(?i)</?p(?:\s[^>]*)?>`)
	reBreak     = regexp.MustCompile(`(?i)<br(?:\s[^>]*)?/?>`)
	reImage     = regexp.MustCompile(`(?i)<img[^>]*>`)
	reTag       = regexp.MustCompile(`<[^>]*>`)
	reSpaces    = regexp.MustCompile(` {2,}`)
	reNewlines  = regexp.MustCompile(`\n{3,}`)
)

// entities is applied in a single pass, so "&amp;lt;" decodes to "&lt;".
// The numeric forms are what goquery's renderer emits for quotes.
var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#34;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&nbsp;", " ",
	"&ndash;", "–",
	"&mdash;", "—",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&ldquo;", "“",
	"&rdquo;", "”",
)

// Text normalizes an HTML fragment.
//
// The result has no tags, no runs of two or more spaces, no blank lines
// inside a paragraph and exactly one blank line between paragraphs.
// Entities are decoded in a single pass, so Text(Text(x)) == Text(x) holds
// only when the decoded text contains no further entity or markup: a doubly
// escaped "&amp;amp;" becomes "&amp;" and then "&" on the next call, and
// "&lt;p&gt;" becomes a tag that a second call strips.
func Text(fragment string) string {
	s := reDiv.ReplaceAllString(fragment, "")
	s = reParagraph.ReplaceAllString(s, "\n")
	s = reBreak.ReplaceAllString(s, "\n")
	s = reImage.ReplaceAllString(s, ImagePlaceholder)
	s = reTag.ReplaceAllString(s, "")
	s = entities.Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			kept = append(kept, l)
		}
	}

	return reNewlines.ReplaceAllString(strings.Join(kept, "\n\n"), "\n\n")
}

// StripTitle removes a leading copy of title from content.
func StripTitle(content, title string) string {
	if title == "" || !strings.HasPrefix(content, title) {
		return content
	}

	return strings.TrimSpace(strings.TrimPrefix(content, title))
}
