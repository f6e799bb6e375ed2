package providers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls a value out of the first element a selector matched.
type Extractor func(sel *goquery.Selection) (string, bool)

// Strategy pairs a selector with the extractor used on its match.
type Strategy struct {
	Selector string
	Extract  Extractor
}

// Resolve tries table in order and returns the first value an extractor accepts.
func Resolve(root *goquery.Selection, table []Strategy) (string, bool) {
	for _, s := range table {
		sel := root.Find(s.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v, ok := s.Extract(sel); ok {
			return v, true
		}
	}

	return "", false
}

// ResolveFirst stops at the first selector that matches any element and
// returns what its extractor makes of it. Later selectors are not consulted
// when that extractor rejects the element.
func ResolveFirst(root *goquery.Selection, table []Strategy) (string, bool) {
	for _, s := range table {
		sel := root.Find(s.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		return s.Extract(sel)
	}

	return "", false
}

// FirstMatch returns every element matched by the first selector that matches
// anything. Matches from different selectors are never merged.
func FirstMatch(root *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if sel := root.Find(s); sel.Length() > 0 {
			return sel
		}
	}

	return root.Slice(0, 0)
}

// Table builds strategies that share one extractor.
func Table(selectors []string, extract Extractor) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, s := range selectors {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, Strategy{Selector: s, Extract: extract})
	}

	return out
}

// TitleAttrOrText prefers the title attribute and falls back to element text.
func TitleAttrOrText(sel *goquery.Selection) (string, bool) {
	if v, ok := sel.Attr("title"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}

	t := strings.TrimSpace(sel.Text())
	return t, t != ""
}

func Text(sel *goquery.Selection) (string, bool) {
	t := strings.TrimSpace(sel.Text())
	return t, t != ""
}

// InnerHTML accepts any matched element, empty or not.
func InnerHTML(sel *goquery.Selection) (string, bool) {
	h, err := sel.Html()
	if err != nil {
		return "", false
	}

	return h, true
}

// Attr returns an extractor for a non-empty attribute value.
func Attr(name string) Extractor {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := sel.Attr(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
}
