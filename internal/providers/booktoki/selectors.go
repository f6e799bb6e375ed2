package booktoki

import (
	"github.com/yeorinhieut/novel-dl/internal/providers"
)

// UntitledEpisode is used when no title selector matches.
const UntitledEpisode = "Untitled Episode"

var (
	DefaultListSelectors = []string{
		".item-subject",
		"#serial-move ul li .wr-subject a",
		"a.list-subject",
		"a[href*='/novel/'][class*='subject']",
	}

	DefaultTitleSelectors = []string{
		".toon-title",
		".view-title",
		"h1.title",
		".post-title",
		".entry-title",
	}

	DefaultContentSelectors = []string{
		"#novel_content",
		".novel-content",
		".view-content",
		".entry-content",
		".post-content",
	}

	DefaultNovelTitleSelectors = []string{
		"#content_wrapper > div.page-title > span",
		"#content_wrapper > div:first-of-type > span",
		".page-title span",
	}
)

const paginationSelector = ".pagination li a[href*='spage=']"

// Selectors is the set of selector lists a crawl uses. Empty lists fall back
// to the defaults above.
type Selectors struct {
	List       []string
	Title      []string
	Content    []string
	NovelTitle []string
}

// Table is the compiled form of Selectors.
type Table struct {
	List       []string
	Title      []providers.Strategy
	Content    []providers.Strategy
	NovelTitle []providers.Strategy
}

func NewTable(s Selectors) Table {
	novel := providers.Table(orDefault(s.NovelTitle, DefaultNovelTitleSelectors), providers.Text)
	novel = append(novel, providers.Strategy{
		Selector: `meta[property="og:title"]`,
		Extract:  providers.Attr("content"),
	})

	return Table{
		List:       orDefault(s.List, DefaultListSelectors),
		Title:      providers.Table(orDefault(s.Title, DefaultTitleSelectors), providers.TitleAttrOrText),
		Content:    providers.Table(orDefault(s.Content, DefaultContentSelectors), providers.InnerHTML),
		NovelTitle: novel,
	}
}

func orDefault(list, def []string) []string {
	if len(list) == 0 {
		return def
	}

	return list
}
