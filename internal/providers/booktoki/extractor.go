package booktoki

import (
	"context"
	"fmt"

	"github.com/yeorinhieut/novel-dl/internal/episodes"
	"github.com/yeorinhieut/novel-dl/internal/normalize"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

type Extractor struct {
	table Table
	log   *ui.Logger
}

func NewExtractor(table Table, log *ui.Logger) *Extractor {
	return &Extractor{table: table, log: log}
}

// Extract reads the episode currently shown by page. A page without any
// content element yields providers.ErrNoContent; a page that could not be
// loaded yields the load error.
func (e *Extractor) Extract(ctx context.Context, page providers.Page) (episodes.Record, error) {
	doc, err := page.Document(ctx)
	if err != nil {
		return episodes.Record{}, fmt.Errorf("load %s: %w", page.URL(), err)
	}

	// The first title element decides, even when it is blank.
	title, ok := providers.ResolveFirst(doc.Selection, e.table.Title)
	if !ok {
		title = UntitledEpisode
	}

	raw, ok := providers.Resolve(doc.Selection, e.table.Content)
	if !ok {
		e.log.Debugf("no content element on %s", page.URL())
		return episodes.Record{}, fmt.Errorf("%s: %w", page.URL(), providers.ErrNoContent)
	}

	content := normalize.StripTitle(normalize.Text(raw), title)

	return episodes.Record{Title: title, Content: content}, nil
}
