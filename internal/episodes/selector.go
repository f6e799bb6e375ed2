package episodes

import (
	"errors"
	"fmt"
)

var ErrOutOfRange = errors.New("episode range out of bounds")

// Select maps the reader-facing range start..end onto links, which the site
// lists newest first. The result is in reading order: episode start first.
// An end of 0 selects through the last discovered episode.
func Select(links []string, start, end int) ([]Episode, error) {
	total := len(links)
	if total == 0 {
		return nil, fmt.Errorf("%w: no episode links discovered", ErrOutOfRange)
	}
	if end == 0 {
		end = total
	}
	if start < 1 || end < start || end > total {
		return nil, fmt.Errorf("%w: requested %d~%d, found %d episodes", ErrOutOfRange, start, end, total)
	}

	window := links[total-end : total-start+1]

	out := make([]Episode, 0, len(window))
	for i := len(window) - 1; i >= 0; i-- {
		out = append(out, Episode{
			Number: start + (len(window) - 1 - i),
			URL:    window[i],
		})
	}

	return out, nil
}
