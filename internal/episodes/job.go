package episodes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinDelay is the smallest allowed pause between two episode fetches.
const MinDelay = 500 * time.Millisecond

var ErrInvalidJob = errors.New("invalid job")

// Job describes one crawl. It is not modified once a crawl starts.
//
// TotalPages 0 asks the paginator to detect the page count from the first
// listing page. EndEpisode 0 means the last discovered episode.
type Job struct {
	BaseURL      string
	Title        string
	TotalPages   int
	StartEpisode int
	EndEpisode   int
	Delay        time.Duration
	Archive      bool
}

// Validate rejects configurations that can be refused before any network activity.
func (j Job) Validate() error {
	if strings.TrimSpace(j.BaseURL) == "" {
		return fmt.Errorf("%w: missing base url", ErrInvalidJob)
	}
	if j.TotalPages < 0 {
		return fmt.Errorf("%w: page count must be positive, got %d", ErrInvalidJob, j.TotalPages)
	}
	if j.StartEpisode < 1 {
		return fmt.Errorf("%w: start episode must be at least 1, got %d", ErrInvalidJob, j.StartEpisode)
	}
	if j.EndEpisode != 0 && j.EndEpisode < j.StartEpisode {
		return fmt.Errorf("%w: end episode %d is before start episode %d", ErrInvalidJob, j.EndEpisode, j.StartEpisode)
	}
	if j.Delay < MinDelay {
		return fmt.Errorf("%w: delay %s is below the %s minimum", ErrInvalidJob, j.Delay, MinDelay)
	}

	return nil
}

// ListingBase strips the query string from the listing URL.
func (j Job) ListingBase() string {
	base, _, _ := strings.Cut(strings.TrimSpace(j.BaseURL), "?")
	return base
}
