package ui

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/yeorinhieut/novel-dl/internal/progress"
)

// ProgressState is what the episode bar shows.
type ProgressState struct {
	Total     int
	Completed int
	Failed    int
	Captchas  int
	Remaining time.Duration
}

func (s ProgressState) processed() int {
	return s.Completed + s.Failed
}

// CrawlProgress renders a single bar for the episodes of one crawl. The bar
// is created on the first Update and can be taken down with Pause while the
// terminal is needed for a prompt.
type CrawlProgress struct {
	mu    sync.Mutex
	title string
	p     *mpb.Progress
	bar   *mpb.Bar
	state atomic.Pointer[ProgressState]
}

func NewCrawlProgress(title string) *CrawlProgress {
	c := &CrawlProgress{title: title}
	c.state.Store(&ProgressState{})
	return c
}

func (c *CrawlProgress) Update(s ProgressState) {
	c.state.Store(&s)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar == nil {
		c.open()
	}

	c.bar.SetTotal(int64(s.Total), false)
	c.bar.SetCurrent(int64(s.processed()))
}

// Pause removes the bar until the next Update.
func (c *CrawlProgress) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar == nil {
		return
	}

	c.bar.Abort(true)
	c.p.Wait()
	c.bar, c.p = nil, nil
}

// Finish completes the bar and waits for the final render.
func (c *CrawlProgress) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar == nil {
		return
	}

	s := c.state.Load()
	c.bar.SetCurrent(int64(s.processed()))
	c.bar.SetTotal(int64(s.Total), true)
	c.p.Wait()
	c.bar, c.p = nil, nil
}

func (c *CrawlProgress) open() {
	c.p = mpb.New(
		mpb.WithWidth(40),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	c.bar = c.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(c.title+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d episodes", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				s := c.state.Load()
				return fmt.Sprintf(" | failed %d, captcha %d", s.Failed, s.Captchas)
			}),
			decor.Any(func(st decor.Statistics) string {
				if st.Completed {
					return ""
				}
				return " | ~" + progress.FormatDuration(c.state.Load().Remaining)
			}),
		),
	)
}
