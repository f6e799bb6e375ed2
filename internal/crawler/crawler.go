// Package crawler runs one crawl at a time: it discovers episode links,
// extracts the selected episodes strictly one after another, pauses on
// anti-bot challenges and hands the result to an assembler.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yeorinhieut/novel-dl/internal/episodes"
	"github.com/yeorinhieut/novel-dl/internal/output"
	"github.com/yeorinhieut/novel-dl/internal/progress"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

var (
	ErrBusy       = errors.New("a crawl is already running")
	ErrNoEpisodes = errors.New("no episodes to download")
)

// DefaultTitle names the output when neither the job nor the site has a title.
const DefaultTitle = "novel"

type Lister interface {
	Discover(ctx context.Context, base string, pages int) (providers.Listing, error)
}

type Extractor interface {
	Extract(ctx context.Context, page providers.Page) (episodes.Record, error)
}

type Assembler interface {
	Assemble(m output.Manuscript) (string, error)
}

type Deps struct {
	Lister    Lister
	Opener    providers.Opener
	Extractor Extractor
	Assembler Assembler
	Reporter  Reporter
	Log       *ui.Logger
}

type Options struct {
	// PageRule is the prefix every episode URL must have. Empty accepts all.
	PageRule string
	// CaptchaTimeout bounds the wait for a challenge to be solved. Zero
	// waits until the crawl is cancelled.
	CaptchaTimeout time.Duration
	// Sleep waits between episodes. It defaults to a ctx-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Orchestrator struct {
	deps Deps
	opts Options
	gate *Gate

	mu   sync.Mutex
	task Task
	busy bool
}

func New(deps Deps, opts Options) *Orchestrator {
	if deps.Reporter == nil {
		deps.Reporter = nopReporter{}
	}
	if deps.Log == nil {
		deps.Log = ui.NewNopLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}

	return &Orchestrator{
		deps: deps,
		opts: opts,
		gate: &Gate{},
		task: Task{Status: StatusPending},
	}
}

// Challenge returns the ticket of the captcha the crawl is waiting on, or
// nil when it is not waiting.
func (o *Orchestrator) Challenge() *Ticket {
	return o.gate.Current()
}

// Snapshot returns a copy of the current task.
func (o *Orchestrator) Snapshot() Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.task
}

// Plan is the resolved work of a job before any episode is fetched.
type Plan struct {
	Title    string
	Listing  providers.Listing
	Episodes []episodes.Episode
	Start    int
	End      int
}

// Plan validates job, discovers links and selects the requested range. It
// does not touch the task, so it can be used for a dry run.
func (o *Orchestrator) Plan(ctx context.Context, job episodes.Job) (Plan, error) {
	if err := job.Validate(); err != nil {
		return Plan{}, err
	}

	listing, err := o.deps.Lister.Discover(ctx, job.ListingBase(), job.TotalPages)
	if err != nil {
		return Plan{}, err
	}
	if len(listing.Links) == 0 {
		return Plan{}, fmt.Errorf("%w: no episode links found at %s", ErrNoEpisodes, job.ListingBase())
	}

	end := job.EndEpisode
	if end == 0 {
		end = len(listing.Links)
	}

	selected, err := episodes.Select(listing.Links, job.StartEpisode, end)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrNoEpisodes, err)
	}

	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = listing.Title
	}
	if title == "" {
		title = DefaultTitle
	}

	return Plan{
		Title:    title,
		Listing:  listing,
		Episodes: selected,
		Start:    job.StartEpisode,
		End:      end,
	}, nil
}

// Result is what a finished crawl produced.
type Result struct {
	Task   Task
	Title  string
	Output string
}

// Run executes job and blocks until it is done, failed or ctx is cancelled.
// Only one Run may be in progress per Orchestrator; a second one gets
// ErrBusy. Failures of single episodes are counted, not returned.
func (o *Orchestrator) Run(ctx context.Context, job episodes.Job) (Result, error) {
	if err := job.Validate(); err != nil {
		return Result{}, err
	}

	o.mu.Lock()
	if o.busy || o.task.Status.Active() {
		o.mu.Unlock()
		return Result{}, ErrBusy
	}
	o.busy = true
	o.task = Task{ID: uuid.New(), Status: StatusPending, Message: "discovering episodes"}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	o.emit(progress.Stats{})
	log := o.deps.Log

	plan, err := o.Plan(ctx, job)
	if err != nil {
		return o.fail(ctx, err, progress.Stats{})
	}

	log.Infof("Crawl %s: found %d episode links, downloading %d~%d (%d episodes)",
		o.Snapshot().ID, len(plan.Listing.Links), plan.Start, plan.End, len(plan.Episodes))

	o.update(func(t *Task) {
		t.Total = len(plan.Episodes)
		t.Status = StatusRunning
		t.Message = ""
	})

	tracker := progress.NewTracker(len(plan.Episodes))
	stats := tracker.Update(0)
	o.emit(stats)

	records := make([]episodes.Record, 0, len(plan.Episodes))

	for i, ep := range plan.Episodes {
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, err, stats)
		}

		// Foreign links cost no request, so they do not earn a delay either.
		fetched := o.matchesRule(ep.URL)

		var (
			rec episodes.Record
			ok  bool
		)
		if fetched {
			rec, ok, err = o.episode(ctx, ep, stats)
			if err != nil {
				return o.fail(ctx, err, stats)
			}
		} else {
			log.Warnf("Episode %d: %s is not an episode page, skipping", ep.Number, ep.URL)
		}

		task := o.update(func(t *Task) {
			if ok {
				t.Completed++
			} else {
				t.Failed++
			}
		})
		if ok {
			records = append(records, rec)
		}

		stats = tracker.Update(task.Processed())
		o.emit(stats)

		if fetched && i < len(plan.Episodes)-1 {
			if err := o.opts.Sleep(ctx, job.Delay); err != nil {
				return o.fail(ctx, err, stats)
			}
		}
	}

	path, err := o.deps.Assembler.Assemble(output.Manuscript{
		Title:   plan.Title,
		Start:   plan.Start,
		End:     plan.End,
		Records: records,
		Archive: job.Archive,
	})
	if err != nil {
		return o.fail(ctx, err, stats)
	}

	task := o.update(func(t *Task) {
		t.Status = StatusDone
		t.Message = path
	})
	o.emit(stats)

	return Result{Task: task, Title: plan.Title, Output: path}, nil
}

// episode extracts one episode. ok is false when the episode is dropped; err
// is only set when the crawl has to stop.
func (o *Orchestrator) episode(ctx context.Context, ep episodes.Episode, stats progress.Stats) (episodes.Record, bool, error) {
	log := o.deps.Log

	page, err := o.deps.Opener.Open(ctx, ep.URL)
	if err != nil {
		if ctx.Err() != nil {
			return episodes.Record{}, false, ctx.Err()
		}
		log.Warnf("Episode %d: %v", ep.Number, err)
		return episodes.Record{}, false, nil
	}
	defer func() {
		_ = page.Close()
	}()

	rec, err := o.deps.Extractor.Extract(ctx, page)
	if err == nil {
		return rec, true, nil
	}
	if ctx.Err() != nil {
		return episodes.Record{}, false, ctx.Err()
	}
	if !errors.Is(err, providers.ErrNoContent) {
		log.Warnf("Episode %d: %v", ep.Number, err)
		return episodes.Record{}, false, nil
	}

	decision, err := o.challenge(ctx, ep, page, stats)
	if err != nil {
		if errors.Is(err, ErrCaptchaTimeout) {
			log.Warnf("Episode %d: %v, skipping", ep.Number, err)
			return episodes.Record{}, false, nil
		}
		return episodes.Record{}, false, err
	}
	log.Debugf("Episode %d: captcha answered with %s", ep.Number, decision)
	if decision == Skip {
		log.Infof("Episode %d skipped", ep.Number)
		return episodes.Record{}, false, nil
	}

	rec, err = o.deps.Extractor.Extract(ctx, page)
	if err != nil {
		if ctx.Err() != nil {
			return episodes.Record{}, false, ctx.Err()
		}
		log.Warnf("Episode %d still unavailable after retry: %v", ep.Number, err)
		return episodes.Record{}, false, nil
	}

	return rec, true, nil
}

// challenge parks the crawl in the captcha state until the gate is answered.
// The ticket is armed before the event goes out, so an observer may answer
// from inside Report.
func (o *Orchestrator) challenge(ctx context.Context, ep episodes.Episode, page providers.Page, stats progress.Stats) (Decision, error) {
	ticket := o.gate.Arm()

	if err := page.Reveal(ctx); err != nil {
		o.deps.Log.Debugf("reveal %s: %v", ep.URL, err)
	}

	o.update(func(t *Task) {
		t.Status = StatusCaptcha
		t.Captchas++
		t.URL = ep.URL
		t.Message = fmt.Sprintf("captcha on episode %d", ep.Number)
	})
	o.deps.Reporter.Report(Event{Task: o.Snapshot(), Stats: stats, Ticket: ticket})

	decision, err := ticket.Wait(ctx, o.opts.CaptchaTimeout)

	o.update(func(t *Task) {
		t.Status = StatusRunning
		t.URL = ""
		t.Message = ""
	})

	return decision, err
}

func (o *Orchestrator) matchesRule(url string) bool {
	return o.opts.PageRule == "" || strings.HasPrefix(url, o.opts.PageRule)
}

func (o *Orchestrator) fail(ctx context.Context, err error, stats progress.Stats) (Result, error) {
	msg := err.Error()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		msg = "cancelled"
	}

	task := o.update(func(t *Task) {
		t.Status = StatusError
		t.Message = msg
		t.URL = ""
	})
	o.emit(stats)

	return Result{Task: task}, err
}

func (o *Orchestrator) update(fn func(t *Task)) Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	fn(&o.task)
	return o.task
}

func (o *Orchestrator) emit(stats progress.Stats) {
	o.deps.Reporter.Report(Event{Task: o.Snapshot(), Stats: stats})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
