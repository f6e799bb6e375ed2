package crawler

import (
	"github.com/google/uuid"
	"github.com/yeorinhieut/novel-dl/internal/progress"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusCaptcha Status = "captcha"
	StatusError   Status = "error"
	StatusDone    Status = "done"
)

// Active reports whether a crawl in this state blocks a new one.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusCaptcha
}

// Task is the state of one crawl. Observers only ever see copies.
type Task struct {
	ID uuid.UUID
	// Total is the number of episodes selected for the crawl.
	Total int
	// Completed counts extracted episodes only.
	Completed int
	Failed    int
	Captchas  int
	Status    Status
	Message   string
	// URL is the episode waiting on a challenge while Status is captcha.
	URL string
}

// Processed is how many selected episodes have been dealt with either way.
func (t Task) Processed() int {
	return t.Completed + t.Failed
}

type Event struct {
	Task  Task
	Stats progress.Stats
	// Ticket is set on captcha events. Answering it resumes or skips exactly
	// that challenge.
	Ticket *Ticket
}

type Reporter interface {
	Report(Event)
}

type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) {
	f(e)
}

type nopReporter struct{}

func (nopReporter) Report(Event) {}
