package ui

import (
	"fmt"
	"io"
	"time"
)

type Summary struct {
	Title     string
	Output    string
	Size      int64
	Completed int
	Failed    int
	Captchas  int
	Elapsed   time.Duration
}

func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download Summary:")
	fmt.Fprintf(w, "Novel:    %s\n", s.Title)
	fmt.Fprintf(w, "Episodes: %d\n", s.Completed)
	fmt.Fprintf(w, "Failed:   %d\n", s.Failed)
	fmt.Fprintf(w, "Captchas: %d\n", s.Captchas)
	fmt.Fprintf(w, "Data:     %s\n", Human(s.Size))
	fmt.Fprintf(w, "Time:     %s\n", s.Elapsed.Round(time.Second))
	fmt.Fprintf(w, "Saved to: %s\n", s.Output)
}

func Human(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
