// Package output turns extracted episodes into the files handed to the user.
package output

import (
	"fmt"
	"strings"

	"github.com/yeorinhieut/novel-dl/internal/episodes"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

// Manuscript is everything a finished crawl produced.
type Manuscript struct {
	Title   string
	Start   int
	End     int
	Records []episodes.Record
	Archive bool
}

// Entry is one named file inside an archive.
type Entry struct {
	Name    string
	Content string
}

// Sink stores assembled output and returns where it went.
type Sink interface {
	SaveText(name, content string) (string, error)
	SaveArchive(name string, entries []Entry) (string, error)
}

type Assembler struct {
	sink Sink
	log  *ui.Logger
}

func NewAssembler(sink Sink, log *ui.Logger) *Assembler {
	return &Assembler{sink: sink, log: log}
}

// Assemble writes m as one merged text file or, in archive mode, one entry
// per episode.
func (a *Assembler) Assemble(m Manuscript) (string, error) {
	if len(m.Records) == 0 {
		a.log.Warnf("no episodes were extracted; writing %q anyway", m.Title)
	}

	if m.Archive {
		name := episodes.ArchiveFileName(m.Title)
		path, err := a.sink.SaveArchive(name, Entries(m.Records))
		if err != nil {
			return "", fmt.Errorf("archive %s: %w", name, err)
		}
		return path, nil
	}

	name := episodes.MergedFileName(m.Title, m.Start, m.End)
	path, err := a.sink.SaveText(name, Merge(m.Title, m.Records))
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	return path, nil
}

// Merge concatenates records in order under the novel title, with one blank
// line between every block.
func Merge(title string, records []episodes.Record) string {
	var b strings.Builder
	b.WriteString(title)

	for _, r := range records {
		b.WriteString("\n\n")
		b.WriteString(r.Title)
		b.WriteString("\n\n")
		b.WriteString(r.Content)
	}

	return b.String()
}

// Entries names one archive entry per record. Episodes whose sanitized titles
// collide get a " (n)" suffix so none is overwritten.
func Entries(records []episodes.Record) []Entry {
	seen := make(map[string]int, len(records))
	out := make([]Entry, 0, len(records))

	for _, r := range records {
		base := episodes.Sanitize(r.Title)
		name := base + ".txt"

		seen[name]++
		for n := seen[name]; n > 1; n++ {
			candidate := fmt.Sprintf("%s (%d).txt", base, n)
			if seen[candidate] == 0 {
				name = candidate
				seen[name]++
				break
			}
		}

		out = append(out, Entry{Name: name, Content: r.Content})
	}

	return out
}
