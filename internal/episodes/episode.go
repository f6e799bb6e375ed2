package episodes

import (
	"fmt"
	"strings"
)

// Episode is one discovered episode link with its reader-facing number.
type Episode struct {
	Number int
	URL    string
}

// Record is the extracted, normalized text of one episode.
type Record struct {
	Title   string
	Content string
}

var illegalChars = []string{"/", "\\", "?", "%", "*", ":", "|", "\"", "<", ">"}

// Sanitize replaces characters that are not allowed in file names with an underscore.
func Sanitize(s string) string {
	for _, c := range illegalChars {
		s = strings.ReplaceAll(s, c, "_")
	}

	return s
}

func (r Record) FileName() string {
	return Sanitize(r.Title) + ".txt"
}

// MergedFileName is the name of the merged document for the episode range start..end.
func MergedFileName(title string, start, end int) string {
	return fmt.Sprintf("%s(%d~%d).txt", Sanitize(title), start, end)
}

// ArchiveFileName is the name of the per-episode archive for a novel.
func ArchiveFileName(title string) string {
	return Sanitize(title) + ".zip"
}
