package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeorinhieut/novel-dl/internal/episodes"
	"github.com/yeorinhieut/novel-dl/internal/ui"
)

type recordingSink struct {
	textName string
	text     string
	zipName  string
	entries  []Entry
	err      error
}

func (s *recordingSink) SaveText(name, content string) (string, error) {
	s.textName, s.text = name, content
	return "/out/" + name, s.err
}

func (s *recordingSink) SaveArchive(name string, entries []Entry) (string, error) {
	s.zipName, s.entries = name, entries
	return "/out/" + name, s.err
}

var records = []episodes.Record{
	{Title: "Ep 2", Content: "two"},
	{Title: "Ep 3", Content: "three\n\nmore"},
}

func TestMerge(t *testing.T) {
	assert.Equal(t, "Novel\n\nEp 2\n\ntwo\n\nEp 3\n\nthree\n\nmore", Merge("Novel", records))
	assert.Equal(t, "Novel", Merge("Novel", nil))
}

func TestAssembleMerged(t *testing.T) {
	sink := &recordingSink{}
	path, err := NewAssembler(sink, ui.NewNopLogger()).Assemble(Manuscript{
		Title:   "My: Novel",
		Start:   2,
		End:     3,
		Records: records,
	})
	require.NoError(t, err)

	assert.Equal(t, "My_ Novel(2~3).txt", sink.textName)
	assert.Equal(t, "/out/My_ Novel(2~3).txt", path)
	assert.Equal(t, Merge("My: Novel", records), sink.text)
	assert.Empty(t, sink.zipName)
}

func TestAssembleArchive(t *testing.T) {
	sink := &recordingSink{}
	_, err := NewAssembler(sink, ui.NewNopLogger()).Assemble(Manuscript{
		Title:   "Novel",
		Records: records,
		Archive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Novel.zip", sink.zipName)
	assert.Equal(t, []Entry{
		{Name: "Ep 2.txt", Content: "two"},
		{Name: "Ep 3.txt", Content: "three\n\nmore"},
	}, sink.entries)
}

func TestAssembleSinkError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := NewAssembler(&recordingSink{err: boom}, ui.NewNopLogger()).Assemble(Manuscript{Title: "N"})
	assert.ErrorIs(t, err, boom)
}

func TestEntriesDeduplicate(t *testing.T) {
	got := Entries([]episodes.Record{
		{Title: "Prologue"},
		{Title: "a/b"},
		{Title: "Prologue"},
		{Title: "Prologue (3)"},
		{Title: "Prologue"},
	})

	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Name
	}

	assert.Equal(t, []string{
		"Prologue.txt",
		"a_b.txt",
		"Prologue (2).txt",
		"Prologue (3).txt",
		"Prologue (4).txt",
	}, names)
}
