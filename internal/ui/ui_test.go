package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "1.00 GB", Human(1<<30))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, Summary{
		Title:     "Novel",
		Output:    "out/Novel(1~3).txt",
		Size:      2048,
		Completed: 3,
		Failed:    1,
		Captchas:  2,
		Elapsed:   61500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "Episodes: 3\n")
	assert.Contains(t, out, "Failed:   1\n")
	assert.Contains(t, out, "Captchas: 2\n")
	assert.Contains(t, out, "Data:     2.00 KB\n")
	assert.Contains(t, out, "Time:     1m2s\n")
	assert.Contains(t, out, "Saved to: out/Novel(1~3).txt\n")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Infof("ignored %d", 1)
	l.Sync()
	assert.False(t, l.Debug)
}
