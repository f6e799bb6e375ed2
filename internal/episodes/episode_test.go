package episodes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a_b_c_d_e_f_g_h_i_j_k", Sanitize(`a/b\c?d%e*f:g|h"i<j>k`))
	assert.Equal(t, "plain title 12", Sanitize("plain title 12"))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "My_Novel(2~4).txt", MergedFileName("My/Novel", 2, 4))
	assert.Equal(t, "My_Novel.zip", ArchiveFileName("My:Novel"))
	assert.Equal(t, "Ep 1_ Start.txt", Record{Title: "Ep 1? Start"}.FileName())
}

func TestJobValidate(t *testing.T) {
	valid := Job{BaseURL: "https://booktoki.test/novel/1", TotalPages: 1, StartEpisode: 1, EndEpisode: 3, Delay: time.Second}
	assert.NoError(t, valid.Validate())

	auto := valid
	auto.TotalPages = 0
	auto.EndEpisode = 0
	assert.NoError(t, auto.Validate())

	broken := []func(j *Job){
		func(j *Job) { j.BaseURL = " " },
		func(j *Job) { j.TotalPages = -1 },
		func(j *Job) { j.StartEpisode = 0 },
		func(j *Job) { j.StartEpisode = 3; j.EndEpisode = 2 },
		func(j *Job) { j.Delay = 100 * time.Millisecond },
	}
	for _, mutate := range broken {
		j := valid
		mutate(&j)
		assert.ErrorIs(t, j.Validate(), ErrInvalidJob)
	}
}

func TestListingBase(t *testing.T) {
	j := Job{BaseURL: "https://booktoki.test/novel/77?spage=3&stx=x"}
	assert.Equal(t, "https://booktoki.test/novel/77", j.ListingBase())
}
