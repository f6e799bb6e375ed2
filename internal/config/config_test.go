package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) Store {
	t.Helper()
	return Store{Root: filepath.Join(t.TempDir(), "novel-dl")}
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	cfg, from, err := newStore(t).LoadMerged(Options{BaseURL: "https://booktoki.test/novel/1", End: 9})
	require.NoError(t, err)

	assert.Contains(t, from, "default config in memory")
	assert.Equal(t, ModeMerge, cfg.Mode)
	assert.Equal(t, 1, cfg.Start)
	assert.Equal(t, 9, cfg.End)
	assert.Equal(t, DefaultDelayMS, cfg.DelayMS)
	assert.Equal(t, DefaultPageRule, cfg.PageRule)
}

func TestLoadMergedProfileThenFlags(t *testing.T) {
	s := newStore(t)
	_, err := s.Init()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.PathFor(DefaultLabel), []byte(`
output: books
mode: ZIP
base_url: https://booktoki.test/novel/2
pages: 3
delay_ms: 1500
captcha_timeout: 2m
selectors:
  content: ["#body"]
`), 0644))

	cfg, from, err := s.LoadMerged(Options{DelayMS: 800, Title: "Override"})
	require.NoError(t, err)

	assert.Equal(t, s.PathFor(DefaultLabel), from)
	assert.Equal(t, "books", cfg.Output)
	assert.Equal(t, ModeZip, cfg.Mode)
	assert.Equal(t, 800, cfg.DelayMS)
	assert.Equal(t, DefaultPageDelayMS, cfg.PageDelayMS)
	assert.Equal(t, []string{"#body"}, cfg.Selectors.Content)

	wait, err := cfg.CaptchaWait()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, wait)

	job := cfg.Job()
	assert.Equal(t, "https://booktoki.test/novel/2", job.BaseURL)
	assert.Equal(t, "Override", job.Title)
	assert.Equal(t, 3, job.TotalPages)
	assert.Equal(t, 800*time.Millisecond, job.Delay)
	assert.True(t, job.Archive)
	assert.NoError(t, job.Validate())
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	s := newStore(t)
	_, err := s.Init()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.PathFor(DefaultLabel), []byte("output: elsewhere\n"), 0644))

	cfg, from, err := s.LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", from)
	assert.Equal(t, ".", cfg.Output)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Mode = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CaptchaTimeout = "soon"
	assert.Error(t, cfg.Validate())

	cfg.CaptchaTimeout = "-1s"
	assert.Error(t, cfg.Validate())
}

func TestStoreProfiles(t *testing.T) {
	s := newStore(t)

	_, err := s.ActiveConfigPath()
	require.ErrorIs(t, err, ErrNoConfig)

	path, err := s.Init()
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = s.Init()
	assert.True(t, errors.Is(err, os.ErrExist))

	src := filepath.Join(t.TempDir(), "fast.yaml")
	require.NoError(t, os.WriteFile(src, []byte("delay_ms: 700\n"), 0644))
	require.NoError(t, s.Add("fast", src))
	assert.Error(t, s.Add("fast", src))

	require.NoError(t, s.Switch("fast"))
	cfg, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 700, cfg.DelayMS)

	require.NoError(t, s.Rename("fast", "quick"))
	label, err := s.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "quick", label)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, DefaultLabel, list[0].Label)
	assert.Equal(t, "quick", list[1].Label)
	assert.True(t, list[1].Active)

	switched, err := s.Remove("quick")
	require.NoError(t, err)
	assert.True(t, switched)
	label, _ = s.CurrentLabel()
	assert.Equal(t, DefaultLabel, label)

	_, err = s.Remove(DefaultLabel)
	assert.Error(t, err)
	assert.Error(t, s.Switch("missing"))
}

func TestCreate(t *testing.T) {
	s := newStore(t)

	path, err := s.Create("slow")
	require.NoError(t, err)
	assert.Equal(t, s.PathFor("slow"), path)

	_, err = s.Create("slow")
	assert.Error(t, err)
}

func TestAddRejectsBrokenYAML(t *testing.T) {
	s := newStore(t)
	src := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(src, []byte("pages: [1\n"), 0644))

	assert.Error(t, s.Add("bad", src))
	assert.NoFileExists(t, s.PathFor("bad"))
}

func TestReset(t *testing.T) {
	s := newStore(t)
	path, err := s.Init()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("delay_ms: 900\n"), 0644))

	_, err = s.Reset()
	require.NoError(t, err)

	cfg, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDelayMS, cfg.DelayMS)
}

func TestConfigRootXDG(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "novel-dl"), ConfigRoot())
}
