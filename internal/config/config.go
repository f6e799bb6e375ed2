package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yeorinhieut/novel-dl/internal/episodes"
	"gopkg.in/yaml.v3"
)

const (
	ModeMerge = "merge"
	ModeZip   = "zip"

	DefaultDelayMS     = 5000
	DefaultPageDelayMS = 300
	DefaultPageRule    = "https://booktoki"
)

type Config struct {
	Output string `yaml:"output"`
	Mode   string `yaml:"mode"`
	Debug  bool   `yaml:"debug"`

	BaseURL     string `yaml:"base_url"`
	Title       string `yaml:"title"`
	Pages       int    `yaml:"pages"`
	Start       int    `yaml:"start"`
	End         int    `yaml:"end"`
	DelayMS     int    `yaml:"delay_ms"`
	PageDelayMS int    `yaml:"page_delay_ms"`
	PageRule    string `yaml:"page_rule"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`

	Browser        bool   `yaml:"browser"`
	Headless       bool   `yaml:"headless"`
	ChromePath     string `yaml:"chrome_path"`
	CaptchaTimeout string `yaml:"captcha_timeout"`

	Selectors Selectors `yaml:"selectors"`
}

// Selectors override the built-in selector lists. Empty lists keep the
// defaults.
type Selectors struct {
	List       []string `yaml:"list,omitempty"`
	Title      []string `yaml:"title,omitempty"`
	Content    []string `yaml:"content,omitempty"`
	NovelTitle []string `yaml:"novel_title,omitempty"`
}

// Options carry command line values. Zero values leave the config untouched.
type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	Mode           string
	BaseURL        string
	Title          string
	Pages          int
	Start          int
	End            int
	DelayMS        int
	Cookie         string
	CookieFile     string
	UserAgent      string
	Browser        bool
	Headless       bool
	ChromePath     string
	CaptchaTimeout string
}

func DefaultConfig() *Config {
	return &Config{
		Output:         ".",
		Mode:           ModeMerge,
		Start:          1,
		DelayMS:        DefaultDelayMS,
		PageDelayMS:    DefaultPageDelayMS,
		PageRule:       DefaultPageRule,
		CaptchaTimeout: "0",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, applies opts on top and fills in
// defaults. The returned string says where the config came from.
func LoadMerged(opts Options) (*Config, string, error) {
	return DefaultStore().LoadMerged(opts)
}

func (s Store) LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", cfg.Validate()
	}

	activePath, err := s.ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `novel-dl config init` to create an actual config\n", cfg.Validate()
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, cfg.Validate()
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Title != "" {
		c.Title = o.Title
	}
	if o.Pages != 0 {
		c.Pages = o.Pages
	}
	if o.Start != 0 {
		c.Start = o.Start
	}
	if o.End != 0 {
		c.End = o.End
	}
	if o.DelayMS != 0 {
		c.DelayMS = o.DelayMS
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Browser {
		c.Browser = true
	}
	if o.Headless {
		c.Headless = true
	}
	if o.ChromePath != "" {
		c.ChromePath = o.ChromePath
	}
	if o.CaptchaTimeout != "" {
		c.CaptchaTimeout = o.CaptchaTimeout
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeMerge
	}
	if c.Start == 0 {
		c.Start = 1
	}
	if c.DelayMS == 0 {
		c.DelayMS = DefaultDelayMS
	}
	if c.PageDelayMS == 0 {
		c.PageDelayMS = DefaultPageDelayMS
	}
	if c.CaptchaTimeout == "" {
		c.CaptchaTimeout = "0"
	}
}

// Validate checks the values a job cannot check for itself.
func (c *Config) Validate() error {
	if c.Mode != ModeMerge && c.Mode != ModeZip {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeMerge, ModeZip, c.Mode)
	}
	if c.PageDelayMS < 0 {
		return fmt.Errorf("page_delay_ms must not be negative, got %d", c.PageDelayMS)
	}
	if _, err := c.CaptchaWait(); err != nil {
		return err
	}

	return nil
}

// CaptchaWait parses captcha_timeout. Zero means wait until cancelled.
func (c *Config) CaptchaWait() (time.Duration, error) {
	s := strings.TrimSpace(c.CaptchaTimeout)
	if s == "" || s == "0" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("captcha_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("captcha_timeout must not be negative, got %s", d)
	}

	return d, nil
}

func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// Job turns the config into a crawl job.
func (c *Config) Job() episodes.Job {
	return episodes.Job{
		BaseURL:      c.BaseURL,
		Title:        c.Title,
		TotalPages:   c.Pages,
		StartEpisode: c.Start,
		EndEpisode:   c.End,
		Delay:        time.Duration(c.DelayMS) * time.Millisecond,
		Archive:      c.Mode == ModeZip,
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -mode: %s\n", c.Mode)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.BaseURL != "" {
		fmt.Printf(" -url: %s\n", c.BaseURL)
	}
	if c.Title != "" {
		fmt.Printf(" -title: %s\n", c.Title)
	}
	if c.Pages > 0 {
		fmt.Printf(" -pages: %d\n", c.Pages)
	} else {
		fmt.Println(" -pages: auto")
	}
	if c.End > 0 {
		fmt.Printf(" -episodes: %d~%d\n", c.Start, c.End)
	} else {
		fmt.Printf(" -episodes: %d~last\n", c.Start)
	}
	fmt.Printf(" -delay_ms: %d\n", c.DelayMS)
	fmt.Printf(" -page_delay_ms: %d\n", c.PageDelayMS)
	if c.PageRule != "" {
		fmt.Printf(" -page_rule: %s\n", c.PageRule)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.Cookie != "" {
		fmt.Println(" -cookie: (set)")
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.Browser {
		fmt.Printf(" -browser: %t (headless: %t)\n", c.Browser, c.Headless)
	}
	if c.ChromePath != "" {
		fmt.Printf(" -chrome_path: %s\n", c.ChromePath)
	}
	if c.CaptchaTimeout != "0" {
		fmt.Printf(" -captcha_timeout: %s\n", c.CaptchaTimeout)
	}
	printList(" -selectors.list", c.Selectors.List)
	printList(" -selectors.title", c.Selectors.Title)
	printList(" -selectors.content", c.Selectors.Content)
	printList(" -selectors.novel_title", c.Selectors.NovelTitle)
}

func printList(label string, list []string) {
	if len(list) > 0 {
		fmt.Printf("%s: %s\n", label, strings.Join(list, ", "))
	}
}
