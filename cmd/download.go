package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yeorinhieut/novel-dl/internal/browser"
	"github.com/yeorinhieut/novel-dl/internal/config"
	"github.com/yeorinhieut/novel-dl/internal/crawler"
	"github.com/yeorinhieut/novel-dl/internal/fetch"
	"github.com/yeorinhieut/novel-dl/internal/output"
	"github.com/yeorinhieut/novel-dl/internal/providers"
	"github.com/yeorinhieut/novel-dl/internal/providers/booktoki"
	"github.com/yeorinhieut/novel-dl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL   string
	flagTitle string
	flagPages int
	flagStart int
	flagEnd   int

	// runtime
	flagOutput         string
	flagMode           string
	flagDelay          int
	flagDryRun         bool
	flagCaptchaTimeout string

	// browser
	flagBrowser    bool
	flagHeadless   bool
	flagChromePath string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download a range of episodes into one text file or a zip archive. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagURL, "url", "", "episode listing page URL")
	downloadCmd.Flags().StringVar(&flagTitle, "title", "", "novel title used for file names (default: read from the site)")
	downloadCmd.Flags().IntVar(&flagPages, "pages", 0, "number of listing pages (0 detects it)")
	downloadCmd.Flags().IntVar(&flagStart, "start", 0, "first episode to download (default 1)")
	downloadCmd.Flags().IntVar(&flagEnd, "end", 0, "last episode to download (0 means the latest)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder")
	downloadCmd.Flags().StringVar(&flagMode, "mode", "", "output mode: merge or zip")
	downloadCmd.Flags().IntVar(&flagDelay, "delay", 0, "milliseconds to wait between episodes (at least 500)")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don’t download")
	downloadCmd.Flags().StringVar(&flagCaptchaTimeout, "captcha-timeout", "", "give up on a captcha after this long, e.g. 5m (0 waits forever)")

	// browser
	downloadCmd.Flags().BoolVar(&flagBrowser, "browser", false, "load pages in Chrome instead of plain HTTP")
	downloadCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run Chrome without a window")
	downloadCmd.Flags().StringVar(&flagChromePath, "chrome-path", "", "path to the Chrome executable")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:   flagIgnoreConfig,
		Debug:          flagDebug,
		Output:         flagOutput,
		Mode:           flagMode,
		BaseURL:        flagURL,
		Title:          flagTitle,
		Pages:          flagPages,
		Start:          flagStart,
		End:            flagEnd,
		DelayMS:        flagDelay,
		Cookie:         flagCookie,
		CookieFile:     flagCookieFile,
		UserAgent:      flagUserAgent,
		Browser:        flagBrowser,
		Headless:       flagHeadless,
		ChromePath:     flagChromePath,
		CaptchaTimeout: flagCaptchaTimeout,
	})
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("browser") {
		cfg.Browser = flagBrowser
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = flagHeadless
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if cfg.BaseURL == "" {
		return fmt.Errorf("missing --url and no base_url in config")
	}

	job := cfg.Job()
	if err := job.Validate(); err != nil {
		return err
	}

	captchaWait, err := cfg.CaptchaWait()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opener, closeOpener, err := newOpener(cfg, logSvc)
	if err != nil {
		return err
	}
	defer closeOpener()

	table := booktoki.NewTable(booktoki.Selectors(cfg.Selectors))
	bar := ui.NewCrawlProgress("Episodes")
	prompter := newCaptchaPrompter(stop, logSvc)

	orch := crawler.New(crawler.Deps{
		Lister:    booktoki.NewPaginator(opener, table, cfg.PageDelay(), logSvc),
		Opener:    opener,
		Extractor: booktoki.NewExtractor(table, logSvc),
		Assembler: output.NewAssembler(output.NewFileSink(cfg.Output, logSvc), logSvc),
		Reporter: crawler.ReporterFunc(func(e crawler.Event) {
			report(e, bar, prompter, logSvc)
		}),
		Log: logSvc,
	}, crawler.Options{
		PageRule:       cfg.PageRule,
		CaptchaTimeout: captchaWait,
	})

	if flagDryRun {
		return dryRun(ctx, orch, cfg)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	start := time.Now()
	res, err := orch.Run(ctx, job)
	bar.Finish()

	if err != nil {
		output.CleanupPartial(cfg.Output, logSvc)
		output.RemoveIfEmpty(cfg.Output, logSvc)
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("download interrupted after %d episodes", res.Task.Completed)
		}
		return err
	}

	var size int64
	if fi, err := os.Stat(res.Output); err == nil {
		size = fi.Size()
	}

	ui.PrintSummary(os.Stdout, ui.Summary{
		Title:     res.Title,
		Output:    res.Output,
		Size:      size,
		Completed: res.Task.Completed,
		Failed:    res.Task.Failed,
		Captchas:  res.Task.Captchas,
		Elapsed:   time.Since(start),
	})
	fmt.Println("\nAll done.")

	return nil
}

// report draws crawl events and hands captchas to the prompter. The
// question is asked off the crawl goroutine so a captcha timeout still fires
// while the prompt is open.
func report(e crawler.Event, bar *ui.CrawlProgress, prompter *captchaPrompter, log *ui.Logger) {
	switch e.Task.Status {
	case crawler.StatusRunning:
		bar.Update(ui.ProgressState{
			Total:     e.Task.Total,
			Completed: e.Task.Completed,
			Failed:    e.Task.Failed,
			Captchas:  e.Task.Captchas,
			Remaining: e.Stats.Remaining,
		})

	case crawler.StatusCaptcha:
		bar.Pause()
		go prompter.answer(e.Task.URL, e.Ticket)

	case crawler.StatusError:
		bar.Pause()
		log.Errorf("download failed: %s", e.Task.Message)
	}
}

// captchaPrompter asks about one challenge at a time. An answer only goes to
// the ticket it was asked for; a challenge that is already over by the time
// its turn comes is not asked about at all.
type captchaPrompter struct {
	// mu is held while a question is on screen.
	mu     sync.Mutex
	ask    func(url string) (bool, error)
	cancel context.CancelFunc
	log    *ui.Logger
}

func newCaptchaPrompter(cancel context.CancelFunc, log *ui.Logger) *captchaPrompter {
	return &captchaPrompter{ask: ui.ConfirmCaptcha, cancel: cancel, log: log}
}

func (p *captchaPrompter) answer(url string, ticket *crawler.Ticket) {
	if ticket == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !ticket.Pending() {
		p.log.Debugf("captcha on %s is over, not asking", url)
		return
	}

	retry, err := p.ask(url)
	if err != nil {
		if errors.Is(err, ui.ErrInterrupted) {
			p.cancel()
			return
		}
		p.log.Errorf("captcha prompt: %v", err)
	}

	var answered bool
	if retry {
		answered = ticket.Resume()
	} else {
		answered = ticket.Skip()
	}
	if !answered {
		p.log.Warnf("captcha on %s was already given up", url)
	}
}

func dryRun(ctx context.Context, orch *crawler.Orchestrator, cfg *config.Config) error {
	plan, err := orch.Plan(ctx, cfg.Job())
	if err != nil {
		return err
	}

	fmt.Printf("Novel: %s\n", plan.Title)
	fmt.Printf("Found %d episodes on %d listing pages.\n", len(plan.Listing.Links), plan.Listing.Pages)
	fmt.Printf("Dry-run: %d episodes selected (%d~%d).\n\n", len(plan.Episodes), plan.Start, plan.End)

	for _, ep := range plan.Episodes {
		fmt.Printf("%4d) %s\n", ep.Number, ep.URL)
	}

	return nil
}

// newOpener picks how pages are loaded. The returned func releases it.
func newOpener(cfg *config.Config, log *ui.Logger) (providers.Opener, func(), error) {
	ua := fetch.PickUserAgent(cfg.UserAgent)

	if cfg.Browser {
		b, err := browser.New(browser.Options{
			Headless:   cfg.Headless,
			ChromePath: cfg.ChromePath,
			UserAgent:  ua,
			Cookie:     fetch.CookieHeader(cfg.Cookie, cfg.CookieFile),
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	}

	client, err := fetch.NewHTTPClient(fetch.HTTPClientOptions{
		Timeout:     fetch.DefaultTimeout,
		UserAgent:   ua,
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: log,
	})
	if err != nil {
		return nil, nil, err
	}

	return fetch.NewHTTPOpener(client, log), func() {}, nil
}
