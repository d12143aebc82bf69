// Package ingest runs the fetch, dedup, categorize and index pipeline
// on a schedule and exposes its runtime controls.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/ObaidOIS/TSFSE/internal/classify"
	"github.com/ObaidOIS/TSFSE/internal/database"
	"github.com/ObaidOIS/TSFSE/internal/dedup"
	"github.com/ObaidOIS/TSFSE/internal/fetch"
	"github.com/ObaidOIS/TSFSE/internal/index"
)

// ErrBusy is returned when a cycle is requested while one is already
// running. Handlers map it to a 409.
var ErrBusy = errors.New("ingest cycle already running")

// ErrStopped is returned for commands sent after the scheduler loop
// has exited.
var ErrStopped = errors.New("ingest scheduler stopped")

// Fetcher pulls candidates from one feed.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]fetch.Candidate, int, error)
}

// Store is the database surface the pipeline works through. Keyword
// tables are re-read at the start of each cycle so category edits
// take effect without a restart.
type Store interface {
	GetArticleByURLHash(ctx context.Context, urlHash string) (*database.Article, error)
	CreateArticle(ctx context.Context, article *database.Article) error
	UpdateArticle(ctx context.Context, article *database.Article) error
	KeywordTables(ctx context.Context) (classify.Tables, error)
}

// Categorizer assigns a category and extracts keywords and entities.
// Reload swaps in fresh keyword tables.
type Categorizer interface {
	Categorize(title, body string) classify.Result
	Reload(tables classify.Tables)
}

// Config holds scheduler settings.
type Config struct {
	FeedURLs    []string
	Interval    time.Duration
	Active      bool
	Workers     int
	MaxPerCycle int
	HistorySize int
}

// State is a snapshot of the scheduler, shaped for the status
// endpoint.
type State struct {
	IsActive             bool       `json:"is_active"`
	IntervalSeconds      int        `json:"interval_seconds"`
	LastRunAt            *time.Time `json:"last_run_at"`
	LastArticleURL       string     `json:"last_article_url"`
	ArticlesFetchedTotal int        `json:"articles_fetched_total"`
	LastError            string     `json:"last_error"`
	Status               string     `json:"status"`
}

// CycleSummary records the outcome of one ingest cycle.
type CycleSummary struct {
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
	Fetched        int       `json:"fetched"`
	New            int       `json:"new"`
	Updated        int       `json:"updated"`
	Duplicates     int       `json:"duplicates"`
	Skipped        int       `json:"skipped"`
	Errors         []string  `json:"errors,omitempty"`
	Failed         bool      `json:"failed"`
	LastArticleURL string    `json:"-"`
}

type commandKind int

const (
	cmdToggle commandKind = iota
	cmdTrigger
)

type command struct {
	kind  commandKind
	set   *bool
	reply chan commandResult
}

type commandResult struct {
	state State
	err   error
}

// Scheduler owns the ingest loop. Toggle and trigger travel through a
// control channel consumed by Run, so the loop goroutine is the only
// writer of scheduler state. At most one cycle runs at a time, and
// flipping the toggle never aborts a cycle already in flight.
type Scheduler struct {
	cfg         Config
	fetcher     Fetcher
	store       Store
	deduper     *dedup.Deduplicator
	categorizer Categorizer
	indexer     *index.Indexer
	pool        *ants.Pool
	logger      *zap.SugaredLogger
	now         func() time.Time

	commands chan command
	stopped  chan struct{}

	mu        sync.Mutex
	runCtx    context.Context
	active    bool
	running   bool
	lastRunAt *time.Time
	lastURL   string
	fetched   int
	lastError string
	history   []CycleSummary
	cycleDone sync.WaitGroup
}

// New creates a scheduler. The worker pool is sized by cfg.Workers.
// Run must be started for Toggle and Trigger to be served.
func New(cfg Config, fetcher Fetcher, store Store, categorizer Categorizer, indexer *index.Indexer, logger *zap.SugaredLogger) (*Scheduler, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxPerCycle <= 0 {
		cfg.MaxPerCycle = 50
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 20
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cfg:         cfg,
		fetcher:     fetcher,
		store:       store,
		deduper:     dedup.New(store),
		categorizer: categorizer,
		indexer:     indexer,
		pool:        pool,
		logger:      logger,
		now:         time.Now,
		commands:    make(chan command),
		stopped:     make(chan struct{}),
		active:      cfg.Active,
	}, nil
}

// Run drives the scheduler until the context is canceled: periodic
// ticks start cycles while the toggle is on, and control commands are
// served in between. Cycles run in their own goroutine so the loop
// never blocks behind a slow feed.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.cycleDone.Wait()
			s.pool.Release()
			close(s.stopped)
			return
		case <-ticker.C:
			if !s.isActive() {
				continue
			}
			if err := s.startCycle(); err != nil {
				s.logger.Debugw("skipping scheduled cycle", "reason", err)
			}
		case cmd := <-s.commands:
			cmd.reply <- s.handle(cmd)
		}
	}
}

func (s *Scheduler) handle(cmd command) commandResult {
	switch cmd.kind {
	case cmdToggle:
		s.mu.Lock()
		if cmd.set != nil {
			s.active = *cmd.set
		} else {
			s.active = !s.active
		}
		s.mu.Unlock()
		return commandResult{state: s.State()}
	case cmdTrigger:
		return commandResult{err: s.startCycle(), state: s.State()}
	default:
		return commandResult{state: s.State()}
	}
}

// Trigger starts a cycle immediately regardless of the toggle. The
// cycle runs on the scheduler's own context, not the caller's, so it
// outlives the request that asked for it. Returns ErrBusy if one is
// already running.
func (s *Scheduler) Trigger() error {
	return s.send(command{kind: cmdTrigger}).err
}

// Toggle sets scheduled ingestion to the given value, or flips the
// switch when fetch is nil, and returns the new state. An in-flight
// cycle always runs to completion.
func (s *Scheduler) Toggle(fetch *bool) State {
	return s.send(command{kind: cmdToggle, set: fetch}).state
}

func (s *Scheduler) send(cmd command) commandResult {
	cmd.reply = make(chan commandResult, 1)
	select {
	case s.commands <- cmd:
		return <-cmd.reply
	case <-s.stopped:
		return commandResult{state: s.State(), err: ErrStopped}
	}
}

func (s *Scheduler) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns a snapshot of the scheduler.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "disabled"
	switch {
	case s.lastError != "":
		status = "error"
	case s.active:
		status = "running"
	}

	return State{
		IsActive:             s.active,
		IntervalSeconds:      int(s.cfg.Interval.Seconds()),
		LastRunAt:            s.lastRunAt,
		LastArticleURL:       s.lastURL,
		ArticlesFetchedTotal: s.fetched,
		LastError:            s.lastError,
		Status:               status,
	}
}

// History returns recent cycle summaries, newest first.
func (s *Scheduler) History() []CycleSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CycleSummary, len(s.history))
	for i, summary := range s.history {
		out[len(s.history)-1-i] = summary
	}
	return out
}

// startCycle claims the single cycle slot and runs the pipeline in
// the background.
func (s *Scheduler) startCycle() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrBusy
	}
	s.running = true
	ctx := s.runCtx
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	s.cycleDone.Add(1)
	go func() {
		defer s.cycleDone.Done()
		summary := s.runCycle(ctx)
		s.finishCycle(summary)
	}()

	return nil
}

// finishCycle folds the cycle outcome into the scheduler state and
// the history ring. A failed cycle sets last_error; a clean one
// clears it. The toggle is never touched here.
func (s *Scheduler) finishCycle(summary CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	finished := summary.StartedAt.Add(time.Duration(summary.DurationMS) * time.Millisecond)
	s.lastRunAt = &finished
	s.fetched += summary.New
	if summary.LastArticleURL != "" {
		s.lastURL = summary.LastArticleURL
	}
	if summary.Failed {
		s.lastError = "all feeds failed"
		if len(summary.Errors) > 0 {
			s.lastError = summary.Errors[len(summary.Errors)-1]
		}
	} else {
		s.lastError = ""
	}

	s.history = append(s.history, summary)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}

	s.logger.Infow("ingest cycle finished",
		"fetched", summary.Fetched,
		"new", summary.New,
		"updated", summary.Updated,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration_ms", summary.DurationMS,
	)
}
