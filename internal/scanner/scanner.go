// Package scanner drives the fake security scan shown while the page loads.
package scanner

import (
	"errors"
	"sync"
	"time"

	"github.com/Zachkp/cyber-portfolio/internal/clock"
)

// DefaultInterval is the delay between two scan messages.
const DefaultInterval = 800 * time.Millisecond

// Messages is the stock scan log.
var Messages = []string{
	"Initializing security scan...",
	"Checking for vulnerabilities...",
	"Scanning network ports...",
	"Analyzing system integrity...",
	"Verifying encryption protocols...",
	"Securing communication channels...",
	"Establishing secure connection...",
	"Security scan complete. Welcome.",
}

var (
	ErrNoMessages = errors.New("scanner: no messages")
	ErrInterval   = errors.New("scanner: interval must be positive")
)

// Progress is what the loading screen displays.
type Progress struct {
	Step     int     `json:"step"`
	Text     string  `json:"text"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
}

type Option func(*Scanner)

func WithScheduler(s clock.Scheduler) Option {
	return func(sc *Scanner) { sc.sched = s }
}

func WithListener(l func(Progress)) Option {
	return func(sc *Scanner) { sc.listeners = append(sc.listeners, l) }
}

type Scanner struct {
	mu        sync.Mutex
	messages  []string
	interval  time.Duration
	sched     clock.Scheduler
	listeners []func(Progress)

	progress Progress
	timer    clock.Timer
	started  bool
	stopped  bool
	done     chan struct{}
}

func New(messages []string, interval time.Duration, opts ...Option) (*Scanner, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	if interval <= 0 {
		return nil, ErrInterval
	}
	sc := &Scanner{
		messages: append([]string(nil), messages...),
		interval: interval,
		sched:    clock.Real(),
		done:     make(chan struct{}),
	}
	sc.progress = Progress{Text: sc.messages[0]}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Start schedules the first step.
func (sc *Scanner) Start() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.started || sc.stopped {
		return
	}
	sc.started = true
	sc.timer = sc.sched.AfterFunc(sc.interval, sc.tick)
}

// Stop abandons the scan. Done is not closed.
func (sc *Scanner) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopped = true
	if sc.timer != nil {
		sc.timer.Stop()
		sc.timer = nil
	}
}

func (sc *Scanner) Progress() Progress {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.progress
}

// Done is closed once the scan completes.
func (sc *Scanner) Done() <-chan struct{} {
	return sc.done
}

func (sc *Scanner) tick() {
	sc.mu.Lock()
	if sc.stopped || sc.progress.Complete {
		sc.mu.Unlock()
		return
	}
	last := len(sc.messages) - 1
	if sc.progress.Step < last {
		sc.progress.Step++
		sc.progress.Text = sc.messages[sc.progress.Step]
		sc.progress.Percent = float64(sc.progress.Step) / float64(last) * 100
		sc.timer = sc.sched.AfterFunc(sc.interval, sc.tick)
	} else {
		sc.progress.Percent = 100
		sc.progress.Complete = true
		sc.timer = nil
		close(sc.done)
	}
	p, listeners := sc.progress, sc.listeners
	sc.mu.Unlock()

	for _, l := range listeners {
		l(p)
	}
}
