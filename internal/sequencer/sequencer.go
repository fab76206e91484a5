// Package sequencer implements the terminal typing effect: a script of lines
// is typed onto a buffer one character at a time, held, deleted, and the
// next line follows, forever.
package sequencer

import (
	"sync"

	"github.com/Zachkp/cyber-portfolio/internal/clock"
)

// Listener receives every state change. It runs on the timer goroutine and
// must not block or call Reset.
type Listener func(State)

type Option func(*Sequencer)

// WithScheduler replaces the real-time scheduler.
func WithScheduler(s clock.Scheduler) Option {
	return func(seq *Sequencer) { seq.sched = s }
}

// WithListener registers a listener at construction.
func WithListener(l Listener) Option {
	return func(seq *Sequencer) { seq.listeners = append(seq.listeners, l) }
}

// Sequencer owns one playback state and at most one pending timer.
type Sequencer struct {
	mu        sync.Mutex
	cfg       Config
	sched     clock.Scheduler
	listeners []Listener

	script  []string
	state   State
	timer   clock.Timer
	gen     uint64
	running bool
	stopped bool

	// notifyMu orders deliveries. It is taken before mu, never after.
	notifyMu sync.Mutex
}

// New validates cfg and returns a stopped sequencer for script.
func New(script []string, cfg Config, opts ...Option) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sequencer{
		cfg:    cfg,
		sched:  clock.Real(),
		script: append([]string(nil), script...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins playback. It does nothing for an empty script, a running
// sequencer or one that has been stopped.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true
	s.scheduleLocked()
}

// Stop cancels the pending timer. No update happens afterwards and the
// sequencer cannot be restarted.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.running = false
	s.stopped = true
}

// Reset swaps the script and rewinds playback to the first line.
func (s *Sequencer) Reset(script []string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.script = append([]string(nil), script...)
	s.state = State{}
	s.scheduleLocked()
	gen, state := s.gen, s.state
	s.mu.Unlock()

	s.deliver(gen, state)
}

// State returns the current playback snapshot.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the displayed buffer.
func (s *Sequencer) Text() string {
	return s.State().Buffer
}

func (s *Sequencer) scheduleLocked() {
	if !s.running || len(s.script) == 0 {
		return
	}
	gen := s.gen
	d := Delay(s.script, s.state, s.cfg)
	s.timer = s.sched.AfterFunc(d, func() { s.tick(gen) })
}

func (s *Sequencer) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.running {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state, _ = Step(s.script, s.state, s.cfg)
	state := s.state
	s.mu.Unlock()

	s.deliver(gen, state)

	// The next timer is armed only after listeners saw this state, so
	// updates are delivered in order.
	s.mu.Lock()
	if gen == s.gen && s.timer == nil {
		s.scheduleLocked()
	}
	s.mu.Unlock()
}

// deliver hands state to the listeners unless a Stop or Reset has
// superseded gen since state was produced.
func (s *Sequencer) deliver(gen uint64, state State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	current, listeners := gen == s.gen, s.listeners
	s.mu.Unlock()
	if !current {
		return
	}
	for _, l := range listeners {
		l(state)
	}
}
