package sequencer

import (
	"time"

	"github.com/rivo/uniseg"
)

// Mode is the phase of the typing animation.
type Mode int

const (
	Typing Mode = iota
	Deleting
)

func (m Mode) String() string {
	switch m {
	case Typing:
		return "typing"
	case Deleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// MarshalText lets Mode appear as a word in JSON and SSE payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is a snapshot of playback: which line is current, what part of it
// is displayed, and whether it is being typed or deleted.
type State struct {
	Index  int    `json:"index"`
	Buffer string `json:"buffer"`
	Mode   Mode   `json:"mode"`
}

// Step applies one timer firing to state and returns the new state together
// with the delay before the next firing. An empty script leaves the state
// untouched.
func Step(script []string, state State, cfg Config) (State, time.Duration) {
	if len(script) == 0 {
		return state, 0
	}
	state.Index = wrap(state.Index, len(script))
	line := script[state.Index]
	shown := uniseg.GraphemeClusterCount(state.Buffer)
	total := uniseg.GraphemeClusterCount(line)

	switch state.Mode {
	case Typing:
		if shown < total {
			state.Buffer = prefix(line, shown+1)
		} else {
			state.Mode = Deleting
		}
	case Deleting:
		if shown > 0 {
			state.Buffer = prefix(line, shown-1)
		} else {
			state.Index = (state.Index + 1) % len(script)
			state.Mode = Typing
		}
	}
	return state, Delay(script, state, cfg)
}

// Delay is how long state waits before its next Step.
func Delay(script []string, state State, cfg Config) time.Duration {
	if len(script) == 0 {
		return 0
	}
	shown := uniseg.GraphemeClusterCount(state.Buffer)
	switch state.Mode {
	case Deleting:
		if shown == 0 {
			return cfg.AdvanceDelay
		}
		return cfg.DeletingSpeed
	default:
		if shown >= uniseg.GraphemeClusterCount(script[wrap(state.Index, len(script))]) {
			return cfg.HoldDuration
		}
		return cfg.TypingSpeed
	}
}

// prefix returns the first n grapheme clusters of s.
func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	g := uniseg.NewGraphemes(s)
	end := 0
	for i := 0; i < n && g.Next(); i++ {
		_, end = g.Positions()
	}
	return s[:end]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
