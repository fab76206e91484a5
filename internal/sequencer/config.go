package sequencer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrBusyLoop         = errors.New("at least one duration must be positive")
)

// Config holds the animation timings.
type Config struct {
	// TypingSpeed is the delay between two typed characters.
	TypingSpeed time.Duration
	// DeletingSpeed is the delay between two deleted characters.
	DeletingSpeed time.Duration
	// HoldDuration is the pause on a fully typed line before deletion.
	HoldDuration time.Duration
	// AdvanceDelay is the pause on an empty buffer before the next line.
	AdvanceDelay time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		TypingSpeed:   50 * time.Millisecond,
		DeletingSpeed: 30 * time.Millisecond,
		HoldDuration:  time.Second,
		AdvanceDelay:  500 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	fields := []struct {
		name string
		d    time.Duration
	}{
		{"typing speed", c.TypingSpeed},
		{"deleting speed", c.DeletingSpeed},
		{"hold duration", c.HoldDuration},
		{"advance delay", c.AdvanceDelay},
	}
	var total time.Duration
	for _, f := range fields {
		if f.d < 0 {
			return fmt.Errorf("%s %v: %w", f.name, f.d, ErrNegativeDuration)
		}
		total += f.d
	}
	if total == 0 {
		return ErrBusyLoop
	}
	return nil
}
