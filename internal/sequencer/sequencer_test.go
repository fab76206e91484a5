package sequencer

import (
	"strings"
	"testing"
	"time"

	"github.com/Zachkp/cyber-portfolio/internal/clock"
	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/suite"
)

//
// Test suite
//

type SequencerSuite struct {
	suite.Suite
	clock  *clock.Manual
	cfg    Config
	states []State
}

func TestSequencerSuite(t *testing.T) {
	suite.Run(t, new(SequencerSuite))
}

func (s *SequencerSuite) SetupTest() {
	s.clock = clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.cfg = Config{
		TypingSpeed:   10 * time.Millisecond,
		DeletingSpeed: 5 * time.Millisecond,
		HoldDuration:  100 * time.Millisecond,
		AdvanceDelay:  50 * time.Millisecond,
	}
	s.states = nil
}

func (s *SequencerSuite) newSequencer(script ...string) *Sequencer {
	seq, err := New(script, s.cfg,
		WithScheduler(s.clock),
		WithListener(func(st State) { s.states = append(s.states, st) }),
	)
	s.Require().NoError(err)
	return seq
}

func (s *SequencerSuite) advance(ms int) {
	s.clock.Advance(time.Duration(ms) * time.Millisecond)
}

//
// Construction
//

func (s *SequencerSuite) TestNegativeDurationIsRejected() {
	cfg := s.cfg
	cfg.DeletingSpeed = -time.Millisecond
	_, err := New([]string{"x"}, cfg)
	s.ErrorIs(err, ErrNegativeDuration)
	s.Contains(err.Error(), "deleting speed")
}

func (s *SequencerSuite) TestAllZeroDurationsAreRejected() {
	_, err := New([]string{"x"}, Config{})
	s.ErrorIs(err, ErrBusyLoop)
}

func (s *SequencerSuite) TestDefaultConfigIsValid() {
	s.NoError(DefaultConfig().Validate())
}

func (s *SequencerSuite) TestScriptIsCopied() {
	script := []string{"ab"}
	seq := s.newSequencer(script...)
	script[0] = "zz"
	seq.Start()
	s.advance(10)
	s.Equal("a", seq.Text())
}

//
// Playback
//

func (s *SequencerSuite) TestTypesOneCharacterPerTick() {
	seq := s.newSequencer("ab")
	seq.Start()
	s.Equal("", seq.Text())
	s.advance(10)
	s.Equal("a", seq.Text())
	s.advance(10)
	s.Equal("ab", seq.Text())
	s.Equal(Typing, seq.State().Mode)
}

func (s *SequencerSuite) TestHoldThenDelete() {
	seq := s.newSequencer("ab")
	seq.Start()
	s.advance(20 + 99)
	s.Equal(State{Index: 0, Buffer: "ab", Mode: Typing}, seq.State())

	s.advance(1)
	s.Equal(State{Index: 0, Buffer: "ab", Mode: Deleting}, seq.State())

	s.advance(5)
	s.Equal("a", seq.Text())
	s.advance(5)
	s.Equal("", seq.Text())
	s.Equal(Deleting, seq.State().Mode)
}

func (s *SequencerSuite) TestSingleLineWrapsAndRetypes() {
	seq := s.newSequencer("ab")
	seq.Start()
	// type 20, hold 100, delete 10, advance 50
	s.advance(180)
	s.Equal(State{Index: 0, Buffer: "", Mode: Typing}, seq.State())

	s.advance(10)
	s.Equal("a", seq.Text())
	s.advance(10)
	s.Equal("ab", seq.Text())
}

func (s *SequencerSuite) TestCyclesThroughEveryLineInOrder() {
	script := []string{"go", "gin", "sql"}
	seq := s.newSequencer(script...)
	seq.Start()
	s.advance(5000)

	var completed []int
	for _, st := range s.states {
		if st.Mode == Typing && st.Buffer == script[st.Index] {
			if n := len(completed); n == 0 || completed[n-1] != st.Index {
				completed = append(completed, st.Index)
			}
		}
	}
	s.Require().GreaterOrEqual(len(completed), 4)
	s.Equal([]int{0, 1, 2, 0}, completed[:4])
}

func (s *SequencerSuite) TestBufferLengthIsMonotonicPerMode() {
	script := []string{"hello", "hi", "hey there"}
	seq := s.newSequencer(script...)
	seq.Start()
	s.advance(3000)
	s.Require().NotEmpty(s.states)

	prev := State{}
	for _, st := range s.states {
		line := script[st.Index]
		s.True(strings.HasPrefix(line, st.Buffer), "%q is not a prefix of %q", st.Buffer, line)
		s.LessOrEqual(len(st.Buffer), len(line))

		if st.Index == prev.Index && st.Mode == prev.Mode && st.Buffer != prev.Buffer {
			switch st.Mode {
			case Typing:
				s.Equal(len(prev.Buffer)+1, len(st.Buffer))
			case Deleting:
				s.Equal(len(prev.Buffer)-1, len(st.Buffer))
			}
		}
		prev = st
	}
}

func (s *SequencerSuite) TestEmptyScriptDoesNothing() {
	seq := s.newSequencer()
	seq.Start()
	s.Zero(s.clock.Pending())
	s.advance(1000)
	s.Empty(s.states)
	s.Equal("", seq.Text())
}

func (s *SequencerSuite) TestEmptyLineIsHeldAndSkipped() {
	seq := s.newSequencer("", "x")
	seq.Start()
	// hold 100 on the empty line, switch to deleting, then advance 50
	s.advance(100)
	s.Equal(Deleting, seq.State().Mode)
	s.advance(50)
	s.Equal(State{Index: 1, Mode: Typing}, seq.State())
	s.advance(10)
	s.Equal("x", seq.Text())
}

func (s *SequencerSuite) TestStopCancelsPendingTimer() {
	seq := s.newSequencer("abc")
	seq.Start()
	s.advance(10)
	s.Equal(1, s.clock.Pending())

	seq.Stop()
	s.Zero(s.clock.Pending())
	before := seq.State()
	seen := len(s.states)
	s.advance(10_000)
	s.Equal(before, seq.State())
	s.Len(s.states, seen)

	seq.Start()
	s.Zero(s.clock.Pending())
}

func (s *SequencerSuite) TestStopFromListener() {
	var seq *Sequencer
	seq, err := New([]string{"abc"}, s.cfg,
		WithScheduler(s.clock),
		WithListener(func(st State) {
			if st.Buffer == "ab" {
				seq.Stop()
			}
		}),
	)
	s.Require().NoError(err)
	seq.Start()
	s.advance(1000)
	s.Equal("ab", seq.Text())
	s.Zero(s.clock.Pending())
}

func (s *SequencerSuite) TestResetReplacesScript() {
	seq := s.newSequencer("abc")
	seq.Start()
	s.advance(20)
	s.Equal("ab", seq.Text())

	seq.Reset([]string{"xyz"})
	s.Equal(State{}, seq.State())
	s.Equal(1, s.clock.Pending())

	s.advance(10)
	s.Equal("x", seq.Text())
}

func (s *SequencerSuite) TestStaleTickAfterResetIsDropped() {
	seq := s.newSequencer("abc")
	seq.Start()
	s.advance(20)

	// A tick that produced its state before the reset reaches the
	// listeners only after the reset's own notification.
	seq.mu.Lock()
	gen := seq.gen
	seq.mu.Unlock()
	seq.Reset([]string{"xyz"})
	seq.deliver(gen, State{Buffer: "abc"})

	s.Equal(State{}, s.states[len(s.states)-1])
	s.advance(10)
	s.Equal("x", s.states[len(s.states)-1].Buffer)
}

func (s *SequencerSuite) TestGraphemesAreTypedWhole() {
	line := "a👍🏽é"
	seq := s.newSequencer(line)
	seq.Start()
	s.advance(10)
	s.Equal("a", seq.Text())
	s.advance(10)
	s.Equal("a👍🏽", seq.Text())
	s.advance(10)
	s.Equal(line, seq.Text())
	s.Equal(3, uniseg.GraphemeClusterCount(seq.Text()))
}

//
// Step
//

func (s *SequencerSuite) TestStepDelays() {
	script := []string{"ab"}
	st, d := Step(script, State{}, s.cfg)
	s.Equal("a", st.Buffer)
	s.Equal(s.cfg.TypingSpeed, d)

	st, d = Step(script, st, s.cfg)
	s.Equal("ab", st.Buffer)
	s.Equal(s.cfg.HoldDuration, d)

	st, d = Step(script, st, s.cfg)
	s.Equal(Deleting, st.Mode)
	s.Equal(s.cfg.DeletingSpeed, d)

	st, _ = Step(script, st, s.cfg)
	st, d = Step(script, st, s.cfg)
	s.Equal("", st.Buffer)
	s.Equal(s.cfg.AdvanceDelay, d)

	st, d = Step(script, st, s.cfg)
	s.Equal(State{Index: 0, Mode: Typing}, st)
	s.Equal(s.cfg.TypingSpeed, d)
}

func (s *SequencerSuite) TestStepEmptyScript() {
	st, d := Step(nil, State{Buffer: "x"}, s.cfg)
	s.Equal(State{Buffer: "x"}, st)
	s.Zero(d)
}

func (s *SequencerSuite) TestModeString() {
	s.Equal("typing", Typing.String())
	s.Equal("deleting", Deleting.String())
	text, err := Deleting.MarshalText()
	s.NoError(err)
	s.Equal("deleting", string(text))
}
