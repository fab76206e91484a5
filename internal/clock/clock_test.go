package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(15 * time.Millisecond)
	require.Equal(t, []string{"a"}, got)
	require.Equal(t, 2, m.Pending())

	m.Advance(15 * time.Millisecond)
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Equal(t, epoch.Add(30*time.Millisecond), m.Now())
}

func TestManualChainedCallbacksInsideWindow(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(10*time.Millisecond, tick)
	}
	m.AfterFunc(10*time.Millisecond, tick)

	m.Advance(35 * time.Millisecond)
	require.Equal(t, 3, count)
	require.Equal(t, 1, m.Pending())
}

func TestManualStop(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	timer := m.AfterFunc(10*time.Millisecond, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	m.Advance(time.Second)
	require.False(t, fired)
	require.Zero(t, m.Pending())
}

func TestRealSchedulerFires(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
