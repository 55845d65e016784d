package rectimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManualTimer(showHours bool) *Timer {
	// The ticker never fires on its own; tests drive tick directly.
	return New(Config{TickInterval: time.Hour, ShowHours: showHours})
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "event channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total     int
		withHours bool
		want      string
	}{
		{0, true, "00:00:00"},
		{9, true, "00:00:09"},
		{59, true, "00:00:59"},
		{60, true, "00:01:00"},
		{3599, true, "00:59:59"},
		{3600, true, "01:00:00"},
		{86399, true, "23:59:59"},
		{86400, true, "00:00:00"},
		{0, false, "00:00"},
		{75, false, "01:15"},
		{3661, false, "01:01"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.total, tc.withHours), "total=%d hours=%v", tc.total, tc.withHours)
	}
}

func TestFormatStrictlyIncreasingWithinDay(t *testing.T) {
	t.Parallel()

	previous := Format(0, true)
	for total := 1; total < secondsPerDay; total++ {
		current := Format(total, true)
		require.Less(t, previous, current, "total=%d", total)
		require.Len(t, current, len("HH:MM:SS"))
		previous = current
	}
}

func TestElapsedFrom(t *testing.T) {
	t.Parallel()

	elapsed := ElapsedFrom(2*secondsPerHour + 3*secondsPerMinute + 4)
	require.Equal(t, Elapsed{Hours: 2, Minutes: 3, Seconds: 4}, elapsed)
	require.Equal(t, 7384, elapsed.Total())
	require.Equal(t, Elapsed{}, ElapsedFrom(secondsPerDay))
	require.Equal(t, Elapsed{Hours: 23, Minutes: 59, Seconds: 59}, ElapsedFrom(-1))
}

func TestTickIncrementsAndBlinks(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(16)
	timer.Start()
	generation := timer.currentGeneration()

	for want := 1; want <= 4; want++ {
		require.True(t, timer.tick(generation, time.Now()))
		event := nextEvent(t, events)
		require.Equal(t, EventTick, event.Type)
		require.Equal(t, want, event.Elapsed.Total())
		require.Equal(t, Format(want, true), event.Display)
		require.Equal(t, want%2 == 1, event.Blink)
		require.True(t, event.Visible)
	}
	timer.Close()
}

func TestTickWrapsAtOneDay(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(4)
	timer.Start()
	generation := timer.currentGeneration()

	timer.mu.Lock()
	timer.elapsed = secondsPerDay - 1
	timer.mu.Unlock()

	require.True(t, timer.tick(generation, time.Now()))
	event := nextEvent(t, events)
	require.Equal(t, 0, event.Elapsed.Total())
	require.Equal(t, "00:00:00", event.Display)
	require.Equal(t, Elapsed{}, timer.Elapsed())
	timer.Close()
}

func TestStopResetsAndHides(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(16)
	timer.Start()
	generation := timer.currentGeneration()
	for i := 0; i < 3; i++ {
		timer.tick(generation, time.Now())
		nextEvent(t, events)
	}

	timer.Stop()
	require.False(t, timer.Running())
	stopped := nextEvent(t, events)
	require.Equal(t, EventStopped, stopped.Type)
	require.False(t, stopped.Visible)
	require.False(t, stopped.Blink)
	require.Equal(t, "00:00:00", stopped.Display)

	timer.Start()
	require.Equal(t, Elapsed{}, timer.Elapsed())
	timer.tick(timer.currentGeneration(), time.Now())
	require.Equal(t, 1, nextEvent(t, events).Elapsed.Total())
	timer.Close()
}

func TestStopReachesFullObserver(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(1)
	timer.Start()
	generation := timer.currentGeneration()
	require.True(t, timer.tick(generation, time.Now()))
	require.True(t, timer.tick(generation, time.Now()))

	timer.Stop()
	stopped := nextEvent(t, events)
	require.Equal(t, EventStopped, stopped.Type)
	require.False(t, stopped.Visible)
	select {
	case event := <-events:
		t.Fatalf("unexpected event after stop: %+v", event)
	default:
	}
	timer.Close()
}

func TestStopDiscardsStaleTick(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(4)
	timer.Start()
	generation := timer.currentGeneration()
	timer.Stop()
	nextEvent(t, events)

	require.False(t, timer.tick(generation, time.Now()))
	select {
	case event := <-events:
		t.Fatalf("unexpected event after stop: %+v", event)
	default:
	}
}

func TestStartTwiceKeepsSingleSource(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(false)
	events := timer.Subscribe(8)
	timer.Start()
	first := timer.currentGeneration()
	timer.Start()

	restart := nextEvent(t, events)
	require.Equal(t, EventStopped, restart.Type)
	require.Equal(t, "00:00", restart.Display)

	require.Eventually(t, func() bool {
		return timer.activeSources() == 1
	}, time.Second, 5*time.Millisecond)
	require.False(t, timer.tick(first, time.Now()))
	require.True(t, timer.tick(timer.currentGeneration(), time.Now()))
	require.Equal(t, 1, nextEvent(t, events).Elapsed.Total())

	timer.Close()
	require.Eventually(t, func() bool {
		return timer.activeSources() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRealTickerStopsDelivering(t *testing.T) {
	t.Parallel()

	timer := New(Config{TickInterval: 5 * time.Millisecond, ShowHours: true})
	events := timer.Subscribe(256)
	timer.Start()

	first := nextEvent(t, events)
	require.Equal(t, EventTick, first.Type)

	timer.Stop()
	for {
		event := nextEvent(t, events)
		if event.Type == EventStopped {
			break
		}
	}

	select {
	case event := <-events:
		t.Fatalf("tick delivered after stop: %+v", event)
	case <-time.After(30 * time.Millisecond):
	}
	timer.Close()
}

func TestCloseClosesSubscribers(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(1)
	timer.Close()

	_, ok := <-events
	require.False(t, ok)

	late := timer.Subscribe(1)
	_, ok = <-late
	require.False(t, ok)

	timer.Start()
	require.False(t, timer.Running())
}

func TestSetShowHoursAppliesToNextEvent(t *testing.T) {
	t.Parallel()

	timer := newManualTimer(true)
	events := timer.Subscribe(4)
	timer.Start()
	t.Cleanup(timer.Close)

	timer.SetShowHours(false)
	require.True(t, timer.tick(timer.currentGeneration(), time.Now()))
	require.Equal(t, "00:01", nextEvent(t, events).Display)
}
