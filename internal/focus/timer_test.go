package focus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/flowboard/internal/adapters/clock"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// inline runs posted events immediately, standing in for the event loop.
type inline struct{}

func (inline) Post(fn func()) { fn() }

// queued holds posted events until drained, so tests can race a tick against a stop.
type queued struct{ events []func() }

func (q *queued) Post(fn func()) { q.events = append(q.events, fn) }

func (q *queued) drain() {
	for len(q.events) > 0 {
		fn := q.events[0]
		q.events = q.events[1:]
		fn()
	}
}

var _ ports.Dispatcher = inline{}

func newTestTimer(t *testing.T) (*Timer, *clock.Manual) {
	t.Helper()
	ticker := clock.NewManual()
	return NewTimer(domain.DefaultTimerConfig(), ticker, inline{}), ticker
}

func writeReport() *domain.Task {
	return &domain.Task{
		ID:          "t1",
		Title:       "Write report",
		FocusTime:   45,
		EnergyLevel: domain.EnergyMedium,
		Type:        domain.TypeProject,
		Status:      domain.StatusInProgress,
	}
}

func TestNewTimer_IdleWithDefault(t *testing.T) {
	timer, ticker := newTestTimer(t)

	state := timer.State()
	assert.Equal(t, domain.TimerIdle, state.Status)
	assert.Equal(t, 1500, state.RemainingSeconds)
	assert.Empty(t, state.TaskID)
	assert.Equal(t, 0, ticker.Active())
}

func TestTimer_StartCountsDown(t *testing.T) {
	for _, minutes := range domain.AllowedFocusTimes {
		t.Run(time.Duration(minutes*int(time.Minute)).String(), func(t *testing.T) {
			timer, ticker := newTestTimer(t)

			require.NoError(t, timer.Start(minutes))
			assert.Equal(t, domain.TimerRunning, timer.Status())
			assert.Equal(t, minutes*60, timer.State().RemainingSeconds)

			for i := 1; i <= 3; i++ {
				ticker.Fire()
				assert.Equal(t, minutes*60-i, timer.State().RemainingSeconds)
			}
		})
	}
}

func TestTimer_StartRefusesDoubleStart(t *testing.T) {
	timer, ticker := newTestTimer(t)

	require.NoError(t, timer.Start(30))
	ticker.Fire()

	err := timer.Start(15)
	assert.True(t, errors.Is(err, domain.ErrTimerActive))
	assert.Equal(t, 1, ticker.Active(), "exactly one tick registration")
	assert.Equal(t, 30*60-1, timer.State().RemainingSeconds)

	ticker.Fire()
	assert.Equal(t, 30*60-2, timer.State().RemainingSeconds, "ticks once per second, not twice")
}

func TestTimer_StartRejectsNonPositive(t *testing.T) {
	timer, ticker := newTestTimer(t)

	assert.ErrorIs(t, timer.Start(0), domain.ErrInvalidFocusTime)
	assert.Equal(t, domain.TimerIdle, timer.Status())
	assert.Equal(t, 0, ticker.Active())
}

func TestTimer_CompletionEntersBreak(t *testing.T) {
	timer, ticker := newTestTimer(t)
	task := writeReport()
	timer.SetFocusedTask(task)

	var completed []*domain.Task
	timer.SetOnComplete(func(t *domain.Task) { completed = append(completed, t) })

	require.NoError(t, timer.StartFocus())
	assert.Equal(t, 2700, timer.State().RemainingSeconds)

	ticker.Advance(2699)
	assert.Empty(t, completed)
	assert.Equal(t, domain.TimerRunning, timer.Status())

	ticker.Fire()
	require.Len(t, completed, 1)
	assert.Equal(t, "t1", completed[0].ID)
	assert.Equal(t, domain.TimerBreak, timer.Status())
	assert.Equal(t, 300, timer.State().RemainingSeconds)

	ticker.Advance(10)
	assert.Len(t, completed, 1, "completion fires exactly once")
	assert.Equal(t, 290, timer.State().RemainingSeconds)
}

func TestTimer_DefaultSessionCompletesWithNilTask(t *testing.T) {
	timer, ticker := newTestTimer(t)

	calls := 0
	timer.SetOnComplete(func(task *domain.Task) {
		calls++
		assert.Nil(t, task)
	})

	require.NoError(t, timer.StartFocus())
	ticker.Advance(1500)

	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.TimerBreak, timer.Status())
}

func TestTimer_CompletionFiresBeforeBreak(t *testing.T) {
	timer, ticker := newTestTimer(t)
	timer.SetFocusedTask(writeReport())

	var seen domain.TimerStatus
	timer.SetOnComplete(func(*domain.Task) { seen = timer.Status() })

	require.NoError(t, timer.StartFocus())
	ticker.Advance(2700)

	assert.Equal(t, domain.TimerRunning, seen)
	assert.Equal(t, domain.TimerBreak, timer.Status())
}

func TestNewTimer_ZeroBreakUsesDefault(t *testing.T) {
	cfg := domain.DefaultTimerConfig()
	cfg.Break = 0
	ticker := clock.NewManual()
	timer := NewTimer(cfg, ticker, inline{})

	assert.Equal(t, 5*time.Minute, timer.Config().Break)

	require.NoError(t, timer.Start(15))
	ticker.Advance(15 * 60)
	assert.Equal(t, domain.TimerBreak, timer.Status())
	assert.Equal(t, 300, timer.State().RemainingSeconds)
	assert.Equal(t, 1, ticker.Active(), "the break counts down")
}

func TestTimer_BreakEndsIdle(t *testing.T) {
	timer, ticker := newTestTimer(t)
	breakOver := 0
	timer.SetOnBreakEnd(func() { breakOver++ })

	require.NoError(t, timer.Start(15))
	ticker.Advance(15*60 + 300)

	assert.Equal(t, domain.TimerIdle, timer.Status())
	assert.Equal(t, 1500, timer.State().RemainingSeconds)
	assert.Equal(t, 1, breakOver)
	assert.Equal(t, 0, ticker.Active(), "no auto-cycle after the break")

	ticker.Advance(5)
	assert.Equal(t, 1500, timer.State().RemainingSeconds)
}

func TestTimer_StopCancelsTicks(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Timer) error
	}{
		{"from running", func(tm *Timer) error { return tm.Start(30) }},
		{"from break", func(tm *Timer) error { return tm.StartBreak() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, ticker := newTestTimer(t)
			require.NoError(t, tt.setup(timer))
			ticker.Advance(2)

			timer.Stop()

			assert.Equal(t, domain.TimerIdle, timer.Status())
			assert.Equal(t, 1500, timer.State().RemainingSeconds)
			assert.Equal(t, 0, ticker.Active())

			ticker.Advance(100)
			assert.Equal(t, 1500, timer.State().RemainingSeconds)
		})
	}
}

func TestTimer_QueuedTickAfterStopIsIgnored(t *testing.T) {
	ticker := clock.NewManual()
	q := &queued{}
	timer := NewTimer(domain.DefaultTimerConfig(), ticker, q)

	require.NoError(t, timer.Start(30))
	q.drain()

	// A tick fires and is queued, then the user stops before it is handled.
	ticker.Fire()
	timer.Stop()
	q.drain()

	assert.Equal(t, domain.TimerIdle, timer.Status())
	assert.Equal(t, 1500, timer.State().RemainingSeconds)

	// A stale tick must not leak into a fresh countdown either.
	require.NoError(t, timer.Start(15))
	ticker.Fire()
	q.drain()
	assert.Equal(t, 15*60-1, timer.State().RemainingSeconds)
}

func TestTimer_StartBreak(t *testing.T) {
	t.Run("skip from running reports no completion", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		calls := 0
		timer.SetOnComplete(func(*domain.Task) { calls++ })

		require.NoError(t, timer.Start(45))
		ticker.Advance(10)
		require.NoError(t, timer.StartBreak())

		assert.Equal(t, domain.TimerBreak, timer.Status())
		assert.Equal(t, 300, timer.State().RemainingSeconds)
		assert.Equal(t, 1, ticker.Active())
		assert.Equal(t, 0, calls)
	})

	t.Run("from idle starts ticking", func(t *testing.T) {
		timer, ticker := newTestTimer(t)

		require.NoError(t, timer.StartBreak())
		ticker.Fire()
		assert.Equal(t, 299, timer.State().RemainingSeconds)
	})

	t.Run("refused during break", func(t *testing.T) {
		timer, _ := newTestTimer(t)
		require.NoError(t, timer.StartBreak())
		assert.ErrorIs(t, timer.StartBreak(), domain.ErrTimerActive)
	})
}

func TestTimer_SetFocusedTask(t *testing.T) {
	t.Run("focus while idle shows task minutes", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		timer.SetFocusedTask(writeReport())

		assert.Equal(t, domain.TimerIdle, timer.Status())
		assert.Equal(t, 2700, timer.State().RemainingSeconds)
		assert.Equal(t, "t1", timer.State().TaskID)
		assert.Equal(t, 0, ticker.Active(), "focusing does not start the countdown")
	})

	t.Run("clearing while running force-stops", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		timer.SetFocusedTask(writeReport())
		require.NoError(t, timer.StartFocus())
		ticker.Advance(5)

		timer.SetFocusedTask(nil)

		assert.Equal(t, domain.TimerIdle, timer.Status())
		assert.Equal(t, 0, ticker.Active())
		before := timer.State().RemainingSeconds
		ticker.Advance(10)
		assert.Equal(t, before, timer.State().RemainingSeconds)
	})

	t.Run("clearing during break force-stops", func(t *testing.T) {
		timer, _ := newTestTimer(t)
		timer.SetFocusedTask(writeReport())
		require.NoError(t, timer.StartBreak())

		timer.SetFocusedTask(nil)
		assert.Equal(t, domain.TimerIdle, timer.Status())
	})

	t.Run("clearing while idle resets display", func(t *testing.T) {
		timer, _ := newTestTimer(t)
		timer.SetFocusedTask(writeReport())
		timer.SetFocusedTask(nil)

		assert.Equal(t, 1500, timer.State().RemainingSeconds)
		assert.Nil(t, timer.FocusedTask())
	})

	t.Run("clearing with nothing focused keeps a default session", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		require.NoError(t, timer.StartFocus())

		timer.SetFocusedTask(nil)
		assert.Equal(t, domain.TimerRunning, timer.Status())
		assert.Equal(t, 1, ticker.Active())
	})

	t.Run("refocusing while running keeps the countdown", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		timer.SetFocusedTask(writeReport())
		require.NoError(t, timer.StartFocus())
		ticker.Advance(3)

		other := writeReport()
		other.ID = "t2"
		other.FocusTime = 15
		timer.SetFocusedTask(other)

		assert.Equal(t, 2697, timer.State().RemainingSeconds)
		assert.Equal(t, "t2", timer.State().TaskID)
	})

	t.Run("refreshing the focused task keeps an idle display", func(t *testing.T) {
		timer, ticker := newTestTimer(t)
		timer.SetFocusedTask(writeReport())
		require.NoError(t, timer.StartFocus())
		ticker.Advance(10)
		timer.Stop()
		require.Equal(t, 1500, timer.State().RemainingSeconds)

		renamed := writeReport()
		renamed.Title = "Write final report"
		timer.SetFocusedTask(renamed)

		assert.Equal(t, 1500, timer.State().RemainingSeconds)
		assert.Equal(t, 1500, timer.State().TotalSeconds)
		assert.Equal(t, "Write final report", timer.FocusedTask().Title)
	})
}

func TestTimer_FocusedTaskIsCopied(t *testing.T) {
	timer, _ := newTestTimer(t)
	task := writeReport()
	timer.SetFocusedTask(task)

	task.Title = "mutated"
	assert.Equal(t, "Write report", timer.FocusedTask().Title)
}
