package board

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/services"
)

func TestRemote_ForwardsActions(t *testing.T) {
	h := newHarness(t, Config{})
	h.signIn(t, "u1")
	remote := NewRemote(h.ctrl)

	remote.AddTask(services.AddTaskRequest{Title: "Via remote", FocusTime: 30, EnergyLevel: domain.EnergyHigh, Type: domain.TypeProject})
	assert.Empty(t, h.ctrl.Tasks(domain.TaskFilter{}), "nothing runs until the loop does")
	h.loop.Flush()

	tasks := h.ctrl.Tasks(domain.TaskFilter{})
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	remote.Focus(id)
	remote.StartTimer()
	h.loop.Flush()
	assert.Equal(t, domain.TimerRunning, h.ctrl.Timer().Status())
	assert.Equal(t, id, h.ctrl.Focused().ID)

	remote.StartBreak()
	h.loop.Flush()
	assert.Equal(t, domain.TimerBreak, h.ctrl.Timer().Status())

	remote.StopTimer()
	remote.ClearFocus()
	h.loop.Flush()
	assert.Equal(t, domain.TimerIdle, h.ctrl.Timer().Status())
	assert.Nil(t, h.ctrl.Focused())

	remote.Cycle(id)
	h.loop.Flush()
	assert.Equal(t, domain.StatusComplete, h.ctrl.Tasks(domain.TaskFilter{})[0].Status)

	remote.Advance(id, domain.StatusTodo)
	h.loop.Flush()
	assert.Equal(t, domain.StatusTodo, h.ctrl.Tasks(domain.TaskFilter{})[0].Status)

	remote.Delete(id)
	h.loop.Flush()
	assert.Empty(t, h.ctrl.Tasks(domain.TaskFilter{}))
}

func TestRemote_RecordsRefusals(t *testing.T) {
	h := newHarness(t, Config{})
	h.signIn(t, "u1")
	remote := NewRemote(h.ctrl)

	remote.Focus("missing")
	h.loop.Flush()
	assert.Equal(t, domain.ErrTaskNotFound.Error(), h.ctrl.Snapshot().LastError)

	// The next accepted action clears the message.
	remote.StopTimer()
	h.loop.Flush()
	assert.Empty(t, h.ctrl.Snapshot().LastError)
}

func TestRemote_ConcurrentCallers(t *testing.T) {
	h := newHarness(t, Config{})
	h.signIn(t, "u1")
	remote := NewRemote(h.ctrl)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remote.AddTask(services.AddTaskRequest{Title: "Parallel", FocusTime: 15, EnergyLevel: domain.EnergyLow, Type: domain.TypeDaily})
		}()
	}
	wg.Wait()
	h.loop.Flush()

	assert.Len(t, h.ctrl.Tasks(domain.TaskFilter{}), 10)
	assert.False(t, h.ctrl.Submitting())
}
