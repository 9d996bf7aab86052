package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// Program runs the board UI and implements ports.BoardView.
// Render never blocks: snapshots are coalesced and the newest one is
// delivered to the program by a pump goroutine.
type Program struct {
	program *tea.Program

	mu      sync.Mutex
	latest  domain.BoardSnapshot
	pending chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Ensure Program implements ports.BoardView.
var _ ports.BoardView = (*Program)(nil)

// NewProgram creates a board program for model. Extra options are passed to
// bubbletea, which is useful for tests that swap input and output.
func NewProgram(model Model, opts ...tea.ProgramOption) *Program {
	p := &Program{
		latest:  model.snap,
		pending: make(chan struct{}, 1),
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(p.ctx)}, opts...)
	p.program = tea.NewProgram(model, opts...)
	return p
}

// Render implements ports.BoardView.
func (p *Program) Render(snapshot domain.BoardSnapshot) {
	p.mu.Lock()
	p.latest = snapshot
	p.mu.Unlock()

	select {
	case p.pending <- struct{}{}:
	default:
	}
}

// Run starts the interface and blocks until the user quits or ctx is done.
func (p *Program) Run(ctx context.Context) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		select {
		case <-ctx.Done():
			p.cancel()
		case <-p.ctx.Done():
		}
	}()

	p.wg.Add(1)
	go p.pump()

	_, err := p.program.Run()

	p.cancel()
	p.wg.Wait()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop gracefully stops the interface.
func (p *Program) Stop() {
	p.program.Quit()
}

func (p *Program) pump() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.pending:
			p.mu.Lock()
			snapshot := p.latest
			p.mu.Unlock()
			p.program.Send(snapshotMsg(snapshot))
		}
	}
}
