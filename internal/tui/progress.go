// Package tui renders live simulation progress with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/blocksim/internal/sim"
)

const (
	defaultBarWidth = 40
	historyLen      = 256
)

// Reading is the current value of one watched signal.
type Reading struct {
	Name  string
	Value float64
}

// ProgressMsg reports scheduler progress and the watched signal values.
type ProgressMsg struct {
	sim.Progress
	Readings []Reading
}

// DoneMsg is sent once the run returns.
type DoneMsg struct {
	Err error
}

// Model is the bubbletea model for one run.
type Model struct {
	title  string
	cancel context.CancelFunc

	progress sim.Progress
	order    []string
	current  map[string]float64
	history  map[string][]float64

	began    time.Time
	elapsed  time.Duration
	barWidth int
	done     bool
	err      error
}

func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		title:    title,
		cancel:   cancel,
		current:  make(map[string]float64),
		history:  make(map[string][]float64),
		began:    time.Now(),
		barWidth: defaultBarWidth,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.barWidth = max(10, min(defaultBarWidth, msg.Width-24))

	case ProgressMsg:
		m.progress = msg.Progress
		m.elapsed = time.Since(m.began)
		for _, r := range msg.Readings {
			if _, seen := m.current[r.Name]; !seen {
				m.order = append(m.order, r.Name)
			}
			m.current[r.Name] = r.Value
			h := append(m.history[r.Name], r.Value)
			if len(h) > historyLen {
				h = h[len(h)-historyLen:]
			}
			m.history[r.Name] = h
		}

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.elapsed = time.Since(m.began)
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) Done() bool { return m.done }
func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.err != nil:
		b.WriteString(StatusFailed.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.done:
		b.WriteString(StatusDone.Render("DONE") + "\n\n")
	default:
		b.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	frac := m.progress.Fraction()
	b.WriteString(ProgressBar(frac, m.barWidth))
	b.WriteString(fmt.Sprintf(" %5.1f%%\n", 100*frac))
	b.WriteString(LabelStyle.Render("Step") + ValueStyle.Render(fmt.Sprintf("%d/%d", m.progress.Step, m.progress.Total)) + "\n")
	b.WriteString(LabelStyle.Render("Time") + ValueStyle.Render(fmt.Sprintf("%.4fs", m.progress.Time)) + "\n")
	b.WriteString(LabelStyle.Render("Elapsed") + ValueStyle.Render(m.elapsed.Round(time.Millisecond).String()) + "\n")

	if len(m.order) > 0 {
		b.WriteString("\n")
		for _, name := range m.order {
			b.WriteString(LabelStyle.Render(name))
			b.WriteString(ValueStyle.Render(fmt.Sprintf("%12.5g ", m.current[name])))
			b.WriteString(Subtle.Render(Sparkline(m.history[name], m.barWidth)) + "\n")
		}
	}

	if !m.done {
		b.WriteString("\n" + KeyHint.Render("q quit") + "\n")
	}
	return b.String()
}

// Run executes work on its own goroutine while rendering its progress.
// Quitting the view cancels the context passed to work; Run then waits for
// work to return and reports its error.
func Run(ctx context.Context, title string, work func(ctx context.Context, send func(ProgressMsg)) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, cancel), opts...)
	errc := make(chan error, 1)
	go func() {
		err := work(ctx, func(msg ProgressMsg) { p.Send(msg) })
		errc <- err
		p.Send(DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("tui: %w", err)
	}
	return <-errc
}
