package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opercjy/CPNR-modular-sim/internal/run"
)

// ProgressMsg reports finished events.
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg ends the run.
type DoneMsg struct {
	Result *run.Result
	Err    error
}

type TickMsg time.Time

// ProgressModel shows a run in progress.
type ProgressModel struct {
	material    string
	done, total int
	frame       int
	start       time.Time
	result      *run.Result
	err         error
	interrupted bool
	finished    bool
}

func NewProgressModel(material string, total int) ProgressModel {
	return ProgressModel{material: material, total: total, start: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
	case DoneMsg:
		m.result, m.err = msg.Result, msg.Err
		m.finished = true
		if msg.Result != nil {
			m.done = len(msg.Result.Events)
		}
		return m, tea.Quit
	case TickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

// Result returns the run outcome once DoneMsg was received.
func (m ProgressModel) Result() (*run.Result, error) { return m.result, m.err }

// Interrupted reports whether the user aborted.
func (m ProgressModel) Interrupted() bool { return m.interrupted }

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(Title.Render("capsim") + Subtle.Render(" · "+m.material) + "\n\n")

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	status := StatusRunning.Render(Spinner(m.frame) + " running")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("✗ " + m.err.Error())
	case m.finished:
		status = StatusRunning.Render("✓ done")
	}
	b.WriteString(status + "\n")
	b.WriteString(ProgressBar(frac, 40) + fmt.Sprintf(" %d/%d", m.done, m.total) + "\n")

	if elapsed := time.Since(m.start).Seconds(); elapsed > 0 && m.done > 0 {
		b.WriteString(Subtle.Render(fmt.Sprintf("%.0f events/s", float64(m.done)/elapsed)) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("q: abort"))
	return Panel.Render(b.String())
}
