package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/odesolve/internal/sampler"
)

type tickMsg time.Time

// Watch is a Bubble Tea model that takes one sample per tick and redraws
// the solution so far.
type Watch struct {
	session   *sampler.Session
	name      string
	component int
	interval  time.Duration
	theme     Theme
	styles    Styles
	running   bool
	err       error
	errors    []float64
}

func NewWatch(name string, s *sampler.Session, interval time.Duration, theme Theme) Watch {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return Watch{
		session:  s,
		name:     name,
		interval: interval,
		theme:    theme,
		styles:   NewStyles(theme),
		running:  true,
	}
}

func (w Watch) tick() tea.Cmd {
	return tea.Tick(w.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w Watch) Init() tea.Cmd {
	return w.tick()
}

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return w, tea.Quit
		case " ":
			w.running = !w.running
		case "tab":
			if dim := w.dim(); dim > 0 {
				w.component = (w.component + 1) % dim
			}
		case "t":
			w.theme = nextTheme(w.theme)
			w.styles = NewStyles(w.theme)
		}
		return w, nil

	case tickMsg:
		if w.running && w.err == nil && !w.session.Done() {
			sample, ok, err := w.session.Next()
			if err != nil {
				w.err = err
			} else if ok && sample.Exact != nil {
				w.errors = append(w.errors, sample.Error())
			}
		}
		if w.err != nil || w.session.Done() {
			return w, nil
		}
		return w, w.tick()
	}
	return w, nil
}

func (w Watch) dim() int {
	tr := w.session.Trajectory()
	if len(tr.Samples) == 0 {
		return len(tr.X0)
	}
	return len(tr.Samples[0].X)
}

func (w Watch) View() string {
	tr := w.session.Trajectory()
	st := w.styles

	var b strings.Builder
	b.WriteString(st.Header.Render(strings.ToUpper(w.name)) + "\n")

	status := st.Good.Render("SAMPLING")
	switch {
	case w.err != nil:
		status = st.Bad.Render("FAILED")
	case w.session.Done():
		status = st.Good.Render("DONE")
	case !w.running:
		status = st.Warn.Render("PAUSED")
	}
	done := len(tr.Samples)
	b.WriteString(fmt.Sprintf("%s  %s %d/%d\n\n", status,
		st.ProgressBar(float64(done)/float64(max(w.session.Len(), 1)), 30), done, w.session.Len()))

	if done > 1 {
		chart, err := Plot(tr, PlotOptions{Height: 10, Width: 60, Components: []int{w.component}, Exact: true})
		if err == nil {
			b.WriteString(chart + "\n\n")
		}
	}

	var info strings.Builder
	info.WriteString(st.Field("Method", tr.Method) + "\n")
	info.WriteString(st.Field("Component", fmt.Sprintf("x%d", w.component)) + "\n")
	if done > 0 {
		last := tr.Samples[done-1]
		info.WriteString(st.Field("t", fmt.Sprintf("%.4g", last.T)) + "\n")
		info.WriteString(st.Field("x", fmt.Sprintf("%.6g", last.X)) + "\n")
	}
	info.WriteString(st.Field("Steps", tr.Totals.Steps) + "\n")
	info.WriteString(st.Field("Rejected", tr.Totals.Rejected) + "\n")
	info.WriteString(st.Field("Evals", tr.Totals.Evaluations) + "\n")
	if tr.HasExact {
		info.WriteString(st.Label.Render("Max error") + st.ErrorLevel(tr.MaxError, 1e-6).Render(fmt.Sprintf("%.3e", tr.MaxError)) + "\n")
		info.WriteString(st.Label.Render("Error") + st.Subtle.Render(Sparkline(w.errors, 30)) + "\n")
	}
	if w.err != nil {
		info.WriteString("\n" + st.Bad.Render(w.err.Error()) + "\n")
	}

	panels := []string{st.Panel.Render(info.String())}
	if w.dim() >= 2 && done > 1 {
		j := (w.component + 1) % w.dim()
		portrait := Portrait(tr, w.component, j, 24, 8)
		panels = append(panels, st.Panel.Render(st.Subtle.Render(fmt.Sprintf("x%d vs x%d", j, w.component))+"\n"+portrait))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n" + st.Subtle.Render("SP:Pause TAB:Component T:Theme Q:Quit"))
	return b.String()
}

// Err returns the sampling error that stopped the watch, if any.
func (w Watch) Err() error { return w.err }
