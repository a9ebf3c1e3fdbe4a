package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render"
)

// defaultPlayInterval is the time between snapshots during playback.
const defaultPlayInterval = 250 * time.Millisecond

var (
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewPhaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		stored   bool
		debug    bool
		interval time.Duration
		lf       layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view [history.mmbh|world.yaml|id]",
		Short: "Step through a layout in the terminal",
		Long: `Step through a layout in the terminal.

Keys: ←/→ previous/next, space play/pause, home/end first/last,
c jump to compaction, d toggle debug labels, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts)

			runner, err := c.newRunner(cmd.Context(), lf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			run, err := c.loadRun(cmd.Context(), runner, args[0], stored, opts)
			if err != nil {
				return err
			}

			m := NewViewModel(run.Result, render.Options{DebugInfo: opts.DebugInfo || debug})
			m.Interval = interval
			return runView(cmd.Context(), m)
		},
	}

	cmd.Flags().BoolVar(&stored, "stored", false, "treat the argument as a stored layout id")
	cmd.Flags().BoolVar(&debug, "debug", false, "label rooms with ids and coordinates")
	cmd.Flags().DurationVar(&interval, "interval", defaultPlayInterval, "playback interval")
	lf.register(cmd)

	return cmd
}

func runView(ctx context.Context, m ViewModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// ViewModel - Interactive snapshot playback
// =============================================================================

// tickMsg advances playback.
type tickMsg time.Time

// ViewModel is the bubbletea model for stepping through a layout history.
type ViewModel struct {
	Result   *layout.Result
	Step     int
	Playing  bool
	Interval time.Duration
	Options  render.Options

	frames map[frameKey]string
}

type frameKey struct {
	step  int
	debug bool
}

// NewViewModel starts at the last snapshot.
func NewViewModel(res *layout.Result, opts render.Options) ViewModel {
	return ViewModel{
		Result:   res,
		Step:     res.Len() - 1,
		Interval: defaultPlayInterval,
		Options:  opts,
		frames:   make(map[frameKey]string),
	}
}

func (m ViewModel) Init() tea.Cmd {
	return nil
}

func (m ViewModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := m.Result.Len() - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.Playing = false
			if m.Step > 0 {
				m.Step--
			}
		case "right", "l":
			m.Playing = false
			if m.Step < last {
				m.Step++
			}
		case "home", "g":
			m.Playing = false
			m.Step = 0
		case "end", "G":
			m.Playing = false
			m.Step = last
		case "c":
			m.Playing = false
			m.Step = min(m.Result.CompactionStart(), last)
		case "d":
			m.Options.DebugInfo = !m.Options.DebugInfo
		case " ":
			if m.Playing {
				m.Playing = false
				return m, nil
			}
			if m.Step == last {
				m.Step = 0
			}
			m.Playing = true
			return m, m.tick()
		}
	case tickMsg:
		if !m.Playing {
			return m, nil
		}
		if m.Step >= last {
			m.Playing = false
			return m, nil
		}
		m.Step++
		return m, m.tick()
	}
	return m, nil
}

// phase names the builder stage that produced the current snapshot.
func (m ViewModel) phase() string {
	switch {
	case m.Step >= m.Result.CompactionStart():
		return "compacting"
	case m.Step == m.Result.Len()-1 && m.Result.OutOfSteps():
		return "out of steps"
	}
	return "placing"
}

func (m ViewModel) frame() string {
	k := frameKey{m.Step, m.Options.DebugInfo}
	if f, ok := m.frames[k]; ok {
		return f
	}
	f := string(render.RenderText(m.Result.Snapshot(m.Step), m.Options))
	if m.frames != nil {
		m.frames[k] = f
	}
	return f
}

func (m ViewModel) View() string {
	var b strings.Builder

	b.WriteString(m.frame())
	b.WriteString("\n")

	play := "paused"
	if m.Playing {
		play = "playing"
	}
	a := m.Result.Snapshot(m.Step)
	status := fmt.Sprintf("step %d/%d  %s  %s  placed %d/%d",
		m.Step+1, m.Result.Len(), viewPhaseStyle.Render(m.phase()), play, a.PlacedCount(), a.Len())
	b.WriteString(viewStatusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("←/→ step  space play  home/end  c compaction  d debug  q quit"))

	return b.String()
}
