package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/layout/force"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// =============================================================================
// Watch Mode - Live Simulation Progress
// =============================================================================

// watchTickMsg carries one simulation step into the bubbletea loop.
type watchTickMsg layout.TickMessage

// watchDoneMsg signals that the simulation finished.
type watchDoneMsg struct {
	err error
}

// watchFrameMsg drives the spinner animation.
type watchFrameMsg time.Time

const watchBarWidth = 30

// watchModel renders live progress of an offloaded force simulation.
type watchModel struct {
	current int
	total   int
	nodes   int
	start   time.Time
	frame   int
	done    bool
	err     error
}

func newWatchModel(nodes int) watchModel {
	return watchModel{nodes: nodes, start: time.Now()}
}

func watchFrameTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return watchFrameMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return watchFrameTick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case watchFrameMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, watchFrameTick()
	case watchTickMsg:
		m.current = msg.CurrentTick
		m.total = msg.TotalTicks
		return m, nil
	case watchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("force layout"))
	b.WriteString("\n")
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	b.WriteString(styleSpinner.Render(frame))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("Simulating %d nodes", m.nodes)))
	b.WriteString("  ")

	filled := 0
	if m.total > 0 {
		filled = m.current * watchBarWidth / m.total
		if filled > watchBarWidth {
			filled = watchBarWidth
		}
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", watchBarWidth-filled)
	b.WriteString(StyleHighlight.Render(bar))

	b.WriteString("  ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%d", m.current)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("/%d ticks", m.total)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  (%s)", time.Since(m.start).Round(time.Millisecond))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q to cancel"))
	b.WriteString("\n")
	return b.String()
}

// runLayoutWatch runs the force simulation in offloaded mode and renders each
// tick as a live progress display. Watch runs bypass the cache.
func (c *CLI) runLayoutWatch(ctx context.Context, opts pipeline.Options, outputPath string) error {
	var g *graph.Graph
	var err error
	if opts.Input == "-" {
		g, err = graph.ReadGraph(os.Stdin)
	} else {
		g, err = graph.ReadGraphFile(opts.Input)
	}
	if err != nil {
		return fmt.Errorf("load graph %s: %w", opts.Input, err)
	}

	opts.Logger = loggerFromContext(ctx)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	engineOpts := append(pipeline.ForceEngineOptions(opts), force.WithOffload(true))
	engine := force.New(engineOpts...)
	defer engine.Destroy()

	msgs := make(chan layout.TickMessage, 16)
	engine.SetEnvironment(layout.ExecutionEnvironment{Messages: msgs})
	if err := engine.Init(g); err != nil {
		return fmt.Errorf("initialize simulation: %w", err)
	}

	program := tea.NewProgram(newWatchModel(len(g.Nodes)), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	execErr := make(chan error, 1)
	go func() {
		execErr <- engine.Execute()
		close(msgs)
	}()
	go func() {
		for msg := range msgs {
			program.Send(watchTickMsg(msg))
		}
		program.Send(watchDoneMsg{err: <-execErr})
	}()

	final, err := program.Run()
	if err != nil {
		engine.Stop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	model := final.(watchModel)
	if !model.done {
		// User quit before the simulation finished.
		engine.Stop()
		return context.Canceled
	}
	if model.err != nil {
		printError("Layout failed")
		return fmt.Errorf("compute layout: %w", model.err)
	}

	if err := graph.WriteGraphFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), false)
	printNewline()
	printNextStep("Serve", "forcegraph serve")

	return nil
}
