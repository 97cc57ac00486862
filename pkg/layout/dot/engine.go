// Package dot delegates positioning to Graphviz layout engines while
// satisfying the same lifecycle contract as the native variants: bind a graph
// with Init, compute synchronously with Execute, release with Destroy.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

const (
	// DefaultEngine is the hierarchical Graphviz layout.
	DefaultEngine = "dot"

	// DefaultWidth and DefaultHeight define the area Graphviz output is
	// scaled into.
	DefaultWidth  = 300.0
	DefaultHeight = 300.0
)

// plainFormat is Graphviz's line-oriented text output carrying computed
// node coordinates.
const plainFormat = graphviz.Format("plain")

var layoutEngines = map[string]graphviz.Layout{
	"dot":   graphviz.DOT,
	"neato": graphviz.NEATO,
	"fdp":   graphviz.FDP,
}

// Options configures the Graphviz delegation.
type Options struct {
	// Engine selects the Graphviz algorithm: "dot", "neato" or "fdp".
	Engine string

	// Width and Height define the target area positions are scaled into.
	Width  float64
	Height float64

	Center [2]float64

	Callbacks layout.Callbacks
	Logger    *log.Logger
}

func (o *Options) setDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Option mutates Options.
type Option func(*Options)

// WithEngine selects the Graphviz algorithm.
func WithEngine(engine string) Option {
	return func(o *Options) { o.Engine = engine }
}

// WithSize sets the target area positions are scaled into.
func WithSize(width, height float64) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithCenter sets the center the scaled drawing is translated onto.
func WithCenter(x, y float64) Option {
	return func(o *Options) { o.Center = [2]float64{x, y} }
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// OnLayoutEnd registers the end-of-layout callback.
func OnLayoutEnd(fn func()) Option {
	return func(o *Options) { o.Callbacks.OnLayoutEnd = fn }
}

// Engine runs a Graphviz layout over the bound graph. It implements
// [layout.Layout].
type Engine struct {
	mu    sync.Mutex
	opts  Options
	state layout.State

	nodes []*graph.Node
	edges []graph.Edge
	idx   map[string]int
}

// New creates a Graphviz-backed engine with the given options applied over
// defaults.
func New(opts ...Option) *Engine {
	e := &Engine{state: layout.StateUnconfigured}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
	return e
}

// State returns the engine's lifecycle state.
func (e *Engine) State() layout.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init binds the node list and a sanitized copy of the edges.
func (e *Engine) Init(g *graph.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return errors.New(errors.ErrCodeEngineDestroyed, "init on destroyed engine")
	}
	if err := g.Validate(); err != nil {
		return err
	}

	e.nodes = g.Nodes
	e.edges = graph.SanitizeEdges(g.Edges)
	e.idx = g.Index()
	e.state = layout.StateConfigured
	return nil
}

// UpdateConfig merges the given options over the current configuration.
func (e *Engine) UpdateConfig(opts ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
}

// Execute renders the bound graph through Graphviz and maps the computed
// coordinates back onto the nodes. Graphviz failures are logged as warnings
// and leave the engine idle without positions; a delegated layout failure
// must never crash the host.
func (e *Engine) Execute() error {
	e.mu.Lock()

	switch e.state {
	case layout.StateDestroyed:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeEngineDestroyed, "execute on destroyed engine")
	case layout.StateUnconfigured:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeNotConfigured, "execute before init")
	}

	started := time.Now()
	observability.Layout().OnLayoutStart("dot", len(e.nodes))

	end := e.opts.Callbacks.OnLayoutEnd
	err := e.runLocked()
	e.state = layout.StateIdle
	e.mu.Unlock()

	observability.Layout().OnLayoutComplete("dot", time.Since(started), err)
	if err != nil {
		e.opts.Logger.Warn("graphviz layout failed", "engine", e.opts.Engine, "err", err)
		return nil
	}
	if end != nil {
		end()
	}
	return nil
}

// Stop is a no-op: a synchronous pass never has pending work to cancel.
func (e *Engine) Stop() {}

// Destroy releases all node and edge references and moves to the terminal
// destroyed state.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nodes = nil
	e.edges = nil
	e.idx = nil
	e.state = layout.StateDestroyed
}

func (e *Engine) runLocked() error {
	if len(e.nodes) == 0 {
		return nil
	}

	engine, ok := layoutEngines[e.opts.Engine]
	if !ok {
		return errors.New(errors.ErrCodeInvalidAlgorithm, "unknown graphviz engine %q", e.opts.Engine)
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(buildDOT(e.nodes, e.edges)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, plainFormat, &buf); err != nil {
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "render")
	}

	positions, bounds, err := parsePlain(buf.String())
	if err != nil {
		return err
	}
	e.applyPositions(positions, bounds)
	return nil
}

// applyPositions scales the Graphviz drawing into the configured area and
// translates it onto the configured center.
func (e *Engine) applyPositions(positions map[string][2]float64, bounds [2]float64) {
	scaleX, scaleY := 1.0, 1.0
	if bounds[0] > 0 {
		scaleX = e.opts.Width / bounds[0]
	}
	if bounds[1] > 0 {
		scaleY = e.opts.Height / bounds[1]
	}

	for _, n := range e.nodes {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}
		n.X = e.opts.Center[0] + (pos[0]-bounds[0]/2)*scaleX
		n.Y = e.opts.Center[1] + (pos[1]-bounds[1]/2)*scaleY
		n.HasPosition = true
	}
}

// buildDOT serializes the bound graph to DOT. Node IDs are quoted, so any
// validated ID round-trips through Graphviz unchanged.
func buildDOT(nodes []*graph.Node, edges []graph.Edge) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  node [shape=point];\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q;\n", n.ID)
	}
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// parsePlain extracts node positions and the drawing bounds from Graphviz
// plain output: a "graph scale width height" header, one "node name x y ..."
// line per node, and a terminating "stop".
func parsePlain(out string) (map[string][2]float64, [2]float64, error) {
	positions := make(map[string][2]float64)
	var bounds [2]float64

	for _, line := range strings.Split(out, "\n") {
		fields, err := splitPlainFields(line)
		if err != nil {
			return nil, bounds, err
		}
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, bounds, errors.New(errors.ErrCodeLayoutFailed, "malformed graph line %q", line)
			}
			if _, err := fmt.Sscanf(fields[2]+" "+fields[3], "%f %f", &bounds[0], &bounds[1]); err != nil {
				return nil, bounds, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse graph bounds")
			}
		case "node":
			if len(fields) < 4 {
				return nil, bounds, errors.New(errors.ErrCodeLayoutFailed, "malformed node line %q", line)
			}
			var x, y float64
			if _, err := fmt.Sscanf(fields[2]+" "+fields[3], "%f %f", &x, &y); err != nil {
				return nil, bounds, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse node position")
			}
			positions[fields[1]] = [2]float64{x, y}
		case "stop":
			return positions, bounds, nil
		}
	}
	return positions, bounds, nil
}

// splitPlainFields splits one plain-format line into fields, honoring the
// double-quoted names Graphviz emits for IDs containing whitespace.
func splitPlainFields(line string) ([]string, error) {
	var fields []string
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '\r') {
			i++
		}
		if i >= len(line) {
			break
		}
		if line[i] == '"' {
			j := i + 1
			var sb strings.Builder
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' && j+1 < len(line) {
					j++
				}
				sb.WriteByte(line[j])
				j++
			}
			if j >= len(line) {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "unterminated quote in plain output line %q", line)
			}
			fields = append(fields, sb.String())
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' && line[j] != '\r' {
			j++
		}
		fields = append(fields, line[i:j])
		i = j
	}
	return fields, nil
}
