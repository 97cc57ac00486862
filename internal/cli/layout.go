package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing graph layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output           string
		noCache          bool
		configFile       string
		watch            bool
		counterclockwise bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute 2D positions for a graph",
		Long: `Compute 2D positions for a graph.

The layout command takes a graph.json file ("-" reads from stdin), runs the
selected layout algorithm, and writes a positioned copy of the graph. The
force algorithm runs an iterative physics simulation; circular places nodes
on a ring (or spiral); dot delegates to Graphviz.

Options can also come from a TOML file via --config. Flags set on the
command line take precedence over config file values.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := loadConfigFile(configFile, cmd.Flags(), &opts); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("counterclockwise") {
				cw := !counterclockwise
				opts.Clockwise = &cw
			}
			opts.Input = args[0]
			return c.runLayout(cmd.Context(), opts, output, noCache, watch)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().StringVar(&configFile, "config", "", "TOML config file with layout options")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "show live simulation progress (force only)")

	// Shared layout flags
	cmd.Flags().StringVarP(&opts.Algorithm, "algorithm", "a", pipeline.DefaultAlgorithm, "layout algorithm: force (default), circular, dot")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "layout area width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "layout area height")
	cmd.Flags().Float64Var(&opts.CenterX, "center-x", 0, "layout center x coordinate")
	cmd.Flags().Float64Var(&opts.CenterY, "center-y", 0, "layout center y coordinate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible placement")

	// Force simulation flags
	cmd.Flags().IntVar(&opts.MaxIteration, "max-iteration", 0, "maximum simulation steps (force)")
	cmd.Flags().Float64Var(&opts.EdgeStrength, "edge-strength", 0, "spring strength of edges (force)")
	cmd.Flags().Float64Var(&opts.NodeStrength, "node-strength", 0, "repulsion strength of nodes (force)")
	cmd.Flags().Float64Var(&opts.CoulombDisScale, "coulomb-dis-scale", 0, "repulsion distance scaling (force)")
	cmd.Flags().Float64Var(&opts.Damping, "damping", 0, "velocity damping in [0,1] (force)")
	cmd.Flags().Float64Var(&opts.MaxSpeed, "max-speed", 0, "per-step speed cap (force)")
	cmd.Flags().Float64Var(&opts.MinMovement, "min-movement", 0, "mean displacement convergence threshold (force)")
	cmd.Flags().Float64Var(&opts.Interval, "interval", 0, "initial integration interval (force)")
	cmd.Flags().Float64Var(&opts.Factor, "factor", 0, "global repulsion multiplier (force)")
	cmd.Flags().Float64Var(&opts.LinkDistance, "link-distance", 0, "ideal edge length (force)")
	cmd.Flags().Float64Var(&opts.Gravity, "gravity", 0, "pull strength toward the center (force)")
	cmd.Flags().BoolVar(&opts.PreventOverlap, "prevent-overlap", false, "add overlap repulsion between node circles (force)")
	cmd.Flags().Float64Var(&opts.NodeSize, "node-size", 0, "node diameter for overlap checks (force)")
	cmd.Flags().Float64Var(&opts.NodeSpacing, "node-spacing", 0, "extra padding for overlap checks (force)")

	// Circular placement flags
	cmd.Flags().Float64Var(&opts.Radius, "radius", 0, "fixed ring radius (circular)")
	cmd.Flags().Float64Var(&opts.StartRadius, "start-radius", 0, "spiral start radius (circular)")
	cmd.Flags().Float64Var(&opts.EndRadius, "end-radius", 0, "spiral end radius (circular)")
	cmd.Flags().Float64Var(&opts.StartAngle, "start-angle", 0, "arc start angle in radians (circular)")
	cmd.Flags().Float64Var(&opts.EndAngle, "end-angle", 0, "arc end angle in radians (circular)")
	cmd.Flags().BoolVar(&counterclockwise, "counterclockwise", false, "place nodes counter-clockwise (circular)")
	cmd.Flags().IntVar(&opts.Divisions, "divisions", 0, "number of arc segments (circular)")
	cmd.Flags().Float64Var(&opts.AngleRatio, "angle-ratio", 0, "fraction of each slot's angle to use (circular)")
	cmd.Flags().StringVar(&opts.Ordering, "ordering", "", "node ordering: degree, topology, topology-directed (circular)")

	// Graphviz delegation flags
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "graphviz engine: dot (default), neato, fdp")

	return cmd
}

// runLayout executes the layout pipeline and writes the positioned graph.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache, watch bool) error {
	outputPath := output
	if outputPath == "" {
		if opts.Input == "-" {
			outputPath = "layout.json"
		} else {
			base := strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input))
			outputPath = base + ".layout.json"
		}
	}

	if watch {
		if opts.Algorithm != "" && opts.Algorithm != pipeline.AlgorithmForce {
			printWarning("--watch only applies to the force algorithm, running without it")
		} else {
			return c.runLayoutWatch(ctx, opts, outputPath)
		}
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	logger.Debug("computing layout", "input", opts.Input, "algorithm", opts.Algorithm)
	prog := newProgress(logger)

	spin := startSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.Algorithm))

	var result *pipeline.Result
	if opts.Input == "-" {
		var g *graph.Graph
		g, err = graph.ReadGraph(os.Stdin)
		if err != nil {
			spin.Fail("Layout failed")
			return fmt.Errorf("read graph from stdin: %w", err)
		}
		result, err = runner.ExecuteGraph(ctx, g, opts)
	} else {
		result, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		spin.Fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Computed %s layout for %d nodes", opts.Algorithm, result.Stats.NodeCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := graph.WriteGraphFile(result.Graph, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Serve", "forcegraph serve")

	return nil
}
