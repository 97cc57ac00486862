package pipeline

import (
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout/circular"
	"github.com/matzehuels/forcegraph/pkg/layout/dot"
	"github.com/matzehuels/forcegraph/pkg/layout/force"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the selected layout algorithm over g, mutating node
// positions in place. This is the unified entry point used by Runner, the
// CLI and the server.
func GenerateLayout(g *graph.Graph, opts Options) error {
	switch opts.Algorithm {
	case AlgorithmForce, "":
		return generateForceLayout(g, opts)
	case AlgorithmCircular:
		return generateCircularLayout(g, opts)
	case AlgorithmDot:
		return generateDotLayout(g, opts)
	default:
		return errors.New(errors.ErrCodeInvalidAlgorithm, "unknown layout algorithm %q", opts.Algorithm)
	}
}

// generateForceLayout runs the force simulation to completion on the
// immediate scheduler.
func generateForceLayout(g *graph.Graph, opts Options) error {
	engine := force.New(ForceEngineOptions(opts)...)
	defer engine.Destroy()
	if err := engine.Init(g); err != nil {
		return err
	}
	return engine.Execute()
}

// ForceEngineOptions maps pipeline options onto force engine options. The
// server reuses this mapping for streamed (offloaded) runs.
func ForceEngineOptions(opts Options) []force.Option {
	forceOpts := []force.Option{
		force.WithCenter(opts.CenterX, opts.CenterY),
		force.WithSeed(opts.Seed),
		force.WithLogger(opts.Logger),
	}
	if opts.MaxIteration > 0 {
		forceOpts = append(forceOpts, force.WithMaxIteration(opts.MaxIteration))
	}
	if opts.EdgeStrength > 0 {
		forceOpts = append(forceOpts, force.WithEdgeStrength(opts.EdgeStrength))
	}
	if opts.NodeStrength > 0 {
		forceOpts = append(forceOpts, force.WithNodeStrength(opts.NodeStrength))
	}
	if opts.CoulombDisScale > 0 {
		forceOpts = append(forceOpts, force.WithCoulombDisScale(opts.CoulombDisScale))
	}
	if opts.Damping > 0 {
		forceOpts = append(forceOpts, force.WithDamping(opts.Damping))
	}
	if opts.MaxSpeed > 0 {
		forceOpts = append(forceOpts, force.WithMaxSpeed(opts.MaxSpeed))
	}
	if opts.MinMovement > 0 {
		forceOpts = append(forceOpts, force.WithMinMovement(opts.MinMovement))
	}
	if opts.Interval > 0 {
		forceOpts = append(forceOpts, force.WithInterval(opts.Interval))
	}
	if opts.Factor > 0 {
		forceOpts = append(forceOpts, force.WithFactor(opts.Factor))
	}
	if opts.LinkDistance > 0 {
		forceOpts = append(forceOpts, force.WithLinkDistance(opts.LinkDistance))
	}
	if opts.Gravity > 0 {
		forceOpts = append(forceOpts, force.WithGravity(opts.Gravity))
	}
	if opts.PreventOverlap {
		forceOpts = append(forceOpts, force.WithPreventOverlap(true))
		if opts.NodeSize > 0 {
			forceOpts = append(forceOpts, force.WithNodeSize(force.ConstantSize(opts.NodeSize)))
		}
		if opts.NodeSpacing > 0 {
			forceOpts = append(forceOpts, force.WithNodeSpacing(force.ConstantSize(opts.NodeSpacing)))
		}
	}
	return forceOpts
}

func generateCircularLayout(g *graph.Graph, opts Options) error {
	circOpts := []circular.Option{
		circular.WithCenter(opts.CenterX, opts.CenterY),
		circular.WithSize(opts.Width, opts.Height),
		circular.WithOrdering(circular.Ordering(opts.Ordering)),
		circular.WithLogger(opts.Logger),
	}
	if opts.Radius > 0 {
		circOpts = append(circOpts, circular.WithRadius(opts.Radius))
	}
	if opts.StartRadius > 0 {
		circOpts = append(circOpts, circular.WithStartRadius(opts.StartRadius))
	}
	if opts.EndRadius > 0 {
		circOpts = append(circOpts, circular.WithEndRadius(opts.EndRadius))
	}
	if opts.StartAngle != 0 {
		circOpts = append(circOpts, circular.WithStartAngle(opts.StartAngle))
	}
	if opts.EndAngle != 0 {
		circOpts = append(circOpts, circular.WithEndAngle(opts.EndAngle))
	}
	if opts.Clockwise != nil {
		circOpts = append(circOpts, circular.WithClockwise(*opts.Clockwise))
	}
	if opts.Divisions > 0 {
		circOpts = append(circOpts, circular.WithDivisions(opts.Divisions))
	}
	if opts.AngleRatio > 0 {
		circOpts = append(circOpts, circular.WithAngleRatio(opts.AngleRatio))
	}

	engine := circular.New(circOpts...)
	defer engine.Destroy()
	if err := engine.Init(g); err != nil {
		return err
	}
	return engine.Execute()
}

func generateDotLayout(g *graph.Graph, opts Options) error {
	dotOpts := []dot.Option{
		dot.WithSize(opts.Width, opts.Height),
		dot.WithCenter(opts.CenterX, opts.CenterY),
		dot.WithLogger(opts.Logger),
	}
	if opts.Engine != "" {
		dotOpts = append(dotOpts, dot.WithEngine(opts.Engine))
	}

	engine := dot.New(dotOpts...)
	defer engine.Destroy()
	if err := engine.Init(g); err != nil {
		return err
	}
	return engine.Execute()
}
