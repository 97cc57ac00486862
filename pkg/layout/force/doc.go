// Package force implements the iterative physics-based layout engine.
//
// Each step accumulates per-node acceleration from three force families:
// pairwise inverse-square repulsion (with an optional overlap-correction term),
// per-edge spring attraction toward an ideal length, and gravity toward a
// global or per-node center. Velocities are derived from the accumulated
// acceleration with damping and a max-speed clamp, positions advance by one
// step interval, and the step interval decays linearly with iteration count
// so the system cools over time.
//
// The engine runs one step per scheduled callback (see
// [github.com/matzehuels/forcegraph/pkg/layout.Scheduler]) until the mean
// per-node displacement falls below the configured minimum movement or the
// iteration cap is reached, then fires the end-of-layout callback exactly
// once.
//
// # Usage
//
//	eng := force.New(
//		force.WithCenter(400, 300),
//		force.WithLinkDistance(180),
//		force.OnLayoutEnd(func() { done <- struct{}{} }),
//	)
//	if err := eng.Init(g); err != nil {
//		return err
//	}
//	eng.Execute()
package force
