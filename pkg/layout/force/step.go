package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// stepConfig is the immutable, fully resolved configuration a simulation
// step runs against. It is rebuilt on every Execute (and after every
// UpdateConfig) so nothing in the hot loop reads ambient engine state or
// dispatches on option variants.
type stepConfig struct {
	center          [2]float64
	maxIteration    int
	coulombDisScale float64
	damping         float64
	maxSpeed        float64
	minMovement     float64
	interval        float64
	factor          float64
	gravity         float64
	preventOverlap  bool

	// Per-node tables, indexed in node order.
	strength []float64 // repulsion strength
	mass     []float64 // degree-derived unless overridden
	radius   []float64 // collision radius incl. spacing; nil without overlap prevention

	// Springs are edges resolved to node indices with their effective
	// strength and ideal length.
	springs []spring

	getCenter func(n *graph.Node) (x, y, gravity float64)
}

// spring is one attraction constraint between two node indices.
type spring struct {
	source, target   int
	strength, length float64
}

// stepInterval returns the decayed step size for the given iteration:
// the configured interval shrinks linearly and is floored at a small
// positive minimum so the system cools without ever freezing mid-run.
func (c *stepConfig) stepInterval(iter int) float64 {
	v := c.interval - float64(iter)*intervalDecay
	if v < minInterval {
		v = minInterval
	}
	return v
}

// simulation is the per-run state: the iteration counter and the velocity
// buffer. The acceleration buffer is deliberately re-allocated every step;
// forces must never leak across steps.
type simulation struct {
	iter int
	vel  []float64 // 2 floats per node
}

func newSimulation(nodeCount int) *simulation {
	return &simulation{vel: make([]float64, 2*nodeCount)}
}

// step advances the simulation by one tick and returns the mean per-node
// displacement, which the engine compares against the convergence threshold.
func (s *simulation) step(cfg *stepConfig, nodes []*graph.Node) float64 {
	accel := make([]float64, 2*len(nodes))

	applyRepulsion(cfg, nodes, accel)
	applyAttraction(cfg, nodes, accel)
	applyGravity(cfg, nodes, accel)

	interval := cfg.stepInterval(s.iter)
	s.updateVelocity(cfg, accel, interval)
	return s.updatePosition(nodes, interval)
}

// applyRepulsion accumulates the pairwise repulsion forces. The base term is
// symmetric and applied with opposite sign to both accumulators, so the
// contribution i receives from j is the exact negation of what j receives
// from i. The overlap-correction term is additionally divided by each
// endpoint's mass and only active while the pair is closer than the sum of
// their radii.
func applyRepulsion(cfg *stepConfig, nodes []*graph.Node, accel []float64) {
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			vx := nodes[i].X - nodes[j].X
			vy := nodes[i].Y - nodes[j].Y

			dist := math.Hypot(vx, vy)
			if dist == 0 {
				// A coincident pair has no separation direction, so
				// jiggle it apart along a stable pair-derived angle.
				angle := jitterAngle(i, j)
				vx = math.Cos(angle) * distanceFloor
				vy = math.Sin(angle) * distanceFloor
				dist = distanceFloor
			} else if dist < distanceFloor {
				dist = distanceFloor
			}
			direX := vx / dist
			direY := vy / dist

			scaled := dist * cfg.coulombDisScale
			param := (cfg.strength[i] + cfg.strength[j]) * 0.5 * cfg.factor / (scaled * scaled)

			accel[2*i] += direX * param
			accel[2*i+1] += direY * param
			accel[2*j] -= direX * param
			accel[2*j+1] -= direY * param

			if cfg.preventOverlap {
				minDist := cfg.radius[i] + cfg.radius[j]
				if dist < minDist {
					over := (cfg.strength[i] + cfg.strength[j]) * 0.5 * cfg.factor / (dist * dist)
					accel[2*i] += direX * over / cfg.mass[i]
					accel[2*i+1] += direY * over / cfg.mass[i]
					accel[2*j] -= direX * over / cfg.mass[j]
					accel[2*j+1] -= direY * over / cfg.mass[j]
				}
			}
		}
	}
}

// jitterAngle hashes a node-index pair into a direction in [0, 2π). The
// result is deterministic, so runs with the same input stay reproducible.
func jitterAngle(i, j int) float64 {
	h := uint64(i)*0x9e3779b97f4a7c15 + uint64(j)*0xbf58476d1ce4e5b9
	h ^= h >> 31
	return float64(h%3600) * math.Pi / 1800
}

// applyAttraction accumulates the spring forces along edges. The force is
// proportional to the displacement from the ideal length and divided by each
// endpoint's mass, so high-degree hubs move less per unit force.
func applyAttraction(cfg *stepConfig, nodes []*graph.Node, accel []float64) {
	for _, sp := range cfg.springs {
		src, tgt := nodes[sp.source], nodes[sp.target]

		vx := tgt.X - src.X
		vy := tgt.Y - src.Y

		dist := math.Hypot(vx, vy)
		if dist < distanceFloor {
			dist = distanceFloor
		}
		direX := vx / dist
		direY := vy / dist

		// Positive when the pair is closer than ideal: push apart.
		param := (sp.length - dist) * sp.strength

		accel[2*sp.source] -= direX * param / cfg.mass[sp.source]
		accel[2*sp.source+1] -= direY * param / cfg.mass[sp.source]
		accel[2*sp.target] += direX * param / cfg.mass[sp.target]
		accel[2*sp.target+1] += direY * param / cfg.mass[sp.target]
	}
}

// applyGravity pulls every node toward its resolved center with magnitude
// proportional to displacement. A node whose resolved gravity coefficient is
// zero is skipped entirely.
func applyGravity(cfg *stepConfig, nodes []*graph.Node, accel []float64) {
	for i, n := range nodes {
		cx, cy := cfg.center[0], cfg.center[1]
		g := cfg.gravity
		if cfg.getCenter != nil {
			cx, cy, g = cfg.getCenter(n)
		}
		if g == 0 {
			continue
		}
		accel[2*i] -= (n.X - cx) * g
		accel[2*i+1] -= (n.Y - cy) * g
	}
}

// updateVelocity derives fresh velocities from the accumulated acceleration,
// applying damping and rescaling any vector that exceeds the speed cap while
// preserving its direction.
func (s *simulation) updateVelocity(cfg *stepConfig, accel []float64, interval float64) {
	param := interval * cfg.damping
	for i := 0; i < len(s.vel)/2; i++ {
		vx := accel[2*i] * param
		vy := accel[2*i+1] * param

		speed := math.Hypot(vx, vy)
		if speed > cfg.maxSpeed {
			scale := cfg.maxSpeed / speed
			vx *= scale
			vy *= scale
		}

		s.vel[2*i] = vx
		s.vel[2*i+1] = vy
	}
}

// updatePosition advances nodes by velocity × interval and returns the mean
// displacement. Pinned nodes snap to their pinned coordinates and contribute
// no movement.
func (s *simulation) updatePosition(nodes []*graph.Node, interval float64) float64 {
	if len(nodes) == 0 {
		return 0
	}

	var sum float64
	for i, n := range nodes {
		if n.Pinned() {
			n.X = *n.FX
			n.Y = *n.FY
			continue
		}
		dx := s.vel[2*i] * interval
		dy := s.vel[2*i+1] * interval
		n.X += dx
		n.Y += dy
		sum += math.Hypot(dx, dy)
	}
	return sum / float64(len(nodes))
}
