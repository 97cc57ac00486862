package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// =============================================================================
// Config File Support
// =============================================================================

// fileConfig mirrors the layout command's flags as optional TOML keys.
// Pointer fields distinguish "absent" from "set to the zero value".
type fileConfig struct {
	Algorithm *string `toml:"algorithm"`

	Width   *float64 `toml:"width"`
	Height  *float64 `toml:"height"`
	CenterX *float64 `toml:"center-x"`
	CenterY *float64 `toml:"center-y"`
	Seed    *uint64  `toml:"seed"`

	MaxIteration    *int     `toml:"max-iteration"`
	EdgeStrength    *float64 `toml:"edge-strength"`
	NodeStrength    *float64 `toml:"node-strength"`
	CoulombDisScale *float64 `toml:"coulomb-dis-scale"`
	Damping         *float64 `toml:"damping"`
	MaxSpeed        *float64 `toml:"max-speed"`
	MinMovement     *float64 `toml:"min-movement"`
	Interval        *float64 `toml:"interval"`
	Factor          *float64 `toml:"factor"`
	LinkDistance    *float64 `toml:"link-distance"`
	Gravity         *float64 `toml:"gravity"`
	PreventOverlap  *bool    `toml:"prevent-overlap"`
	NodeSize        *float64 `toml:"node-size"`
	NodeSpacing     *float64 `toml:"node-spacing"`

	Radius      *float64 `toml:"radius"`
	StartRadius *float64 `toml:"start-radius"`
	EndRadius   *float64 `toml:"end-radius"`
	StartAngle  *float64 `toml:"start-angle"`
	EndAngle    *float64 `toml:"end-angle"`
	Clockwise   *bool    `toml:"clockwise"`
	Divisions   *int     `toml:"divisions"`
	AngleRatio  *float64 `toml:"angle-ratio"`
	Ordering    *string  `toml:"ordering"`

	Engine *string `toml:"engine"`
}

// loadConfigFile reads a TOML config file and folds it into opts.
// Flags set explicitly on the command line keep their values; config keys
// fill in everything else.
func loadConfigFile(path string, flags *pflag.FlagSet, opts *pipeline.Options) error {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	applyConfig(cfg, flags, opts)
	return nil
}

// applyConfig copies each config value into opts unless the matching flag
// was set on the command line.
func applyConfig(cfg fileConfig, flags *pflag.FlagSet, opts *pipeline.Options) {
	fromFile := func(name string) bool { return !flags.Changed(name) }

	if cfg.Algorithm != nil && fromFile("algorithm") {
		opts.Algorithm = *cfg.Algorithm
	}
	if cfg.Width != nil && fromFile("width") {
		opts.Width = *cfg.Width
	}
	if cfg.Height != nil && fromFile("height") {
		opts.Height = *cfg.Height
	}
	if cfg.CenterX != nil && fromFile("center-x") {
		opts.CenterX = *cfg.CenterX
	}
	if cfg.CenterY != nil && fromFile("center-y") {
		opts.CenterY = *cfg.CenterY
	}
	if cfg.Seed != nil && fromFile("seed") {
		opts.Seed = *cfg.Seed
	}
	if cfg.MaxIteration != nil && fromFile("max-iteration") {
		opts.MaxIteration = *cfg.MaxIteration
	}
	if cfg.EdgeStrength != nil && fromFile("edge-strength") {
		opts.EdgeStrength = *cfg.EdgeStrength
	}
	if cfg.NodeStrength != nil && fromFile("node-strength") {
		opts.NodeStrength = *cfg.NodeStrength
	}
	if cfg.CoulombDisScale != nil && fromFile("coulomb-dis-scale") {
		opts.CoulombDisScale = *cfg.CoulombDisScale
	}
	if cfg.Damping != nil && fromFile("damping") {
		opts.Damping = *cfg.Damping
	}
	if cfg.MaxSpeed != nil && fromFile("max-speed") {
		opts.MaxSpeed = *cfg.MaxSpeed
	}
	if cfg.MinMovement != nil && fromFile("min-movement") {
		opts.MinMovement = *cfg.MinMovement
	}
	if cfg.Interval != nil && fromFile("interval") {
		opts.Interval = *cfg.Interval
	}
	if cfg.Factor != nil && fromFile("factor") {
		opts.Factor = *cfg.Factor
	}
	if cfg.LinkDistance != nil && fromFile("link-distance") {
		opts.LinkDistance = *cfg.LinkDistance
	}
	if cfg.Gravity != nil && fromFile("gravity") {
		opts.Gravity = *cfg.Gravity
	}
	if cfg.PreventOverlap != nil && fromFile("prevent-overlap") {
		opts.PreventOverlap = *cfg.PreventOverlap
	}
	if cfg.NodeSize != nil && fromFile("node-size") {
		opts.NodeSize = *cfg.NodeSize
	}
	if cfg.NodeSpacing != nil && fromFile("node-spacing") {
		opts.NodeSpacing = *cfg.NodeSpacing
	}
	if cfg.Radius != nil && fromFile("radius") {
		opts.Radius = *cfg.Radius
	}
	if cfg.StartRadius != nil && fromFile("start-radius") {
		opts.StartRadius = *cfg.StartRadius
	}
	if cfg.EndRadius != nil && fromFile("end-radius") {
		opts.EndRadius = *cfg.EndRadius
	}
	if cfg.StartAngle != nil && fromFile("start-angle") {
		opts.StartAngle = *cfg.StartAngle
	}
	if cfg.EndAngle != nil && fromFile("end-angle") {
		opts.EndAngle = *cfg.EndAngle
	}
	if cfg.Clockwise != nil && fromFile("counterclockwise") {
		opts.Clockwise = cfg.Clockwise
	}
	if cfg.Divisions != nil && fromFile("divisions") {
		opts.Divisions = *cfg.Divisions
	}
	if cfg.AngleRatio != nil && fromFile("angle-ratio") {
		opts.AngleRatio = *cfg.AngleRatio
	}
	if cfg.Ordering != nil && fromFile("ordering") {
		opts.Ordering = *cfg.Ordering
	}
	if cfg.Engine != nil && fromFile("engine") {
		opts.Engine = *cfg.Engine
	}
}
