package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
)

// Validate checks the config for:
//   - Required fields and positive sizes
//   - Colours that parse
//   - A fill range inside one colour channel
//   - Duplicate backend names
func Validate(cfg *BoardConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	e := cfg.Engine
	if e.Shards < 1 {
		errs = append(errs, fmt.Sprintf("engine.shards must be >= 1, got %d", e.Shards))
	}
	if e.QueueDepth < 1 {
		errs = append(errs, fmt.Sprintf("engine.queue_depth must be >= 1, got %d", e.QueueDepth))
	}
	if e.EventTimeoutMs < 1 {
		errs = append(errs, fmt.Sprintf("engine.event_timeout_ms must be >= 1, got %d", e.EventTimeoutMs))
	}

	c := cfg.Canvas
	if c.Width < 1 || c.Height < 1 {
		errs = append(errs, fmt.Sprintf("canvas: size %dx%d must be positive", c.Width, c.Height))
	}
	if _, err := graph.ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Sprintf("canvas.background: %s", err))
	}
	if _, err := graph.ParseColor(c.Stroke); err != nil {
		errs = append(errs, fmt.Sprintf("canvas.stroke: %s", err))
	}
	if c.EdgeWidth <= 0 {
		errs = append(errs, fmt.Sprintf("canvas.edge_width must be > 0, got %g", c.EdgeWidth))
	}
	seen := make(map[string]int)
	for i, b := range c.Backends {
		if b == "" {
			errs = append(errs, fmt.Sprintf("canvas.backends[%d]: name is required", i))
			continue
		}
		if prev, ok := seen[b]; ok {
			errs = append(errs, fmt.Sprintf("duplicate backend %q (backends[%d] and backends[%d])", b, prev, i))
			continue
		}
		seen[b] = i
	}

	v := cfg.Vertex
	if v.MinRadius <= 0 {
		errs = append(errs, fmt.Sprintf("vertex.min_radius must be > 0, got %g", v.MinRadius))
	}
	if v.DefaultRadius < v.MinRadius {
		errs = append(errs, fmt.Sprintf("vertex.default_radius %g is below min_radius %g", v.DefaultRadius, v.MinRadius))
	}
	if v.RadiusStep <= 0 {
		errs = append(errs, fmt.Sprintf("vertex.radius_step must be > 0, got %g", v.RadiusStep))
	}
	if v.FillMin < 0 || v.FillMax > 256 || v.FillMin >= v.FillMax {
		errs = append(errs, fmt.Sprintf("vertex: fill range [%d,%d) must be non-empty and inside [0,256)", v.FillMin, v.FillMax))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
