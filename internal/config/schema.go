package config

import (
	"math/rand/v2"

	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// BoardConfig is the top-level YAML structure.
type BoardConfig struct {
	Version string     `yaml:"version" json:"version"`
	Engine  EngineConf `yaml:"engine" json:"engine"`
	Canvas  CanvasConf `yaml:"canvas" json:"canvas"`
	Vertex  VertexConf `yaml:"vertex" json:"vertex"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Shards         int `yaml:"shards" json:"shards"`
	QueueDepth     int `yaml:"queue_depth" json:"queue_depth"` // per shard
	EventTimeoutMs int `yaml:"event_timeout_ms" json:"event_timeout_ms"`
}

// CanvasConf describes the drawing surface of every session.
type CanvasConf struct {
	Width      int      `yaml:"width" json:"width"`
	Height     int      `yaml:"height" json:"height"`
	Background string   `yaml:"background" json:"background"`
	Stroke     string   `yaml:"stroke" json:"stroke"`
	EdgeWidth  float64  `yaml:"edge_width" json:"edge_width"`
	Backends   []string `yaml:"backends" json:"backends"`
}

// VertexConf holds vertex placement defaults.
type VertexConf struct {
	DefaultRadius float64 `yaml:"default_radius" json:"default_radius"`
	MinRadius     float64 `yaml:"min_radius" json:"min_radius"`
	RadiusStep    float64 `yaml:"radius_step" json:"radius_step"`
	FillMin       int     `yaml:"fill_min" json:"fill_min"`
	FillMax       int     `yaml:"fill_max" json:"fill_max"`
}

// Default returns a config with every default applied.
func Default() *BoardConfig {
	cfg := &BoardConfig{Version: "v1"}
	applyDefaults(cfg)
	return cfg
}

// Controller converts the vertex and canvas sections into controller settings.
// Colours must already have passed Validate.
func (c *BoardConfig) Controller(rng *rand.Rand) controller.Config {
	stroke, _ := graph.ParseColor(c.Canvas.Stroke)
	return controller.Config{
		DefaultRadius: c.Vertex.DefaultRadius,
		MinRadius:     c.Vertex.MinRadius,
		RadiusStep:    c.Vertex.RadiusStep,
		FillMin:       c.Vertex.FillMin,
		FillMax:       c.Vertex.FillMax,
		Stroke:        stroke,
		Rand:          rng,
	}
}

// RenderOptions converts the canvas section into surface options.
func (c *BoardConfig) RenderOptions() render.Options {
	bg, _ := graph.ParseColor(c.Canvas.Background)
	stroke, _ := graph.ParseColor(c.Canvas.Stroke)
	return render.Options{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		Background: bg,
		EdgeColor:  stroke,
		EdgeWidth:  c.Canvas.EdgeWidth,
	}
}

func applyDefaults(cfg *BoardConfig) {
	if cfg.Engine.Shards == 0 {
		cfg.Engine.Shards = 8
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = 1024
	}
	if cfg.Engine.EventTimeoutMs == 0 {
		cfg.Engine.EventTimeoutMs = 2000
	}
	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = 800
	}
	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = 600
	}
	if cfg.Canvas.Background == "" {
		cfg.Canvas.Background = "#ffffff"
	}
	if cfg.Canvas.Stroke == "" {
		cfg.Canvas.Stroke = "#000000"
	}
	if cfg.Canvas.EdgeWidth == 0 {
		cfg.Canvas.EdgeWidth = 5
	}
	if len(cfg.Canvas.Backends) == 0 {
		cfg.Canvas.Backends = []string{"raster", "stream"}
	}
	if cfg.Vertex.DefaultRadius == 0 {
		cfg.Vertex.DefaultRadius = 50
	}
	if cfg.Vertex.MinRadius == 0 {
		cfg.Vertex.MinRadius = 15
	}
	if cfg.Vertex.RadiusStep == 0 {
		cfg.Vertex.RadiusStep = 5
	}
	if cfg.Vertex.FillMin == 0 && cfg.Vertex.FillMax == 0 {
		cfg.Vertex.FillMin, cfg.Vertex.FillMax = 80, 256
	}
}
