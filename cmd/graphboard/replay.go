package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/engine"
	"github.com/gyaneshwarpardhi/graphboard/internal/event"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/raster"
)

// script is a recorded sequence of board events.
type script struct {
	Seed   uint64        `yaml:"seed"`
	Events []event.Event `yaml:"events"`
}

func newReplayCommand(flags *globalFlags) *cobra.Command {
	var (
		cfgPath string
		pngPath string
	)
	cmd := &cobra.Command{
		Use:   "replay SCRIPT.yaml",
		Short: "Replay a scripted session and print the adjacency export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.setupLogging(os.Stderr); err != nil {
				return err
			}
			_, cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer f.Close()
			return replay(f, cmd.OutOrStdout(), cfg, pngPath)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to board YAML config (empty for defaults)")
	cmd.Flags().StringVar(&pngPath, "png", "", "Write the final board to this PNG file")
	return cmd
}

// replay applies every scripted event to a fresh controller. Export events
// print the adjacency list; a script without one prints it once at the end.
func replay(r io.Reader, out io.Writer, cfg *config.BoardConfig, pngPath string) error {
	var s script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
		return fmt.Errorf("parse script: %w", err)
	}

	var (
		surface render.Surface = render.Multi{}
		canvas  *raster.Surface
	)
	if pngPath != "" {
		canvas = raster.NewSurface(cfg.RenderOptions())
		surface = canvas
	}
	var rng *rand.Rand
	if s.Seed != 0 {
		rng = rand.New(rand.NewPCG(s.Seed, s.Seed))
	}
	ctrl := controller.New(cfg.Controller(rng), surface)

	exported := false
	for i := range s.Events {
		ev := &s.Events[i]
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
		if ev.Type == event.Export {
			exported = true
			fmt.Fprintln(out, engine.Apply(ctrl, ev))
			continue
		}
		engine.Apply(ctrl, ev)
	}
	if !exported {
		fmt.Fprintln(out, ctrl.Export())
	}
	slog.Debug("replay finished", "events", len(s.Events), "vertices", ctrl.Graph().VertexCount())

	if canvas == nil {
		return nil
	}
	f, err := os.Create(pngPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", pngPath, err)
	}
	if err := canvas.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", pngPath, err)
	}
	return f.Close()
}
