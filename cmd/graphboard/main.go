package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/logging"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/raster"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/stream"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile   string
	logLevel  string
	logFormat string
}

func main() {
	var flags globalFlags
	rootCmd := &cobra.Command{
		Use:   "graphboard",
		Short: "Draw undirected graphs and export their adjacency lists",
		Long: `graphboard builds undirected graphs interactively: place vertices, connect
them with edges, label them, and export the adjacency list. Boards are served
over HTTP and WebSocket, drawn in the terminal, or replayed from scripts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading LOG_* variables")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	rootCmd.AddCommand(newServeCommand(&flags))
	rootCmd.AddCommand(newTUICommand(&flags))
	rootCmd.AddCommand(newReplayCommand(&flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging loads the env file and installs the default logger.
func (f *globalFlags) setupLogging(w io.Writer) error {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f.envFile, err)
		}
	}
	logging.Setup(w, logging.LoadConfig().WithFlags(f.logLevel, f.logFormat))
	return nil
}

// loadConfig reads the board config, or returns the defaults with a nil
// loader when path is empty.
func loadConfig(path string) (*config.Loader, *config.BoardConfig, error) {
	if path == "" {
		slog.Info("no config file, using defaults")
		return nil, config.Default(), nil
	}
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, nil, err
	}
	return loader, loader.Config(), nil
}

func newRegistry() *render.Registry {
	reg := render.NewRegistry()
	reg.Register(raster.Name, raster.New)
	reg.Register(stream.Name, stream.New)
	return reg
}
