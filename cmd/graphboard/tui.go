package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/graphboard/internal/tui"
)

func newTUICommand(flags *globalFlags) *cobra.Command {
	var (
		cfgPath string
		logPath string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Draw a board in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal belongs to the board; logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := flags.setupLogging(w); err != nil {
				return err
			}

			_, cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			ctrl, err := tui.Run(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctrl.Export())
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to board YAML config (empty for defaults)")
	cmd.Flags().StringVar(&logPath, "log-file", "", "Append logs to this file")
	return cmd
}
