package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/tui"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	var (
		style   string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alternate screen owns the terminal, so logs go to a file or nowhere
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				out = f
			}

			cfg, err := opts.load(out)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Options{
				Analyzer:       service.NewAnalyzerService(&cfg.Analysis),
				MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
				Style:          style,
			})
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light or notty")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the UI runs")
	return cmd
}
