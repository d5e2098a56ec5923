// Package cmd wires the weddingguard command line: the web server, one-shot
// analysis, the bundled example and the terminal UI.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/pkg/logger"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the config file, falling back to defaults when it is missing,
// and installs the logger writing to out.
func (o *rootOptions) load(out io.Writer) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	return cfg, nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "weddingguard",
		Short: "WeddingGuard - wedding contract risk analysis",
		Long: `WeddingGuard checks wedding venue and studio contracts for risky clauses.

Upload a contract through the web pages, analyze a file from the terminal,
or browse the bundled example report without any network access.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCommand(opts),
		newAnalyzeCommand(opts),
		newExampleCommand(opts),
		newTUICommand(opts),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
