package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weddingguard/backend/pkg/logger"
	"github.com/weddingguard/backend/service"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var output printOptions

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a contract file (JPG, PNG or PDF) and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if _, err := output.tabs(); err != nil {
				return err
			}

			file, err := service.OpenLocalFile(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			logger.Debug(cmd.Context(), "opened contract", "path", args[0], "content_type", file.ContentType)

			if err := service.NewValidator(cfg.Analysis.MaxUploadBytes).Validate(file.UploadedFile); err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					return errors.New(verr.Reason())
				}
				return err
			}

			analysis, err := service.NewAnalyzerService(&cfg.Analysis).Submit(cmd.Context(), file.UploadedFile)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return printReport(cmd.OutOrStdout(), analysis.ID, analysis.Report, output)
		},
	}

	output.bind(cmd)
	return cmd
}
