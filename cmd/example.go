package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weddingguard/backend/service"
)

func newExampleCommand(opts *rootOptions) *cobra.Command {
	var (
		variant string
		output  printOptions
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print the bundled example report without contacting the analysis service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.load(cmd.ErrOrStderr()); err != nil {
				return err
			}
			v := service.ExampleVariant(variant)
			if v != service.ExampleStructured && v != service.ExampleText {
				return fmt.Errorf("unknown variant %q", variant)
			}
			report, err := service.ExampleReport(v)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), "", report, output)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", string(service.ExampleStructured), "example to show: structured or text")
	output.bind(cmd)
	return cmd
}
