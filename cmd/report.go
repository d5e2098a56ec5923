package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/weddingguard/backend/handler"
	"github.com/weddingguard/backend/model"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/tui"
	"github.com/weddingguard/backend/view"
)

const allTabs = "all"

// printOptions control how a report is written to the terminal.
type printOptions struct {
	json  bool
	tab   string
	style string
	width int
}

func (o *printOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&o.tab, "tab", allTabs, "report tab to print: summary, clauses, checklist or all")
	cmd.Flags().StringVar(&o.style, "style", "auto", "glamour style: auto, dark, light or notty")
	cmd.Flags().IntVar(&o.width, "width", 80, "wrap width for rendered markdown")
}

func (o *printOptions) tabs() ([]shell.Tab, error) {
	if o.tab == allTabs {
		return shell.Tabs, nil
	}
	tab := shell.Tab(o.tab)
	if !shell.ValidTab(tab) {
		return nil, fmt.Errorf("unknown tab %q", o.tab)
	}
	return []shell.Tab{tab}, nil
}

// printReport writes report to out as JSON or as rendered markdown.
func printReport(out io.Writer, analysisID string, report *model.Report, opts printOptions) error {
	vm := view.Build(report)

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.ReportResponse{AnalysisID: analysisID, Report: vm})
	}

	tabs, err := opts.tabs()
	if err != nil {
		return err
	}
	renderer, err := tui.NewRenderer(opts.style, opts.width)
	if err != nil {
		return err
	}
	if report.IsRawText() {
		tabs = tabs[:1]
	}
	for _, tab := range tabs {
		if _, err := io.WriteString(out, renderer.RenderReport(vm, tab)); err != nil {
			return err
		}
	}
	if analysisID != "" {
		fmt.Fprintf(out, "\nanalysis id: %s\n", analysisID)
	}
	return nil
}
