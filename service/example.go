package service

import (
	_ "embed"
	"fmt"

	"github.com/weddingguard/backend/model"
)

//go:embed fixtures/example_report.json
var exampleReportJSON []byte

//go:embed fixtures/example_contract.txt
var exampleContractText string

// ExampleVariant selects which bundled demo report to load.
type ExampleVariant string

const (
	ExampleStructured ExampleVariant = "structured"
	ExampleText       ExampleVariant = "text"
)

// ExampleReport returns the bundled demo report. It never touches the
// network. An unknown variant falls back to the structured example.
func ExampleReport(variant ExampleVariant) (*model.Report, error) {
	if variant == ExampleText {
		return model.NewRawTextReport(exampleContractText), nil
	}
	report, err := model.ParseReport(exampleReportJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundled example: %w", err)
	}
	return report, nil
}
