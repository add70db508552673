package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/markdown-cli/internal/aggregate"
	"github.com/sells-group/markdown-cli/internal/engine"
	"github.com/sells-group/markdown-cli/internal/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the markdown stage dashboard",
	Long: `Renders the category/season markdown dashboard: a KPI summary,
revenue by markdown stage per category, and total revenue per
season and category.

Examples:
  # Full catalog from a CSV export
  report --input catalog.csv

  # Skincare and Footwear, winter only
  report --input catalog.csv --categories Skincare,Footwear --seasons Winter

  # Machine-readable output
  report --snapshot latest-import --format json --output report.json`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("input", "", "catalog CSV or XLSX file")
	f.String("snapshot", "", "stored snapshot ID or name")
	f.String("categories", "", "comma-separated category filter")
	f.String("seasons", "", "comma-separated season filter")
	f.String("format", "table", "output format: table, csv, json, or yaml (csv prints the stage pivot only)")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(reportCmd)
}

// reportPayload is the machine-readable report shape.
type reportPayload struct {
	Filter      engine.Filter         `json:"filter" yaml:"filter"`
	Summary     engine.Summary        `json:"summary" yaml:"summary"`
	StageTable  []aggregate.StageRow  `json:"revenue_by_stage" yaml:"revenue_by_stage"`
	SeasonTable aggregate.SeasonTable `json:"revenue_by_season" yaml:"revenue_by_season"`
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	input, _ := cmd.Flags().GetString("input")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	categories, _ := cmd.Flags().GetString("categories")
	seasons, _ := cmd.Flags().GetString("seasons")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	view, err := loadView(ctx, input, snapshot, categories, seasons)
	if err != nil {
		return err
	}

	payload := reportPayload{
		Filter:      view.Filter,
		Summary:     view.Summarize(),
		StageTable:  view.StageTable(),
		SeasonTable: view.SeasonTable(),
	}

	return withOutput(output, func(w io.Writer) error {
		switch format {
		case "table":
			return renderReportTable(w, view, payload)
		case "csv":
			return renderStageCSV(w, payload.StageTable)
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(payload), "report: encode json")
		case "yaml":
			return eris.Wrap(yaml.NewEncoder(w).Encode(payload), "report: encode yaml")
		default:
			return eris.Errorf("report: --format must be table, csv, json, or yaml (got %q)", format)
		}
	})
}

func renderReportTable(w io.Writer, view *engine.View, payload reportPayload) error {
	if view.Empty() {
		fmt.Fprintln(w, "No data for selected filters.")
		return nil
	}

	p := message.NewPrinter(language.English)

	s := payload.Summary
	fmt.Fprintf(w, "Best markdown stage:   %s\n", s.BestStage)
	p.Fprintf(w, "Revenue at best stage: %.0f\n", s.BestStageRevenue)
	p.Fprintf(w, "Total revenue:         %.0f\n", s.TotalRevenue)
	fmt.Fprintf(w, "Avg optimal discount:  %.0f%%\n", s.AvgOptimalDiscount*100)
	fmt.Fprintf(w, "Products:              %d\n\n", s.Products)

	fmt.Fprintln(w, "Revenue by markdown stage")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tM1\tM2\tM3\tM4\tTOTAL")
	for _, row := range payload.StageTable {
		p.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\n",
			row.Category, row.Revenue[0], row.Revenue[1], row.Revenue[2], row.Revenue[3], row.Total)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "report: flush stage table")
	}

	fmt.Fprintln(w, "\nSeason x Category total revenue (all stages)")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "CATEGORY")
	for _, season := range payload.SeasonTable.Seasons {
		fmt.Fprintf(tw, "\t%s", season)
	}
	fmt.Fprintln(tw, "\tTOTAL")
	for _, row := range payload.SeasonTable.Rows {
		fmt.Fprint(tw, row.Category)
		for _, rev := range row.Revenue {
			p.Fprintf(tw, "\t%.0f", rev)
		}
		p.Fprintf(tw, "\t%.0f\n", row.Total)
	}
	return eris.Wrap(tw.Flush(), "report: flush season table")
}

func renderStageCSV(w io.Writer, rows []aggregate.StageRow) error {
	cw := csv.NewWriter(w)
	header := []string{"category"}
	for _, stage := range model.Stages {
		header = append(header, string(stage))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, row := range rows {
		record := []string{row.Category}
		for _, rev := range row.Revenue {
			record = append(record, strconv.FormatFloat(rev, 'f', 2, 64))
		}
		record = append(record, strconv.FormatFloat(row.Total, 'f', 2, 64))
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}
