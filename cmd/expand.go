package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Dump the per-stage metrics table",
	Long: `Expands each catalog row into its four stage-metric rows
(revenue and sell-through per markdown stage) and writes the full
normalized table for downstream tools.`,
	RunE: runExpand,
}

func init() {
	f := expandCmd.Flags()
	f.String("input", "", "catalog CSV or XLSX file")
	f.String("snapshot", "", "stored snapshot ID or name")
	f.String("categories", "", "comma-separated category filter")
	f.String("seasons", "", "comma-separated season filter")
	f.String("format", "csv", "output format: csv or json")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, _ []string) error {
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

	return withOutput(output, func(w io.Writer) error {
		switch format {
		case "csv":
			cw := csv.NewWriter(w)
			header := []string{"product_id", "product_name", "category", "season", "brand",
				"stage", "markdown", "sales", "revenue", "sell_through"}
			if err := cw.Write(header); err != nil {
				return eris.Wrap(err, "expand: write csv header")
			}
			for _, m := range view.Metrics {
				record := []string{
					m.ProductID, m.ProductName, m.Category, m.Season, m.Brand,
					string(m.Stage),
					strconv.FormatFloat(m.Markdown, 'f', -1, 64),
					strconv.FormatFloat(m.Sales, 'f', -1, 64),
					strconv.FormatFloat(m.Revenue, 'f', -1, 64),
					strconv.FormatFloat(m.SellThrough, 'f', -1, 64),
				}
				if err := cw.Write(record); err != nil {
					return eris.Wrap(err, "expand: write csv row")
				}
			}
			cw.Flush()
			return eris.Wrap(cw.Error(), "expand: flush csv")
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(view.Metrics), "expand: encode json")
		default:
			return eris.Errorf("expand: --format must be csv or json (got %q)", format)
		}
	})
}
