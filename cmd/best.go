package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/markdown-cli/internal/aggregate"
	"github.com/sells-group/markdown-cli/internal/model"
)

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Best markdown stage per product",
	Long: `Ranks each product's four markdown stages by revenue or
sell-through and reports the winner. Exact ties go to the earliest
stage. With --product, prints the full per-stage breakdown for one
product instead.

Examples:
  best --input catalog.csv
  best --input catalog.csv --rank-by sell_through --categories Skincare
  best --input catalog.csv --product P-10042`,
	RunE: runBest,
}

func init() {
	f := bestCmd.Flags()
	f.String("input", "", "catalog CSV or XLSX file")
	f.String("snapshot", "", "stored snapshot ID or name")
	f.String("categories", "", "comma-separated category filter")
	f.String("seasons", "", "comma-separated season filter")
	f.String("rank-by", "revenue", "ranking metric: revenue or sell_through")
	f.String("product", "", "print the per-stage breakdown for one product ID")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(bestCmd)
}

// bestRow is one ranked product in machine-readable output.
type bestRow struct {
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	Category    string      `json:"category"`
	Season      string      `json:"season"`
	BestStage   model.Stage `json:"best_stage"`
	Value       float64     `json:"value"`
}

func runBest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	input, _ := cmd.Flags().GetString("input")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	categories, _ := cmd.Flags().GetString("categories")
	seasons, _ := cmd.Flags().GetString("seasons")
	rankByStr, _ := cmd.Flags().GetString("rank-by")
	product, _ := cmd.Flags().GetString("product")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	rankBy, err := aggregate.ParseRankBy(rankByStr)
	if err != nil {
		return err
	}

	view, err := loadView(ctx, input, snapshot, categories, seasons)
	if err != nil {
		return err
	}

	if product != "" {
		stages, err := view.ProductStages(product)
		if err != nil {
			return err
		}
		return withOutput(output, func(w io.Writer) error {
			return renderProductStages(w, format, stages)
		})
	}

	bestMap, err := view.BestStagePerProduct(rankBy)
	if err != nil {
		return err
	}

	rows := make([]bestRow, 0, len(bestMap))
	for i, p := range view.Products {
		stage, ok := bestMap[p.ProductID]
		if !ok {
			continue
		}
		// Metric rows are aligned four-per-product with the view's products.
		m := view.Metrics[i*model.StageCount+stage.Index()]
		value := m.Revenue
		if rankBy == aggregate.RankBySellThrough {
			value = m.SellThrough
		}
		rows = append(rows, bestRow{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Category:    p.Category,
			Season:      p.Season,
			BestStage:   stage,
			Value:       value,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })

	return withOutput(output, func(w io.Writer) error {
		switch format {
		case "table":
			return renderBestTable(w, rows, rankBy)
		case "csv":
			return renderBestCSV(w, rows, rankBy)
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(rows), "best: encode json")
		default:
			return eris.Errorf("best: --format must be table, csv, or json (got %q)", format)
		}
	})
}

func renderBestTable(w io.Writer, rows []bestRow, rankBy aggregate.RankBy) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No products for selected filters.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PRODUCT\tNAME\tCATEGORY\tSEASON\tBEST STAGE\t%s\n", headerFor(rankBy))
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ProductID, r.ProductName, r.Category, r.Season, r.BestStage, formatMetric(r.Value, rankBy))
	}
	return eris.Wrap(tw.Flush(), "best: flush table")
}

func renderBestCSV(w io.Writer, rows []bestRow, rankBy aggregate.RankBy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "product_name", "category", "season", "best_stage", string(rankBy)}); err != nil {
		return eris.Wrap(err, "best: write csv header")
	}
	for _, r := range rows {
		record := []string{r.ProductID, r.ProductName, r.Category, r.Season, string(r.BestStage),
			strconv.FormatFloat(r.Value, 'f', -1, 64)}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "best: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "best: flush csv")
}

func renderProductStages(w io.Writer, format string, stages []model.StageMetric) error {
	switch format {
	case "table":
		fmt.Fprintf(w, "%s | %s | %s\n\n", stages[0].ProductName, stages[0].Brand, stages[0].Season)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STAGE\tMARKDOWN %\tSALES\tREVENUE\tSELL-THROUGH")
		for _, m := range stages {
			fmt.Fprintf(tw, "%s\t%.1f\t%.0f\t%.0f\t%.3f\n",
				m.Stage, m.Markdown*100, m.Sales, m.Revenue, m.SellThrough)
		}
		return eris.Wrap(tw.Flush(), "best: flush product table")
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(stages), "best: encode json")
	default:
		return eris.Errorf("best: --format must be table or json with --product (got %q)", format)
	}
}

func headerFor(rankBy aggregate.RankBy) string {
	if rankBy == aggregate.RankBySellThrough {
		return "SELL-THROUGH"
	}
	return "REVENUE"
}

func formatMetric(v float64, rankBy aggregate.RankBy) string {
	if rankBy == aggregate.RankBySellThrough {
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
