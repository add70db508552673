package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/aggregate"
	"github.com/sells-group/markdown-cli/internal/engine"
	"github.com/sells-group/markdown-cli/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dashboard tables to an XLSX workbook",
	Long: `Writes the stage pivot, the season pivot, and the best-stage
ranking for the filtered catalog into one workbook, one sheet per
table.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("input", "", "catalog CSV or XLSX file")
	f.String("snapshot", "", "stored snapshot ID or name")
	f.String("categories", "", "comma-separated category filter")
	f.String("seasons", "", "comma-separated season filter")
	f.String("rank-by", "revenue", "ranking metric for the best-stage sheet")
	f.String("output", "markdown_report.xlsx", "workbook path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	input, _ := cmd.Flags().GetString("input")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	categories, _ := cmd.Flags().GetString("categories")
	seasons, _ := cmd.Flags().GetString("seasons")
	rankByStr, _ := cmd.Flags().GetString("rank-by")
	output, _ := cmd.Flags().GetString("output")

	rankBy, err := aggregate.ParseRankBy(rankByStr)
	if err != nil {
		return err
	}

	view, err := loadView(ctx, input, snapshot, categories, seasons)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()

	if err := writeStageSheet(file, view.StageTable()); err != nil {
		return err
	}
	if err := writeSeasonSheet(file, view.SeasonTable()); err != nil {
		return err
	}
	if err := writeBestStageSheet(file, view, rankBy); err != nil {
		return err
	}

	if err := file.Save(output); err != nil {
		return eris.Wrapf(err, "export: save %s", output)
	}

	zap.L().Info("workbook written",
		zap.String("path", output),
		zap.Int("products", len(view.Products)),
	)
	return nil
}

func writeStageSheet(file *xlsx.File, rows []aggregate.StageRow) error {
	sheet, err := file.AddSheet("Revenue by Stage")
	if err != nil {
		return eris.Wrap(err, "export: add stage sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Category"
	for _, stage := range model.Stages {
		header.AddCell().Value = string(stage)
	}
	header.AddCell().Value = "Total"

	for _, row := range rows {
		r := sheet.AddRow()
		r.AddCell().Value = row.Category
		for _, rev := range row.Revenue {
			r.AddCell().SetFloat(rev)
		}
		r.AddCell().SetFloat(row.Total)
	}
	return nil
}

func writeSeasonSheet(file *xlsx.File, table aggregate.SeasonTable) error {
	sheet, err := file.AddSheet("Season x Category")
	if err != nil {
		return eris.Wrap(err, "export: add season sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Category"
	for _, season := range table.Seasons {
		header.AddCell().Value = season
	}
	header.AddCell().Value = "Total"

	for _, row := range table.Rows {
		r := sheet.AddRow()
		r.AddCell().Value = row.Category
		for _, rev := range row.Revenue {
			r.AddCell().SetFloat(rev)
		}
		r.AddCell().SetFloat(row.Total)
	}
	return nil
}

func writeBestStageSheet(file *xlsx.File, view *engine.View, rankBy aggregate.RankBy) error {
	sheet, err := file.AddSheet("Best Stage")
	if err != nil {
		return eris.Wrap(err, "export: add best-stage sheet")
	}

	bestMap, err := view.BestStagePerProduct(rankBy)
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, col := range []string{"Product ID", "Product", "Category", "Season", "Best Stage", string(rankBy)} {
		header.AddCell().Value = col
	}

	for i, p := range view.Products {
		stage, ok := bestMap[p.ProductID]
		if !ok {
			continue
		}
		m := view.Metrics[i*model.StageCount+stage.Index()]
		value := m.Revenue
		if rankBy == aggregate.RankBySellThrough {
			value = m.SellThrough
		}

		r := sheet.AddRow()
		r.AddCell().Value = p.ProductID
		r.AddCell().Value = p.ProductName
		r.AddCell().Value = p.Category
		r.AddCell().Value = p.Season
		r.AddCell().Value = string(stage)
		r.AddCell().SetFloat(value)
	}
	return nil
}
