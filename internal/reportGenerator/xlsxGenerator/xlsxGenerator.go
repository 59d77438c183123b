package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Portfolio"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the portfolio report to an XLSX workbook and returns its
// bytes together with the file extension.
func (g *XLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(report.Holdings) == 0 {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(f, report); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, report model.PortfolioReport) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := g.sectionHeader(f, "A1", "E1", "Positions", "#cfe2f3"); err != nil {
		return err
	}
	if err := g.sectionHeader(f, "F1", "G1", "Allocation %", "#d9ead3"); err != nil {
		return err
	}
	if err := g.sectionHeader(f, "H1", "J1", "Rebalance", "#f9cb9c"); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "price")
	_ = f.SetCellStr(sheetName, "C2", "quantity")
	_ = f.SetCellStr(sheetName, "D2", "value")
	_ = f.SetCellStr(sheetName, "E2", "last updated")
	_ = f.SetCellStr(sheetName, "F2", "target")
	_ = f.SetCellStr(sheetName, "G2", "current")
	_ = f.SetCellStr(sheetName, "H2", "target value")
	_ = f.SetCellStr(sheetName, "I2", "difference")
	_ = f.SetCellStr(sheetName, "J2", "shares to buy/sell")

	for i, h := range report.Holdings {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), h.Ticker)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), h.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), h.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), h.CurrentValue.InexactFloat64())
		if !h.LastUpdated.IsZero() {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), h.LastUpdated)
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), h.TargetAllocation.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), h.CurrentAllocation.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), h.TargetValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), h.Difference.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), h.RebalanceAction.InexactFloat64())
	}

	rowNum := len(report.Holdings) + 4
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "total value")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), report.TotalValue.InexactFloat64())
	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "target allocation total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), report.TargetAllocationTotal.InexactFloat64())
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), string(report.AllocationStatus))

	if len(report.Operations) > 0 {
		rowNum += 2
		if err := g.sectionHeader(f, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("E%d", rowNum), "Operation history", "#cccccc"); err != nil {
			return err
		}

		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "ticker")
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "quantity")
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "price")
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "total")
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), "date")

		for _, operation := range report.Operations {
			rowNum++
			_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), operation.Ticker)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), operation.Quantity.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), operation.Price.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), operation.TotalPrice.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), operation.CreatedAt)
		}
	}

	return nil
}

func (g *XLSXGenerator) sectionHeader(f *excelize.File, from, to, title, color string) error {
	if err := f.MergeCell(sheetName, from, to); err != nil {
		return err
	}

	f.SetCellValue(sheetName, from, title)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	return f.SetCellStyle(sheetName, from, from, styleID)
}
