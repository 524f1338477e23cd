package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/utils"
	"github.com/xuri/excelize/v2"
)

const timeFormat = time.RFC3339

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.ProfitReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSummarySheet(f, report); err != nil {
		return nil, "", err
	}
	if err := g.fillTransactionsSheet(f, report.Transactions); err != nil {
		return nil, "", err
	}
	if err := g.fillDividendsSheet(f, report.Dividends); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
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
			Color:   []string{"#cfe2f3"},
		},
	})
}

func (g *XLSXGenerator) fillSummarySheet(f *excelize.File, report model.ProfitReport) error {
	const sheetName = "Profit"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Profit breakdown")

	styleID, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	rows := [][2]string{
		{"total profit", report.Profit.TotalProfit.String()},
		{"realized stock profit", report.Profit.RealizedProfit.String()},
		{"dividend profit", report.Profit.DividendProfit.String()},
		{"unrealized gains", report.Profit.UnrealizedGains.String()},
		{"generated at", report.GeneratedAt.Format(timeFormat)},
	}
	for i, row := range rows {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", i+2), row[0])
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", i+2), row[1])
	}

	if report.Quote != nil {
		_ = f.SetCellStr(sheetName, "A8", "current quote")
		_ = f.SetCellStr(sheetName, "B8", report.Quote.Ticker)
		_ = f.SetCellStr(sheetName, "C8", report.Quote.Price.String())
		_ = f.SetCellStr(sheetName, "D8", report.Quote.Currency)
	}

	return nil
}

func (g *XLSXGenerator) fillTransactionsSheet(f *excelize.File, transactions []model.Transaction) error {
	const sheetName = "Transactions"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	styleID, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"id", "type", "quantity", "price", "fee", "timestamp"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellStr(sheetName, cell, h)
		if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
			return err
		}
	}

	for i, tx := range transactions {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.ID)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), string(tx.Side))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), tx.Quantity)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), tx.Price.String())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", row), tx.Fee.String())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", row), tx.Timestamp.Format(timeFormat))
	}

	return nil
}

func (g *XLSXGenerator) fillDividendsSheet(f *excelize.File, dividends []model.Dividend) error {
	const sheetName = "Dividends"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	styleID, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"id", "amount per unit", "ex-dividend date", "payment date"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellStr(sheetName, cell, h)
		if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
			return err
		}
	}

	for i, div := range dividends {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), div.ID)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), div.AmountPerUnit.String())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), div.ExDividendDate.Format(timeFormat))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), div.PaymentDate.Format(timeFormat))
	}

	return nil
}
