package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/repository"
)

const (
	estimateSheet = "Estimate"
	historySheet  = "History"
)

// Service produces XLSX bytes for single estimates and for the parse history.
type Service struct {
	history repository.HistoryRepository
	logger  *slog.Logger
}

// NewService accepts a nil history repository when only EstimateXLSX is needed.
func NewService(history repository.HistoryRepository, logger *slog.Logger) *Service {
	return &Service{history: history, logger: common.LoggerOrDefault(logger)}
}

// EstimateXLSX renders one estimate: a header block, the item table and the totals.
func (s *Service) EstimateXLSX(est entity.Estimate) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := useSheet(f, estimateSheet); err != nil {
		return nil, err
	}
	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(estimateSheet, cell, v)
	}

	address := ""
	if est.VendorAddress != nil {
		address = *est.VendorAddress
	}
	write(1, 1, "Vendor")
	write(2, 1, est.VendorName)
	write(1, 2, "Address")
	write(2, 2, address)
	write(1, 3, "Estimate Date")
	write(2, 3, est.EstimateDate.String())

	const headerRow = 5
	headers := []string{"No.", "Item", "Normalized", "Cost Type", "Quantity", "Amount (excl. tax)"}
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	row := headerRow + 1
	for i, it := range est.Items {
		write(1, row, i+1)
		write(2, row, truncate(it.ItemNameRaw, 120))
		write(3, row, it.ItemNameNorm)
		write(4, row, string(it.CostType))
		write(5, row, it.Quantity)
		write(6, row, it.AmountExclTax)
		row++
	}

	row++
	write(5, row, "Total (excl. tax)")
	write(6, row, est.TotalExclTax)
	row++
	write(5, row, "Total (incl. tax)")
	write(6, row, est.TotalInclTax)

	_ = f.SetColWidth(estimateSheet, "A", "A", 14)
	_ = f.SetColWidth(estimateSheet, "B", "B", 36)
	_ = f.SetColWidth(estimateSheet, "C", "C", 22)
	_ = f.SetColWidth(estimateSheet, "D", "D", 16)
	_ = f.SetColWidth(estimateSheet, "E", "E", 18)
	_ = f.SetColWidth(estimateSheet, "F", "F", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "xlsx write")
	}
	s.logger.Info("export.xlsx.ok",
		"sheet", estimateSheet,
		"rows", len(est.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// RecordXLSX loads a stored parse and renders it with EstimateXLSX.
func (s *Service) RecordXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.history == nil {
		return nil, common.InternalError("history export requires a repository")
	}
	rec, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.EstimateXLSX(rec.Estimate)
}

// HistoryXLSX lists the most recent parses, one row each.
func (s *Service) HistoryXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.history == nil {
		return nil, common.InternalError("history export requires a repository")
	}
	start := time.Now()
	recs, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, common.WrapError(err, "query history")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := useSheet(f, historySheet); err != nil {
		return nil, err
	}

	headers := []string{"Parsed At", "Source", "Vendor", "Estimate Date", "Strategy", "Items", "Total (excl. tax)", "Total (incl. tax)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}
	for r, rec := range recs {
		values := []any{
			rec.CreatedAt.Format(time.RFC3339),
			rec.SourceName,
			rec.VendorName,
			rec.EstimateDate.String(),
			string(rec.Strategy),
			rec.ItemCount,
			rec.TotalExclTax,
			rec.TotalInclTax,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(historySheet, cell, v)
		}
	}
	_ = f.SetColWidth(historySheet, "A", "A", 22)
	_ = f.SetColWidth(historySheet, "B", "C", 30)
	_ = f.SetColWidth(historySheet, "D", "F", 14)
	_ = f.SetColWidth(historySheet, "G", "H", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "xlsx write")
	}
	s.logger.Info("export.xlsx.ok",
		"sheet", historySheet,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// useSheet creates name, makes it active and drops the default Sheet1.
func useSheet(f *excelize.File, name string) error {
	if index, _ := f.GetSheetIndex(name); index == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(name)
	f.SetActiveSheet(activeIndex)
	return f.DeleteSheet("Sheet1")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
