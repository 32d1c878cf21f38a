package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

const excelSheet = "Slots"

// ExcelSink keeps the latest record per slot and rewrites a workbook after
// every batch: one row per slot, for use as a vMix data source.
type ExcelSink struct {
	path   string
	logger *slog.Logger
	latest map[int]Record
}

func NewExcelSink(path string, logger *slog.Logger) *ExcelSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSink{path: path, logger: logger, latest: make(map[int]Record)}
}

func (s *ExcelSink) Publish(_ context.Context, rec Record) error {
	s.latest[rec.Slot] = rec
	return nil
}

// Flush writes the workbook. Rows are ordered by slot.
func (s *ExcelSink) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	slots := make([]int, 0, len(s.latest))
	for slot := range s.latest {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	f := excelize.NewFile()
	defer f.Close()
	if index, _ := f.GetSheetIndex(excelSheet); index == -1 {
		if _, err := f.NewSheet(excelSheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(excelSheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Box", "Text", "Status", "Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(excelSheet, cell, h)
	}
	row := 2
	for _, slot := range slots {
		rec := s.latest[slot]
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(excelSheet, cell, v)
		}
		write(1, rec.Slot)
		write(2, rec.Text)
		write(3, rec.Status)
		write(4, rec.At.Format(time.RFC3339))
		row++
	}
	_ = f.SetColWidth(excelSheet, "A", "A", 8)
	_ = f.SetColWidth(excelSheet, "B", "B", 40)
	_ = f.SetColWidth(excelSheet, "C", "C", 18)
	_ = f.SetColWidth(excelSheet, "D", "D", 24)

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}
	// Write beside the target, then rename over it.
	tmp := filepath.Join(filepath.Dir(s.path), "~"+filepath.Base(s.path))
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("xlsx replace: %w", err)
	}
	s.logger.Debug("xlsx flushed", "path", s.path, "rows", len(slots), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
