package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/extraction"
	"github.com/notarykit/docuscan/internal/schema"
)

// Row is one batch entry: the source path plus either a pipeline result or
// the error that stopped it.
type Row struct {
	Path   string
	Result *extraction.Result
	Err    string
}

// Service renders batch extraction runs as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildWorkbook returns an XLSX workbook (as bytes) with one row per file:
// the schema's fields in declared order, then confidence, verified, parse
// tier, and any error.
func (s *Service) BuildWorkbook(kind constants.DocKind, rows []Row) ([]byte, error) {
	start := time.Now()

	sch, err := schema.Get(kind)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := append([]string{"File"}, sch.FieldNames()...)
	headers = append(headers, "Confidence", "Verified", "Tier", "Error")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		rowIdx := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Path)
		col := 2
		if r.Result != nil {
			for _, name := range sch.FieldNames() {
				write(col, r.Result.Fields[name])
				col++
			}
			write(col, r.Result.Confidence)
			write(col+1, r.Result.Verified)
			write(col+2, string(r.Result.Tier))
			write(col+3, r.Err)
		} else {
			col += len(sch.Fields)
			write(col+3, r.Err)
		}
	}

	// Widen the path and field columns a bit
	_ = f.SetColWidth(sheet, "A", "A", 48)
	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "B", last, 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"kind", kind,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
