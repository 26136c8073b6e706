package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bstn/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Room Type", "Room ID", "Room Name", "Guest ID",
	"Check-in", "Check-out", "Nights", "Total Price", "Status", "Created At",
}

var statusFill = map[string]string{
	models.StatusPending:   "#FFEB9C",
	models.StatusConfirmed: "#C6EFCE",
	models.StatusCompleted: "#DDEBF7",
	models.StatusCancelled: "#FFC7CE",
	models.StatusRejected:  "#FFC7CE",
}

// Exporter renders provider booking lists as Excel workbooks. When dir is set
// every workbook is also archived there.
type Exporter struct {
	dir    string
	now    func() time.Time
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{dir: dir, now: time.Now, logger: logger}
}

// FileName is the download name of a provider export.
func (e *Exporter) FileName(provider *models.Provider) string {
	return fmt.Sprintf("bookings_provider_%d_%s.xlsx", provider.ID, e.now().UTC().Format("2006-01-02"))
}

// WriteProviderBookings writes the workbook to w.
func (e *Exporter) WriteProviderBookings(w io.Writer, provider *models.Provider, bookings []*models.Booking) error {
	f, err := e.build(provider, bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if e.dir != "" {
		if err := e.archive(f, e.FileName(provider)); err != nil {
			e.logger.Warn().Err(err).Int64("provider_id", provider.ID).Msg("export archive failed")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func (e *Exporter) archive(f *excelize.File, name string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("error creating export directory: %w", err)
	}
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	e.logger.Info().Str("file_path", path).Msg("Excel file created")
	return nil
}

func (e *Exporter) build(provider *models.Provider, bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	lastCol, _ := excelize.ColumnNumberToName(len(headers))

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s: bookings as of %s",
		provider.DisplayName, e.now().UTC().Format("2006-01-02 15:04")))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	styles := make(map[string]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err == nil {
			styles[status] = id
		}
	}

	var revenue int64
	row := 3
	for _, b := range bookings {
		values := []interface{}{
			b.ID,
			string(b.RoomKind),
			b.RoomID,
			b.RoomName,
			b.UserID,
			models.FormatDate(b.CheckIn),
			models.FormatDate(b.CheckOut),
			b.Nights(),
			b.TotalPrice,
			b.Status,
			b.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(10, row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, style)
		}
		if b.Status == models.StatusConfirmed || b.Status == models.StatusCompleted {
			revenue += b.TotalPrice
		}
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(8, row+1)
	totalCell, _ := excelize.CoordinatesToCellName(9, row+1)
	_ = f.SetCellValue(sheetName, totalLabel, "Revenue")
	_ = f.SetCellValue(sheetName, totalCell, revenue)
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, totalLabel, totalCell, boldStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", lastCol, 16)
	_ = f.SetColWidth(sheetName, "D", "D", 24)
	return f, nil
}
