package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
)

// ── export errors ──

var ErrExportGenerateFail = errors.New("failed to generate spreadsheet")

// ExportService spreadsheet export interface. Files are returned as a
// buffer plus a suggested file name; the handler writes the HTTP headers.
type ExportService interface {
	ExportAttendance(ctx context.Context, req *dto.AttendanceDayRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	attendance AttendanceService
	settings   SettingService
	logger     *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(attendance AttendanceService, settings SettingService, logger *zap.Logger) ExportService {
	return &exportService{attendance: attendance, settings: settings, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance exports one day of the ledger
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - row 1: title (school, date, class)
//   - row 2: header
//   - rows 3..: one row per ledger entry ordered by arrival time
//   - after a blank row: per-status totals

func (s *exportService) ExportAttendance(ctx context.Context, req *dto.AttendanceDayRequest) (*bytes.Buffer, string, error) {
	// 1. totals also resolve an empty date to today
	stats, err := s.attendance.Stats(ctx, req)
	if err != nil {
		return nil, "", err
	}

	// 2. ledger rows
	rows, err := s.attendance.List(ctx, &dto.AttendanceListRequest{
		Date:      stats.Date,
		Class:     req.Class,
		SortBy:    "time_in",
		SortOrder: "ASC",
	})
	if err != nil {
		return nil, "", err
	}

	school := s.settings.SchoolName(ctx)

	// 3. build the workbook
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"No", "NIS", "Name", "Class", "Time In", "Time Out", "Status"}
	widths := []float64{6, 14, 28, 10, 12, 12, 16}
	for i, w := range widths {
		c := colName(i)
		f.SetColWidth(sheet, c, c, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})

	class := req.Class
	if class == "" {
		class = "all classes"
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - attendance %s (%s)", school, stats.Date, class))
	f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	row := 3
	for i, r := range rows {
		f.SetCellValue(sheet, cell("A", row), i+1)
		f.SetCellStr(sheet, cell("B", row), r.NIS)
		f.SetCellValue(sheet, cell("C", row), r.StudentName)
		f.SetCellValue(sheet, cell("D", row), r.Class)
		f.SetCellValue(sheet, cell("E", row), orDash(r.TimeIn))
		f.SetCellValue(sheet, cell("F", row), orDash(r.TimeOut))
		f.SetCellValue(sheet, cell("G", row), r.Status)
		row++
	}

	row++
	for _, st := range model.AllStatuses {
		f.SetCellValue(sheet, cell("F", row), st)
		f.SetCellValue(sheet, cell("G", row), stats.Stats[st])
		row++
	}
	f.SetCellValue(sheet, cell("F", row), "total")
	f.SetCellValue(sheet, cell("G", row), stats.Total)

	// 4. write
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write attendance spreadsheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", stats.Date)
	if req.Class != "" {
		filename = fmt.Sprintf("attendance_%s_%s.xlsx", stats.Date, unsafeFileChars.ReplaceAllString(req.Class, ""))
	}
	return buf, filename, nil
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
