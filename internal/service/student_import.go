package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
	pkgerrors "qr-attendance/backend/pkg/errors"
	"qr-attendance/backend/pkg/metrics"
)

// ── import errors ──

var (
	ErrImportFileMissing  = errors.New("spreadsheet file not found")
	ErrImportFileType     = errors.New("file must be an Excel spreadsheet (.xlsx or .xls)")
	ErrImportFileTooLarge = errors.New("file exceeds the upload size limit")
	ErrImportUnreadable   = errors.New("unable to read the spreadsheet, upload an .xlsx file")
	ErrImportEmpty        = errors.New("spreadsheet is empty or has no data rows")
	ErrImportHeader       = errors.New("header does not match, expected columns: NIS, Nama Lengkap, Kelas, Jenis Kelamin, Tanggal Lahir, Alamat, No. Telepon")
	ErrImportNoRows       = errors.New("no valid student rows to import")
)

// RosterHeaders are the seven import columns in order.
var RosterHeaders = []string{"NIS", "Nama Lengkap", "Kelas", "Jenis Kelamin", "Tanggal Lahir", "Alamat", "No. Telepon"}

var birthDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ImportUpload is a roster spreadsheet received from a client.
type ImportUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ────────────────────── Import ──────────────────────

// Import inserts every row of the spreadsheet or none of them.
func (s *studentService) Import(ctx context.Context, upload *ImportUpload) (*dto.ImportResponse, error) {
	if upload == nil || upload.Body == nil {
		return nil, ErrImportFileMissing
	}

	// 1. file checks
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".xlsx", ".xls":
	default:
		return nil, ErrImportFileType
	}
	if upload.Size > s.maxUpload {
		return nil, ErrImportFileTooLarge
	}

	f, err := excelize.OpenReader(upload.Body)
	if err != nil {
		s.logger.Warn("open import spreadsheet failed", zap.String("file", upload.Filename), zap.Error(err))
		return nil, ErrImportUnreadable
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		s.logger.Warn("read import rows failed", zap.Error(err))
		return nil, ErrImportUnreadable
	}

	// 2. parse and validate rows
	students, err := ParseRoster(rows)
	if err != nil {
		return nil, err
	}

	// 3. reject NIS values already registered
	nis := make([]string, 0, len(students))
	for _, st := range students {
		nis = append(nis, st.NIS)
	}
	existing, err := s.repo.Student.ListByNIS(ctx, nis)
	if err != nil {
		s.logger.Error("check existing NIS failed", zap.Error(err))
		return nil, err
	}
	if len(existing) > 0 {
		taken := make(map[string]bool, len(existing))
		for _, e := range existing {
			taken[e.NIS] = true
		}
		var dups []dto.DuplicateStudent
		for _, st := range students {
			if taken[st.NIS] {
				dups = append(dups, dto.DuplicateStudent{NIS: st.NIS, Name: st.Name})
			}
		}
		return nil, &ValidationError{Message: "some NIS are already registered", Errors: dups}
	}

	// 4. insert all in one transaction
	for i := range students {
		students[i].QRCode = NewQRToken(students[i].NIS)
	}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return txRepo.Student.BatchCreate(ctx, students)
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err, "uq_students_nis") {
			return nil, ErrNISTaken
		}
		s.logger.Error("import students failed", zap.Error(err))
		return nil, err
	}

	metrics.StudentsImported.Add(float64(len(students)))
	s.logger.Info("students imported", zap.Int("count", len(students)), zap.String("file", upload.Filename))
	return &dto.ImportResponse{ImportedCount: len(students)}, nil
}

// ParseRoster validates spreadsheet rows (header first) and returns the
// students to insert without QR tokens. Any row problem yields a
// *ValidationError listing every bad row.
func ParseRoster(rows [][]string) ([]model.Student, error) {
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}
	if !headerMatches(rows[0]) {
		return nil, ErrImportHeader
	}

	var (
		students []model.Student
		rowErrs  []dto.ImportRowError
		seen     = make(map[string]int) // NIS -> sheet row
	)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		sheetRow := i + 1

		st := model.Student{
			NIS:   col(row, 0),
			Name:  col(row, 1),
			Class: col(row, 2),
		}
		gender := col(row, 3)
		birth := col(row, 4)

		var problems []string
		if st.NIS == "" {
			problems = append(problems, "NIS must not be empty")
		}
		if st.Name == "" {
			problems = append(problems, "Name must not be empty")
		}
		if st.Class == "" {
			problems = append(problems, "Class must not be empty")
		}

		switch gender {
		case "L", "Laki-laki":
			g := model.GenderMale
			st.Gender = &g
		case "P", "Perempuan":
			g := model.GenderFemale
			st.Gender = &g
		default:
			problems = append(problems, "Gender must be L/P or Laki-laki/Perempuan")
		}

		if birth != "" {
			if !birthDatePattern.MatchString(birth) {
				problems = append(problems, "Birth date must use YYYY-MM-DD")
			} else if _, err := time.Parse(model.DateLayout, birth); err != nil {
				problems = append(problems, "Birth date is not a valid date")
			} else {
				d := model.Date(birth)
				st.BirthDate = &d
			}
		}

		if st.NIS != "" {
			if first, dup := seen[st.NIS]; dup {
				problems = append(problems, fmt.Sprintf("NIS %s already appears in row %d", st.NIS, first))
			} else {
				seen[st.NIS] = sheetRow
			}
		}

		if len(problems) > 0 {
			rowErrs = append(rowErrs, dto.ImportRowError{
				Row:    sheetRow,
				NIS:    st.NIS,
				Name:   st.Name,
				Errors: problems,
			})
			continue
		}

		st.Address = optional(col(row, 5))
		st.Phone = optional(col(row, 6))
		students = append(students, st)
	}

	if len(rowErrs) > 0 {
		return nil, &ValidationError{Message: "the spreadsheet contains invalid rows", Errors: rowErrs}
	}
	if len(students) == 0 {
		return nil, ErrImportNoRows
	}
	return students, nil
}

// headerMatches reports whether every expected header appears,
// case-insensitively, inside some header cell.
func headerMatches(header []string) bool {
	for _, want := range RosterHeaders {
		want = strings.ToLower(want)
		found := false
		for _, h := range header {
			if strings.Contains(strings.ToLower(h), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func col(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
