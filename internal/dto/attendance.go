package dto

// ── attendance requests ──

// ScanRequest QR scan.
type ScanRequest struct {
	QRCode string `json:"qr_code"`
}

// AttendanceListRequest ledger filters.
type AttendanceListRequest struct {
	Date      string `form:"date"       binding:"omitempty,datetime=2006-01-02"`
	Class     string `form:"class"`
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// UpdateAttendanceStatusRequest manual status override. late is only ever
// set by a scan.
type UpdateAttendanceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=present excused-leave sick absent"`
}

// AttendanceDayRequest date/class pair used by stats and export. An empty
// date means today.
type AttendanceDayRequest struct {
	Date  string `form:"date"  binding:"omitempty,datetime=2006-01-02"`
	Class string `form:"class"`
}
