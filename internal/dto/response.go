package dto

// ── auth responses ──

// TokenResponse login result.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // seconds
	User      UserResponse `json:"user"`
}

// UserResponse staff account without credentials.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// HashPasswordResponse bcrypt hash of a submitted password.
type HashPasswordResponse struct {
	HashedPassword string `json:"hashed_password"`
}

// ── student responses ──

// StudentResponse roster entry.
type StudentResponse struct {
	ID        string  `json:"id"`
	NIS       string  `json:"nis"`
	Name      string  `json:"name"`
	Class     string  `json:"class"`
	QRCode    string  `json:"qr_code"`
	Gender    *string `json:"gender"`
	BirthDate *string `json:"birth_date"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// HistoryItem one day of a student's history. Times are trimmed to HH:MM.
type HistoryItem struct {
	Date      string  `json:"date"`
	TimeIn    *string `json:"time_in"`
	TimeOut   *string `json:"time_out"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// StudentHistoryResponse student with its attendance history.
type StudentHistoryResponse struct {
	Student    StudentResponse `json:"student"`
	Attendance []HistoryItem   `json:"attendance"`
	Count      int             `json:"count"`
}

// ImportResponse successful roster import.
type ImportResponse struct {
	ImportedCount int `json:"imported_count"`
}

// ImportRowError validation failures of one spreadsheet row.
type ImportRowError struct {
	Row    int      `json:"row"`
	NIS    string   `json:"nis"`
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

// DuplicateStudent a NIS in the upload that is already registered.
type DuplicateStudent struct {
	NIS  string `json:"nis"`
	Name string `json:"name"`
}

// ── attendance responses ──

// ScanStudent student echoed by a scan.
type ScanStudent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	NIS   string `json:"nis"`
	Class string `json:"class"`
}

// ScanAttendance ledger row written by a scan.
type ScanAttendance struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"`
	TimeIn  *string `json:"time_in"`
	TimeOut *string `json:"time_out"`
	Status  string  `json:"status"`
	Type    string  `json:"type"` // arrival | departure
}

// ScanResponse accepted scan.
type ScanResponse struct {
	Student    ScanStudent    `json:"student"`
	Attendance ScanAttendance `json:"attendance"`
}

// AttendanceResponse ledger row joined with its student.
type AttendanceResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	TimeIn      *string `json:"time_in"`
	TimeOut     *string `json:"time_out"`
	Status      string  `json:"status"`
	StudentID   string  `json:"student_id"`
	NIS         string  `json:"nis"`
	StudentName string  `json:"student_name"`
	Class       string  `json:"class"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// StatsResponse per-status counts for one day.
type StatsResponse struct {
	Date  string           `json:"date"`
	Class string           `json:"class"`
	Stats map[string]int64 `json:"stats"`
	Total int64            `json:"total"`
}

// ── setting responses ──

// SettingResponse settings row.
type SettingResponse struct {
	Key         string  `json:"setting_key"`
	Value       string  `json:"setting_value"`
	Description *string `json:"description"`
	UpdatedAt   string  `json:"updated_at"`
}

// SettingUpdatedResponse single-key update result.
type SettingUpdatedResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BatchUpdateResponse batch update result.
type BatchUpdateResponse struct {
	Updated int `json:"updated"`
}

// TimeWindow inclusive [start, end] clock range.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ScheduleResponse formatted scan windows.
type ScheduleResponse struct {
	Arrival       TimeWindow `json:"arrival"`
	Departure     TimeWindow `json:"departure"`
	LateTolerance int        `json:"late_tolerance"`
}
