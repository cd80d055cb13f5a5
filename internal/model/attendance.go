package model

// Attendance status tags.
const (
	StatusPresent      = "present"
	StatusLate         = "late"
	StatusExcusedLeave = "excused-leave"
	StatusSick         = "sick"
	StatusAbsent       = "absent"
)

// AllStatuses lists every status in report order.
var AllStatuses = []string{StatusPresent, StatusLate, StatusExcusedLeave, StatusSick, StatusAbsent}

// Attendance one ledger row per student per day (attendances)
type Attendance struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	Date      Date   `gorm:"type:date;not null"                             json:"date"`
	TimeIn    *Clock `gorm:"type:time"                                      json:"time_in"`
	TimeOut   *Clock `gorm:"type:time"                                      json:"time_out"`
	Status    string `gorm:"type:varchar(20);not null;default:'present'"    json:"status"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

// TableName table name
func (Attendance) TableName() string { return "attendances" }

// HasArrived reports whether an arrival time is recorded.
func (a *Attendance) HasArrived() bool { return a != nil && a.TimeIn != nil && *a.TimeIn != "" }

// HasDeparted reports whether a departure time is recorded.
func (a *Attendance) HasDeparted() bool { return a != nil && a.TimeOut != nil && *a.TimeOut != "" }
