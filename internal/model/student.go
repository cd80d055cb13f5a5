package model

// Gender codes.
const (
	GenderMale   = "L"
	GenderFemale = "P"
)

// Student roster entry (students)
type Student struct {
	ID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	NIS       string  `gorm:"column:nis;type:varchar(50);not null"           json:"nis"`
	Name      string  `gorm:"type:varchar(255);not null"                     json:"name"`
	Class     string  `gorm:"type:varchar(50);not null"                      json:"class"`
	QRCode    string  `gorm:"column:qr_code;type:varchar(255);not null"      json:"qr_code"`
	Gender    *string `gorm:"type:varchar(1)"                                json:"gender"`
	BirthDate *Date   `gorm:"type:date"                                      json:"birth_date"`
	Address   *string `gorm:"type:text"                                      json:"address"`
	Phone     *string `gorm:"type:varchar(20)"                               json:"phone"`
	BaseModel
}

// TableName table name
func (Student) TableName() string { return "students" }
