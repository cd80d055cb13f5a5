package dto

// ── student requests ──

// StudentRequest create or update payload.
type StudentRequest struct {
	NIS       string  `json:"nis"        binding:"required,max=50"`
	Name      string  `json:"name"       binding:"required,max=255"`
	Class     string  `json:"class"      binding:"required,max=50"`
	Gender    *string `json:"gender"     binding:"omitempty,oneof=L P"`
	BirthDate *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"      binding:"omitempty,max=20"`
}

// StudentListRequest roster filters.
type StudentListRequest struct {
	Class  string `form:"class"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// StudentHistoryRequest history filters. startDate+endDate win over
// month+year, which win over year alone.
type StudentHistoryRequest struct {
	Month     int    `form:"month"     binding:"omitempty,min=1,max=12"`
	Year      int    `form:"year"      binding:"omitempty,min=1970,max=9999"`
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate"   binding:"omitempty,datetime=2006-01-02"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}
