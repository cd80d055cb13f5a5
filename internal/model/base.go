package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL DATE / TIME column types ──

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// ClockLayout is the wire and storage layout of wall-clock times.
const ClockLayout = "15:04:05"

// Date maps a PostgreSQL DATE column to a YYYY-MM-DD string.
type Date string

// NewDate formats t as a Date in t's own location.
func NewDate(t time.Time) Date { return Date(t.Format(DateLayout)) }

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(DateLayout))
	case []byte:
		*d = Date(truncate(string(v), len(DateLayout)))
	case string:
		*d = Date(truncate(v, len(DateLayout)))
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// Clock maps a PostgreSQL TIME column to an HH:MM:SS string.
type Clock string

// NewClock formats t as a Clock, dropping sub-second precision.
func NewClock(t time.Time) Clock { return Clock(t.Format(ClockLayout)) }

// Scan implements sql.Scanner.
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = ""
	case time.Time:
		*c = Clock(v.Format(ClockLayout))
	case []byte:
		*c = Clock(truncate(string(v), len(ClockLayout)))
	case string:
		*c = Clock(truncate(v, len(ClockLayout)))
	default:
		return fmt.Errorf("Clock.Scan: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	if c == "" {
		return nil, nil
	}
	return string(c), nil
}

// Short trims the clock to HH:MM.
func (c Clock) Short() string {
	return truncate(string(c), 5)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}

// BaseModel audit timestamps shared by every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
