package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"qr-attendance/backend/internal/model"
)

// ── scan windows ──

// Fallbacks used when a settings row is missing or unreadable.
const (
	DefaultArrivalStart   = "06:30:00"
	DefaultArrivalEnd     = "07:30:00"
	DefaultDepartureStart = "15:00:00"
	DefaultDepartureEnd   = "17:00:00"
	DefaultLateTolerance  = 15
)

// scheduleKeys are the settings the classifier reads.
var scheduleKeys = []string{
	model.SettingArrivalStart,
	model.SettingArrivalEnd,
	model.SettingDepartureStart,
	model.SettingDepartureEnd,
	model.SettingLateTolerance,
}

// Schedule is a snapshot of the scan windows.
type Schedule struct {
	ArrivalStart   string
	ArrivalEnd     string
	DepartureStart string
	DepartureEnd   string
	LateTolerance  int // minutes
}

// DefaultSchedule returns the fallback windows.
func DefaultSchedule() Schedule {
	return Schedule{
		ArrivalStart:   DefaultArrivalStart,
		ArrivalEnd:     DefaultArrivalEnd,
		DepartureStart: DefaultDepartureStart,
		DepartureEnd:   DefaultDepartureEnd,
		LateTolerance:  DefaultLateTolerance,
	}
}

// ScheduleFromSettings overlays settings rows on the defaults. Rows that do
// not parse keep the default.
func ScheduleFromSettings(settings []model.Setting) Schedule {
	sched := DefaultSchedule()
	for _, st := range settings {
		v := strings.TrimSpace(st.SettingValue)
		switch st.SettingKey {
		case model.SettingArrivalStart:
			setClock(&sched.ArrivalStart, v)
		case model.SettingArrivalEnd:
			setClock(&sched.ArrivalEnd, v)
		case model.SettingDepartureStart:
			setClock(&sched.DepartureStart, v)
		case model.SettingDepartureEnd:
			setClock(&sched.DepartureEnd, v)
		case model.SettingLateTolerance:
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				sched.LateTolerance = n
			}
		}
	}
	return sched
}

func setClock(dst *string, v string) {
	if _, err := clockMinutes(v); err == nil {
		*dst = v
	}
}

// clockMinutes converts H:MM or H:MM:SS to minutes since midnight. Seconds
// are ignored.
func clockMinutes(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// mustMinutes is clockMinutes for values ScheduleFromSettings already vetted.
func mustMinutes(v string) int {
	n, _ := clockMinutes(v)
	return n
}

// ── classification ──

// ScanKind tells which half of the day a scan recorded.
type ScanKind string

const (
	ScanArrival   ScanKind = "arrival"
	ScanDeparture ScanKind = "departure"
)

// Rejection reasons.
const (
	RejectNotCheckedIn      = "not_checked_in"
	RejectAlreadyCheckedOut = "already_checked_out"
	RejectAlreadyCheckedIn  = "already_checked_in"
	RejectOutsideWindow     = "outside_window"
)

// ScanRejectedError is a scan the rules refuse. Message is shown to the
// person at the scanner.
type ScanRejectedError struct {
	Reason  string
	Message string
}

func (e *ScanRejectedError) Error() string { return e.Message }

// ScanDecision is an accepted scan. Status is only set for arrivals.
type ScanDecision struct {
	Kind   ScanKind
	Status string
}

// Classify decides what a scan at now means given today's row for the
// student, which may be nil. Both windows include their bounds and the
// departure window wins where they overlap.
func Classify(today *model.Attendance, now time.Time, sched Schedule, studentName string) (ScanDecision, error) {
	cur := now.Hour()*60 + now.Minute()

	arrivalStart := mustMinutes(sched.ArrivalStart)
	arrivalEnd := mustMinutes(sched.ArrivalEnd)
	departureStart := mustMinutes(sched.DepartureStart)
	departureEnd := mustMinutes(sched.DepartureEnd)

	switch {
	case cur >= departureStart && cur <= departureEnd:
		if !today.HasArrived() {
			return ScanDecision{}, &ScanRejectedError{
				Reason:  RejectNotCheckedIn,
				Message: fmt.Sprintf("%s has not checked in today", studentName),
			}
		}
		if today.HasDeparted() {
			return ScanDecision{}, &ScanRejectedError{
				Reason:  RejectAlreadyCheckedOut,
				Message: fmt.Sprintf("%s already checked out today at %s", studentName, *today.TimeOut),
			}
		}
		return ScanDecision{Kind: ScanDeparture}, nil

	case cur >= arrivalStart && cur <= arrivalEnd+sched.LateTolerance:
		if today.HasArrived() {
			return ScanDecision{}, &ScanRejectedError{
				Reason:  RejectAlreadyCheckedIn,
				Message: fmt.Sprintf("%s already checked in today at %s", studentName, *today.TimeIn),
			}
		}
		status := model.StatusPresent
		if cur > arrivalEnd {
			status = model.StatusLate
		}
		return ScanDecision{Kind: ScanArrival, Status: status}, nil
	}

	return ScanDecision{}, &ScanRejectedError{
		Reason:  RejectOutsideWindow,
		Message: OutsideWindowMessage(sched),
	}
}

// OutsideWindowMessage lists both windows and the tolerance.
func OutsideWindowMessage(sched Schedule) string {
	return fmt.Sprintf(
		"Attendance can only be recorded during:\n- Arrival: %s - %s (+ %d minutes tolerance)\n- Departure: %s - %s",
		sched.ArrivalStart, sched.ArrivalEnd, sched.LateTolerance,
		sched.DepartureStart, sched.DepartureEnd,
	)
}
