package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// ── schedule feed ──────────────────────────────────────────
//
// Publishes the arrival and departure windows as two weekday-recurring
// VEVENTs so staff can subscribe from a calendar client. Times are local
// wall-clock times tagged with the school TZID.
// ───────────────────────────────────────────────────────────

const (
	icsProductID     = "-//qr-attendance//schedule//EN"
	icsLocalLayout   = "20060102T150405"
	icsWeekdayRecurs = "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
)

// CalendarService iCalendar export interface.
type CalendarService interface {
	ScheduleICS(ctx context.Context) (string, error)
}

type calendarService struct {
	settings SettingService
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(settings SettingService, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &calendarService{settings: settings, loc: loc, now: time.Now, logger: logger}
}

func (s *calendarService) ScheduleICS(ctx context.Context) (string, error) {
	sched, err := s.settings.Schedule(ctx)
	if err != nil {
		return "", err
	}
	school := s.settings.SchoolName(ctx)

	// recurrences start on Monday of the current week
	today := s.now().In(s.loc)
	offset := (int(today.Weekday()) + 6) % 7
	monday := time.Date(today.Year(), today.Month(), today.Day()-offset, 0, 0, 0, 0, s.loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(school + " attendance schedule")

	var clocks [4]time.Time
	for i, v := range []string{sched.ArrivalStart, sched.ArrivalEnd, sched.DepartureStart, sched.DepartureEnd} {
		if clocks[i], err = atClock(monday, v); err != nil {
			s.logger.Error("build schedule feed failed", zap.Error(err))
			return "", err
		}
	}
	arrivalEnd := clocks[1].Add(time.Duration(sched.LateTolerance) * time.Minute)

	s.addWindow(cal, "arrival", monday, today,
		"Arrival scan window",
		fmt.Sprintf("Arrival %s - %s, late after %s, tolerance %d minutes", sched.ArrivalStart, sched.ArrivalEnd, sched.ArrivalEnd, sched.LateTolerance),
		clocks[0], arrivalEnd,
	)
	s.addWindow(cal, "departure", monday, today,
		"Departure scan window",
		fmt.Sprintf("Departure %s - %s", sched.DepartureStart, sched.DepartureEnd),
		clocks[2], clocks[3],
	)

	return cal.Serialize(), nil
}

func (s *calendarService) addWindow(cal *ics.Calendar, kind string, monday, stamp time.Time, summary, desc string, start, end time.Time) {
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{s.loc.String()}}

	evt := cal.AddEvent(fmt.Sprintf("%s-%s@qr-attendance", kind, monday.Format("20060102")))
	evt.SetDtStampTime(stamp)
	evt.SetSummary(summary)
	evt.SetDescription(desc)
	evt.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalLayout), tzid)
	evt.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalLayout), tzid)
	evt.SetProperty(ics.ComponentPropertyRrule, icsWeekdayRecurs)
}

// atClock places an H:MM[:SS] clock on day, to the minute.
func atClock(day time.Time, clock string) (time.Time, error) {
	minutes, err := clockMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location()), nil
}
