package scheduler

import (
	"fmt"
	"time"
)

// Schedule decides when a job runs next.
type Schedule interface {
	// Next returns the first run time strictly after t.
	Next(t time.Time) time.Time

	// String describes the schedule for logs and status output.
	String() string
}

// IntervalSchedule runs a job a fixed duration after the previous run
// finished. Used for the rolling maintenance jobs (cache refresh, briefing
// warming, notification delivery).
type IntervalSchedule struct {
	interval time.Duration
}

// NewIntervalSchedule creates an interval schedule. Intervals below one
// second are clamped to one second so a misconfigured duration cannot spin
// a job in a tight loop.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < time.Second {
		interval = time.Second
	}
	return &IntervalSchedule{interval: interval}
}

func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.interval)
}

func (s *IntervalSchedule) String() string {
	return "@every " + s.interval.String()
}

// DailySchedule runs a job once a day at a fixed wall-clock time. The
// nightly at-risk scan and the meeting preparation sweep use it.
type DailySchedule struct {
	hour   int
	minute int
	loc    *time.Location
}

// NewDailySchedule creates a daily schedule for hh:mm in the given
// location. A nil location means UTC.
func NewDailySchedule(hour, minute int, loc *time.Location) (*DailySchedule, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("scheduler: hour %d out of range [0-23]", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("scheduler: minute %d out of range [0-59]", minute)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailySchedule{hour: hour, minute: minute, loc: loc}, nil
}

func (d *DailySchedule) Next(t time.Time) time.Time {
	t = t.In(d.loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d *DailySchedule) String() string {
	return fmt.Sprintf("@daily %02d:%02d %s", d.hour, d.minute, d.loc.String())
}
