// Package timeutil provides school-calendar time utilities for Conference Hub.
// The district operates in US Central time, so all day boundaries, meeting
// slots, and notification windows are computed in that zone.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// SchoolTZ is the district timezone. America/Chicago observes DST, so we
// load the real location instead of a fixed offset. Falls back to UTC only
// when the zone database is unavailable.
var SchoolTZ = loadSchoolTZ()

func loadSchoolTZ() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Now returns the current time in the school timezone.
func Now() time.Time {
	return time.Now().In(SchoolTZ)
}

// ToSchool converts a time to the school timezone.
func ToSchool(t time.Time) time.Time {
	return t.In(SchoolTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in the school timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, SchoolTZ)
}

// DateTime creates a time in the school timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, SchoolTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the school timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SchoolTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the school timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, SchoolTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in the school timezone.
func StartOfWeek(t time.Time) time.Time {
	local := ToSchool(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(local.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in the school timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// IsToday checks if the given time is today in the school timezone.
func IsToday(t time.Time) bool {
	now := Now()
	local := ToSchool(t)
	return local.Year() == now.Year() &&
		local.Month() == now.Month() &&
		local.Day() == now.Day()
}

// IsTomorrow checks if the given time is tomorrow in the school timezone.
func IsTomorrow(t time.Time) bool {
	tomorrow := Now().AddDate(0, 0, 1)
	local := ToSchool(t)
	return local.Year() == tomorrow.Year() &&
		local.Month() == tomorrow.Month() &&
		local.Day() == tomorrow.Day()
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// DaysUntil calculates the number of days until the given time.
// Negative for times in the past.
func DaysUntil(t time.Time) int {
	return -DaysSince(t)
}

// School hours for the district.
const (
	// SchoolDayStart is when classes begin (8:00 AM).
	SchoolDayStart = 8
	// SchoolDayEnd is when classes end (3:00 PM).
	SchoolDayEnd = 15
	// ConferenceWindowStart is when parent meetings may be scheduled (7:00 AM).
	ConferenceWindowStart = 7
	// ConferenceWindowEnd is the latest a parent meeting may run (7:00 PM).
	ConferenceWindowEnd = 19
)

// IsSchoolHours checks if the given time falls within the class day (8:00-15:00).
func IsSchoolHours(t time.Time) bool {
	local := ToSchool(t)
	hour := local.Hour()
	return hour >= SchoolDayStart && hour < SchoolDayEnd
}

// IsConferenceWindow checks if a parent meeting may be held at the given time.
func IsConferenceWindow(t time.Time) bool {
	local := ToSchool(t)
	hour := local.Hour()
	return hour >= ConferenceWindowStart && hour < ConferenceWindowEnd
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	local := ToSchool(t)
	weekday := local.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSchoolDay checks if the given time is on a school day (Mon-Fri).
func IsSchoolDay(t time.Time) bool {
	return !IsWeekend(t)
}

// NextSchoolDay returns the next school day (skipping weekends).
func NextSchoolDay(t time.Time) time.Time {
	next := ToSchool(t).AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return StartOfDay(next)
}

// AcademicYearFor returns the academic year label ("2025-2026") containing
// the given time. The school year rolls over on August 1.
func AcademicYearFor(t time.Time) string {
	local := ToSchool(t)
	year := local.Year()
	if local.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

// CurrentAcademicYear returns the academic year label for today.
func CurrentAcademicYear() string {
	return AcademicYearFor(Now())
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
	// FormatMeetingSlot is the format used on agendas (Mon, Jan 2 at 3:04 PM).
	FormatMeetingSlot = "Mon, Jan 2 at 3:04 PM"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// FormatSchool formats a time in the school timezone with the given layout.
func FormatSchool(t time.Time, layout string) string {
	return ToSchool(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the school timezone.
func FormatDateStr(t time.Time) string {
	return FormatSchool(t, FormatDate)
}

// FormatTimeStr formats a time as a time string (HH:MM) in the school timezone.
func FormatTimeStr(t time.Time) string {
	return FormatSchool(t, FormatTime)
}

// FormatMeetingSlotStr formats a meeting time the way agendas display it.
func FormatMeetingSlotStr(t time.Time) string {
	return FormatSchool(t, FormatMeetingSlot)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	local := ToSchool(t)
	duration := now.Sub(local)

	if duration < 0 {
		duration = -duration
		return formatFutureDuration(duration)
	}

	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%dd ago", days)
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%dmo ago", months)
		}
		return fmt.Sprintf("%dy ago", months/12)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %dd", days)
	}
}

// ParseSchool parses a time string in the school timezone.
func ParseSchool(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, SchoolTZ)
}

// ParseDateSchool parses a date string (YYYY-MM-DD) in the school timezone.
func ParseDateSchool(value string) (time.Time, error) {
	return ParseSchool(FormatDate, value)
}

// ParseDateTimeSchool parses a datetime string in the school timezone.
func ParseDateTimeSchool(value string) (time.Time, error) {
	return ParseSchool(FormatDateTime, value)
}

// IsSameDay checks if two times are on the same day in the school timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToSchool(t1), ToSchool(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	duration := a2.Sub(a1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Notification timing helpers.

// IsSafeNotificationTime checks if it's appropriate to notify teachers (7:00-21:00).
func IsSafeNotificationTime(t time.Time) bool {
	local := ToSchool(t)
	hour := local.Hour()
	return hour >= 7 && hour < 21
}

// NextSafeNotificationTime returns the next time when notifications are appropriate.
func NextSafeNotificationTime(t time.Time) time.Time {
	local := ToSchool(t)
	hour := local.Hour()

	if hour < 7 {
		// Before 7 AM - return 7 AM today
		return DateTime(local.Year(), int(local.Month()), local.Day(), 7, 0, 0)
	} else if hour >= 21 {
		// After 9 PM - return 7 AM tomorrow
		tomorrow := local.AddDate(0, 0, 1)
		return DateTime(tomorrow.Year(), int(tomorrow.Month()), tomorrow.Day(), 7, 0, 0)
	}

	// Already in safe time window
	return local
}
