// Package epoch converts between elapsed simulated days, Julian dates and calendar dates.
package epoch

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian date of 2000-01-01 12:00 TT, the catalog reference epoch.
const J2000 = 2451545.0

// DisplayLayout matches the short date string shown alongside the simulation.
const DisplayLayout = "Mon Jan 02 2006"

// JulianDate returns the Julian date elapsedDays after J2000.
func JulianDate(elapsedDays float64) float64 {
	return J2000 + elapsedDays
}

// ElapsedDaysAt returns the days between J2000 and t.
func ElapsedDaysAt(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - J2000
}

// CalendarDate is a broken-down calendar instant. Dates before 1582-10-15 are in the
// Julian calendar, later ones in the Gregorian.
type CalendarDate struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// CalendarFromJD converts a Julian date to a calendar date, truncating to whole seconds.
func CalendarFromJD(jd float64) CalendarDate {
	year, month, day := julian.JDToCalendar(jd)

	whole := math.Floor(day)
	hour := (day - whole) * 24
	minute := (hour - math.Floor(hour)) * 60
	second := (minute - math.Floor(minute)) * 60

	return CalendarDate{
		Year:   year,
		Month:  month,
		Day:    int(whole),
		Hour:   int(math.Floor(hour)),
		Minute: int(math.Floor(minute)),
		Second: int(math.Floor(second)),
	}
}

// CalendarAt returns the calendar date elapsedDays after J2000.
func CalendarAt(elapsedDays float64) CalendarDate {
	return CalendarFromJD(JulianDate(elapsedDays))
}

// Time returns the date as a UTC time.Time.
func (c CalendarDate) Time() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// String formats the date for display, e.g. "Sat Jan 01 2000".
func (c CalendarDate) String() string {
	return c.Time().Format(DisplayLayout)
}

// ISO formats the date as YYYY-MM-DDThh:mm:ssZ.
func (c CalendarDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02dZ", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}
