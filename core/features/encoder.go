package features

import (
	"math"

	"github.com/kilianp07/gymcrowd/core/model"
)

// Field names used in InvalidInputError.
const (
	FieldDay            = "day"
	FieldMonth          = "month"
	FieldSemesterStatus = "semester_status"
)

// Periods of the cyclical encodings.
const (
	hoursPerDay   = 24
	daysPerWeek   = 7
	monthsPerYear = 12
	firstWeekend  = 5
)

var dayCodes = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

var monthCodes = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4, "May": 5, "June": 6,
	"July": 7, "August": 8, "September": 9, "October": 10, "November": 11, "December": 12,
}

// semesterFlags gives (is_start_of_semester, is_during_semester). Start
// always implies during.
type semesterFlags struct{ start, during float64 }

var semesterCodes = map[string]semesterFlags{
	model.SemesterStart:  {1, 1},
	"StartOfSemester":    {1, 1},
	model.SemesterDuring: {0, 1},
	"DuringSemester":     {0, 1},
	model.SemesterBreak:  {0, 0},
	"SemesterBreak":      {0, 0},
}

// DayCode returns the Monday-based index of a weekday token.
func DayCode(day string) (int, error) {
	c, ok := dayCodes[day]
	if !ok {
		return 0, invalid(FieldDay, day)
	}
	return c, nil
}

// MonthCode returns the 1-based index of a month token.
func MonthCode(month string) (int, error) {
	c, ok := monthCodes[month]
	if !ok {
		return 0, invalid(FieldMonth, month)
	}
	return c, nil
}

// Encode builds the feature vector for in. It performs no I/O and only
// fails on unknown day, month or semester tokens. Hour and temperature are
// copied through unchanged.
func Encode(in model.RawInput) (Vector, error) {
	var v Vector
	day, err := DayCode(in.Day)
	if err != nil {
		return v, err
	}
	month, err := MonthCode(in.Month)
	if err != nil {
		return v, err
	}
	sem, ok := semesterCodes[in.SemesterStatus]
	if !ok {
		return v, invalid(FieldSemesterStatus, in.SemesterStatus)
	}

	weekend := 0.0
	if day >= firstWeekend {
		weekend = 1
	}
	holiday := 0.0
	if in.IsHoliday {
		holiday = 1
	}
	hour := float64(in.Hour)

	v[DayOfWeek] = float64(day)
	v[IsWeekend] = weekend
	v[IsHoliday] = holiday
	v[Temperature] = in.Temperature
	v[IsStartOfSemester] = sem.start
	v[IsDuringSemester] = sem.during
	v[Month] = float64(month)
	v[Hour] = hour
	v[MonthSin], v[MonthCos] = cyclical(float64(month), monthsPerYear)
	v[HourSin], v[HourCos] = cyclical(hour, hoursPerDay)
	v[DaySin], v[DayCos] = cyclical(float64(day), daysPerWeek)
	v[WeekendHour] = weekend * hour
	v[SemesterTemp] = sem.during * in.Temperature
	return v, nil
}

// cyclical places value on a circle of the given period.
func cyclical(value, period float64) (sin, cos float64) {
	angle := 2 * math.Pi * value / period
	return math.Sin(angle), math.Cos(angle)
}
