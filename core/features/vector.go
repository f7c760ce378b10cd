package features

// Column indexes of the feature vector, in training order.
const (
	DayOfWeek = iota
	IsWeekend
	IsHoliday
	Temperature
	IsStartOfSemester
	IsDuringSemester
	Month
	Hour
	MonthSin
	MonthCos
	HourSin
	HourCos
	DaySin
	DayCos
	WeekendHour
	SemesterTemp

	// Len is the number of columns.
	Len
)

// Names are the training column names indexed by the constants above.
var Names = [Len]string{
	DayOfWeek:         "day_of_week",
	IsWeekend:         "is_weekend",
	IsHoliday:         "is_holiday",
	Temperature:       "temperature",
	IsStartOfSemester: "is_start_of_semester",
	IsDuringSemester:  "is_during_semester",
	Month:             "month",
	Hour:              "hour",
	MonthSin:          "month_sin",
	MonthCos:          "month_cos",
	HourSin:           "hour_sin",
	HourCos:           "hour_cos",
	DaySin:            "day_sin",
	DayCos:            "day_cos",
	WeekendHour:       "weekend_hour",
	SemesterTemp:      "semester_temp",
}

// Vector is an encoded input. Being an array it is copied by value, so a
// Vector handed to a model cannot be mutated behind the encoder's back.
type Vector [Len]float64

// Slice returns the columns as a freshly allocated slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Len)
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by column name, for logs and history.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, Len)
	for i, n := range Names {
		m[n] = v[i]
	}
	return m
}

// ColumnNames returns a copy of Names as a slice.
func ColumnNames() []string {
	out := make([]string, Len)
	copy(out, Names[:])
	return out
}

// MatchColumns reports the first position where names diverge from the
// encoder's column order. It returns -1 when they match exactly.
func MatchColumns(names []string) int {
	for i := 0; i < Len; i++ {
		if i >= len(names) || names[i] != Names[i] {
			return i
		}
	}
	if len(names) != Len {
		return Len
	}
	return -1
}
