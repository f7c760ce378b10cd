package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gymcrowd/core/model"
)

func baseInput() model.RawInput {
	return model.RawInput{
		Hour:           17,
		Day:            "Wednesday",
		Month:          "September",
		Temperature:    70,
		SemesterStatus: model.SemesterDuring,
		IsHoliday:      false,
	}
}

func TestEncode_EndToEndScenario(t *testing.T) {
	v, err := Encode(baseInput())
	require.NoError(t, err)

	assert.Equal(t, 2.0, v[DayOfWeek])
	assert.Equal(t, 0.0, v[IsWeekend])
	assert.Equal(t, 0.0, v[IsHoliday])
	assert.Equal(t, 70.0, v[Temperature])
	assert.Equal(t, 0.0, v[IsStartOfSemester])
	assert.Equal(t, 1.0, v[IsDuringSemester])
	assert.Equal(t, 9.0, v[Month])
	assert.Equal(t, 17.0, v[Hour])
	assert.InDelta(t, math.Sin(2*math.Pi*9/12), v[MonthSin], 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*9/12), v[MonthCos], 1e-12)
	assert.InDelta(t, math.Sin(2*math.Pi*17/24), v[HourSin], 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*17/24), v[HourCos], 1e-12)
	assert.InDelta(t, math.Sin(2*math.Pi*2/7), v[DaySin], 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*2/7), v[DayCos], 1e-12)
	assert.Equal(t, 0.0, v[WeekendHour])
	assert.Equal(t, 70.0, v[SemesterTemp])
}

func TestEncode_ColumnOrder(t *testing.T) {
	want := []string{
		"day_of_week", "is_weekend", "is_holiday", "temperature",
		"is_start_of_semester", "is_during_semester", "month", "hour",
		"month_sin", "month_cos", "hour_sin", "hour_cos", "day_sin", "day_cos",
		"weekend_hour", "semester_temp",
	}
	assert.Equal(t, 16, Len)
	assert.Equal(t, want, ColumnNames())

	v, err := Encode(baseInput())
	require.NoError(t, err)
	assert.Len(t, v.Slice(), 16)
	m := v.Map()
	for i, n := range want {
		assert.Equal(t, v[i], m[n], n)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	in := baseInput()
	a, err := Encode(in)
	require.NoError(t, err)
	b, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_WeekendAcrossAllDays(t *testing.T) {
	for i, day := range model.Weekdays {
		in := baseInput()
		in.Day = day
		v, err := Encode(in)
		require.NoError(t, err, day)
		assert.Equal(t, float64(i), v[DayOfWeek], day)
		want := 0.0
		if day == "Saturday" || day == "Sunday" {
			want = 1
		}
		assert.Equal(t, want, v[IsWeekend], day)
	}
}

func TestEncode_SemesterFlags(t *testing.T) {
	cases := []struct {
		status        string
		start, during float64
	}{
		{model.SemesterStart, 1, 1},
		{model.SemesterDuring, 0, 1},
		{model.SemesterBreak, 0, 0},
		{"StartOfSemester", 1, 1},
		{"DuringSemester", 0, 1},
		{"SemesterBreak", 0, 0},
	}
	for _, c := range cases {
		in := baseInput()
		in.SemesterStatus = c.status
		v, err := Encode(in)
		require.NoError(t, err, c.status)
		assert.Equal(t, c.start, v[IsStartOfSemester], c.status)
		assert.Equal(t, c.during, v[IsDuringSemester], c.status)
		assert.GreaterOrEqual(t, v[IsDuringSemester], v[IsStartOfSemester], c.status)
	}
}

func TestEncode_MonthCircleAdjacency(t *testing.T) {
	encodeMonth := func(m string) Vector {
		in := baseInput()
		in.Month = m
		v, err := Encode(in)
		require.NoError(t, err)
		return v
	}
	jan := encodeMonth("January")
	dec := encodeMonth("December")
	jul := encodeMonth("July")

	dist := func(a, b Vector) float64 {
		return math.Hypot(a[MonthSin]-b[MonthSin], a[MonthCos]-b[MonthCos])
	}
	// Neighbours on a 12-point unit circle sit 2*sin(pi/12) apart, opposite
	// points sit 2 apart.
	assert.InDelta(t, 2*math.Sin(math.Pi/12), dist(jan, dec), 1e-9)
	assert.InDelta(t, 2.0, dist(jan, jul), 1e-9)
	assert.InDelta(t, jan[MonthSin], -jul[MonthSin], 1e-9)
	assert.Less(t, math.Abs(jan[MonthSin]-dec[MonthSin]), math.Abs(jan[MonthSin]-jul[MonthSin])+1e-9)
}

func TestEncode_InteractionGates(t *testing.T) {
	for _, day := range model.Weekdays[:5] {
		for hour := 0; hour < 24; hour++ {
			in := baseInput()
			in.Day = day
			in.Hour = hour
			v, err := Encode(in)
			require.NoError(t, err)
			assert.Equal(t, 0.0, v[WeekendHour], "%s %d", day, hour)
		}
	}
	for _, temp := range []float64{30, 55.5, 100} {
		in := baseInput()
		in.SemesterStatus = model.SemesterBreak
		in.Temperature = temp
		v, err := Encode(in)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v[SemesterTemp])
		assert.Equal(t, temp, v[Temperature])
	}

	in := baseInput()
	in.Day = "Sunday"
	in.Hour = 9
	v, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v[WeekendHour])
}

func TestEncode_HolidayAndPassthrough(t *testing.T) {
	in := baseInput()
	in.IsHoliday = true
	in.Hour = 30
	in.Temperature = -4
	v, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v[IsHoliday])
	assert.Equal(t, 30.0, v[Hour])
	assert.Equal(t, -4.0, v[Temperature])
}

func TestEncode_InvalidTokens(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*model.RawInput)
		field string
	}{
		{"day", func(in *model.RawInput) { in.Day = "Funday" }, FieldDay},
		{"lowercase day", func(in *model.RawInput) { in.Day = "monday" }, FieldDay},
		{"month", func(in *model.RawInput) { in.Month = "Smarch" }, FieldMonth},
		{"semester", func(in *model.RawInput) { in.SemesterStatus = "Finals" }, FieldSemesterStatus},
		{"empty semester", func(in *model.RawInput) { in.SemesterStatus = "" }, FieldSemesterStatus},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := baseInput()
			c.mut(&in)
			_, err := Encode(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			var ie *InvalidInputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, c.field, ie.Field)
			assert.Contains(t, err.Error(), c.field)
		})
	}
}

func TestMatchColumns(t *testing.T) {
	assert.Equal(t, -1, MatchColumns(ColumnNames()))

	swapped := ColumnNames()
	swapped[8], swapped[9] = swapped[9], swapped[8]
	assert.Equal(t, 8, MatchColumns(swapped))

	assert.Equal(t, 3, MatchColumns(ColumnNames()[:3]))
	assert.Equal(t, Len, MatchColumns(append(ColumnNames(), "extra")))
}
