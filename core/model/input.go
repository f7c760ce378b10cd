package model

// Semester status tokens accepted from callers. Each status has a display
// label (as shown in selection widgets) and an identifier spelling.
const (
	SemesterStart  = "Start of Semester"
	SemesterDuring = "During Semester"
	SemesterBreak  = "Semester Break"
)

// Weekdays lists the accepted day tokens in calendar order starting on Monday.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Months lists the accepted month tokens in calendar order.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// SemesterStatuses lists the display labels of the three semester phases.
var SemesterStatuses = []string{SemesterStart, SemesterDuring, SemesterBreak}

// RawInput holds the human-entered values a prediction is computed from.
// Hour is expected in [0, 23] and Temperature in [30, 100]; neither is
// clamped here, bounding them is the caller's job.
type RawInput struct {
	Hour           int     `json:"hour"`
	Day            string  `json:"day"`
	Month          string  `json:"month"`
	Temperature    float64 `json:"temperature"`
	SemesterStatus string  `json:"semester_status"`
	IsHoliday      bool    `json:"is_holiday"`
}
