package domain

const (
	// DateFormat is the timestamp layout expected by the billing service.
	DateFormat = "01/02/2006 15:04:05"
	// DayFormat is the calendar day layout used for grouping.
	DayFormat = "2006-01-02"
)

// Submission is one timesheet line ready for the billing service
type Submission struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Customer  string `json:"customer"`
	Activity  string `json:"activity"`
	Comments  string `json:"comments"`
	Tags      string `json:"tags"`
	Minutes   int    `json:"minutes"`
}
