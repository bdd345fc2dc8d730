// Package tracker sorts letters into the status buckets shown to users.
package tracker

import (
	"time"

	"lettertrack/models"
)

// Status is the display status of a single letter
type Status int

const (
	StatusOverdue Status = iota
	StatusDueToday
	StatusUpcoming
	StatusReceived
)

// String returns the status name used in templates and logs
func (s Status) String() string {
	switch s {
	case StatusOverdue:
		return "overdue"
	case StatusDueToday:
		return "today"
	case StatusUpcoming:
		return "upcoming"
	case StatusReceived:
		return "received"
	default:
		return "unknown"
	}
}

// View names accepted by Buckets.View
const (
	ViewAll      = "all"
	ViewToday    = "today"
	ViewOverdue  = "overdue"
	ViewUpcoming = "upcoming"
	ViewReceived = "received"
)

// Views lists the views in display order
var Views = []string{ViewAll, ViewToday, ViewOverdue, ViewUpcoming, ViewReceived}

// Buckets holds letters partitioned by status. Every pending letter is in
// Pending and in exactly one of Overdue, DueToday or Upcoming.
type Buckets struct {
	Pending  []models.Letter
	Overdue  []models.Letter
	DueToday []models.Letter
	Upcoming []models.Letter
	Received []models.Letter
}

// day is a calendar date packed as yyyymmdd so it orders like the date
type day int

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day(y*10000 + int(m)*100 + d)
}

// StatusOf compares the letter's reply date with the calendar day of now in
// now's location. Stored reply dates are calendar dates at UTC midnight, so
// they are read in UTC.
func StatusOf(now time.Time, letter models.Letter) Status {
	if letter.Received {
		return StatusReceived
	}
	today := dayOf(now)
	due := dayOf(letter.ExpectedReplyDate.UTC())
	switch {
	case due < today:
		return StatusOverdue
	case due == today:
		return StatusDueToday
	default:
		return StatusUpcoming
	}
}

// Classify partitions letters relative to now, keeping input order in every bucket
func Classify(now time.Time, letters []models.Letter) Buckets {
	var b Buckets
	for _, l := range letters {
		switch StatusOf(now, l) {
		case StatusReceived:
			b.Received = append(b.Received, l)
			continue
		case StatusOverdue:
			b.Overdue = append(b.Overdue, l)
		case StatusDueToday:
			b.DueToday = append(b.DueToday, l)
		case StatusUpcoming:
			b.Upcoming = append(b.Upcoming, l)
		}
		b.Pending = append(b.Pending, l)
	}
	return b
}

// View returns the bucket for a view name; unknown names select all pending letters
func (b Buckets) View(name string) []models.Letter {
	switch name {
	case ViewToday:
		return b.DueToday
	case ViewOverdue:
		return b.Overdue
	case ViewUpcoming:
		return b.Upcoming
	case ViewReceived:
		return b.Received
	default:
		return b.Pending
	}
}

// Counts returns the number of letters per view
func (b Buckets) Counts() map[string]int {
	return map[string]int{
		ViewAll:      len(b.Pending),
		ViewToday:    len(b.DueToday),
		ViewOverdue:  len(b.Overdue),
		ViewUpcoming: len(b.Upcoming),
		ViewReceived: len(b.Received),
	}
}

// NormalizeView maps a requested view name onto a known one
func NormalizeView(name string) string {
	for _, v := range Views {
		if v == name {
			return v
		}
	}
	return ViewAll
}
