package content

import "time"

// TimeLeft is the remaining span of a running countdown, broken up the way
// the storefront displays it.
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Countdown returns the time left until end, or nil once the end has passed
// (or was never set). A nil result means the countdown should not be shown.
func Countdown(end *time.Time, now time.Time) *TimeLeft {
	if end == nil || !end.After(now) {
		return nil
	}

	d := end.Sub(now)
	return &TimeLeft{
		Days:    int(d.Hours()) / 24,
		Hours:   int(d.Hours()) % 24,
		Minutes: int(d.Minutes()) % 60,
		Seconds: int(d.Seconds()) % 60,
	}
}
