// Package eventtime classifies events against the wall clock and formats the
// countdowns and durations shown next to them. Every function takes the
// current time explicitly.
package eventtime

import (
	"fmt"
	"math"
	"time"
)

// State is the position of an event relative to now
type State string

const (
	StateUpcoming State = "upcoming"
	StateLive     State = "live"
	StateEnded    State = "ended"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// End returns start plus durationMinutes. Negative durations count as zero.
func End(start time.Time, durationMinutes int) time.Time {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// Classify returns exactly one of ended, live or upcoming.
// An event is ended iff now > end and live iff start <= now <= end.
func Classify(start time.Time, durationMinutes int, now time.Time) State {
	if now.After(End(start, durationMinutes)) {
		return StateEnded
	}
	if !now.Before(start) {
		return StateLive
	}
	return StateUpcoming
}

// Countdown describes how far away start is, bucketed into minutes, hours,
// days or weeks. It returns "" when start is not in the future.
func Countdown(start, now time.Time) string {
	diff := start.Sub(now)
	if diff <= 0 {
		return ""
	}

	sameDay := sameCalendarDay(start, now)
	switch {
	case sameDay && diff < time.Hour:
		minutes := int(diff / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		return "in " + pluralize(minutes, "minute")
	case sameDay:
		return "in " + pluralize(int(diff/time.Hour), "hour")
	}

	days := calendarDaysBetween(now, start)
	if days < 7 {
		return "in " + pluralize(days, "day")
	}
	return "in " + pluralize(days/7, "week")
}

// Remaining describes the time left until end, e.g. "45 minutes left".
// It returns "" once end has passed.
func Remaining(end, now time.Time) string {
	diff := end.Sub(now)
	if diff < 0 {
		return ""
	}
	minutes := int(math.Ceil(diff.Minutes()))
	if minutes < 1 {
		return "less than a minute left"
	}
	return FormatDuration(minutes) + " left"
}

// FormatDuration renders a duration in minutes as "1 hour 30 minutes"
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours, rest := minutes/60, minutes%60
	switch {
	case hours == 0:
		return pluralize(rest, "minute")
	case rest == 0:
		return pluralize(hours, "hour")
	}
	return pluralize(hours, "hour") + " " + pluralize(rest, "minute")
}

// SessionPoints converts the minutes spent in a live call into points,
// one point per two full minutes.
func SessionPoints(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes / 2
}

// Window is the full time status of an event at a given instant
type Window struct {
	State     State     `json:"state" example:"upcoming"`
	Countdown string    `json:"countdown,omitempty" example:"in 10 minutes"`
	Remaining string    `json:"remaining,omitempty" example:"45 minutes left"`
	Duration  string    `json:"duration" example:"1 hour 30 minutes"`
	EndsAt    time.Time `json:"endsAt"`
}

// Status computes the Window of an event starting at start
func Status(start time.Time, durationMinutes int, now time.Time) Window {
	end := End(start, durationMinutes)
	w := Window{
		State:    Classify(start, durationMinutes, now),
		Duration: FormatDuration(durationMinutes),
		EndsAt:   end,
	}
	switch w.State {
	case StateUpcoming:
		w.Countdown = Countdown(start, now)
	case StateLive:
		w.Remaining = Remaining(end, now)
	case StateEnded:
	}
	return w
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func sameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween counts midnights crossed going from a to b, in a's location
func calendarDaysBetween(a, b time.Time) int {
	loc := a.Location()
	ay, am, ad := a.Date()
	by, bm, bd := b.In(loc).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, loc)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, loc)
	return int(math.Round(to.Sub(from).Hours() / 24))
}
