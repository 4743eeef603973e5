// Derived display strings for the home and history views.
package reconcile

import "time"

// Greeting returns the time-of-day greeting for the home screen: "Good
// morning" before noon, "Good evening" otherwise. The original app showed
// the same evening greeting from noon onward, so there is deliberately no
// afternoon variant.
func Greeting(now time.Time) string {
	if now.Hour() < 12 {
		return "Good morning"
	}
	return "Good evening"
}

// FormatRelativeDate renders a log timestamp for the history list:
// "Today 15:04" / "Yesterday 15:04" for the two most recent days, the full
// date beyond that, and a fixed placeholder when the timestamp is missing
// or unparsable.
func FormatRelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown date"
	}
	local := t.In(now.Location())
	switch DayKey(local) {
	case DayKey(now):
		return "Today " + local.Format("15:04")
	case DayKey(now.AddDate(0, 0, -1)):
		return "Yesterday " + local.Format("15:04")
	default:
		return local.Format("Monday, 2 January 2006")
	}
}
