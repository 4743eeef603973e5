// Package reconcile joins independently fetched collections — mood
// definitions, activities, and a user's mood logs — into the aggregates the
// views render: today's mood card, the history list with nested activity
// suggestions, and the profile statistics.
//
// CONTRACT:
// Every function here is pure and total over in-memory data. No I/O, no
// clock reads (callers pass "now"), and no errors: a dangling cross
// reference, a malformed timestamp, or a missing field degrades to a
// documented fallback value instead of failing. Nil slices are valid empty
// collections. The only way to misuse this package is to pass garbage that
// isn't even the right type, and the compiler handles that.
package reconcile

import (
	"sort"
	"time"

	"github.com/sakif/moodtrack/internal/model"
)

// Display fallbacks, matching the app theme. A resolved mood with no icon or
// color of its own gets the "found" defaults; an unresolvable mood ref gets
// the fallback triple with an empty name.
const (
	DefaultIcon   = "happy-outline"
	DefaultColor  = "#007aff" // theme primary
	FallbackIcon  = "help-outline"
	FallbackColor = "#333" // theme text
)

// MoodInfo is the display triple for a logged mood.
type MoodInfo struct {
	Name  string
	Icon  string
	Color string
}

// ResolveMoodInfo finds the definition for moodRef and returns its display
// info. A miss — including an empty moodRef, which is how a log with a
// dangling or absent mood reference presents — returns the fallback triple
// with an empty name. It never fails: definitions get deleted while logs
// referencing them live on, and the history view must keep rendering.
func ResolveMoodInfo(defs []model.MoodDefinition, moodRef string) MoodInfo {
	if moodRef != "" {
		for _, def := range defs {
			if def.ID == moodRef {
				info := MoodInfo{Name: def.Name, Icon: def.Icon, Color: def.Color}
				if info.Icon == "" {
					info.Icon = DefaultIcon
				}
				if info.Color == "" {
					info.Color = DefaultColor
				}
				return info
			}
		}
	}
	return MoodInfo{Name: "", Icon: FallbackIcon, Color: FallbackColor}
}

// DayKey reduces a moment to its calendar date in t's location. Two moments
// share a DayKey exactly when they fall on the same local day.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// FindTodayLog returns the first log in input order whose timestamp falls on
// the same calendar date as now (in now's location), or nil when no log
// does.
//
// ORDER SENSITIVITY:
// "First in input order" is deliberate and load-bearing: the store returns
// logs unsorted, and when two logs exist for today this returns whichever
// the store listed first, not the most recent. Callers that need "latest"
// must sort first.
//
// A log with no parseable timestamp cannot match any date and is skipped.
func FindTodayLog(logs []model.UserMoodLog, now time.Time) *model.UserMoodLog {
	today := DayKey(now)
	for i := range logs {
		when := logs[i].When()
		if when.IsZero() {
			continue
		}
		if DayKey(when.In(now.Location())) == today {
			return &logs[i]
		}
	}
	return nil
}

// SortLogsByDateDescending returns a new slice with logs ordered newest
// first. The sort is stable, so logs with equal timestamps keep their input
// order, and sorting an already-sorted slice is a no-op.
//
// A log whose timestamp is missing or unparsable sorts as "now" — the top
// of the list — so malformed records stay visible instead of sinking
// silently to the bottom.
func SortLogsByDateDescending(logs []model.UserMoodLog) []model.UserMoodLog {
	now := time.Now()
	sorted := make([]model.UserMoodLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectiveTime(&sorted[i], now).After(effectiveTime(&sorted[j], now))
	})
	return sorted
}

func effectiveTime(log *model.UserMoodLog, now time.Time) time.Time {
	if when := log.When(); !when.IsZero() {
		return when.Time
	}
	return now
}

// SuggestedActivitiesFor filters activities down to those tagged with
// moodRef. An empty moodRef matches nothing.
func SuggestedActivitiesFor(activities []model.Activity, moodRef string) []model.Activity {
	if moodRef == "" {
		return nil
	}
	var out []model.Activity
	for _, act := range activities {
		if act.MoodRefs.Contains(moodRef) {
			out = append(out, act)
		}
	}
	return out
}

// SelectedActivitiesFor intersects the activities suggested for the log's
// mood with the ids the user actually selected, preserving the order of
// moodActivities. The log's id list is already normalized at decode time
// (model.IDList), so a delimited-string shape intersects the same as an
// array. No match on either side yields an empty result, never an error.
func SelectedActivitiesFor(moodActivities []model.Activity, log *model.UserMoodLog) []model.Activity {
	if log == nil || len(log.Activities) == 0 {
		return nil
	}
	var out []model.Activity
	for _, act := range moodActivities {
		if log.Activities.Contains(act.ID) {
			out = append(out, act)
		}
	}
	return out
}

// NextNumericID returns max(ids)+1, or 1 for an empty set.
//
// NOT ATOMIC:
// This is the display-id assignment used when creating mood definitions and
// activities: scan what exists, add one. Two clients creating concurrently
// can both read the same max and assign the same id. The returned value is
// a hint for display and grouping only — durable identity is always the
// store-assigned record id — so the race is accepted rather than hidden
// behind a sequence generator the backing store doesn't offer.
func NextNumericID(ids []int) int {
	max := 0
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// NextMoodNumericID is NextNumericID over the moodid field of defs.
func NextMoodNumericID(defs []model.MoodDefinition) int {
	ids := make([]int, len(defs))
	for i, def := range defs {
		ids[i] = def.MoodID
	}
	return NextNumericID(ids)
}

// NextActivityNumericID is NextNumericID over the id field of activities.
func NextActivityNumericID(activities []model.Activity) int {
	ids := make([]int, len(activities))
	for i, act := range activities {
		ids[i] = act.NumericID
	}
	return NextNumericID(ids)
}

// MoodCount is one entry of the per-mood frequency view.
type MoodCount struct {
	MoodRef string
	Name    string
	Count   int
}

// ComputeMoodFrequency groups logs by resolved mood id and counts
// occurrences. The result is ordered by first encounter in the input, which
// is what makes TopMoods' tie-breaking stable — a Go map would shuffle
// ties on every call. A log with no mood ref is skipped; a log whose mood
// definition is gone still counts, under the fallback (empty) name.
func ComputeMoodFrequency(logs []model.UserMoodLog, defs []model.MoodDefinition) []MoodCount {
	var counts []MoodCount
	index := make(map[string]int)
	for i := range logs {
		ref := logs[i].MoodRef()
		if ref == "" {
			continue
		}
		if at, seen := index[ref]; seen {
			counts[at].Count++
			continue
		}
		index[ref] = len(counts)
		counts = append(counts, MoodCount{
			MoodRef: ref,
			Name:    ResolveMoodInfo(defs, ref).Name,
			Count:   1,
		})
	}
	return counts
}

// TopMoods returns the n most frequent entries, ties broken by
// first-encountered order (the order ComputeMoodFrequency emits).
func TopMoods(counts []MoodCount, n int) []MoodCount {
	sorted := make([]MoodCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
