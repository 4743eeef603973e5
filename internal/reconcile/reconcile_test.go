package reconcile

import (
	"testing"
	"time"

	"github.com/sakif/moodtrack/internal/model"
)

func ts(t *testing.T, s string) model.Timestamp {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test time %q: %v", s, err)
	}
	return model.Timestamp{Time: parsed}
}

func logAt(t *testing.T, id, moodRef, created string) model.UserMoodLog {
	t.Helper()
	log := model.UserMoodLog{ID: id, MoodRefs: model.Refs(moodRef)}
	if created != "" {
		log.CreatedAt = ts(t, created)
	}
	return log
}

// =========================================================================
// ResolveMoodInfo
// =========================================================================

func TestResolveMoodInfo(t *testing.T) {
	defs := []model.MoodDefinition{
		{ID: "m1", Name: "Happy", Icon: "sunny-outline", Color: "#ffcc00"},
		{ID: "m2", Name: "Sad"}, // no icon or color of its own
	}

	got := ResolveMoodInfo(defs, "m1")
	if got.Name != "Happy" || got.Icon != "sunny-outline" || got.Color != "#ffcc00" {
		t.Errorf("ResolveMoodInfo(m1) = %+v", got)
	}

	got = ResolveMoodInfo(defs, "m2")
	if got.Name != "Sad" || got.Icon != DefaultIcon || got.Color != DefaultColor {
		t.Errorf("ResolveMoodInfo(m2) = %+v, want defaults filled in", got)
	}
}

func TestResolveMoodInfo_MissReturnsFallback(t *testing.T) {
	defs := []model.MoodDefinition{{ID: "m1", Name: "Happy"}}

	for _, ref := range []string{"m_missing", ""} {
		got := ResolveMoodInfo(defs, ref)
		if got.Name != "" || got.Icon != FallbackIcon || got.Color != FallbackColor {
			t.Errorf("ResolveMoodInfo(%q) = %+v, want fallback triple", ref, got)
		}
	}

	// Nil collection is a valid empty one.
	got := ResolveMoodInfo(nil, "m1")
	if got.Icon != FallbackIcon {
		t.Errorf("ResolveMoodInfo(nil defs) = %+v, want fallback triple", got)
	}
}

// =========================================================================
// FindTodayLog
// =========================================================================

func TestFindTodayLog(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2025-03-14T18:30:00Z")

	logs := []model.UserMoodLog{
		logAt(t, "l1", "m1", "2025-03-13T22:00:00Z"),
		logAt(t, "l2", "m1", "2025-03-14T08:00:00Z"),
		logAt(t, "l3", "m2", "2025-03-14T12:00:00Z"),
	}

	got := FindTodayLog(logs, now)
	if got == nil || got.ID != "l2" {
		t.Fatalf("FindTodayLog() = %v, want l2", got)
	}
}

func TestFindTodayLog_NoMatch(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2025-03-14T18:30:00Z")

	logs := []model.UserMoodLog{
		logAt(t, "l1", "m1", "2025-03-12T08:00:00Z"),
		logAt(t, "l2", "m1", ""), // no timestamp: cannot match any date
	}

	if got := FindTodayLog(logs, now); got != nil {
		t.Errorf("FindTodayLog() = %v, want nil", got)
	}
	if got := FindTodayLog(nil, now); got != nil {
		t.Errorf("FindTodayLog(nil) = %v, want nil", got)
	}
}

// Two logs today: the first in input order wins even when the second is
// newer. Callers wanting "latest" must sort first.
func TestFindTodayLog_FirstInInputOrderWins(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2025-03-14T23:00:00Z")

	logs := []model.UserMoodLog{
		logAt(t, "earlier", "m1", "2025-03-14T08:00:00Z"),
		logAt(t, "later", "m2", "2025-03-14T20:00:00Z"),
	}

	got := FindTodayLog(logs, now)
	if got == nil || got.ID != "earlier" {
		t.Fatalf("FindTodayLog() = %v, want the first in input order", got)
	}

	// Reversed input returns the other log: the function is order-sensitive
	// by contract.
	reversed := []model.UserMoodLog{logs[1], logs[0]}
	got = FindTodayLog(reversed, now)
	if got == nil || got.ID != "later" {
		t.Fatalf("FindTodayLog(reversed) = %v, want later", got)
	}
}

// A timestamp just before local midnight and one just after are different
// days even though they are an hour apart.
func TestFindTodayLog_CalendarDateNotWindow(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2025-03-15T00:30:00Z")

	logs := []model.UserMoodLog{
		logAt(t, "yesterday", "m1", "2025-03-14T23:30:00Z"),
		logAt(t, "today", "m1", "2025-03-15T00:10:00Z"),
	}

	got := FindTodayLog(logs, now)
	if got == nil || got.ID != "today" {
		t.Fatalf("FindTodayLog() = %v, want the log after midnight", got)
	}
}

// =========================================================================
// SortLogsByDateDescending
// =========================================================================

func TestSortLogsByDateDescending(t *testing.T) {
	logs := []model.UserMoodLog{
		logAt(t, "old", "m1", "2025-01-01T10:00:00Z"),
		logAt(t, "new", "m1", "2025-03-01T10:00:00Z"),
		logAt(t, "mid", "m1", "2025-02-01T10:00:00Z"),
	}

	sorted := SortLogsByDateDescending(logs)

	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Errorf("sorted[%d] = %s, want %s", i, sorted[i].ID, id)
		}
	}

	// Input is untouched.
	if logs[0].ID != "old" {
		t.Error("SortLogsByDateDescending must not mutate its input")
	}
}

func TestSortLogsByDateDescending_Idempotent(t *testing.T) {
	logs := []model.UserMoodLog{
		logAt(t, "b", "m1", "2025-02-01T10:00:00Z"),
		logAt(t, "a", "m1", "2025-03-01T10:00:00Z"),
		logAt(t, "c", "m1", "2025-01-01T10:00:00Z"),
	}

	once := SortLogsByDateDescending(logs)
	twice := SortLogsByDateDescending(once)

	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("sorting twice diverged at %d: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

// Malformed timestamps sort as "now": the record surfaces at the top
// instead of silently sinking to the bottom.
func TestSortLogsByDateDescending_MissingTimestampSortsFirst(t *testing.T) {
	logs := []model.UserMoodLog{
		logAt(t, "dated", "m1", "2025-01-01T10:00:00Z"),
		logAt(t, "undated", "m1", ""),
	}

	sorted := SortLogsByDateDescending(logs)
	if sorted[0].ID != "undated" {
		t.Errorf("sorted[0] = %s, want the undated log first", sorted[0].ID)
	}
}

func TestSortLogsByDateDescending_StableOnEqualTimes(t *testing.T) {
	logs := []model.UserMoodLog{
		logAt(t, "first", "m1", "2025-02-01T10:00:00Z"),
		logAt(t, "second", "m2", "2025-02-01T10:00:00Z"),
	}

	sorted := SortLogsByDateDescending(logs)
	if sorted[0].ID != "first" || sorted[1].ID != "second" {
		t.Errorf("equal timestamps must keep input order, got %s,%s", sorted[0].ID, sorted[1].ID)
	}
}

// =========================================================================
// Activity joins
// =========================================================================

func TestSuggestedActivitiesFor(t *testing.T) {
	activities := []model.Activity{
		{ID: "a1", Suggestion: "Walk", MoodRefs: model.Refs("m1")},
		{ID: "a2", Suggestion: "Call a friend", MoodRefs: model.Refs("m1", "m2")},
		{ID: "a3", Suggestion: "Sleep", MoodRefs: model.Refs("m2")},
	}

	got := SuggestedActivitiesFor(activities, "m1")
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Errorf("SuggestedActivitiesFor(m1) = %v", got)
	}

	if got := SuggestedActivitiesFor(activities, "m_missing"); len(got) != 0 {
		t.Errorf("unknown mood: got %v, want empty", got)
	}
	if got := SuggestedActivitiesFor(activities, ""); len(got) != 0 {
		t.Errorf("empty mood ref: got %v, want empty", got)
	}
}

func TestSelectedActivitiesFor(t *testing.T) {
	moodActivities := []model.Activity{
		{ID: "a1", Suggestion: "Walk"},
		{ID: "a2", Suggestion: "Read"},
		{ID: "a3", Suggestion: "Swim"},
	}

	log := model.UserMoodLog{Activities: model.IDList{"a3", "a1"}}

	got := SelectedActivitiesFor(moodActivities, &log)
	// Order follows moodActivities, not the selection list.
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" {
		t.Errorf("SelectedActivitiesFor() = %v", got)
	}
}

func TestSelectedActivitiesFor_NoMatchIsEmptyNotError(t *testing.T) {
	moodActivities := []model.Activity{{ID: "a1"}}

	if got := SelectedActivitiesFor(moodActivities, &model.UserMoodLog{}); len(got) != 0 {
		t.Errorf("no selection: got %v, want empty", got)
	}

	log := model.UserMoodLog{Activities: model.IDList{"a_gone"}}
	if got := SelectedActivitiesFor(moodActivities, &log); len(got) != 0 {
		t.Errorf("dangling selection: got %v, want empty", got)
	}
	if got := SelectedActivitiesFor(nil, &log); len(got) != 0 {
		t.Errorf("no suggestions: got %v, want empty", got)
	}
	if got := SelectedActivitiesFor(moodActivities, nil); len(got) != 0 {
		t.Errorf("nil log: got %v, want empty", got)
	}
}

// =========================================================================
// NextNumericID
// =========================================================================

func TestNextNumericID(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"empty set", nil, 1},
		{"sequential", []int{1, 2, 3}, 4},
		{"unordered with gaps", []int{3, 1, 4}, 5},
		{"single", []int{7}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextNumericID(tt.ids); got != tt.want {
				t.Errorf("NextNumericID(%v) = %d, want %d", tt.ids, got, tt.want)
			}
		})
	}
}

func TestNextNumericID_TypedWrappers(t *testing.T) {
	defs := []model.MoodDefinition{{MoodID: 3}, {MoodID: 1}, {MoodID: 4}}
	if got := NextMoodNumericID(defs); got != 5 {
		t.Errorf("NextMoodNumericID() = %d, want 5", got)
	}

	acts := []model.Activity{{NumericID: 2}}
	if got := NextActivityNumericID(acts); got != 3 {
		t.Errorf("NextActivityNumericID() = %d, want 3", got)
	}
	if got := NextActivityNumericID(nil); got != 1 {
		t.Errorf("NextActivityNumericID(nil) = %d, want 1", got)
	}
}

// =========================================================================
// Mood frequency
// =========================================================================

func TestComputeMoodFrequency(t *testing.T) {
	defs := []model.MoodDefinition{
		{ID: "m1", Name: "Happy"},
		{ID: "m2", Name: "Sad"},
	}
	logs := []model.UserMoodLog{
		logAt(t, "l1", "m2", "2025-03-01T10:00:00Z"),
		logAt(t, "l2", "m1", "2025-03-02T10:00:00Z"),
		logAt(t, "l3", "m2", "2025-03-03T10:00:00Z"),
		logAt(t, "l4", "m_gone", "2025-03-04T10:00:00Z"),
		{ID: "l5"}, // no mood ref at all: skipped
	}

	counts := ComputeMoodFrequency(logs, defs)

	if len(counts) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(counts), counts)
	}
	// First-encountered order: m2 before m1 before the dangling ref.
	if counts[0].MoodRef != "m2" || counts[0].Name != "Sad" || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v", counts[0])
	}
	if counts[1].MoodRef != "m1" || counts[1].Count != 1 {
		t.Errorf("counts[1] = %+v", counts[1])
	}
	// Deleted definition still counts, under the fallback empty name.
	if counts[2].MoodRef != "m_gone" || counts[2].Name != "" || counts[2].Count != 1 {
		t.Errorf("counts[2] = %+v", counts[2])
	}
}

func TestTopMoods_TiesKeepFirstEncounteredOrder(t *testing.T) {
	counts := []MoodCount{
		{MoodRef: "m1", Name: "Happy", Count: 2},
		{MoodRef: "m2", Name: "Sad", Count: 3},
		{MoodRef: "m3", Name: "Calm", Count: 2},
	}

	top := TopMoods(counts, 2)
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2", len(top))
	}
	if top[0].MoodRef != "m2" {
		t.Errorf("top[0] = %+v, want m2", top[0])
	}
	// m1 and m3 tie at 2; m1 was encountered first.
	if top[1].MoodRef != "m1" {
		t.Errorf("top[1] = %+v, want m1 (stable tie-break)", top[1])
	}

	if got := TopMoods(counts, 10); len(got) != 3 {
		t.Errorf("n beyond len: got %d entries, want all 3", len(got))
	}
}

// =========================================================================
// Derived display strings
// =========================================================================

func TestGreeting(t *testing.T) {
	morning := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	if got := Greeting(morning); got != "Good morning" {
		t.Errorf("Greeting(9am) = %q", got)
	}
	noon := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	if got := Greeting(noon); got != "Good evening" {
		t.Errorf("Greeting(noon) = %q", got)
	}
}

func TestFormatRelativeDate(t *testing.T) {
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"today", time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC), "Today 09:26"},
		{"yesterday", time.Date(2025, 3, 13, 22, 5, 0, 0, time.UTC), "Yesterday 22:05"},
		{"older", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), "Saturday, 1 March 2025"},
		{"missing", time.Time{}, "Unknown date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeDate(tt.t, now); got != tt.want {
				t.Errorf("FormatRelativeDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =========================================================================
// End-to-end composition scenarios
// =========================================================================

// Scenario: one definition, one tagged activity, one log for today selecting
// it — the composed view shows "Happy" with the single suggestion "Walk".
func TestScenario_HappyPathComposition(t *testing.T) {
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	defs := []model.MoodDefinition{{ID: "m1", Name: "Happy"}}
	activities := []model.Activity{
		{ID: "a1", Suggestion: "Walk", MoodRefs: model.Refs("m1")},
	}
	logs := []model.UserMoodLog{{
		ID:         "l1",
		MoodRefs:   model.Refs("m1"),
		Activities: model.IDList{"a1"},
		CreatedAt:  model.Timestamp{Time: now},
	}}

	today := FindTodayLog(logs, now)
	if today == nil {
		t.Fatal("expected a log for today")
	}

	info := ResolveMoodInfo(defs, today.MoodRef())
	if info.Name != "Happy" {
		t.Errorf("mood name = %q, want Happy", info.Name)
	}

	selected := SelectedActivitiesFor(SuggestedActivitiesFor(activities, today.MoodRef()), today)
	if len(selected) != 1 || selected[0].Suggestion != "Walk" {
		t.Errorf("selected = %v, want [Walk]", selected)
	}
}

// Scenario: the log references a deleted mood. The view degrades to the
// fallback triple with no suggestions, and nothing panics.
func TestScenario_DanglingMoodRef(t *testing.T) {
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	defs := []model.MoodDefinition{{ID: "m1", Name: "Happy"}}
	activities := []model.Activity{
		{ID: "a1", Suggestion: "Walk", MoodRefs: model.Refs("m1")},
	}
	log := model.UserMoodLog{
		ID:         "l1",
		MoodRefs:   model.Refs("m_missing"),
		Activities: model.IDList{"a1"},
		CreatedAt:  model.Timestamp{Time: now},
	}

	info := ResolveMoodInfo(defs, log.MoodRef())
	if info.Name != "" || info.Icon != FallbackIcon || info.Color != FallbackColor {
		t.Errorf("info = %+v, want fallback triple", info)
	}

	selected := SelectedActivitiesFor(SuggestedActivitiesFor(activities, log.MoodRef()), &log)
	if len(selected) != 0 {
		t.Errorf("selected = %v, want empty", selected)
	}
}

// Scenario: a string-shaped selection "a1, a3" intersects the same as a
// list after decode-time normalization.
func TestScenario_DelimitedSelectionString(t *testing.T) {
	moodActivities := []model.Activity{
		{ID: "a1", Suggestion: "Walk"},
		{ID: "a2", Suggestion: "Read"},
		{ID: "a3", Suggestion: "Swim"},
	}
	log := model.UserMoodLog{Activities: model.SplitIDs("a1, a3")}

	selected := SelectedActivitiesFor(moodActivities, &log)
	if len(selected) != 2 || selected[0].ID != "a1" || selected[1].ID != "a3" {
		t.Errorf("selected = %v, want [a1 a3]", selected)
	}
}
