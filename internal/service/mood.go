package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/moodtrack/internal/apperror"
	"github.com/sakif/moodtrack/internal/model"
	"github.com/sakif/moodtrack/internal/reconcile"
	"github.com/sakif/moodtrack/internal/store"
)

// MoodService composes mood logging and its read views: the home card,
// the history timeline, and activity suggestions.
type MoodService struct {
	moods      store.Moods
	activities store.Activities
	logs       store.Logs
	logger     *slog.Logger
}

// NewMoodService wires a MoodService against the current write path
// (the /usermoods collection).
func NewMoodService(moods store.Moods, activities store.Activities, logs store.Logs, logger *slog.Logger) *MoodService {
	return &MoodService{moods: moods, activities: activities, logs: logs, logger: logger}
}

// LogView is one rendered log entry: the raw record plus everything the
// display needs resolved against the shared collections.
type LogView struct {
	Log       model.UserMoodLog
	Mood      reconcile.MoodInfo
	DateLabel string
	Selected  []model.Activity
}

// HomeView is the landing screen: a time-of-day greeting and, when the user
// already logged today, that entry's card.
type HomeView struct {
	Greeting string
	Today    *LogView
}

// Home builds the landing view for the signed-in user at the given moment.
// "Today" is the device's calendar date, not a 24-hour window.
func (s *MoodService) Home(ctx context.Context, userID string, now time.Time) (*HomeView, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("not signed in")
	}

	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading mood logs: %w", err)
	}

	view := &HomeView{Greeting: reconcile.Greeting(now)}

	today := reconcile.FindTodayLog(logs, now)
	if today == nil {
		return view, nil
	}

	defs, err := s.moods.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading mood definitions: %w", err)
	}
	view.Today = &LogView{
		Log:       *today,
		Mood:      reconcile.ResolveMoodInfo(defs, today.MoodRef()),
		DateLabel: reconcile.FormatRelativeDate(today.When().Time, now),
	}
	return view, nil
}

// History returns the user's log entries newest-first, each joined with its
// mood definition and the activities the entry selected. A log whose mood
// definition no longer exists still appears, carrying the fallback mood.
func (s *MoodService) History(ctx context.Context, userID string, now time.Time) ([]LogView, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("not signed in")
	}

	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading mood logs: %w", err)
	}
	defs, err := s.moods.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading mood definitions: %w", err)
	}
	acts, err := s.activities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	sorted := reconcile.SortLogsByDateDescending(logs)
	views := make([]LogView, 0, len(sorted))
	for i := range sorted {
		entry := &sorted[i]
		moodActs := reconcile.SuggestedActivitiesFor(acts, entry.MoodRef())
		views = append(views, LogView{
			Log:       *entry,
			Mood:      reconcile.ResolveMoodInfo(defs, entry.MoodRef()),
			DateLabel: reconcile.FormatRelativeDate(entry.When().Time, now),
			Selected:  reconcile.SelectedActivitiesFor(moodActs, entry),
		})
	}
	return views, nil
}

// LogMood records a mood entry for the user at the given moment. Logging
// twice on one day creates two records; the home card shows whichever the
// store returns first.
func (s *MoodService) LogMood(ctx context.Context, userID, moodRef, notes string, activityIDs []string, now time.Time) (*model.UserMoodLog, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("not signed in")
	}
	if moodRef == "" {
		return nil, apperror.ValidationFailed("mood", "please choose a mood")
	}

	entry, err := s.logs.Create(ctx, &model.UserMoodLog{
		UserRefs:   model.Refs(userID),
		MoodRefs:   model.Refs(moodRef),
		Notes:      strings.TrimSpace(notes),
		Activities: model.IDList(activityIDs),
		CreatedAt:  model.Timestamp{Time: now},
	})
	if err != nil {
		return nil, fmt.Errorf("saving mood log: %w", err)
	}

	s.logger.Info("mood logged",
		slog.String("logID", entry.ID),
		slog.String("moodRef", moodRef),
		slog.Int("activities", len(activityIDs)),
	)
	return entry, nil
}

// EditLog changes an existing entry's mood and notes in place. The original
// timestamp is untouched, so the entry keeps its position in history.
func (s *MoodService) EditLog(ctx context.Context, logID, moodRef, notes string) error {
	if logID == "" {
		return apperror.ValidationFailed("log", "log id is required")
	}
	if moodRef == "" {
		return apperror.ValidationFailed("mood", "please choose a mood")
	}
	return s.logs.Patch(ctx, logID, map[string]any{
		"mood_id": model.Refs(moodRef),
		"notes":   strings.TrimSpace(notes),
	})
}

// DeleteLog removes an entry permanently.
func (s *MoodService) DeleteLog(ctx context.Context, logID string) error {
	if logID == "" {
		return apperror.ValidationFailed("log", "log id is required")
	}
	return s.logs.Delete(ctx, logID)
}

// Suggestions returns the activities associated with a mood definition,
// server-filtered. An unknown mood yields an empty list, not an error.
func (s *MoodService) Suggestions(ctx context.Context, moodRef string) ([]model.Activity, error) {
	if moodRef == "" {
		return nil, nil
	}
	acts, err := s.activities.ListByMood(ctx, moodRef)
	if err != nil {
		return nil, fmt.Errorf("loading suggestions: %w", err)
	}
	return acts, nil
}

// Moods lists every shared mood definition.
func (s *MoodService) Moods(ctx context.Context) ([]model.MoodDefinition, error) {
	return s.moods.List(ctx)
}

// MoodChoices returns the definitions created by the given user, falling
// back to the full shared list when the user has created none. This feeds
// the pickers on the add-activity and log screens.
func (s *MoodService) MoodChoices(ctx context.Context, userID string) ([]model.MoodDefinition, error) {
	if userID != "" {
		own, err := s.moods.ListByCreator(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("loading own moods: %w", err)
		}
		if len(own) > 0 {
			return own, nil
		}
	}
	return s.moods.List(ctx)
}

// CreateMood adds a mood definition. Icon and color fall back to the stock
// pair when left empty, and the display id is assigned as one past the
// current maximum — advisory only, and racy across devices.
func (s *MoodService) CreateMood(ctx context.Context, userID, name, description, icon, color string) (*model.MoodDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if icon == "" {
		icon = reconcile.DefaultIcon
	}
	if color == "" {
		color = reconcile.DefaultColor
	}

	defs, err := s.moods.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading mood definitions: %w", err)
	}

	def := &model.MoodDefinition{
		MoodID:      reconcile.NextMoodNumericID(defs),
		Name:        name,
		Description: strings.TrimSpace(description),
		Icon:        icon,
		Color:       color,
	}
	if userID != "" {
		def.CreatedBy = model.Refs(userID)
	}

	created, err := s.moods.Create(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("saving mood definition: %w", err)
	}
	s.logger.Info("mood definition created",
		slog.String("moodID", created.ID),
		slog.String("name", created.Name),
	)
	return created, nil
}

// CreateActivity adds a suggestion linked to a mood definition.
func (s *MoodService) CreateActivity(ctx context.Context, moodRef, suggestion string) (*model.Activity, error) {
	suggestion = strings.TrimSpace(suggestion)
	if moodRef == "" {
		return nil, apperror.ValidationFailed("mood", "please choose a mood")
	}
	if suggestion == "" {
		return nil, apperror.ValidationFailed("suggestion", "suggestion is required")
	}

	acts, err := s.activities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	created, err := s.activities.Create(ctx, &model.Activity{
		NumericID:  reconcile.NextActivityNumericID(acts),
		Suggestion: suggestion,
		MoodRefs:   model.Refs(moodRef),
	})
	if err != nil {
		return nil, fmt.Errorf("saving activity: %w", err)
	}
	s.logger.Info("activity created",
		slog.String("activityID", created.ID),
		slog.String("moodRef", moodRef),
	)
	return created, nil
}
