package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/moodtrack/internal/apperror"
	"github.com/sakif/moodtrack/internal/model"
	"github.com/sakif/moodtrack/internal/reconcile"
	"github.com/sakif/moodtrack/internal/store"
)

// topMoodCount caps the "most frequent moods" list on the profile screen.
const topMoodCount = 2

// ProfileService backs the profile screen: the profile record itself plus
// the logging statistics shown under it.
type ProfileService struct {
	profiles store.Profiles
	moods    store.Moods
	logs     store.Logs
	validate *validator.Validate
	logger   *slog.Logger
}

// NewProfileService wires a ProfileService.
func NewProfileService(profiles store.Profiles, moods store.Moods, logs store.Logs, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		moods:    moods,
		logs:     logs,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetOrCreate returns the user's profile, creating an empty one on first
// view. Accounts registered before profiles existed, and accounts whose
// signup-time profile creation failed, get theirs here.
func (s *ProfileService) GetOrCreate(ctx context.Context, user *model.User) (*model.Profile, error) {
	if user == nil || user.ID == "" {
		return nil, apperror.Unauthorized("not signed in")
	}

	found, err := s.profiles.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if len(found) > 0 {
		return &found[0], nil
	}

	s.logger.Info("no profile found, creating one", slog.String("userID", user.ID))
	created, err := s.profiles.Create(ctx, &model.Profile{
		UserRefs: model.Refs(user.ID),
		FullName: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	return created, nil
}

// ProfileUpdate is the editable subset of a profile.
type ProfileUpdate struct {
	FullName  string `validate:"required"`
	Bio       string
	AvatarURL string `validate:"omitempty,url"`
}

// Update patches the profile record with the edited fields.
func (s *ProfileService) Update(ctx context.Context, profileID string, in ProfileUpdate) error {
	if profileID == "" {
		return apperror.ValidationFailed("profile", "profile id is required")
	}
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return s.profiles.Patch(ctx, profileID, map[string]any{
		"fullName":  in.FullName,
		"bio":       strings.TrimSpace(in.Bio),
		"avatarUrl": in.AvatarURL,
	})
}

// Stats are the aggregate numbers under the profile header.
type Stats struct {
	TotalLogs int
	Frequency []reconcile.MoodCount
	TopMoods  []reconcile.MoodCount
}

// Stats computes the user's logging totals and per-mood frequency. Logs
// whose mood definition no longer resolves still count, under the fallback
// (empty) name; only logs with no mood reference at all are left out of the
// frequency list.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*Stats, error) {
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

	freq := reconcile.ComputeMoodFrequency(logs, defs)
	return &Stats{
		TotalLogs: len(logs),
		Frequency: freq,
		TopMoods:  reconcile.TopMoods(freq, topMoodCount),
	}, nil
}
