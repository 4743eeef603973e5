// Package store is the client for the hosted document database.
//
// The backing service exposes one REST endpoint per collection (/users,
// /moods, /activities, /usermoods, /profiles, /moodlogs), each supporting
// list, filtered list (a JSON query in the q parameter), get-by-id, create,
// update, patch, and delete. Authentication is a static API key sent as the
// x-apikey header on every request — there is no per-user token.
//
// FAILURE CONTRACT (single attempt, no retry):
// Every operation makes exactly one HTTP attempt within a fixed timeout and
// maps failures onto the apperror taxonomy: network/timeout →
// ErrUnavailable, 401 → ErrUnauthorized, 429 → ErrRateLimited, 404 on a
// get-by-id → ErrNotFound, any other non-2xx → ErrUnavailable with the
// original status preserved. Callers treat all of these uniformly as "data
// unavailable now" and re-enable their controls.
//
// Consumers depend on the per-collection interfaces below, not on *Client,
// so service tests swap in hand-written fakes the same way the services
// themselves never see HTTP.
package store

import (
	"context"

	"github.com/sakif/moodtrack/internal/model"
)

// Users is the /users collection. Username and email lookups exist for the
// login flow and the signup duplicate pre-check; the pre-check is advisory
// only (two clients can still race past it — the service does not enforce
// uniqueness).
type Users interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) ([]model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Update(ctx context.Context, id string, user *model.User) error
}

// Moods is the /moods collection of shared mood definitions.
type Moods interface {
	List(ctx context.Context) ([]model.MoodDefinition, error)
	ListByCreator(ctx context.Context, userID string) ([]model.MoodDefinition, error)
	GetByID(ctx context.Context, id string) (*model.MoodDefinition, error)
	Create(ctx context.Context, def *model.MoodDefinition) (*model.MoodDefinition, error)
	Update(ctx context.Context, id string, def *model.MoodDefinition) error
	Delete(ctx context.Context, id string) error
}

// Activities is the /activities collection of shared suggestions.
type Activities interface {
	List(ctx context.Context) ([]model.Activity, error)
	ListByMood(ctx context.Context, moodRef string) ([]model.Activity, error)
	Create(ctx context.Context, act *model.Activity) (*model.Activity, error)
	Delete(ctx context.Context, id string) error
}

// Logs is a collection of user mood log entries. Two collections share this
// shape: /usermoods (the current write path) and /moodlogs (the legacy
// one); they differ only in endpoint and in how the owning user is encoded
// in filter queries.
type Logs interface {
	ListByUser(ctx context.Context, userID string) ([]model.UserMoodLog, error)
	Create(ctx context.Context, log *model.UserMoodLog) (*model.UserMoodLog, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Profiles is the /profiles collection.
type Profiles interface {
	FindByUser(ctx context.Context, userID string) ([]model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
}
