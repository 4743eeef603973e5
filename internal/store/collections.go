package store

import (
	"context"

	"github.com/sakif/moodtrack/internal/model"
)

// Collection accessors. Each returns a thin typed wrapper over the shared
// request helpers; the wrappers carry no state beyond the client, so they
// are cheap to call per operation.

func (c *Client) Users() Users           { return usersCol{c} }
func (c *Client) Moods() Moods           { return moodsCol{c} }
func (c *Client) Activities() Activities { return activitiesCol{c} }
func (c *Client) Profiles() Profiles     { return profilesCol{c} }

// UserMoods is the current mood-log collection.
func (c *Client) UserMoods() Logs {
	return logsCol{c: c, path: "/usermoods", byUser: func(id string) Query {
		return ElemMatch("user_id", id)
	}}
}

// MoodLogs is the legacy mood-log collection. Older records live here and
// encode the owner as a plain userid string rather than a ref array.
func (c *Client) MoodLogs() Logs {
	return logsCol{c: c, path: "/moodlogs", byUser: func(id string) Query {
		return Eq("userid", id)
	}}
}

type usersCol struct{ c *Client }

func (u usersCol) GetByID(ctx context.Context, id string) (*model.User, error) {
	return getByID[model.User](ctx, u.c, "/users", "user", id)
}

func (u usersCol) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	return list[model.User](ctx, u.c, "/users", Eq("username", username))
}

func (u usersCol) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	return list[model.User](ctx, u.c, "/users", Eq("email", email))
}

func (u usersCol) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return create(ctx, u.c, "/users", user)
}

func (u usersCol) Update(ctx context.Context, id string, user *model.User) error {
	return put(ctx, u.c, "/users", id, user)
}

type moodsCol struct{ c *Client }

func (m moodsCol) List(ctx context.Context) ([]model.MoodDefinition, error) {
	return list[model.MoodDefinition](ctx, m.c, "/moods", nil)
}

func (m moodsCol) ListByCreator(ctx context.Context, userID string) ([]model.MoodDefinition, error) {
	return list[model.MoodDefinition](ctx, m.c, "/moods", ElemMatch("created_by", userID))
}

func (m moodsCol) GetByID(ctx context.Context, id string) (*model.MoodDefinition, error) {
	return getByID[model.MoodDefinition](ctx, m.c, "/moods", "mood", id)
}

func (m moodsCol) Create(ctx context.Context, def *model.MoodDefinition) (*model.MoodDefinition, error) {
	return create(ctx, m.c, "/moods", def)
}

func (m moodsCol) Update(ctx context.Context, id string, def *model.MoodDefinition) error {
	return put(ctx, m.c, "/moods", id, def)
}

func (m moodsCol) Delete(ctx context.Context, id string) error {
	return del(ctx, m.c, "/moods", id)
}

type activitiesCol struct{ c *Client }

func (a activitiesCol) List(ctx context.Context) ([]model.Activity, error) {
	return list[model.Activity](ctx, a.c, "/activities", nil)
}

func (a activitiesCol) ListByMood(ctx context.Context, moodRef string) ([]model.Activity, error) {
	return list[model.Activity](ctx, a.c, "/activities", ElemMatch("mood_id", moodRef))
}

func (a activitiesCol) Create(ctx context.Context, act *model.Activity) (*model.Activity, error) {
	return create(ctx, a.c, "/activities", act)
}

func (a activitiesCol) Delete(ctx context.Context, id string) error {
	return del(ctx, a.c, "/activities", id)
}

type logsCol struct {
	c      *Client
	path   string
	byUser func(userID string) Query
}

func (l logsCol) ListByUser(ctx context.Context, userID string) ([]model.UserMoodLog, error) {
	return list[model.UserMoodLog](ctx, l.c, l.path, l.byUser(userID))
}

func (l logsCol) Create(ctx context.Context, log *model.UserMoodLog) (*model.UserMoodLog, error) {
	return create(ctx, l.c, l.path, log)
}

func (l logsCol) Patch(ctx context.Context, id string, fields map[string]any) error {
	return patch(ctx, l.c, l.path, id, fields)
}

func (l logsCol) Delete(ctx context.Context, id string) error {
	return del(ctx, l.c, l.path, id)
}

type profilesCol struct{ c *Client }

func (p profilesCol) FindByUser(ctx context.Context, userID string) ([]model.Profile, error) {
	return list[model.Profile](ctx, p.c, "/profiles", ElemMatch("userid", userID))
}

func (p profilesCol) Create(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	return create(ctx, p.c, "/profiles", profile)
}

func (p profilesCol) Patch(ctx context.Context, id string, fields map[string]any) error {
	return patch(ctx, p.c, "/profiles", id, fields)
}
