package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/moodtrack/internal/apperror"
	"github.com/sakif/moodtrack/internal/model"
	"github.com/sakif/moodtrack/internal/session"
)

// Hand-written in-memory fakes for the store interfaces. The services only
// see the interfaces, so these stand in for the HTTP client without any
// network. Each fake has a failWith hook to simulate a store outage.

type mockUsers struct {
	users    map[string]*model.User
	nextID   int
	failWith error
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[string]*model.User)}
}

func (m *mockUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (m *mockUsers) FindByUsername(_ context.Context, username string) ([]model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.User
	for _, u := range m.users {
		if u.Username == username {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUsers) FindByEmail(_ context.Context, email string) ([]model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.User
	for _, u := range m.users {
		if u.Email == email {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	stored := *user
	stored.ID = fmt.Sprintf("user-%d", m.nextID)
	m.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *mockUsers) Update(_ context.Context, id string, user *model.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	stored := *user
	stored.ID = id
	m.users[id] = &stored
	return nil
}

type mockMoods struct {
	defs     []model.MoodDefinition
	nextID   int
	failWith error
}

func (m *mockMoods) List(_ context.Context) ([]model.MoodDefinition, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]model.MoodDefinition(nil), m.defs...), nil
}

func (m *mockMoods) ListByCreator(_ context.Context, userID string) ([]model.MoodDefinition, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.MoodDefinition
	for _, d := range m.defs {
		if d.CreatedBy.Contains(userID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockMoods) GetByID(_ context.Context, id string) (*model.MoodDefinition, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.defs {
		if m.defs[i].ID == id {
			out := m.defs[i]
			return &out, nil
		}
	}
	return nil, apperror.NotFound("mood", id)
}

func (m *mockMoods) Create(_ context.Context, def *model.MoodDefinition) (*model.MoodDefinition, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	stored := *def
	stored.ID = fmt.Sprintf("mood-%d", m.nextID)
	m.defs = append(m.defs, stored)
	out := stored
	return &out, nil
}

func (m *mockMoods) Update(_ context.Context, id string, def *model.MoodDefinition) error {
	for i := range m.defs {
		if m.defs[i].ID == id {
			stored := *def
			stored.ID = id
			m.defs[i] = stored
			return nil
		}
	}
	return apperror.NotFound("mood", id)
}

func (m *mockMoods) Delete(_ context.Context, id string) error {
	for i := range m.defs {
		if m.defs[i].ID == id {
			m.defs = append(m.defs[:i], m.defs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("mood", id)
}

type mockActivities struct {
	acts     []model.Activity
	nextID   int
	failWith error
}

func (m *mockActivities) List(_ context.Context) ([]model.Activity, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]model.Activity(nil), m.acts...), nil
}

func (m *mockActivities) ListByMood(_ context.Context, moodRef string) ([]model.Activity, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.Activity
	for _, a := range m.acts {
		if a.MoodRefs.Contains(moodRef) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivities) Create(_ context.Context, act *model.Activity) (*model.Activity, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	stored := *act
	stored.ID = fmt.Sprintf("act-%d", m.nextID)
	m.acts = append(m.acts, stored)
	out := stored
	return &out, nil
}

func (m *mockActivities) Delete(_ context.Context, id string) error {
	for i := range m.acts {
		if m.acts[i].ID == id {
			m.acts = append(m.acts[:i], m.acts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("activity", id)
}

type mockLogs struct {
	logs     []model.UserMoodLog
	nextID   int
	failWith error
	patched  map[string]map[string]any
}

func (m *mockLogs) ListByUser(_ context.Context, userID string) ([]model.UserMoodLog, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.UserMoodLog
	for _, l := range m.logs {
		if l.UserRefs.Contains(userID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLogs) Create(_ context.Context, log *model.UserMoodLog) (*model.UserMoodLog, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	stored := *log
	stored.ID = fmt.Sprintf("log-%d", m.nextID)
	m.logs = append(m.logs, stored)
	out := stored
	return &out, nil
}

func (m *mockLogs) Patch(_ context.Context, id string, fields map[string]any) error {
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.logs {
		if m.logs[i].ID == id {
			if m.patched == nil {
				m.patched = make(map[string]map[string]any)
			}
			m.patched[id] = fields
			return nil
		}
	}
	return apperror.NotFound("log", id)
}

func (m *mockLogs) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("log", id)
}

type mockProfiles struct {
	profiles []model.Profile
	nextID   int
	failWith error
	patched  map[string]map[string]any
}

func (m *mockProfiles) FindByUser(_ context.Context, userID string) ([]model.Profile, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.Profile
	for _, p := range m.profiles {
		if p.UserRefs.Contains(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProfiles) Create(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	stored := *profile
	stored.ID = fmt.Sprintf("profile-%d", m.nextID)
	m.profiles = append(m.profiles, stored)
	out := stored
	return &out, nil
}

func (m *mockProfiles) Patch(_ context.Context, id string, fields map[string]any) error {
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			if m.patched == nil {
				m.patched = make(map[string]map[string]any)
			}
			m.patched[id] = fields
			return nil
		}
	}
	return apperror.NotFound("profile", id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestSession opens a throwaway in-memory session store.
func newTestSession(t *testing.T) *session.Store {
	t.Helper()
	sess, err := session.New(":memory:")
	if err != nil {
		t.Fatalf("opening session store: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}
