// Package service contains the business logic behind each screen flow.
//
// Services sit between the entry point and the store client:
//
//	CLI command → service (rules, composition) → store.* (remote collections)
//	                                           ↘ session.Store (local record)
//
// Services never touch HTTP or SQL, and every remote call is a single
// attempt — a failure propagates to the initiating flow, which tells the
// user and returns to an actionable state. Nothing here retries.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/moodtrack/internal/apperror"
	"github.com/sakif/moodtrack/internal/model"
	"github.com/sakif/moodtrack/internal/session"
	"github.com/sakif/moodtrack/internal/store"
)

// AuthService handles sign-up, sign-in, and the local session lifecycle.
type AuthService struct {
	users    store.Users
	profiles store.Profiles
	session  *session.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthService wires an AuthService. Called from the composition root.
func NewAuthService(users store.Users, profiles store.Profiles, sess *session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		profiles: profiles,
		session:  sess,
		validate: validator.New(),
		logger:   logger,
	}
}

// registerInput carries the validation rules for sign-up. The minimum
// password length matches what the app has always enforced.
type registerInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Register creates an account, its empty profile, and signs the new user in.
//
// DUPLICATE PRE-CHECK:
// Username and email uniqueness is checked by querying before creating.
// The backing store does not enforce uniqueness, so two clients registering
// the same name at the same moment can both pass the check — an accepted
// race for this app's usage, same as numeric-id assignment.
//
// PARTIAL FAILURE:
// User creation and profile creation are two independent calls with no
// compensation. If the profile call fails the account still exists and the
// sign-in proceeds; the profile screen creates the profile lazily on first
// view instead.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirm string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	in := registerInput{Username: username, Email: email, Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if password != confirm {
		return nil, apperror.ValidationFailed("password", "passwords do not match")
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if len(existing) > 0 {
		return nil, apperror.Conflict("username", "username is already taken")
	}

	existing, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if len(existing) > 0 {
		return nil, apperror.Conflict("email", "email is already in use")
	}

	user, err := s.users.Create(ctx, &model.User{
		Username: username,
		Email:    email,
		Password: password,
		Active:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	if _, err := s.profiles.Create(ctx, &model.Profile{
		UserRefs: model.Refs(user.ID),
		FullName: username,
	}); err != nil {
		// The account exists; the profile gets created lazily later.
		s.logger.Warn("creating profile at signup failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.session.SetCurrentUser(ctx, user); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return user, nil
}

// Login fetches the account by username and compares the submitted password
// against the stored one in cleartext — that is the contract the users
// collection has with every client of this database. See the design notes
// before "fixing" it here.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "username and password are required")
	}

	found, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if len(found) == 0 {
		return nil, apperror.Unauthorized("username not found")
	}

	user := found[0]
	if user.Password != password {
		return nil, apperror.Unauthorized("incorrect password")
	}

	if err := s.session.SetCurrentUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return &user, nil
}

// Logout clears the local session. Signing out while signed out is fine.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// CurrentUser returns the locally stored user, or nil when signed out.
func (s *AuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	return s.session.CurrentUser(ctx)
}

// Refresh re-fetches the signed-in user from the store and re-persists the
// session, picking up changes made elsewhere.
func (s *AuthService) Refresh(ctx context.Context) (*model.User, error) {
	current, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.Unauthorized("not signed in")
	}

	fresh, err := s.users.GetByID(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("refreshing user %s: %w", current.ID, err)
	}
	if err := s.session.SetCurrentUser(ctx, fresh); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return fresh, nil
}

// UpdateUser writes the given record for the signed-in user and keeps the
// local session in step.
func (s *AuthService) UpdateUser(ctx context.Context, updated *model.User) error {
	current, err := s.session.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return apperror.Unauthorized("not signed in")
	}

	updated.ID = current.ID
	if err := s.users.Update(ctx, current.ID, updated); err != nil {
		return fmt.Errorf("updating user %s: %w", current.ID, err)
	}
	return s.session.SetCurrentUser(ctx, updated)
}

// validationError converts the first validator violation into the app's
// validation error shape.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		switch verrs[0].Tag() {
		case "required":
			return apperror.ValidationFailed(field, field+" is required")
		case "email":
			return apperror.ValidationFailed(field, "email address is not valid")
		case "min":
			return apperror.ValidationFailed(field, field+" must be at least "+verrs[0].Param()+" characters")
		case "url":
			return apperror.ValidationFailed(field, field+" must be a valid URL")
		default:
			return apperror.ValidationFailed(field, field+" is invalid")
		}
	}
	return apperror.ValidationFailed("", "invalid input")
}
