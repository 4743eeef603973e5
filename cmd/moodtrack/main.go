// Package main is the moodtrack command-line client.
//
// Its job is composition: load configuration, build the store client, the
// local session store, and the services, then dispatch one subcommand. All
// behavior lives in the internal packages; main only parses flags and
// formats output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/moodtrack/internal/config"
	"github.com/sakif/moodtrack/internal/model"
	"github.com/sakif/moodtrack/internal/service"
	"github.com/sakif/moodtrack/internal/session"
	"github.com/sakif/moodtrack/internal/store"
)

// app bundles the wired services for the command handlers.
type app struct {
	auth    *service.AuthService
	mood    *service.MoodService
	profile *service.ProfileService
	out     *os.File
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

func commands() []command {
	return []command{
		{"register", "register -username NAME -email EMAIL -password PASS -confirm PASS", cmdRegister},
		{"login", "login -username NAME -password PASS", cmdLogin},
		{"logout", "logout", cmdLogout},
		{"whoami", "whoami", cmdWhoami},
		{"refresh", "refresh", cmdRefresh},
		{"home", "home", cmdHome},
		{"log", "log -mood MOOD_ID [-notes TEXT] [-activities ID,ID]", cmdLog},
		{"history", "history", cmdHistory},
		{"edit", "edit -id LOG_ID -mood MOOD_ID [-notes TEXT]", cmdEdit},
		{"delete", "delete -id LOG_ID", cmdDelete},
		{"moods", "moods [-mine]", cmdMoods},
		{"suggest", "suggest -mood MOOD_ID", cmdSuggest},
		{"add-mood", "add-mood -name NAME [-desc TEXT] [-icon ICON] [-color HEX]", cmdAddMood},
		{"add-activity", "add-activity -mood MOOD_ID -text SUGGESTION", cmdAddActivity},
		{"profile", "profile", cmdProfile},
		{"profile-edit", "profile-edit -name FULLNAME [-bio TEXT] [-avatar URL]", cmdProfileEdit},
		{"stats", "stats", cmdStats},
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "moodtrack: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	if dir := filepath.Dir(cfg.SessionPath); dir != "." && cfg.SessionPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("creating session directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	sess, err := session.New(cfg.SessionPath)
	if err != nil {
		logger.Error("opening session store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sess.Close()

	client, err := store.New(store.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		logger.Error("building store client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	a := &app{
		auth:    service.NewAuthService(client.Users(), client.Profiles(), sess, logger),
		mood:    service.NewMoodService(client.Moods(), client.Activities(), client.UserMoods(), logger),
		profile: service.NewProfileService(client.Profiles(), client.Moods(), client.UserMoods(), logger),
		out:     os.Stdout,
	}

	for _, c := range commands() {
		if c.name == name {
			if err := c.run(context.Background(), a, args); err != nil {
				fmt.Fprintf(os.Stderr, "moodtrack: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Fprintf(os.Stderr, "moodtrack: unknown command %q\n\n", name)
	printUsage(os.Stderr)
	os.Exit(2)
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: moodtrack <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// requireUser loads the signed-in user or fails the command.
func requireUser(ctx context.Context, a *app) (*model.User, error) {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not signed in — run `moodtrack login` first")
	}
	return user, nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password again")
	fs.Parse(args)

	user, err := a.auth.Register(ctx, *username, *email, *password, *confirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are signed in.\n", user.Username)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	user, err := a.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", user.Username)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", user.Username, user.Email, user.ID)
	return nil
}

func cmdRefresh(ctx context.Context, a *app, _ []string) error {
	user, err := a.auth.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Refreshed account data for %s.\n", user.Username)
	return nil
}

func cmdHome(ctx context.Context, a *app, _ []string) error {
	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	view, err := a.mood.Home(ctx, user.ID, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s, %s!\n", view.Greeting, user.Username)
	if view.Today == nil {
		fmt.Fprintln(a.out, "You haven't logged your mood today.")
		return nil
	}
	fmt.Fprintf(a.out, "Today you felt %s (%s)\n", moodName(view.Today.Mood.Name), view.Today.DateLabel)
	if view.Today.Log.Notes != "" {
		fmt.Fprintf(a.out, "Notes: %s\n", view.Today.Log.Notes)
	}
	return nil
}

func cmdLog(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	mood := fs.String("mood", "", "mood definition id")
	notes := fs.String("notes", "", "optional notes")
	activities := fs.String("activities", "", "comma-separated activity ids")
	fs.Parse(args)

	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}

	var ids []string
	if *activities != "" {
		ids = model.SplitIDs(*activities)
	}
	entry, err := a.mood.LogMood(ctx, user.ID, *mood, *notes, ids, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged (entry %s).\n", entry.ID)
	return nil
}

func cmdHistory(ctx context.Context, a *app, _ []string) error {
	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	views, err := a.mood.History(ctx, user.ID, time.Now())
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No mood logs yet.")
		return nil
	}
	for _, v := range views {
		fmt.Fprintf(a.out, "%s  %-12s %s", v.Log.ID, moodName(v.Mood.Name), v.DateLabel)
		if len(v.Selected) > 0 {
			names := make([]string, len(v.Selected))
			for i, act := range v.Selected {
				names[i] = act.Suggestion
			}
			fmt.Fprintf(a.out, "  [%s]", strings.Join(names, ", "))
		}
		if v.Log.Notes != "" {
			fmt.Fprintf(a.out, "  — %s", v.Log.Notes)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "log entry id")
	mood := fs.String("mood", "", "mood definition id")
	notes := fs.String("notes", "", "replacement notes")
	fs.Parse(args)

	if _, err := requireUser(ctx, a); err != nil {
		return err
	}
	if err := a.mood.EditLog(ctx, *id, *mood, *notes); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated.")
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "log entry id")
	fs.Parse(args)

	if _, err := requireUser(ctx, a); err != nil {
		return err
	}
	if err := a.mood.DeleteLog(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func cmdMoods(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("moods", flag.ExitOnError)
	mine := fs.Bool("mine", false, "prefer moods you created")
	fs.Parse(args)

	var (
		defs []model.MoodDefinition
		err  error
	)
	if *mine {
		user, uerr := requireUser(ctx, a)
		if uerr != nil {
			return uerr
		}
		defs, err = a.mood.MoodChoices(ctx, user.ID)
	} else {
		defs, err = a.mood.Moods(ctx)
	}
	if err != nil {
		return err
	}
	for _, d := range defs {
		fmt.Fprintf(a.out, "%s  #%d %-12s %s\n", d.ID, d.MoodID, d.Name, d.Description)
	}
	return nil
}

func cmdSuggest(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	mood := fs.String("mood", "", "mood definition id")
	fs.Parse(args)

	acts, err := a.mood.Suggestions(ctx, *mood)
	if err != nil {
		return err
	}
	if len(acts) == 0 {
		fmt.Fprintln(a.out, "No suggestions for this mood.")
		return nil
	}
	for _, act := range acts {
		fmt.Fprintf(a.out, "%s  %s\n", act.ID, act.Suggestion)
	}
	return nil
}

func cmdAddMood(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add-mood", flag.ExitOnError)
	name := fs.String("name", "", "mood name")
	desc := fs.String("desc", "", "mood description")
	icon := fs.String("icon", "", "icon name")
	color := fs.String("color", "", "hex color")
	fs.Parse(args)

	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	created, err := a.mood.CreateMood(ctx, user.ID, *name, *desc, *icon, *color)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created mood %q (id %s).\n", created.Name, created.ID)
	return nil
}

func cmdAddActivity(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add-activity", flag.ExitOnError)
	mood := fs.String("mood", "", "mood definition id")
	text := fs.String("text", "", "activity suggestion")
	fs.Parse(args)

	if _, err := requireUser(ctx, a); err != nil {
		return err
	}
	created, err := a.mood.CreateActivity(ctx, *mood, *text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created suggestion %q (id %s).\n", created.Suggestion, created.ID)
	return nil
}

func cmdProfile(ctx context.Context, a *app, _ []string) error {
	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	p, err := a.profile.GetOrCreate(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (@%s)\n", p.FullName, user.Username)
	if p.Bio != "" {
		fmt.Fprintln(a.out, p.Bio)
	}
	if p.AvatarURL != "" {
		fmt.Fprintf(a.out, "Avatar: %s\n", p.AvatarURL)
	}
	return nil
}

func cmdProfileEdit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile-edit", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	bio := fs.String("bio", "", "short bio")
	avatar := fs.String("avatar", "", "avatar URL")
	fs.Parse(args)

	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	p, err := a.profile.GetOrCreate(ctx, user)
	if err != nil {
		return err
	}
	update := service.ProfileUpdate{FullName: *name, Bio: *bio, AvatarURL: *avatar}
	if update.FullName == "" {
		update.FullName = p.FullName
	}
	if err := a.profile.Update(ctx, p.ID, update); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

func cmdStats(ctx context.Context, a *app, _ []string) error {
	user, err := requireUser(ctx, a)
	if err != nil {
		return err
	}
	stats, err := a.profile.Stats(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total logs: %d\n", stats.TotalLogs)
	if len(stats.TopMoods) > 0 {
		fmt.Fprintln(a.out, "Most frequent:")
		for _, m := range stats.TopMoods {
			fmt.Fprintf(a.out, "  %-12s ×%d\n", moodName(m.Name), m.Count)
		}
	}
	if len(stats.Frequency) > 0 {
		fmt.Fprintln(a.out, "All moods:")
		for _, m := range stats.Frequency {
			fmt.Fprintf(a.out, "  %-12s ×%d\n", moodName(m.Name), m.Count)
		}
	}
	return nil
}

// moodName substitutes a readable placeholder for entries whose mood
// definition no longer exists.
func moodName(name string) string {
	if name == "" {
		return "(unknown)"
	}
	return name
}
