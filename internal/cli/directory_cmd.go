// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// directory_cmd.go - user search, leaderboard, casting calls and profile.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// SEARCH
// =============================================================================

// HandleSearch finds users by name.
func HandleSearch(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	query := views.NormalizeQuery(JoinPositionalArgs(p, 0))
	if query == "" {
		return ErrMissingArgument("query", "ssfrontend search alice")
	}

	s := views.NewSearch(a.API, a.Log)
	if err := s.Mount(ctx); err != nil {
		return err
	}
	defer s.Unmount()
	if err := s.SetQuery(ctx, query); err != nil {
		return err
	}

	users := s.Items()
	return a.emit("search", users, func() {
		if len(users) == 0 {
			a.printf("No users match %q.\n", query)
			return
		}
		t := newTable("ID", "NAME", "ROLE", "SKILLS").limit(1, 28).limit(3, 40)
		for _, u := range users {
			t.add(u.ID, u.DisplayName(), u.Role, strings.Join(u.Skills, ", "))
		}
		t.render(a.out)
	})
}

// =============================================================================
// LEADERBOARD
// =============================================================================

// HandleLeaderboard ranks users, optionally by role.
func HandleLeaderboard(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	role := p.FlagOrDefault("role", a.Config.UI.DefaultRole)
	if !model.IsKnownRole(role) {
		return &ValidationError{
			Field:   "--role",
			Value:   role,
			Reason:  "unknown role",
			Example: strings.Join(model.Roles, ", "),
		}
	}

	lb := views.NewLeaderboard(a.API, role, a.Log)
	if err := lb.Mount(ctx); err != nil {
		return err
	}
	defer lb.Unmount()

	entries := lb.Items()
	return a.emit("leaderboard", entries, func() {
		a.printf("%s\n", TitleStyle.Render("Leaderboard · "+lb.Role()))
		if len(entries) == 0 {
			a.printf("Nobody ranked yet.\n")
			return
		}
		t := newTable("#", "NAME", "ROLE", "POSTS", "LIKES", "SCORE").limit(1, 28)
		for i, e := range entries {
			t.add(strconv.Itoa(i+1), e.FullName, e.Role,
				strconv.Itoa(e.TotalPosts), strconv.Itoa(e.TotalLikes),
				strconv.FormatFloat(e.EngagementScore, 'f', 1, 64))
		}
		t.render(a.out)
	})
}

// =============================================================================
// CASTING
// =============================================================================

const castingUsage = "ssfrontend casting [list|create --title T --type T --role-type R --location L --deadline YYYY-MM-DD --email E]"

// HandleCasting lists or publishes casting calls.
func HandleCasting(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "list":
		return castingList(ctx, a)
	case "create", "new":
		return castingCreate(ctx, a, p)
	default:
		return ErrUnknownSubcommand("casting", p.Subcommand(), castingUsage)
	}
}

func castingList(ctx context.Context, a *App) error {
	board := views.NewCastingBoard(a.API, a.Log)
	if err := board.Mount(ctx); err != nil {
		return err
	}
	defer board.Unmount()

	calls := board.Items()
	now := a.now()
	return a.emit("casting", calls, func() {
		if len(calls) == 0 {
			a.printf("No casting calls.\n")
			return
		}
		for i, c := range calls {
			if i > 0 {
				a.printf("\n")
			}
			status := SuccessStyle.Render("open")
			if !c.Open(now) {
				status = DimStyle.Render("closed")
			}
			a.printf("%s  %s  %s\n", TitleStyle.Render(c.ProjectTitle), status, DimStyle.Render(c.ID))
			a.printf("%s\n", RenderField("Project", c.ProjectType))
			a.printf("%s\n", RenderField("Role", c.RoleType))
			if c.Location != "" {
				a.printf("%s\n", RenderField("Location", c.Location))
			}
			if !c.ApplicationDeadline.IsZero() {
				a.printf("%s\n", RenderField("Deadline", c.ApplicationDeadline.Format("Jan 2, 2006")))
			}
			a.printf("%s\n", RenderField("Contact", c.ContactEmail))
			if c.RoleDescription != "" {
				a.printf("  %s\n", c.RoleDescription)
			}
		}
	})
}

func castingCreate(ctx context.Context, a *App, p *ArgParser) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	nc := api.NewCastingCall{
		ProjectTitle:    strings.TrimSpace(p.Flag("title")),
		ProjectType:     p.Flag("type"),
		RoleDescription: p.Flag("description"),
		RoleType:        p.Flag("role-type"),
		Location:        p.Flag("location"),
		ContactEmail:    p.Flag("email"),
	}
	if nc.ProjectTitle == "" {
		return ErrMissingArgument("--title", castingUsage)
	}
	if nc.ContactEmail == "" {
		return ErrMissingArgument("--email", castingUsage)
	}
	if raw := p.Flag("deadline"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return &ValidationError{Field: "--deadline", Value: raw, Reason: "expected a date", Example: "2026-12-31"}
		}
		if !d.After(a.now()) {
			return &ValidationError{Field: "--deadline", Value: raw, Reason: "deadline must be in the future"}
		}
		nc.ApplicationDeadline = d
	}

	call, err := a.API.CreateCastingCall(ctx, nc)
	if err != nil {
		return err
	}
	return a.emit("casting create", call, func() {
		a.printf("%s Published casting call %s\n", SuccessStyle.Render("[OK]"), call.ID)
	})
}

// =============================================================================
// PROFILE
// =============================================================================

// HandleProfile shows the signed-in user or updates the profile. Bio and
// skills are replaced as given; avatar and resume files are uploaded first
// and their URLs saved with the profile.
func HandleProfile(ctx context.Context, a *App, args Args) error {
	s, ok := a.Session.Current()
	if !ok {
		return views.ErrNotLoggedIn
	}
	p := NewArgParser(args.Raw)

	if !p.HasFlag("bio") && !p.HasFlag("skills") && !p.HasFlag("avatar") && !p.HasFlag("resume") {
		return HandleWhoami(ctx, a, args)
	}

	update := api.ProfileUpdate{
		Bio:    p.Flag("bio"),
		Skills: SplitList(p.Flag("skills")),
	}

	if path := p.Flag("avatar"); path != "" {
		if api.MediaTypeFor(path) != model.MediaPhoto {
			return &ValidationError{Field: "--avatar", Value: path, Reason: "avatar must be an image"}
		}
		url, err := uploadFile(path, func(up api.Upload) (string, error) { return a.API.UploadAvatar(ctx, up) })
		if err != nil {
			return err
		}
		update.ProfilePictureURL = url
	}
	if path := p.Flag("resume"); path != "" {
		url, err := uploadFile(path, func(up api.Upload) (string, error) { return a.API.UploadResume(ctx, up) })
		if err != nil {
			return err
		}
		update.ResumeURL = url
	}

	user, err := a.API.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	a.Log.Infow("profile updated", "user", s.UserID)
	return a.emit("profile", user, func() {
		a.printf("%s Profile updated\n", SuccessStyle.Render("[OK]"))
		if user.Bio != "" {
			a.printf("%s\n", RenderField("Bio", user.Bio))
		}
		if len(user.Skills) > 0 {
			a.printf("%s\n", RenderField("Skills", strings.Join(user.Skills, ", ")))
		}
		if user.ProfilePicture != "" {
			a.printf("%s\n", RenderField("Avatar", user.ProfilePicture))
		}
		if user.ResumeURL != "" {
			a.printf("%s\n", RenderField("Resume", user.ResumeURL))
		}
	})
}

func uploadFile(path string, send func(api.Upload) (string, error)) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return send(api.Upload{Name: filepath.Base(path), Reader: f})
}
