// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// groups_cmd.go - group listing, detail and membership commands.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/views"
)

const groupsUsage = "ssfrontend groups [show|create|join|leave|remove-member|cover|delete] ..."

// GroupData is the payload of "groups show --json".
type GroupData struct {
	Group   model.Group   `json:"group"`
	IsAdmin bool          `json:"is_admin"`
	Member  bool          `json:"is_member"`
	Posts   []PostSummary `json:"posts"`
}

// HandleGroups dispatches group subcommands. Without one it lists groups.
func HandleGroups(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()
	if sub == "" || sub == "list" {
		return groupsList(ctx, a)
	}
	if sub == "create" {
		return groupsCreate(ctx, a, p)
	}

	groupID := p.Positional(1)
	if groupID == "" {
		return ErrMissingArgument("group id", fmt.Sprintf("ssfrontend groups %s <id>", sub))
	}

	switch sub {
	case "show":
		return groupsShow(ctx, a, groupID)
	case "join", "leave", "remove-member", "delete":
		return groupsAction(ctx, a, p, sub, groupID)
	case "cover":
		return groupsCover(ctx, a, groupID, p.Positional(2))
	default:
		return ErrUnknownSubcommand("groups", sub, groupsUsage)
	}
}

func groupsList(ctx context.Context, a *App) error {
	list := views.NewGroupList(a.API, a.Log)
	if err := list.Mount(ctx); err != nil {
		return err
	}
	defer list.Unmount()

	groups := list.Items()
	selfID := a.Session.UserID()
	return a.emit("groups", groups, func() {
		if len(groups) == 0 {
			a.printf("No groups yet.\n")
			return
		}
		t := newTable("ID", "NAME", "MEMBERS", "VISIBILITY", "").limit(1, 32)
		for _, g := range groups {
			mark := ""
			switch {
			case g.IsAdmin(selfID):
				mark = "admin"
			case g.IsMember(selfID):
				mark = "member"
			}
			t.add(g.ID, g.Name, strconv.Itoa(g.MemberCount()), g.Visibility(), mark)
		}
		t.render(a.out)
	})
}

func groupsCreate(ctx context.Context, a *App, p *ArgParser) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	name := strings.TrimSpace(p.Flag("name"))
	if name == "" {
		return ErrMissingArgument("--name", `ssfrontend groups create --name "Indie Film"`)
	}
	g, err := a.API.CreateGroup(ctx, api.NewGroup{
		Name:        name,
		Description: p.Flag("description"),
		IsPrivate:   p.BoolFlag("private"),
	})
	if err != nil {
		return err
	}
	return a.emit("groups create", g, func() {
		a.printf("%s Created group %s (%s)\n", SuccessStyle.Render("[OK]"), g.Name, g.ID)
	})
}

func groupsShow(ctx context.Context, a *App, groupID string) error {
	detail := views.NewGroupDetail(groupID, a.API, a.Session, a.Log)
	if err := detail.Mount(ctx); err != nil {
		return err
	}
	defer detail.Unmount()

	g := detail.State().Group
	selfID := a.Session.UserID()
	posts := detail.Posts.Items()

	data := GroupData{Group: g, IsAdmin: detail.IsAdmin(), Member: detail.IsMember()}
	for _, p := range posts {
		data.Posts = append(data.Posts, summarizePost(p, selfID))
	}

	return a.emit("groups show", data, func() {
		a.printf("%s\n", TitleStyle.Render(g.Name))
		a.printf("%s\n", RenderField("ID", g.ID))
		a.printf("%s\n", RenderField("Admin", g.Admin.DisplayName()))
		a.printf("%s\n", RenderField("Visibility", g.Visibility()))
		a.printf("%s\n", RenderField("Members", strconv.Itoa(g.MemberCount())))
		switch {
		case data.IsAdmin:
			a.printf("%s\n", RenderField("You", "admin"))
		case data.Member:
			a.printf("%s\n", RenderField("You", "member"))
		}
		if g.Description != "" {
			a.printf("\n%s\n", a.description(g.Description))
		}

		a.printf("%s\n", SectionStyle.Render("Members"))
		for _, m := range g.Members {
			a.printf("  %s %s\n", m.DisplayName(), DimStyle.Render(m.ID))
		}

		a.printf("%s\n", SectionStyle.Render(fmt.Sprintf("Posts (%d)", len(posts))))
		now := a.now()
		for _, p := range posts {
			writePostLine(a.out, p, selfID, now)
		}
	})
}

// groupsAction runs a membership action through GroupDetail so permission
// checks match the TUI.
func groupsAction(ctx context.Context, a *App, p *ArgParser, sub, groupID string) error {
	detail := views.NewGroupDetail(groupID, a.API, a.Session, a.Log)
	detail.Open(ctx)
	defer detail.Unmount()
	if err := detail.Reload(ctx); err != nil {
		return err
	}
	name := detail.State().Group.Name

	var (
		err  error
		done string
	)
	switch sub {
	case "join":
		err, done = detail.Join(ctx), "Joined "+name
	case "leave":
		err, done = detail.Leave(ctx), "Left "+name
	case "remove-member":
		memberID := p.Positional(2)
		if memberID == "" {
			return ErrMissingArgument("member id", "ssfrontend groups remove-member <groupId> <userId>")
		}
		err, done = detail.RemoveMember(ctx, memberID), "Removed "+memberID+" from "+name
	case "delete":
		if !detail.IsAdmin() {
			return views.ErrForbidden
		}
		if cerr := a.confirm(fmt.Sprintf("Delete group %q", name), p.BoolFlag("confirm")); cerr != nil {
			if isCancelled(cerr) {
				a.printf("Cancelled\n")
				return nil
			}
			return cerr
		}
		err, done = detail.Delete(ctx), "Deleted "+name
	}
	if err != nil {
		return err
	}

	st := detail.State()
	return a.emit("groups "+sub, st.Group, func() {
		a.printf("%s %s\n", SuccessStyle.Render("[OK]"), done)
	})
}

func groupsCover(ctx context.Context, a *App, groupID, path string) error {
	if path == "" {
		return ErrMissingArgument("image file", "ssfrontend groups cover <id> cover.jpg")
	}
	if api.MediaTypeFor(path) != model.MediaPhoto {
		return &ValidationError{Field: "cover", Value: path, Reason: "cover must be an image"}
	}
	detail := views.NewGroupDetail(groupID, a.API, a.Session, a.Log)
	detail.Open(ctx)
	defer detail.Unmount()
	if err := detail.Reload(ctx); err != nil {
		return err
	}
	if !detail.IsAdmin() {
		return views.ErrForbidden
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open cover image: %w", err)
	}
	defer f.Close()

	g, err := a.API.UpdateGroupCover(ctx, groupID, api.Upload{Name: filepath.Base(path), Reader: f})
	if err != nil {
		return err
	}
	return a.emit("groups cover", g, func() {
		a.printf("%s Cover updated: %s\n", SuccessStyle.Render("[OK]"), g.CoverImageURL)
	})
}
