// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// feed_cmd.go - feed, post, like and comment commands.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// FEED
// =============================================================================

// HandleFeed lists posts, either the main feed or one group's posts.
func HandleFeed(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	selfID := a.Session.UserID()

	var list *views.ListView[model.Post]
	if groupID := p.Flag("group"); groupID != "" {
		list = views.NewListView(func(ctx context.Context) ([]model.Post, error) {
			return a.API.ListGroupPosts(ctx, groupID)
		}, a.Log)
	} else {
		list = views.NewFeed(a.API, a.Session, a.Log).ListView
	}
	if err := list.Mount(ctx); err != nil {
		return err
	}
	defer list.Unmount()

	posts := list.Items()
	if n := p.FlagIntOrDefault("limit", 0); n > 0 && n < len(posts) {
		posts = posts[:n]
	}

	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, summarizePost(post, selfID))
	}
	return a.emit("feed", summaries, func() {
		if len(posts) == 0 {
			a.printf("No posts yet.\n")
			return
		}
		now := a.now()
		for i, post := range posts {
			if i > 0 {
				a.printf("\n")
			}
			writePostLine(a.out, post, selfID, now)
		}
	})
}

// =============================================================================
// POST
// =============================================================================

const postUsage = "ssfrontend post show|create|edit|delete ..."

// HandlePost dispatches post subcommands.
func HandlePost(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "show", "":
		if p.Positional(1) == "" {
			return ErrMissingArgument("post id", "ssfrontend post show <id>")
		}
		return postShow(ctx, a, p.Positional(1))
	case "create", "new":
		return postCreate(ctx, a, p)
	case "edit", "update":
		return postEdit(ctx, a, p)
	case "delete", "rm":
		return postDelete(ctx, a, p)
	default:
		return ErrUnknownSubcommand("post", p.Subcommand(), postUsage)
	}
}

// card fetches a post and wraps it in a PostCard.
func (a *App) card(ctx context.Context, postID string) (*views.PostCard, error) {
	post, err := a.API.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return views.NewPostCard(post, a.API, a.Session, a.Log), nil
}

func postShow(ctx context.Context, a *App, postID string) error {
	post, err := a.API.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	return a.emit("post show", post, func() {
		a.writePostDetail(a.out, post, a.Session.UserID())
	})
}

func postCreate(ctx context.Context, a *App, p *ArgParser) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	title := strings.TrimSpace(p.Flag("title"))
	if title == "" {
		return ErrMissingArgument("--title", `ssfrontend post create --title "Showreel" --media reel.mp4`)
	}

	np := api.NewPost{
		Title:       title,
		Description: p.Flag("description"),
		GroupID:     p.Flag("group"),
	}
	if path := p.Flag("media"); path != "" {
		if api.MediaTypeFor(path) == "" {
			return &ValidationError{Field: "--media", Value: path, Reason: "only images and videos can be attached"}
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open media: %w", err)
		}
		defer f.Close()
		np.Media = &api.Upload{Name: filepath.Base(path), Reader: f}
	}

	post, err := a.API.CreatePost(ctx, np)
	if err != nil {
		return err
	}
	a.Log.Infow("post created", "post", post.ID)
	return a.emit("post create", post, func() {
		a.printf("%s Created post %s\n", SuccessStyle.Render("[OK]"), post.ID)
	})
}

func postEdit(ctx context.Context, a *App, p *ArgParser) error {
	postID := p.Positional(1)
	if postID == "" {
		return ErrMissingArgument("post id", `ssfrontend post edit <id> --title "New title"`)
	}
	if !p.HasFlag("title") && !p.HasFlag("description") {
		return &ValidationError{Field: "post edit", Reason: "nothing to change", Example: "--title T or --description D"}
	}
	card, err := a.card(ctx, postID)
	if err != nil {
		return err
	}
	cur := card.Post()
	title := p.FlagOrDefault("title", cur.Title)
	desc := cur.Description
	if p.HasFlag("description") {
		desc = p.Flag("description")
	}
	if err := card.Update(ctx, title, desc); err != nil {
		return err
	}
	updated := card.Post()
	return a.emit("post edit", updated, func() {
		a.printf("%s Updated post %s\n", SuccessStyle.Render("[OK]"), updated.ID)
	})
}

func postDelete(ctx context.Context, a *App, p *ArgParser) error {
	postID := p.Positional(1)
	if postID == "" {
		return ErrMissingArgument("post id", "ssfrontend post delete <id> --confirm")
	}
	card, err := a.card(ctx, postID)
	if err != nil {
		return err
	}
	if !card.CanModify() {
		return views.ErrForbidden
	}
	if err := a.confirm(fmt.Sprintf("Delete post %q", card.Post().Title), p.BoolFlag("confirm")); err != nil {
		if isCancelled(err) {
			a.printf("Cancelled\n")
			return nil
		}
		return err
	}
	if err := card.Delete(ctx); err != nil {
		return err
	}
	return a.emit("post delete", map[string]string{"deleted": postID}, func() {
		a.printf("%s Deleted post %s\n", SuccessStyle.Render("[OK]"), postID)
	})
}

// =============================================================================
// LIKE
// =============================================================================

// HandleLike toggles the current user's like on a post.
func HandleLike(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	postID := p.Positional(0)
	if postID == "" {
		return ErrMissingArgument("post id", "ssfrontend like <postId>")
	}
	card, err := a.card(ctx, postID)
	if err != nil {
		return err
	}
	if err := card.ToggleLike(ctx); err != nil {
		return err
	}
	liked, count := card.Liked()
	return a.emit("like", LikeData{PostID: postID, Liked: liked, Likes: count}, func() {
		if liked {
			a.printf("%s Liked %q (%d)\n", LikedStyle.Render("♥"), card.Post().Title, count)
		} else {
			a.printf("♡ Unliked %q (%d)\n", card.Post().Title, count)
		}
	})
}

// =============================================================================
// COMMENT
// =============================================================================

const commentUsage = "ssfrontend comment add <postId> <text...> | delete <postId> <commentId>"

// HandleComment adds or deletes a comment.
func HandleComment(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	postID := p.Positional(1)

	switch p.Subcommand() {
	case "add":
		text := JoinPositionalArgs(p, 2)
		if postID == "" {
			return ErrMissingArgument("post id", commentUsage)
		}
		card, err := a.card(ctx, postID)
		if err != nil {
			return err
		}
		if err := card.SubmitComment(ctx, text); err != nil {
			return err
		}
		comments := card.Post().Comments
		return a.emit("comment add", comments, func() {
			a.printf("%s Comment added (%d total)\n", SuccessStyle.Render("[OK]"), len(comments))
		})

	case "delete", "rm":
		commentID := p.Positional(2)
		if postID == "" || commentID == "" {
			return ErrMissingArgument("post id and comment id", commentUsage)
		}
		card, err := a.card(ctx, postID)
		if err != nil {
			return err
		}
		if err := card.DeleteComment(ctx, commentID); err != nil {
			return err
		}
		return a.emit("comment delete", map[string]string{"deleted": commentID}, func() {
			a.printf("%s Comment deleted\n", SuccessStyle.Render("[OK]"))
		})

	default:
		return ErrUnknownSubcommand("comment", p.Subcommand(), commentUsage)
	}
}
