// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command table, global flag parsing and dispatch.

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is a top-level command.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdFeed
	CmdPost
	CmdLike
	CmdComment
	CmdGroups
	CmdSearch
	CmdLeaderboard
	CmdCasting
	CmdProfile
	CmdConversations
	CmdChat
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:           "tui",
	CmdLogin:         "login",
	CmdLogout:        "logout",
	CmdWhoami:        "whoami",
	CmdFeed:          "feed",
	CmdPost:          "post",
	CmdLike:          "like",
	CmdComment:       "comment",
	CmdGroups:        "groups",
	CmdSearch:        "search",
	CmdLeaderboard:   "leaderboard",
	CmdCasting:       "casting",
	CmdProfile:       "profile",
	CmdConversations: "conversations",
	CmdChat:          "chat",
	CmdConfig:        "config",
	CmdVersion:       "version",
	CmdHelp:          "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// NeedsApp reports whether the command talks to the backend or the credential
// store. version, help and config run without one.
func (c Command) NeedsApp() bool {
	switch c {
	case CmdVersion, CmdHelp, CmdConfig, CmdUnknown:
		return false
	}
	return true
}

// Args holds global flags and the arguments following the command.
type Args struct {
	JSON       bool
	Quiet      bool
	Verbose    bool
	ConfigPath string

	// Name is the command word as typed, kept for error messages.
	Name string
	// Raw holds everything after the command word.
	Raw []string
}

const usageText = `ssfrontend - terminal client for the ssfrontend social network

Usage:
  ssfrontend                         Start the TUI (default)
  ssfrontend <command> [options]

Account:
  login [--email E] [--password-stdin]
                                     Log in and remember the session
  logout                             Forget the stored session
  whoami                             Show the current user
  profile [--bio B] [--skills a,b] [--avatar FILE] [--resume FILE]
                                     Show or update your profile

Posts:
  feed [--group ID] [--limit N]      List posts, newest first
  post show <id>                     Show a post with comments
  post create --title T [--description D] [--group ID] [--media FILE]
  post edit <id> [--title T] [--description D]
  post delete <id> [--confirm]
  like <postId>                      Toggle your like on a post
  comment add <postId> <text...>     Comment on a post
  comment delete <postId> <commentId>

Groups:
  groups                             List groups
  groups show <id>                   Show a group and its posts
  groups create --name N [--description D] [--private]
  groups join <id>
  groups leave <id>
  groups remove-member <id> <userId> (admin only)
  groups cover <id> <file>           (admin only)
  groups delete <id> [--confirm]     (admin only)

People:
  search <query...>                  Find users by name
  leaderboard [--role R]             Top users, optionally by role
  casting                            List casting calls
  casting create --title T --type T --role-type R --location L
                 --deadline YYYY-MM-DD --email E [--description D]

Messages:
  conversations                      List your conversations
  chat <conversationId>              Open a live chat (type /quit to leave)

Other:
  config show|get <key>|set <key> <value>|path|keys
  version
  help

Global flags:
  --json             Machine readable output
  -q, --quiet        Suppress status messages
  -v, --verbose      Debug logging
  --config FILE      Use FILE instead of ~/.ssfrontend/config.toml

Environment:
  SSF_HOME, SSF_API_URL, SSF_SOCKET_URL, SSF_LOG_LEVEL, SSF_STORE_BACKEND,
  SSF_STORE_ENCRYPT, SSF_STORE_PASSPHRASE (see "config keys")
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Parse splits argv (without the program name) into a command and its args.
// Global flags may appear anywhere.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch strings.ToLower(remaining[0]) {
	case "tui":
		return CmdTUI, args
	case "login":
		return CmdLogin, args
	case "logout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "feed", "posts":
		return CmdFeed, args
	case "post":
		return CmdPost, args
	case "like":
		return CmdLike, args
	case "comment", "comments":
		return CmdComment, args
	case "groups", "group":
		return CmdGroups, args
	case "search":
		return CmdSearch, args
	case "leaderboard", "top":
		return CmdLeaderboard, args
	case "casting", "casting-calls":
		return CmdCasting, args
	case "profile":
		return CmdProfile, args
	case "conversations", "inbox":
		return CmdConversations, args
	case "chat":
		return CmdChat, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

func parseGlobalFlags(argv []string) ([]string, Args) {
	var (
		remaining []string
		args      Args
	)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			remaining = append(remaining, argv[i:]...)
			return remaining, args
		case arg == "--json":
			args.JSON = true
		case arg == "-q", arg == "--quiet":
			args.Quiet = true
		case arg == "-v", arg == "--verbose":
			args.Verbose = true
		case arg == "--config" && i+1 < len(argv):
			i++
			args.ConfigPath = argv[i]
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes cmd against app. CmdTUI, CmdConfig, CmdVersion and CmdHelp
// are handled by the caller.
func Run(ctx context.Context, app *App, cmd Command, args Args) error {
	switch cmd {
	case CmdLogin:
		return HandleLogin(ctx, app, args)
	case CmdLogout:
		return HandleLogout(ctx, app, args)
	case CmdWhoami:
		return HandleWhoami(ctx, app, args)
	case CmdFeed:
		return HandleFeed(ctx, app, args)
	case CmdPost:
		return HandlePost(ctx, app, args)
	case CmdLike:
		return HandleLike(ctx, app, args)
	case CmdComment:
		return HandleComment(ctx, app, args)
	case CmdGroups:
		return HandleGroups(ctx, app, args)
	case CmdSearch:
		return HandleSearch(ctx, app, args)
	case CmdLeaderboard:
		return HandleLeaderboard(ctx, app, args)
	case CmdCasting:
		return HandleCasting(ctx, app, args)
	case CmdProfile:
		return HandleProfile(ctx, app, args)
	case CmdConversations:
		return HandleConversations(ctx, app, args)
	case CmdChat:
		return HandleChat(ctx, app, args)
	}
	return &ValidationError{Field: "command", Value: args.Name, Reason: "unknown command", Example: "ssfrontend help"}
}

// HandleVersion prints build information.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(w)
	}
	fmt.Fprintf(w, "ssfrontend %s\n", Version)
	fmt.Fprintf(w, "  Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:     %s\n", runtime.Version())
	return nil
}
