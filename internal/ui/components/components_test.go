// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/styles"
)

func testTheme(width int) *styles.Theme {
	theme := styles.NewTheme()
	theme.SetSize(width, 30)
	return theme
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager_NewestFirstAndCapped(t *testing.T) {
	m := NewToastManager()
	for _, s := range []string{"one", "two", "three", "four"} {
		m.AddStatus(s)
	}
	toasts := m.Toasts()
	require.Len(t, toasts, 3)
	assert.Equal(t, "four", toasts[0].Message)
	assert.Equal(t, "two", toasts[2].Message)

	m.Dismiss()
	assert.Equal(t, "three", m.Toasts()[0].Message)
}

func TestToastManager_TickExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }

	m.AddSuccess("saved")
	m.AddError("failed")

	now = now.Add(DefaultToastDuration)
	assert.True(t, m.Tick())
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastKindError, toasts[0].Kind)

	now = now.Add(ErrorToastDuration)
	assert.False(t, m.Tick())
	assert.Empty(t, m.Toasts())
}

func TestRenderToast_ShowsIndicator(t *testing.T) {
	out := RenderToast(Toast{Message: "could not like", Kind: ToastKindError}, 80)
	assert.Contains(t, out, styles.StatusIndicators.Error)
	assert.Contains(t, out, "could not like")
	assert.Empty(t, RenderToastStack(nil, 80))
}

// =============================================================================
// CURSOR
// =============================================================================

func TestCursor_MoveAndClamp(t *testing.T) {
	var c Cursor
	c.Move(-1, 5)
	assert.Equal(t, 0, c.Index)
	c.Move(10, 5)
	assert.Equal(t, 4, c.Index)
	c.Clamp(2)
	assert.Equal(t, 1, c.Index)
	c.Clamp(0)
	assert.Equal(t, 0, c.Index)
}

func TestCursor_WindowFollowsSelection(t *testing.T) {
	c := Cursor{Index: 7}
	start, end := c.Window(3, 10)
	assert.Equal(t, 5, start)
	assert.Equal(t, 8, end)

	c.Index = 2
	start, end = c.Window(3, 10)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)

	start, end = c.Window(20, 4)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)
}

func TestRenderList(t *testing.T) {
	rows := []string{"a", "b", "c", "d"}
	c := Cursor{Index: 3}
	assert.Equal(t, "c\nd", RenderList(rows, &c, 2))
}

// =============================================================================
// RENDERING
// =============================================================================

func TestStatusBar_Render(t *testing.T) {
	theme := testTheme(100)
	out := StatusBar{User: "Alice Archer", Screen: "Feed", Connection: ConnLive, Hint: "? help"}.Render(theme, 100)
	assert.Contains(t, out, "Alice Archer")
	assert.Contains(t, out, "live")
	assert.Contains(t, out, "? help")

	out = StatusBar{}.Render(theme, 100)
	assert.Contains(t, out, "signed out")
}

func TestRenderTabs_NumbersOnWideLayouts(t *testing.T) {
	out := RenderTabs(testTheme(100), []string{"Feed", "Groups"}, 1)
	assert.Contains(t, out, "1 Feed")
	assert.Contains(t, out, "2 Groups")

	out = RenderTabs(testTheme(40), []string{"Feed", "Groups"}, 0)
	assert.NotContains(t, out, "1 Feed")
}

func TestRenderPostRow_LikeState(t *testing.T) {
	theme := testTheme(80)
	p := model.Post{
		ID:     "p1",
		Title:  "Showreel",
		Author: model.UserRef{User: model.User{ID: "u2", FullName: "Bob"}},
		Likes:  []string{"u1"},
	}
	now := time.Now()

	out := RenderPostRow(theme, p, "u1", now, 80, true, false)
	assert.Contains(t, out, "Showreel")
	assert.Contains(t, out, styles.HeartFull+" 1")

	out = RenderPostRow(theme, p, "u3", now, 80, false, true)
	assert.Contains(t, out, styles.HeartEmpty+" 1")
	assert.Contains(t, out, "…")
}

func TestRenderPostDetail_Comments(t *testing.T) {
	theme := testTheme(80)
	p := model.Post{
		Title:  "Casting",
		Author: model.UserRef{User: model.User{ID: "u2", FullName: "Bob"}},
		Comments: []model.Comment{
			{ID: "c1", Author: model.UserRef{User: model.User{FullName: "Carol"}}, Text: "Interested!"},
		},
	}
	out := RenderPostDetail(theme, p, "u1", "Two actors needed", time.Now(), 80, 0, false)
	assert.Contains(t, out, "Comments (1)")
	assert.Contains(t, out, "Interested!")
	assert.Contains(t, out, "Two actors needed")
}

func TestRenderMessage_MarksSelfAndLive(t *testing.T) {
	theme := testTheme(80)
	names := map[string]string{"u2": "Bob"}

	out := RenderMessage(theme, model.Message{ID: model.Confirmed("m1"), SenderID: "u1", Text: "hi"}, "u1", names, false, 80)
	assert.Contains(t, out, "you")
	assert.NotContains(t, out, "(live)")

	out = RenderMessage(theme, model.NewArrival("u2", "hey", time.Time{}), "u1", names, false, 80)
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "(live)")
	assert.True(t, strings.Contains(out, "hey"))
}

func TestMarkdown_DisabledPassesThrough(t *testing.T) {
	md := NewMarkdown(false)
	assert.Equal(t, "**bold**", md.Render("  **bold**  ", 80))
	assert.Equal(t, "", NewMarkdown(true).Render("   ", 80))
}
