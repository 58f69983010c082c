// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// =============================================================================
// AUTH
// =============================================================================

func (b *Backend) login(w http.ResponseWriter, r *http.Request, _ string) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, body.Email) && body.Password == Password {
			tok := b.nextID("tok")
			b.tokens[tok] = u.ID
			writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": u})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "Invalid credentials")
}

// =============================================================================
// POSTS
// =============================================================================

func (b *Backend) listPosts(w http.ResponseWriter, _ *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Post, 0, len(b.posts))
	for _, p := range b.posts {
		out = append(out, clonePost(*p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getPost(w http.ResponseWriter, r *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, clonePost(*p))
}

func (b *Backend) createPost(w http.ResponseWriter, r *http.Request, caller string) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := &model.Post{
		ID:          b.nextID("p"),
		Author:      b.ref(caller),
		Title:       title,
		Description: r.FormValue("description"),
		Likes:       []string{},
		Comments:    []model.Comment{},
		CreatedAt:   b.now(),
	}
	if gid := r.FormValue("groupId"); gid != "" {
		g := b.findGroup(gid)
		if g == nil {
			writeError(w, http.StatusNotFound, "Group not found")
			return
		}
		if !g.IsMember(caller) {
			writeError(w, http.StatusForbidden, "Only members can post in this group")
			return
		}
		p.Group = &model.GroupRef{ID: g.ID, Name: g.Name, Admin: model.Ref(g.Admin.ID)}
	}
	if name, ok := readUpload(r, "file"); ok {
		p.MediaURL = "/uploads/" + name
		p.MediaType = r.FormValue("mediaType")
	}
	b.posts = append([]*model.Post{p}, b.posts...)
	writeJSON(w, http.StatusCreated, clonePost(*p))
}

func (b *Backend) updatePost(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		MediaURL    string `json:"mediaUrl"`
		MediaType   string `json:"mediaType"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if !b.canModifyPost(p, caller) {
		writeError(w, http.StatusForbidden, "User not authorized")
		return
	}
	p.Title, p.Description = body.Title, body.Description
	if body.MediaURL != "" {
		p.MediaURL, p.MediaType = body.MediaURL, body.MediaType
	}
	writeJSON(w, http.StatusOK, clonePost(*p))
}

func (b *Backend) deletePost(w http.ResponseWriter, r *http.Request, caller string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, p := range b.posts {
		if p.ID != id {
			continue
		}
		if !b.canModifyPost(p, caller) {
			writeError(w, http.StatusForbidden, "User not authorized")
			return
		}
		b.posts = append(b.posts[:i], b.posts[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post removed"})
		return
	}
	writeError(w, http.StatusNotFound, "Post not found")
}

// canModifyPost checks the post's author and the current admin of its group.
// Callers hold b.mu.
func (b *Backend) canModifyPost(p *model.Post, caller string) bool {
	if p.Author.ID == caller {
		return true
	}
	if p.Group == nil {
		return false
	}
	g := b.findGroup(p.Group.ID)
	return g != nil && g.IsAdmin(caller)
}

func (b *Backend) likePost(w http.ResponseWriter, r *http.Request, caller string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	p.SetLiked(caller, !p.IsLikedBy(caller))
	writeJSON(w, http.StatusOK, p.Likes)
}

func (b *Backend) addComment(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "Comment text is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	p.Comments = append(p.Comments, model.Comment{
		ID:        b.nextID("cm"),
		Author:    b.ref(caller),
		Text:      body.Text,
		CreatedAt: b.now(),
	})
	writeJSON(w, http.StatusCreated, p.Comments)
}

func (b *Backend) deleteComment(w http.ResponseWriter, r *http.Request, caller string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	cid := chi.URLParam(r, "commentId")
	for i, c := range p.Comments {
		if c.ID != cid {
			continue
		}
		if c.Author.ID != caller && !b.canModifyPost(p, caller) {
			writeError(w, http.StatusForbidden, "User not authorized")
			return
		}
		p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Comment removed"})
		return
	}
	writeError(w, http.StatusNotFound, "Comment not found")
}

// =============================================================================
// MESSAGES
// =============================================================================

func (b *Backend) listConversations(w http.ResponseWriter, r *http.Request, _ string) {
	userID := chi.URLParam(r, "userId")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Conversation{}
	for _, c := range b.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listMessages(w http.ResponseWriter, r *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.messages[chi.URLParam(r, "conversationId")]
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (b *Backend) createMessage(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		ConversationID string `json:"conversationId"`
		Sender         string `json:"sender"`
		Text           string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Sender != caller {
		writeError(w, http.StatusForbidden, "Sender mismatch")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m := model.Message{
		ID:             model.Confirmed(b.nextID("m")),
		ConversationID: body.ConversationID,
		SenderID:       caller,
		Text:           body.Text,
		CreatedAt:      b.now(),
	}
	b.messages[body.ConversationID] = append(b.messages[body.ConversationID], m)
	writeJSON(w, http.StatusOK, m)
}

// =============================================================================
// GROUPS
// =============================================================================

func (b *Backend) listGroups(w http.ResponseWriter, _ *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Group, 0, len(b.groups))
	for _, g := range b.groups {
		out = append(out, *g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getGroup(w http.ResponseWriter, r *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.findGroup(chi.URLParam(r, "id"))
	if g == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	writeJSON(w, http.StatusOK, *g)
}

func (b *Backend) listGroupPosts(w http.ResponseWriter, r *http.Request, _ string) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findGroup(id) == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	out := []model.Post{}
	for _, p := range b.posts {
		if p.Group != nil && p.Group.ID == id {
			out = append(out, clonePost(*p))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createGroup(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"isPrivate"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "Group name is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	g := &model.Group{
		ID:          b.nextID("g"),
		Name:        body.Name,
		Description: body.Description,
		IsPrivate:   body.IsPrivate,
		Admin:       b.ref(caller),
		Members:     []model.UserRef{b.ref(caller)},
		CreatedAt:   b.now(),
	}
	b.groups = append(b.groups, g)
	writeJSON(w, http.StatusCreated, *g)
}

func (b *Backend) deleteGroup(w http.ResponseWriter, r *http.Request, caller string) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.groups {
		if g.ID != id {
			continue
		}
		if !g.IsAdmin(caller) {
			writeError(w, http.StatusForbidden, "Only the group admin can delete the group")
			return
		}
		b.groups = append(b.groups[:i], b.groups[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
		return
	}
	writeError(w, http.StatusNotFound, "Group not found")
}

func (b *Backend) joinGroup(w http.ResponseWriter, r *http.Request, caller string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.findGroup(chi.URLParam(r, "id"))
	if g == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if g.IsMember(caller) {
		writeError(w, http.StatusBadRequest, "Already a member")
		return
	}
	g.Members = append(g.Members, b.ref(caller))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Joined group"})
}

func (b *Backend) leaveGroup(w http.ResponseWriter, r *http.Request, caller string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.findGroup(chi.URLParam(r, "id"))
	if g == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if g.IsAdmin(caller) {
		writeError(w, http.StatusBadRequest, "Admin cannot leave the group")
		return
	}
	if !removeMember(g, caller) {
		writeError(w, http.StatusBadRequest, "Not a member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Left group"})
}

func (b *Backend) removeMember(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		MemberID string `json:"memberId"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.findGroup(chi.URLParam(r, "id"))
	if g == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if !g.IsAdmin(caller) {
		writeError(w, http.StatusForbidden, "Only the group admin can remove members")
		return
	}
	if body.MemberID == g.Admin.ID {
		writeError(w, http.StatusBadRequest, "Admin cannot be removed")
		return
	}
	if !removeMember(g, body.MemberID) {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}
	writeJSON(w, http.StatusOK, *g)
}

func removeMember(g *model.Group, userID string) bool {
	for i, m := range g.Members {
		if m.ID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Backend) updateCover(w http.ResponseWriter, r *http.Request, caller string) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.findGroup(chi.URLParam(r, "id"))
	if g == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if !g.IsAdmin(caller) {
		writeError(w, http.StatusForbidden, "Only the group admin can change the cover")
		return
	}
	name, ok := readUpload(r, "coverImage")
	if !ok {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	g.CoverImageURL = "/uploads/" + name
	writeJSON(w, http.StatusOK, *g)
}

// =============================================================================
// USERS AND LISTINGS
// =============================================================================

func (b *Backend) searchUsers(w http.ResponseWriter, r *http.Request, _ string) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.User{}
	if q != "" {
		for _, id := range []string{Alice, Bob, Carol} {
			u := b.users[id]
			if strings.Contains(strings.ToLower(u.FullName), q) {
				out = append(out, u)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request, caller string) {
	var body struct {
		Bio               string   `json:"bio"`
		Skills            []string `json:"skills"`
		ProfilePictureURL string   `json:"profilePictureUrl"`
		ResumeURL         string   `json:"resumeUrl"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[caller]
	u.Bio, u.Skills = body.Bio, body.Skills
	if body.ProfilePictureURL != "" {
		u.ProfilePicture = body.ProfilePictureURL
	}
	if body.ResumeURL != "" {
		u.ResumeURL = body.ResumeURL
	}
	b.users[caller] = u
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) uploadAvatar(w http.ResponseWriter, r *http.Request, _ string) {
	b.handleUpload(w, r, "avatar", "profilePictureUrl")
}

func (b *Backend) uploadResume(w http.ResponseWriter, r *http.Request, _ string) {
	b.handleUpload(w, r, "resume", "resumeUrl")
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request, field, key string) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	name, ok := readUpload(r, field)
	if !ok {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{key: "/uploads/" + name})
}

func (b *Backend) getLeaderboard(w http.ResponseWriter, r *http.Request, _ string) {
	role := r.URL.Query().Get("role")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.LeaderboardEntry{}
	for _, e := range b.leaderboard {
		if role == "" || e.Role == role {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listCasting(w http.ResponseWriter, _ *http.Request, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]model.CastingCall{}, b.casting...))
}

func (b *Backend) createCasting(w http.ResponseWriter, r *http.Request, caller string) {
	var body model.CastingCall
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ProjectTitle) == "" {
		writeError(w, http.StatusBadRequest, "Project title is required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	body.ID = b.nextID("cc")
	body.PostedBy = b.ref(caller)
	if body.ApplicationDeadline.IsZero() {
		body.ApplicationDeadline = b.now().Add(30 * 24 * time.Hour)
	}
	b.casting = append([]model.CastingCall{body}, b.casting...)
	writeJSON(w, http.StatusCreated, body)
}

// readUpload drains the named multipart file and returns its base name.
func readUpload(r *http.Request, field string) (string, bool) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return "", false
	}
	defer f.Close()
	_, _ = io.Copy(io.Discard, f)
	name := filepath.Base(hdr.Filename)
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		if _, _, err := mime.ParseMediaType(ct); err != nil {
			return "", false
		}
	}
	return name, true
}
