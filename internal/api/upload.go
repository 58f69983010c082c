// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// Upload is a file attached to a multipart request.
type Upload struct {
	Name   string
	Reader io.Reader
}

// MediaTypeFor maps a file name to the backend's media type label, or "" when
// the type is neither image nor video.
func MediaTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi", ".m4v":
		return model.MediaVideo
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return model.MediaPhoto
	}
	// Fall back to the platform's MIME table for anything else.
	ct := mime.TypeByExtension(ext)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return model.MediaPhoto
	case strings.HasPrefix(ct, "video/"):
		return model.MediaVideo
	}
	return ""
}

type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) file(field string, up *Upload) {
	if f.err != nil || up == nil || up.Reader == nil {
		return
	}
	part, err := f.w.CreateFormFile(field, filepath.Base(up.Name))
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, up.Reader)
}

// request finishes the form and returns it as a request body.
func (f *multipartForm) request(method, path string) (request, error) {
	if f.err == nil {
		f.err = f.w.Close()
	}
	if f.err != nil {
		return request{}, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: fmt.Errorf("multipart: %w", f.err)}
	}
	return request{
		method:      method,
		path:        path,
		body:        &f.buf,
		contentType: f.w.FormDataContentType(),
	}, nil
}
