// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nvakumar/ssfrontend/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for the user and a bearer token. The backend
// answers either {"token", "user": {...}} or a flat user document carrying
// "token"; both are accepted.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, string, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		json:   loginRequest{Email: email, Password: password},
		public: true,
	}, &raw)
	if err != nil {
		return model.User{}, "", err
	}

	var nested struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return model.User{}, "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode login response", Cause: err}
	}
	user := nested.User
	if user == nil {
		user = &model.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			return model.User{}, "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode login response", Cause: err}
		}
	}
	if nested.Token == "" || user.ID == "" {
		return model.User{}, "", &ClientError{Type: ErrTypeInvalidResponse, Message: "login response missing token or user"}
	}
	return *user, nested.Token, nil
}
