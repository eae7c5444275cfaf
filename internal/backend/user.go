// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Current calls GET /api/auth/current with Authorization header.
// Unlike most lookups it is never cached: its whole purpose is to ask the
// backend whether the token is still good right now.
func (h *HTTP) Current(ctx context.Context, accessToken string) (*CurrentUser, error) {
	req, err := h.NewRequest(ctx, http.MethodGet, h.endpoints.Current, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := h.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError(resp)
	}

	var out CurrentUser
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &out, nil
}
