// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the
// rustatl web backend. It defines the API contract the session store depends on:
// resolving the current user for a bearer token and sending arbitrary requests.
package backend

import (
	"context"
	"net/http"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Current resolves the user behind accessToken. A non-2xx answer is
	// returned as *StatusError; anything else is a transport or decode failure.
	Current(ctx context.Context, accessToken string) (*CurrentUser, error)
	// Do sends an already prepared request.
	Do(req *http.Request) (*http.Response, error)
}

// CurrentUser is the body of a successful current-session lookup.
type CurrentUser struct {
	PID   string `json:"pid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Endpoints contains REST API endpoint paths.
type Endpoints struct {
	Current string `json:"current"` // e.g., "/api/auth/current"
}

// DefaultEndpoints returns the paths served by the rustatl backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{Current: "/api/auth/current"}
}
