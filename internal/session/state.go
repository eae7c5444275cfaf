// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// User is the profile of the signed-in account.
type User struct {
	// PID is the stable account identifier.
	PID   string `json:"pid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	// Verified is nil when the source did not say.
	Verified *bool `json:"is_verified,omitempty"`
}

// State is the observable session. The zero value is logged out.
type State struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	Token           string
}

// LoggedIn reports IsAuthenticated && User != nil.
func (s State) LoggedIn() bool {
	return s.IsAuthenticated && s.User != nil
}

// clone returns a copy that shares no pointers with s.
func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		if s.User.Verified != nil {
			v := *s.User.Verified
			u.Verified = &v
		}
		out.User = &u
	}
	return out
}

// Credentials are the result of an authentication exchange performed elsewhere,
// shaped like the backend's login response.
type Credentials struct {
	Token    string `json:"token"`
	PID      string `json:"pid"`
	Name     string `json:"name"`
	Verified bool   `json:"is_verified"`
}
