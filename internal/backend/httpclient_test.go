// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent_Success(t *testing.T) {
	var gotAuth, gotUA, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/current", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get(RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"pid":"p1","name":"Ferris","email":"ferris@example.com"}`)
	}))
	defer srv.Close()

	h := New(srv.URL+"/", Endpoints{}, WithUserAgent("rustatl-cli/test"))
	u, err := h.Current(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, &CurrentUser{PID: "p1", Name: "Ferris", Email: "ferris@example.com"}, u)
	assert.Equal(t, "Bearer t1", gotAuth)
	assert.Equal(t, "rustatl-cli/test", gotUA)
	assert.Len(t, gotReqID, 36)
}

func TestCurrent_NonSuccessIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, DefaultEndpoints()).Current(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, IsRejected(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "unauthorized", se.Body)
}

func TestCurrent_DecodeErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	_, err := New(srv.URL, DefaultEndpoints()).Current(context.Background(), "t1")
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestCurrent_TransportErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, DefaultEndpoints(), WithTimeout(time.Second)).Current(context.Background(), "t1")
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestCustomCurrentEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/me" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"pid":"p2","name":"n2"}`)
	}))
	defer srv.Close()

	u, err := New(srv.URL, Endpoints{Current: "/v2/me"}).Current(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "p2", u.PID)
	assert.Empty(t, u.Email)
}

func TestResolve(t *testing.T) {
	h := New("http://localhost:5150/", Endpoints{})

	got, err := h.Resolve("/api/news")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5150/api/news", got)

	got, err = h.Resolve("https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", got)

	_, err = New("not a url", Endpoints{}).Resolve("/x")
	assert.Error(t, err)
}

func TestDo_KeepsCallerHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	h := New(srv.URL, Endpoints{})
	req, err := h.NewRequest(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "fixed")
	req.Header.Set("User-Agent", "mine")

	resp, err := h.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "fixed", got.Get(RequestIDHeader))
	assert.Equal(t, "mine", got.Get("User-Agent"))
}
