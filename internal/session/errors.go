// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	clierrors "rustatl/cli/internal/errors"
)

var (
	// ErrUnauthenticated is returned by FetchWithAuth when no token is held.
	ErrUnauthenticated = clierrors.New(clierrors.Unauthenticated, "no authentication token available")
	// ErrTokenRejected is returned by VerifyToken after the backend refused the token.
	ErrTokenRejected = clierrors.New(clierrors.TokenRejected, "token rejected by backend")
	// ErrStorageUnavailable is returned by Login when the selected backend is not configured.
	ErrStorageUnavailable = clierrors.New(clierrors.StorageUnavailable, "storage backend not configured")
)
