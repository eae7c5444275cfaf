// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !unix

package xdg

import "os"

// Ownership is not exposed through FileInfo here; the temp dir is per-user.
func ownedByCurrentUser(os.FileInfo) bool { return true }
