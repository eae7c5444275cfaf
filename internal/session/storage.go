// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// Keys used identically in both storage backends.
const (
	KeyToken = "auth_token"
	KeyPID   = "user_pid"
	KeyName  = "user_name"
)

var storageKeys = []string{KeyToken, KeyPID, KeyName}

// Storage is a synchronous string key-value backend. Get returns "" with a nil
// error for absent keys, and Remove of an absent key succeeds.
//
// keychain.Manager (persistent) and sessionfile.File (ephemeral) implement it.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
