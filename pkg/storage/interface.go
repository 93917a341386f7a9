// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-elev.
//
// go-elev is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package storage provides an abstraction layer for the key-value
// record stores used by elev, with in-memory and file-based
// implementations. File records hold per-user authentication state
// and are shared with concurrent elev invocations, so the interface
// includes a locked read-modify-write primitive.
package storage

import (
	"io/fs"
)

// Backend defines the interface for record storage backends.
// All implementations must be safe for concurrent use.
type Backend interface {
	// Get retrieves the value for the given key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores the value for the given key with optional metadata.
	// If the key already exists, it will be overwritten.
	Put(key string, value []byte, opts *Options) error

	// Update applies fn to the current value of key under an
	// exclusive lock and stores the result. fn receives nil when the
	// key does not exist. The lock covers the whole read-modify-write
	// so concurrent invocations cannot interleave.
	Update(key string, fn UpdateFunc) error

	// Delete removes the key and its value from storage.
	// Returns ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns all keys with the given prefix, sorted.
	// If prefix is empty, all keys are returned.
	List(prefix string) ([]string, error)

	// Exists checks if a key exists in storage.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// UpdateFunc transforms a record value during Backend.Update. The
// returned bytes replace the stored value.
type UpdateFunc func(current []byte) ([]byte, error)

// Options contains optional parameters for storage operations.
type Options struct {
	// Permissions sets the file permissions for file-based storage
	Permissions fs.FileMode
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Permissions: 0600, // Read/write for owner only
	}
}
