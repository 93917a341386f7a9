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

// Package file provides a file-based implementation of the
// storage.Backend interface. Records live as individual files under a
// root directory. Update holds an advisory exclusive lock (flock) on
// the record file for the whole read-modify-write, so concurrent elev
// invocations for the same user cannot interleave their counter and
// lockout updates.
package file

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/jeremyhahn/go-elev/pkg/storage"
)

const (
	// Default directory permissions (owner rwx only)
	defaultDirPerms = 0700

	// Record file permissions (owner rw only)
	defaultPerms = 0600
)

// FileStorage is a file-based implementation of storage.Backend.
type FileStorage struct {
	mu      sync.RWMutex
	rootDir string
}

var _ storage.Backend = (*FileStorage)(nil)

// New creates a new FileStorage instance with the specified root
// directory. The root directory is created with 0700 permissions if
// it doesn't exist.
func New(rootDir string) (*FileStorage, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("file storage: root directory cannot be empty")
	}

	if err := os.MkdirAll(rootDir, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file storage: failed to create root directory: %w", err)
	}

	return &FileStorage{
		rootDir: rootDir,
	}, nil
}

// Get retrieves the value for the given key.
// Returns storage.ErrNotFound if the key does not exist.
func (f *FileStorage) Get(key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	filePath, err := f.keyToPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file storage: failed to read key %q: %w", key, err)
	}
	// Update leaves an empty file behind when the record is absent.
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

// Put stores the value for the given key.
// If the key already exists, it will be overwritten.
func (f *FileStorage) Put(key string, value []byte, opts *storage.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	filePath, err := f.keyToPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: failed to create directory for key %q: %w", key, err)
	}

	perms := filePermissions(opts)
	if err := os.WriteFile(filePath, value, perms); err != nil {
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	return nil
}

// Update applies fn to the record under an advisory exclusive lock.
// The record file is created (empty) if it does not exist; an empty
// file is presented to fn as an absent record.
func (f *FileStorage) Update(key string, fn storage.UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	filePath, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: failed to create directory for key %q: %w", key, err)
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, defaultPerms)
	if err != nil {
		return fmt.Errorf("file storage: failed to open key %q: %w", key, err)
	}
	defer func() { _ = file.Close() }()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("file storage: failed to lock key %q: %w", key, err)
	}
	defer func() { _ = unix.Flock(int(file.Fd()), unix.LOCK_UN) }()

	current, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("file storage: failed to read key %q: %w", key, err)
	}
	if len(current) == 0 {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("file storage: failed to truncate key %q: %w", key, err)
	}
	if _, err := file.WriteAt(next, 0); err != nil {
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes the key and its value from storage.
// Returns storage.ErrNotFound if the key does not exist.
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	filePath, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("file storage: failed to stat key %q: %w", key, err)
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("file storage: failed to delete key %q: %w", key, err)
	}
	return nil
}

// List returns all keys with the given prefix in sorted order.
func (f *FileStorage) List(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0)
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key, err := filepath.Rel(f.rootDir, path)
		if err != nil {
			return fmt.Errorf("file storage: failed to convert path to key: %w", err)
		}
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file storage: failed to list keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Exists checks if a key exists in storage.
func (f *FileStorage) Exists(key string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	filePath, err := f.keyToPath(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("file storage: failed to check key %q: %w", key, err)
	}
	return info.Size() > 0, nil
}

// Close releases any resources held by the backend.
// For file storage, this is a no-op but provided for interface compliance.
func (f *FileStorage) Close() error {
	return nil
}

// keyToPath converts a storage key to a file path, rejecting keys
// that would escape the root directory.
func (f *FileStorage) keyToPath(key string) (string, error) {
	if err := validateStorageKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.rootDir, key), nil
}

// validateStorageKey allows path separators for organization but
// blocks traversal out of the root directory.
func validateStorageKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", storage.ErrInvalidKey)
	}
	if strings.Contains(key, "\x00") {
		return fmt.Errorf("%w: key contains null byte", storage.ErrInvalidKey)
	}
	if filepath.IsAbs(key) {
		return fmt.Errorf("%w: key cannot be an absolute path", storage.ErrInvalidKey)
	}
	cleaned := filepath.Clean(key)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: key contains path traversal attempt", storage.ErrInvalidKey)
	}
	return nil
}

// filePermissions determines record file permissions.
func filePermissions(opts *storage.Options) fs.FileMode {
	if opts == nil {
		opts = storage.DefaultOptions()
	}
	if opts.Permissions != 0 {
		return opts.Permissions
	}
	return defaultPerms
}
