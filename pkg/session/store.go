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

// Package session implements the per-invocation authentication
// session: proof-of-authentication timeout, failed-attempt counting,
// and lockout, backed by a per-user record persisted across
// invocations.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jeremyhahn/go-elev/pkg/logging"
	"github.com/jeremyhahn/go-elev/pkg/storage"
)

// record is the persisted per-user state. All updates to it go
// through the backend's locked read-modify-write, so concurrent
// invocations cannot lose failure counts or lockout decisions.
type record struct {
	// LastProofUnix is the epoch second of the last successful
	// credential verification. Zero means no proof exists.
	LastProofUnix int64 `json:"last_proof_unix,omitempty"`

	// FailedAttempts is the cumulative failed verification count
	// since the last success.
	FailedAttempts int `json:"failed_attempts,omitempty"`

	// LockoutUntilUnix is the epoch second the lockout window ends.
	// Zero means no lockout was ever triggered.
	LockoutUntilUnix int64 `json:"lockout_until_unix,omitempty"`
}

// Store reads and writes per-user session records through a
// storage.Backend. Record keys are "auth-<username>", matching the
// legacy timestamp file naming.
type Store struct {
	backend storage.Backend
	logger  *logging.Logger
}

// NewStore creates a session store over the given backend.
func NewStore(backend storage.Backend, logger *logging.Logger) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("session: backend cannot be nil")
	}
	return &Store{
		backend: backend,
		logger:  logger,
	}, nil
}

// Load returns the persisted record for username, or a zero record
// when none exists.
func (s *Store) Load(username string) (record, error) {
	data, err := s.backend.Get(s.key(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return record{}, nil
		}
		return record{}, fmt.Errorf("session: failed to load record for %q: %w", username, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return record{}, fmt.Errorf("session: corrupt record for %q: %w", username, err)
	}
	return rec, nil
}

// Update applies fn to the persisted record under the backend's
// exclusive lock and returns the resulting record.
func (s *Store) Update(username string, fn func(record) record) (record, error) {
	var out record
	err := s.backend.Update(s.key(username), func(current []byte) ([]byte, error) {
		rec, err := decodeRecord(current)
		if err != nil {
			// A corrupt record is replaced rather than preserved; the
			// user simply re-authenticates.
			s.logger.Warnf("session: resetting corrupt record for %q: %v", username, err)
			rec = record{}
		}
		out = fn(rec)
		return json.Marshal(out)
	})
	if err != nil {
		return record{}, fmt.Errorf("session: failed to update record for %q: %w", username, err)
	}
	return out, nil
}

// Clear removes the persisted record for username. Clearing a record
// that does not exist is not an error.
func (s *Store) Clear(username string) error {
	err := s.backend.Delete(s.key(username))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("session: failed to clear record for %q: %w", username, err)
	}
	return nil
}

func (s *Store) key(username string) string {
	return "auth-" + username
}

// decodeRecord parses a persisted record. Legacy records hold a bare
// integer, the epoch second of the last proof; those load as a
// proof-time-only record.
func decodeRecord(data []byte) (record, error) {
	if len(data) == 0 {
		return record{}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var rec record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return record{}, err
		}
		return rec, nil
	}

	ts, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return record{}, fmt.Errorf("not a session record: %q", trimmed)
	}
	return record{LastProofUnix: ts}, nil
}
