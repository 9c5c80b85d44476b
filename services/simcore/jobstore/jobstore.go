// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jobstore persists finished WorkResults behind a generated
// slug using an embedded BadgerDB instance.
//
// The full persisted schema (jobs/submissions/matches/blocks tables,
// §6 of the external interface) is owned by an external relational
// store in production; this package exists to give the HTTP layer
// somewhere durable to put a result between submit and read, and to
// exercise the project's embedded-KV dependency the way the journal
// in the trace service exercises it for agent state.
package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/parthenon-labs/simscan/services/simcore/coordinate"
)

// ErrNotFound is returned when a slug has no stored result.
var ErrNotFound = errors.New("jobstore: slug not found")

// Store wraps a BadgerDB instance keyed by job slug.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a BadgerDB instance rooted at
// dir. Pass an empty dir for an in-memory store, used by tests.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists result under a freshly generated slug and returns it.
func (s *Store) Save(result *coordinate.WorkResult) (string, error) {
	slug := uuid.New().String()
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal work result: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(slugKey(slug), data)
	})
	if err != nil {
		return "", fmt.Errorf("write job %s: %w", slug, err)
	}
	return slug, nil
}

// Load retrieves the WorkResult stored under slug, or ErrNotFound.
func (s *Store) Load(slug string) (*coordinate.WorkResult, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey(slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	var result coordinate.WorkResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", slug, err)
	}
	return &result, nil
}

func slugKey(slug string) []byte {
	return []byte("job:" + slug)
}
