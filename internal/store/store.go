// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import "context"

// EntityStore is the read API the query pipeline consumes. Implementations
// must be safe for concurrent readers; the pipeline never writes through it.
type EntityStore interface {
	// Get returns the entity with the given handle, or ErrNotFound.
	Get(ctx context.Context, kind Kind, handle string) (Object, error)

	// List returns every entity of a kind, ordered by handle ascending.
	List(ctx context.Context, kind Kind) ([]Object, error)

	// Backlinks returns the handles of entities referencing the given handle,
	// grouped by the referrer's kind.
	Backlinks(ctx context.Context, handle string) (map[Kind][]string, error)

	// Summary reports tree-level metadata (entity counts, default person).
	Summary(ctx context.Context) (*TreeSummary, error)

	// Surnames returns the distinct primary surnames of all people, sorted.
	Surnames(ctx context.Context) ([]string, error)

	// Bookmarks returns the bookmarked handles of a kind, in stored order.
	Bookmarks(ctx context.Context, kind Kind) ([]string, error)

	Close() error
}

// EntityWriter is the write API used by the importer, never by the pipeline.
type EntityWriter interface {
	Put(ctx context.Context, obj Object) error
	SetDefaultPerson(ctx context.Context, handle string) error
	SetBookmarks(ctx context.Context, kind Kind, handles []string) error
}

// Store combines the read and write halves of a backend.
type Store interface {
	EntityStore
	EntityWriter
}
