// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import (
	"context"
	"sort"
	"sync"
)

// memoryStore is the in-memory backend. It keeps a forward reference index
// per object so backlinks stay correct when an object is re-imported.
type memoryStore struct {
	mu            sync.RWMutex
	objects       map[Kind]map[string]Object
	outbound      map[string]map[Kind][]string
	inbound       map[string]map[Kind]map[string]struct{}
	bookmarks     map[Kind][]string
	defaultPerson string
}

// NewMemory creates an empty in-memory store.
func NewMemory() Store {
	s := &memoryStore{
		objects:   map[Kind]map[string]Object{},
		outbound:  map[string]map[Kind][]string{},
		inbound:   map[string]map[Kind]map[string]struct{}{},
		bookmarks: map[Kind][]string{},
	}
	for _, k := range Kinds() {
		s.objects[k] = map[string]Object{}
	}
	return s
}

func (s *memoryStore) Get(_ context.Context, kind Kind, handle string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[kind][handle]
	if !ok {
		return nil, ErrNotFound
	}
	return obj, nil
}

func (s *memoryStore) List(_ context.Context, kind Kind) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byHandle := s.objects[kind]
	handles := make([]string, 0, len(byHandle))
	for h := range byHandle {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	objs := make([]Object, 0, len(handles))
	for _, h := range handles {
		objs = append(objs, byHandle[h])
	}
	return objs, nil
}

func (s *memoryStore) Backlinks(_ context.Context, handle string) (map[Kind][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := map[Kind][]string{}
	for kind, referrers := range s.inbound[handle] {
		if len(referrers) == 0 {
			continue
		}
		handles := make([]string, 0, len(referrers))
		for h := range referrers {
			handles = append(handles, h)
		}
		sort.Strings(handles)
		links[kind] = handles
	}
	return links, nil
}

func (s *memoryStore) Summary(_ context.Context) (*TreeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[Kind]int{}
	for kind, byHandle := range s.objects {
		counts[kind] = len(byHandle)
	}
	return &TreeSummary{DefaultPerson: s.defaultPerson, Counts: counts}, nil
}

func (s *memoryStore) Surnames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, obj := range s.objects[KindPerson] {
		name := obj.(*Person).PrimaryName.PrimarySurname()
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *memoryStore) Put(_ context.Context, obj Object) error {
	handle := obj.ObjectHandle()
	if handle == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unlink(handle)
	s.objects[obj.ObjectKind()][handle] = obj

	refs := References(obj)
	s.outbound[handle] = refs
	kind := obj.ObjectKind()
	for _, targets := range refs {
		for _, target := range targets {
			byKind, ok := s.inbound[target]
			if !ok {
				byKind = map[Kind]map[string]struct{}{}
				s.inbound[target] = byKind
			}
			if byKind[kind] == nil {
				byKind[kind] = map[string]struct{}{}
			}
			byKind[kind][handle] = struct{}{}
		}
	}
	return nil
}

func (s *memoryStore) Bookmarks(_ context.Context, kind Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.bookmarks[kind]...), nil
}

func (s *memoryStore) SetBookmarks(_ context.Context, kind Kind, handles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[kind] = append([]string(nil), handles...)
	return nil
}

func (s *memoryStore) SetDefaultPerson(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle != "" {
		if _, ok := s.objects[KindPerson][handle]; !ok {
			return ErrNotFound
		}
	}
	s.defaultPerson = handle
	return nil
}

func (s *memoryStore) Close() error { return nil }

// unlink removes the old reverse-index entries of an object. Caller holds mu.
func (s *memoryStore) unlink(handle string) {
	old, ok := s.outbound[handle]
	if !ok {
		return
	}
	for _, targets := range old {
		for _, target := range targets {
			for _, referrers := range s.inbound[target] {
				delete(referrers, handle)
			}
		}
	}
	delete(s.outbound, handle)
}
