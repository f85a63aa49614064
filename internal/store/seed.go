// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import (
	"context"
	"encoding/json"
	"io"

	kinerr "github.com/kinship-dev/kinship/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Seed is a whole family tree in one importable document.
type Seed struct {
	DefaultPerson string        `json:"default_person"`
	People        []*Person     `json:"people"`
	Families      []*Family     `json:"families"`
	Events        []*Event      `json:"events"`
	Places        []*Place      `json:"places"`
	Citations     []*Citation   `json:"citations"`
	Sources       []*Source     `json:"sources"`
	Media         []*Media      `json:"media"`
	Repositories  []*Repository `json:"repositories"`
	Notes         []*Note       `json:"notes"`
	Tags          []*Tag        `json:"tags"`

	// Bookmarks holds bookmarked handles per kind name.
	Bookmarks map[string][]string `json:"bookmarks"`

	// Filters holds named filter definitions, kind name to filter name to a
	// raw rule spec. They are compiled by the query layer, not here.
	Filters map[string]map[string]json.RawMessage `json:"filters"`
}

// LoadSeed parses a YAML seed document. The YAML is bridged through JSON so
// the entity types keep a single set of wire tags.
func LoadSeed(r io.Reader) (*Seed, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "parsing seed document")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "normalizing seed document")
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "decoding seed document")
	}
	return &seed, nil
}

// Objects returns every entity in the seed in reference-friendly order
// (tags and leaves first, people last).
func (s *Seed) Objects() []Object {
	var objs []Object
	for _, o := range s.Tags {
		objs = append(objs, o)
	}
	for _, o := range s.Notes {
		objs = append(objs, o)
	}
	for _, o := range s.Repositories {
		objs = append(objs, o)
	}
	for _, o := range s.Media {
		objs = append(objs, o)
	}
	for _, o := range s.Sources {
		objs = append(objs, o)
	}
	for _, o := range s.Citations {
		objs = append(objs, o)
	}
	for _, o := range s.Places {
		objs = append(objs, o)
	}
	for _, o := range s.Events {
		objs = append(objs, o)
	}
	for _, o := range s.Families {
		objs = append(objs, o)
	}
	for _, o := range s.People {
		objs = append(objs, o)
	}
	return objs
}

// Apply writes the whole seed into a store.
func (s *Seed) Apply(ctx context.Context, dst Store) error {
	for _, obj := range s.Objects() {
		if err := dst.Put(ctx, obj); err != nil {
			return kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "importing entity",
				kinerr.FieldHandle(obj.ObjectHandle()), kinerr.FieldKind(string(obj.ObjectKind())))
		}
	}
	if s.DefaultPerson != "" {
		if err := dst.SetDefaultPerson(ctx, s.DefaultPerson); err != nil {
			return kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "setting default person",
				kinerr.FieldHandle(s.DefaultPerson))
		}
	}
	for name, handles := range s.Bookmarks {
		kind, err := ParseKind(name)
		if err != nil {
			return kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "importing bookmarks")
		}
		if err := dst.SetBookmarks(ctx, kind, handles); err != nil {
			return kinerr.Wrap(err, kinerr.CodeStoreImportInvalid, "importing bookmarks",
				kinerr.FieldKind(name))
		}
	}
	return nil
}
