// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"encoding/json"

	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// ExtendAll selects every reference field of the kind.
const ExtendAll = "all"

// ExtendBacklinks resolves the record's backlink handles into objects. It is
// only honored when backlinks are requested alongside it.
const ExtendBacklinks = "backlinks"

// objectToMap shapes an entity the way it appears on the wire.
func objectToMap(obj store.Object) (map[string]any, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeServerInternalFailure, "encode object")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeServerInternalFailure, "decode object")
	}
	return m, nil
}

// resolveHandles loads the given handles in order, dropping ones that no
// longer resolve.
func resolveHandles(ec *evalContext, kind store.Kind, handles []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(handles))
	for _, handle := range handles {
		obj, err := ec.store.Get(ec.ctx, kind, handle)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		m, err := objectToMap(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func resolveHandle(ec *evalContext, kind store.Kind, handle string) (map[string]any, bool, error) {
	if handle == "" {
		return nil, false, nil
	}
	obj, err := ec.store.Get(ec.ctx, kind, handle)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	m, err := objectToMap(obj)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func refHandles(refs []store.EventRef) []string {
	handles := make([]string, len(refs))
	for i, r := range refs {
		handles[i] = r.Ref
	}
	return handles
}

// extendField resolves one reference field into its group of objects. The
// bool result reports whether the group should appear at all; scalar groups
// are omitted when the referenced object is gone.
type extendField struct {
	group   string
	resolve func(ec *evalContext, obj store.Object) (any, bool, error)
}

func listField(group string, kind store.Kind, get func(store.Object) []string) extendField {
	return extendField{group: group, resolve: func(ec *evalContext, obj store.Object) (any, bool, error) {
		out, err := resolveHandles(ec, kind, get(obj))
		return out, err == nil, err
	}}
}

func scalarField(group string, kind store.Kind, get func(store.Object) string) extendField {
	return extendField{group: group, resolve: func(ec *evalContext, obj store.Object) (any, bool, error) {
		return resolveHandle(ec, kind, get(obj))
	}}
}

var extendTables = map[store.Kind]map[string]extendField{
	store.KindPerson: {
		"citation_list": listField("citations", store.KindCitation, func(o store.Object) []string { return o.(*store.Person).CitationList }),
		"event_ref_list": listField("events", store.KindEvent, func(o store.Object) []string {
			return refHandles(o.(*store.Person).EventRefList)
		}),
		"family_list": listField("families", store.KindFamily, func(o store.Object) []string { return o.(*store.Person).FamilyList }),
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			p := o.(*store.Person)
			handles := make([]string, len(p.MediaList))
			for i, r := range p.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Person).NoteList }),
		"parent_family_list": listField("parent_families", store.KindFamily, func(o store.Object) []string {
			p := o.(*store.Person)
			primary := p.MainParentsFamilyHandle()
			handles := make([]string, 0, len(p.ParentFamilyList))
			for _, h := range p.ParentFamilyList {
				if h != primary {
					handles = append(handles, h)
				}
			}
			return handles
		}),
		"person_ref_list": listField("people", store.KindPerson, func(o store.Object) []string {
			p := o.(*store.Person)
			handles := make([]string, len(p.PersonRefList))
			for i, r := range p.PersonRefList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"primary_parent_family": scalarField("primary_parent_family", store.KindFamily, func(o store.Object) string {
			return o.(*store.Person).MainParentsFamilyHandle()
		}),
		"tag_list": listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Person).TagList }),
	},
	store.KindFamily: {
		"citation_list": listField("citations", store.KindCitation, func(o store.Object) []string { return o.(*store.Family).CitationList }),
		"event_ref_list": listField("events", store.KindEvent, func(o store.Object) []string {
			return refHandles(o.(*store.Family).EventRefList)
		}),
		"father_handle": scalarField("father", store.KindPerson, func(o store.Object) string { return o.(*store.Family).FatherHandle }),
		"mother_handle": scalarField("mother", store.KindPerson, func(o store.Object) string { return o.(*store.Family).MotherHandle }),
		"child_ref_list": listField("children", store.KindPerson, func(o store.Object) []string {
			f := o.(*store.Family)
			handles := make([]string, len(f.ChildRefList))
			for i, r := range f.ChildRefList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			f := o.(*store.Family)
			handles := make([]string, len(f.MediaList))
			for i, r := range f.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Family).NoteList }),
		"tag_list":  listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Family).TagList }),
	},
	store.KindEvent: {
		"citation_list": listField("citations", store.KindCitation, func(o store.Object) []string { return o.(*store.Event).CitationList }),
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			e := o.(*store.Event)
			handles := make([]string, len(e.MediaList))
			for i, r := range e.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Event).NoteList }),
		"place":     scalarField("place", store.KindPlace, func(o store.Object) string { return o.(*store.Event).Place }),
		"tag_list":  listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Event).TagList }),
	},
	store.KindPlace: {
		"citation_list": listField("citations", store.KindCitation, func(o store.Object) []string { return o.(*store.Place).CitationList }),
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			p := o.(*store.Place)
			handles := make([]string, len(p.MediaList))
			for i, r := range p.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Place).NoteList }),
		"tag_list":  listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Place).TagList }),
	},
	store.KindCitation: {
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			c := o.(*store.Citation)
			handles := make([]string, len(c.MediaList))
			for i, r := range c.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list":     listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Citation).NoteList }),
		"source_handle": scalarField("source", store.KindSource, func(o store.Object) string { return o.(*store.Citation).SourceHandle }),
		"tag_list":      listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Citation).TagList }),
	},
	store.KindSource: {
		"media_list": listField("media", store.KindMedia, func(o store.Object) []string {
			s := o.(*store.Source)
			handles := make([]string, len(s.MediaList))
			for i, r := range s.MediaList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Source).NoteList }),
		"reporef_list": listField("repositories", store.KindRepository, func(o store.Object) []string {
			s := o.(*store.Source)
			handles := make([]string, len(s.RepoRefList))
			for i, r := range s.RepoRefList {
				handles[i] = r.Ref
			}
			return handles
		}),
		"tag_list": listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Source).TagList }),
	},
	store.KindMedia: {
		"citation_list": listField("citations", store.KindCitation, func(o store.Object) []string { return o.(*store.Media).CitationList }),
		"note_list":     listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Media).NoteList }),
		"tag_list":      listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Media).TagList }),
	},
	store.KindRepository: {
		"note_list": listField("notes", store.KindNote, func(o store.Object) []string { return o.(*store.Repository).NoteList }),
		"tag_list":  listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Repository).TagList }),
	},
	store.KindNote: {
		"tag_list": listField("tags", store.KindTag, func(o store.Object) []string { return o.(*store.Note).TagList }),
	},
	store.KindTag: {},
}

// ValidateExtend checks extend field names eagerly, before any record is
// shaped. "all" and "backlinks" are accepted for every kind.
func ValidateExtend(kind store.Kind, fields []string) error {
	table := extendTables[kind]
	for _, field := range fields {
		if field == ExtendAll || field == ExtendBacklinks {
			continue
		}
		if _, ok := table[field]; !ok {
			return kinerr.Errorf(kinerr.CodeQueryExtendInvalid, "unknown extend field %q for %s", field, kind)
		}
	}
	return nil
}

// applyExtend builds the extended group map of one record. backlinks is the
// record's backlink index when computed; without it the backlinks token is
// skipped.
func applyExtend(ec *evalContext, kind store.Kind, obj store.Object, fields []string, backlinks map[store.Kind][]string, haveBacklinks bool) (map[string]any, error) {
	table := extendTables[kind]
	extended := map[string]any{}
	wantBacklinks := false

	names := make([]string, 0, len(fields))
	for _, field := range fields {
		switch field {
		case ExtendAll:
			names = names[:0]
			for name := range table {
				names = append(names, name)
			}
		case ExtendBacklinks:
			wantBacklinks = true
		default:
			names = append(names, field)
		}
	}

	for _, field := range names {
		f := table[field]
		value, ok, err := f.resolve(ec, obj)
		if err != nil {
			return nil, err
		}
		if ok {
			extended[f.group] = value
		}
	}

	if wantBacklinks && haveBacklinks {
		groups := map[string]any{}
		for refKind, handles := range backlinks {
			resolved, err := resolveHandles(ec, refKind, handles)
			if err != nil {
				return nil, err
			}
			groups[string(refKind)] = resolved
		}
		extended[ExtendBacklinks] = groups
	}
	return extended, nil
}
