// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

// References returns the outbound handles of an entity grouped by the kind of
// the target. Backends build their reverse-reference (backlink) indexes from
// this; it must cover every handle-bearing field of every entity kind.
func References(obj Object) map[Kind][]string {
	refs := map[Kind][]string{}
	add := func(kind Kind, handles ...string) {
		for _, h := range handles {
			if h != "" {
				refs[kind] = append(refs[kind], h)
			}
		}
	}

	switch o := obj.(type) {
	case *Person:
		add(KindCitation, o.CitationList...)
		for _, r := range o.EventRefList {
			add(KindEvent, r.Ref)
		}
		add(KindFamily, o.FamilyList...)
		add(KindFamily, o.ParentFamilyList...)
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindNote, o.NoteList...)
		for _, r := range o.PersonRefList {
			add(KindPerson, r.Ref)
		}
		add(KindTag, o.TagList...)
	case *Family:
		add(KindPerson, o.FatherHandle, o.MotherHandle)
		for _, r := range o.ChildRefList {
			add(KindPerson, r.Ref)
		}
		for _, r := range o.EventRefList {
			add(KindEvent, r.Ref)
		}
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindCitation, o.CitationList...)
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Event:
		add(KindPlace, o.Place)
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindCitation, o.CitationList...)
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Place:
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindCitation, o.CitationList...)
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Citation:
		add(KindSource, o.SourceHandle)
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Source:
		for _, r := range o.RepoRefList {
			add(KindRepository, r.Ref)
		}
		for _, r := range o.MediaList {
			add(KindMedia, r.Ref)
		}
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Media:
		add(KindCitation, o.CitationList...)
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Repository:
		add(KindNote, o.NoteList...)
		add(KindTag, o.TagList...)
	case *Note:
		add(KindTag, o.TagList...)
	}

	return refs
}
