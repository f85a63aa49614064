// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"context"
	"slices"

	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Predicate tests one entity. Predicates may read the store through the
// evaluation context but never write.
type Predicate func(ec *evalContext, obj store.Object) (bool, error)

// predicateFactory validates rule arguments at compile time and returns the
// bound predicate.
type predicateFactory func(values []string) (Predicate, error)

// evalContext caches store lookups shared by predicates within one selection
// (e.g. the tag name to handle mapping).
type evalContext struct {
	ctx        context.Context
	store      store.EntityStore
	tagHandles map[string]string
}

func newEvalContext(ctx context.Context, st store.EntityStore) *evalContext {
	return &evalContext{ctx: ctx, store: st}
}

// tagHandle resolves a tag name to its handle, loading the tag table once.
// An unknown tag name resolves to "", which no tag list contains.
func (ec *evalContext) tagHandle(name string) (string, error) {
	if ec.tagHandles == nil {
		tags, err := ec.store.List(ec.ctx, store.KindTag)
		if err != nil {
			return "", kinerr.Wrap(err, kinerr.CodeStoreDatabaseFailure, "listing tags")
		}
		ec.tagHandles = make(map[string]string, len(tags))
		for _, obj := range tags {
			tag := obj.(*store.Tag)
			ec.tagHandles[tag.Name] = tag.Handle
		}
	}
	return ec.tagHandles[name], nil
}

// personBirthDate returns the date of a person's indexed birth event, or an
// empty date when there is none.
func (ec *evalContext) personBirthDate(p *store.Person) store.Date {
	ref, ok := p.BirthRef()
	if !ok {
		return store.Date{}
	}
	obj, err := ec.store.Get(ec.ctx, store.KindEvent, ref.Ref)
	if err != nil {
		return store.Date{}
	}
	return obj.(*store.Event).Date
}

func (ec *evalContext) personDeathDate(p *store.Person) store.Date {
	ref, ok := p.DeathRef()
	if !ok {
		return store.Date{}
	}
	obj, err := ec.store.Get(ec.ctx, store.KindEvent, ref.Ref)
	if err != nil {
		return store.Date{}
	}
	return obj.(*store.Event).Date
}

// --- Factory helpers ---

func noArgs(name string, pred Predicate) predicateFactory {
	return func(values []string) (Predicate, error) {
		if len(values) != 0 {
			return nil, kinerr.Errorf(kinerr.CodeQueryRulesInvalid, "rule %s takes no values", name)
		}
		return pred, nil
	}
}

func oneArg(name string, bind func(value string) Predicate) predicateFactory {
	return func(values []string) (Predicate, error) {
		if len(values) != 1 {
			return nil, kinerr.Errorf(kinerr.CodeQueryRulesInvalid, "rule %s takes exactly one value", name)
		}
		return bind(values[0]), nil
	}
}

func matchAll(*evalContext, store.Object) (bool, error) { return true, nil }

func hasIDOf(id string) Predicate {
	return func(_ *evalContext, obj store.Object) (bool, error) {
		return obj.ObjectID() == id, nil
	}
}

func hasTag(name string, tags func(store.Object) []string) Predicate {
	return func(ec *evalContext, obj store.Object) (bool, error) {
		handle, err := ec.tagHandle(name)
		if err != nil {
			return false, err
		}
		return handle != "" && slices.Contains(tags(obj), handle), nil
	}
}

// --- Registries ---

// predicateRegistry holds the closed, kind-specific predicate vocabulary.
// Rule names follow the Gramps filter rule class names.
var predicateRegistry = map[store.Kind]map[string]predicateFactory{
	store.KindPerson: {
		"Everyone": noArgs("Everyone", matchAll),
		"HasIdOf":  oneArg("HasIdOf", hasIDOf),
		"IsMale": noArgs("IsMale", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Person).Gender == 1, nil
		}),
		"IsFemale": noArgs("IsFemale", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Person).Gender == 0, nil
		}),
		"HasUnknownGender": noArgs("HasUnknownGender", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Person).Gender == 2, nil
		}),
		"MultipleMarriages": noArgs("MultipleMarriages", func(_ *evalContext, obj store.Object) (bool, error) {
			return len(obj.(*store.Person).FamilyList) > 1, nil
		}),
		"NeverMarried": noArgs("NeverMarried", func(_ *evalContext, obj store.Object) (bool, error) {
			return len(obj.(*store.Person).FamilyList) == 0, nil
		}),
		"NoBirthdate": noArgs("NoBirthdate", func(ec *evalContext, obj store.Object) (bool, error) {
			return ec.personBirthDate(obj.(*store.Person)).IsEmpty(), nil
		}),
		"NoDeathdate": noArgs("NoDeathdate", func(ec *evalContext, obj store.Object) (bool, error) {
			return ec.personDeathDate(obj.(*store.Person)).IsEmpty(), nil
		}),
		"HasAlternateName": noArgs("HasAlternateName", func(_ *evalContext, obj store.Object) (bool, error) {
			return len(obj.(*store.Person).AlternateNames) > 0, nil
		}),
		"HasNickname": noArgs("HasNickname", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Person).PrimaryName.Nick != "", nil
		}),
		"PeoplePrivate": noArgs("PeoplePrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Person).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Person).TagList })
		}),
	},
	store.KindFamily: {
		"AllFamilies": noArgs("AllFamilies", matchAll),
		"HasIdOf":     oneArg("HasIdOf", hasIDOf),
		"HasRelType": oneArg("HasRelType", func(rel string) Predicate {
			return func(_ *evalContext, obj store.Object) (bool, error) {
				return obj.(*store.Family).Type == rel, nil
			}
		}),
		"FamilyPrivate": noArgs("FamilyPrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Family).Private, nil
		}),
		"ChildlessFamily": noArgs("ChildlessFamily", func(_ *evalContext, obj store.Object) (bool, error) {
			return len(obj.(*store.Family).ChildRefList) == 0, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Family).TagList })
		}),
	},
	store.KindEvent: {
		"AllEvents": noArgs("AllEvents", matchAll),
		"HasIdOf":   oneArg("HasIdOf", hasIDOf),
		"HasType": oneArg("HasType", func(typ string) Predicate {
			return func(_ *evalContext, obj store.Object) (bool, error) {
				return obj.(*store.Event).Type == typ, nil
			}
		}),
		"EventPrivate": noArgs("EventPrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Event).Private, nil
		}),
		"HasNoDate": noArgs("HasNoDate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Event).Date.IsEmpty(), nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Event).TagList })
		}),
	},
	store.KindPlace: {
		"AllPlaces": noArgs("AllPlaces", matchAll),
		"HasIdOf":   oneArg("HasIdOf", hasIDOf),
		"HasTitle": oneArg("HasTitle", func(title string) Predicate {
			return func(_ *evalContext, obj store.Object) (bool, error) {
				return obj.(*store.Place).Title == title, nil
			}
		}),
		"PlacePrivate": noArgs("PlacePrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Place).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Place).TagList })
		}),
	},
	store.KindCitation: {
		"AllCitations": noArgs("AllCitations", matchAll),
		"HasIdOf":      oneArg("HasIdOf", hasIDOf),
		"CitationPrivate": noArgs("CitationPrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Citation).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Citation).TagList })
		}),
	},
	store.KindSource: {
		"AllSources": noArgs("AllSources", matchAll),
		"HasIdOf":    oneArg("HasIdOf", hasIDOf),
		"SourcePrivate": noArgs("SourcePrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Source).Private, nil
		}),
		"HasRepository": noArgs("HasRepository", func(_ *evalContext, obj store.Object) (bool, error) {
			return len(obj.(*store.Source).RepoRefList) > 0, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Source).TagList })
		}),
	},
	store.KindMedia: {
		"AllMedia": noArgs("AllMedia", matchAll),
		"HasIdOf":  oneArg("HasIdOf", hasIDOf),
		"MediaPrivate": noArgs("MediaPrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Media).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Media).TagList })
		}),
	},
	store.KindRepository: {
		"AllRepos": noArgs("AllRepos", matchAll),
		"HasIdOf":  oneArg("HasIdOf", hasIDOf),
		"RepoPrivate": noArgs("RepoPrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Repository).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Repository).TagList })
		}),
	},
	store.KindNote: {
		"AllNotes": noArgs("AllNotes", matchAll),
		"HasIdOf":  oneArg("HasIdOf", hasIDOf),
		"HasType": oneArg("HasType", func(typ string) Predicate {
			return func(_ *evalContext, obj store.Object) (bool, error) {
				return obj.(*store.Note).Type == typ, nil
			}
		}),
		"NotePrivate": noArgs("NotePrivate", func(_ *evalContext, obj store.Object) (bool, error) {
			return obj.(*store.Note).Private, nil
		}),
		"HasTag": oneArg("HasTag", func(name string) Predicate {
			return hasTag(name, func(obj store.Object) []string { return obj.(*store.Note).TagList })
		}),
	},
	store.KindTag: {
		"AllTags": noArgs("AllTags", matchAll),
		"HasNameOf": oneArg("HasNameOf", func(name string) Predicate {
			return func(_ *evalContext, obj store.Object) (bool, error) {
				return obj.(*store.Tag).Name == name, nil
			}
		}),
	},
}
