// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"

	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// SortKey is one sort criterion: a key name from the kind's closed sort
// vocabulary plus a direction.
type SortKey struct {
	Key        string
	Descending bool
}

// ParseSortSpec parses a sort parameter like "+surname,-birth". A key
// without a sign sorts ascending.
func ParseSortSpec(raw string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{Key: part}
		switch part[0] {
		case '+':
			key.Key = part[1:]
		case '-':
			key.Key = part[1:]
			key.Descending = true
		}
		keys = append(keys, key)
	}
	return keys
}

// sortValue is one comparable scalar: either a number or a collation key.
type sortValue struct {
	num  int64
	text []byte
	str  bool
}

func (v sortValue) compare(o sortValue) int {
	if v.str {
		return bytes.Compare(v.text, o.text)
	}
	switch {
	case v.num < o.num:
		return -1
	case v.num > o.num:
		return 1
	}
	return 0
}

// extractor produces the sort scalar of one entity. enc turns text into a
// locale collation key.
type extractor func(ec *evalContext, obj store.Object, enc func(string) []byte) (sortValue, error)

func textKey(get func(store.Object) string) extractor {
	return func(_ *evalContext, obj store.Object, enc func(string) []byte) (sortValue, error) {
		return sortValue{text: enc(get(obj)), str: true}, nil
	}
}

func numKey(get func(store.Object) int64) extractor {
	return func(_ *evalContext, obj store.Object, _ func(string) []byte) (sortValue, error) {
		return sortValue{num: get(obj)}, nil
	}
}

func boolKey(get func(store.Object) bool) extractor {
	return numKey(func(obj store.Object) int64 {
		if get(obj) {
			return 1
		}
		return 0
	})
}

func personSurname(obj store.Object) string {
	return obj.(*store.Person).PrimaryName.PrimarySurname()
}

// sortKeyTables is the closed per-kind sort vocabulary.
var sortKeyTables = map[store.Kind]map[string]extractor{
	store.KindPerson: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Person).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Person).Private }),
		"gender":    numKey(func(o store.Object) int64 { return int64(o.(*store.Person).Gender) }),
		"surname":   textKey(personSurname),
		"name": textKey(func(o store.Object) string {
			p := o.(*store.Person)
			return p.PrimaryName.PrimarySurname() + ", " + p.PrimaryName.FirstName
		}),
		"soundex": func(_ *evalContext, obj store.Object, _ func(string) []byte) (sortValue, error) {
			return sortValue{text: []byte(Soundex(personSurname(obj))), str: true}, nil
		},
		"birth": func(ec *evalContext, obj store.Object, _ func(string) []byte) (sortValue, error) {
			return sortValue{num: dateOrdinal(ec.personBirthDate(obj.(*store.Person)))}, nil
		},
		"death": func(ec *evalContext, obj store.Object, _ func(string) []byte) (sortValue, error) {
			return sortValue{num: dateOrdinal(ec.personDeathDate(obj.(*store.Person)))}, nil
		},
	},
	store.KindFamily: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Family).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Family).Private }),
		"type":      textKey(func(o store.Object) string { return o.(*store.Family).Type }),
		"surname": func(ec *evalContext, obj store.Object, enc func(string) []byte) (sortValue, error) {
			f := obj.(*store.Family)
			var surname string
			if f.FatherHandle != "" {
				if father, err := ec.store.Get(ec.ctx, store.KindPerson, f.FatherHandle); err == nil {
					surname = father.(*store.Person).PrimaryName.PrimarySurname()
				}
			}
			return sortValue{text: enc(surname), str: true}, nil
		},
	},
	store.KindEvent: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Event).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Event).Private }),
		"type":      textKey(func(o store.Object) string { return o.(*store.Event).Type }),
		"date":      numKey(func(o store.Object) int64 { return dateOrdinal(o.(*store.Event).Date) }),
	},
	store.KindPlace: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Place).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Place).Private }),
		"title":     textKey(func(o store.Object) string { return o.(*store.Place).Title }),
	},
	store.KindCitation: {
		"gramps_id":  textKey(store.Object.ObjectID),
		"change":     numKey(func(o store.Object) int64 { return o.(*store.Citation).Change }),
		"private":    boolKey(func(o store.Object) bool { return o.(*store.Citation).Private }),
		"confidence": numKey(func(o store.Object) int64 { return int64(o.(*store.Citation).Confidence) }),
		"date":       numKey(func(o store.Object) int64 { return dateOrdinal(o.(*store.Citation).Date) }),
	},
	store.KindSource: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Source).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Source).Private }),
		"title":     textKey(func(o store.Object) string { return o.(*store.Source).Title }),
		"author":    textKey(func(o store.Object) string { return o.(*store.Source).Author }),
	},
	store.KindMedia: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Media).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Media).Private }),
		"path":      textKey(func(o store.Object) string { return o.(*store.Media).Path }),
		"mime":      textKey(func(o store.Object) string { return o.(*store.Media).Mime }),
		"date":      numKey(func(o store.Object) int64 { return dateOrdinal(o.(*store.Media).Date) }),
	},
	store.KindRepository: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Repository).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Repository).Private }),
		"name":      textKey(func(o store.Object) string { return o.(*store.Repository).Name }),
		"type":      textKey(func(o store.Object) string { return o.(*store.Repository).Type }),
	},
	store.KindNote: {
		"gramps_id": textKey(store.Object.ObjectID),
		"change":    numKey(func(o store.Object) int64 { return o.(*store.Note).Change }),
		"private":   boolKey(func(o store.Object) bool { return o.(*store.Note).Private }),
		"type":      textKey(func(o store.Object) string { return o.(*store.Note).Type }),
	},
	store.KindTag: {
		"change":   numKey(func(o store.Object) int64 { return o.(*store.Tag).Change }),
		"name":     textKey(func(o store.Object) string { return o.(*store.Tag).Name }),
		"priority": numKey(func(o store.Object) int64 { return int64(o.(*store.Tag).Priority) }),
	},
}

// ValidateSortKeys checks a parsed sort spec against the kind's vocabulary.
func ValidateSortKeys(kind store.Kind, keys []SortKey) error {
	table := sortKeyTables[kind]
	for _, key := range keys {
		if _, ok := table[key.Key]; !ok {
			return kinerr.Errorf(kinerr.CodeQuerySortKeyInvalid, "unknown sort key %q for %s", key.Key, kind)
		}
	}
	return nil
}

// SortObjects orders entities by the given keys under the catalog's locale.
// Ties across all keys break by handle ascending regardless of direction, so
// repeated identical requests paginate deterministically.
func SortObjects(ctx context.Context, st store.EntityStore, kind store.Kind, objs []store.Object, keys []SortKey, cat *Catalog) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ValidateSortKeys(kind, keys); err != nil {
		return err
	}

	col := collate.New(cat.Tag)
	var buf collate.Buffer
	enc := func(s string) []byte {
		buf.Reset()
		return append([]byte(nil), col.KeyFromString(&buf, s)...)
	}

	ec := newEvalContext(ctx, st)
	table := sortKeyTables[kind]
	values := make([][]sortValue, len(objs))
	for i, obj := range objs {
		values[i] = make([]sortValue, len(keys))
		for j, key := range keys {
			v, err := table[key.Key](ec, obj, enc)
			if err != nil {
				return err
			}
			values[i][j] = v
		}
	}

	indexes := make([]int, len(objs))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		ia, ib := indexes[a], indexes[b]
		for j, key := range keys {
			c := values[ia][j].compare(values[ib][j])
			if key.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return objs[ia].ObjectHandle() < objs[ib].ObjectHandle()
	})

	sorted := make([]store.Object, len(objs))
	for i, idx := range indexes {
		sorted[i] = objs[idx]
	}
	copy(objs, sorted)
	return nil
}
