// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import (
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Kind identifies one of the entity kinds served by the API.
type Kind string

const (
	KindPerson     Kind = "person"
	KindFamily     Kind = "family"
	KindEvent      Kind = "event"
	KindPlace      Kind = "place"
	KindCitation   Kind = "citation"
	KindSource     Kind = "source"
	KindMedia      Kind = "media"
	KindRepository Kind = "repository"
	KindNote       Kind = "note"
	KindTag        Kind = "tag"
)

// Kinds returns every entity kind in a fixed order.
func Kinds() []Kind {
	return []Kind{
		KindPerson, KindFamily, KindEvent, KindPlace, KindCitation,
		KindSource, KindMedia, KindRepository, KindNote, KindTag,
	}
}

// ParseKind validates a kind string from an external source.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", kinerr.Errorf(kinerr.CodeStoreKindInvalid, "unknown entity kind %q", s)
}
