// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Projection narrows a shaped record to a subset of its top-level keys.
// Keys and SkipKeys are mutually exclusive; Strip removes empty values after
// the key selection.
type Projection struct {
	Keys     []string
	SkipKeys []string
	Strip    bool
}

// Validate rejects a projection that both includes and excludes keys.
func (p Projection) Validate() error {
	if len(p.Keys) > 0 && len(p.SkipKeys) > 0 {
		return kinerr.New(kinerr.CodeQueryParamsConflict, "keys and skipkeys are mutually exclusive")
	}
	return nil
}

// Apply rewrites the record in place. Unknown key names select nothing and
// are not an error.
func (p Projection) Apply(record map[string]any) {
	if len(p.Keys) > 0 {
		keep := make(map[string]bool, len(p.Keys))
		for _, k := range p.Keys {
			keep[k] = true
		}
		for k := range record {
			if !keep[k] {
				delete(record, k)
			}
		}
	}
	for _, k := range p.SkipKeys {
		delete(record, k)
	}
	if p.Strip {
		for k, v := range record {
			if emptyValue(v) {
				delete(record, k)
			}
		}
	}
}

// emptyValue reports whether a decoded JSON value is empty: null, "", or an
// empty container. Zero numbers and false are real values and stay.
func emptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
