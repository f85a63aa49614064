// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

// Package query evaluates predicate rule-sets over a genealogy store and
// shapes the matches for the wire: locale-aware sorting, pagination with a
// total count, reference expansion, derived profiles, and key projection.
package query

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Request carries all the shaping parameters of one query.
type Request struct {
	Page     int
	PageSize int
	Sort     []SortKey
	Locale   string

	Keys     []string
	SkipKeys []string
	Strip    bool

	Extend  []string
	Profile []string

	Backlinks bool
	Soundex   bool

	GrampsID string
	Rules    *RuleSpec
	Filter   string
}

// Engine runs queries against one store, optionally with named filters
// registered per kind.
type Engine struct {
	st      store.EntityStore
	filters map[store.Kind]map[string]*RuleSpec
}

func NewEngine(st store.EntityStore) *Engine {
	return &Engine{st: st, filters: map[store.Kind]map[string]*RuleSpec{}}
}

// WithNamedFilters registers rule specs addressable by name for a kind,
// replacing any previous set for that kind.
func (e *Engine) WithNamedFilters(kind store.Kind, filters map[string]*RuleSpec) *Engine {
	e.filters[kind] = filters
	return e
}

// CompileNamedFilters parses a raw filter catalog keyed by kind name and
// filter name, the shape the seed file stores them in.
func CompileNamedFilters(raw map[string]map[string]json.RawMessage) (map[store.Kind]map[string]*RuleSpec, error) {
	out := map[store.Kind]map[string]*RuleSpec{}
	for kindName, specs := range raw {
		kind, err := store.ParseKind(kindName)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]*RuleSpec, len(specs))
		for name, data := range specs {
			spec, err := ParseRuleSpec(string(data))
			if err != nil {
				return nil, kinerr.Wrapf(err, kinerr.CodeQueryRulesInvalid, "filter %s/%s", kindName, name)
			}
			// Compile once up front so a bad rule name surfaces at load
			// time, not on first use.
			if _, err := CompileRuleSet(kind, spec); err != nil {
				return nil, err
			}
			byName[name] = spec
		}
		out[kind] = byName
	}
	return out, nil
}

// compileRules resolves the request's rule source: inline rules or a named
// filter, never both.
func (e *Engine) compileRules(kind store.Kind, req Request) (*RuleSet, error) {
	if req.Rules != nil && req.Filter != "" {
		return nil, kinerr.New(kinerr.CodeQueryParamsConflict, "rules and filter are mutually exclusive")
	}
	spec := req.Rules
	if req.Filter != "" {
		named, ok := e.filters[kind][req.Filter]
		if !ok {
			return nil, kinerr.New(kinerr.CodeQueryFilterNotFound, "no such filter for kind",
				kinerr.Field("filter", req.Filter), kinerr.FieldKind(string(kind)))
		}
		spec = named
	}
	if spec == nil {
		return nil, nil
	}
	return CompileRuleSet(kind, spec)
}

func (e *Engine) validate(kind store.Kind, req Request) (Projection, *Catalog, error) {
	proj := Projection{Keys: req.Keys, SkipKeys: req.SkipKeys, Strip: req.Strip}
	if err := proj.Validate(); err != nil {
		return proj, nil, err
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	cat, err := LookupCatalog(locale)
	if err != nil {
		return proj, nil, err
	}
	if err := ValidateProfile(kind, req.Profile); err != nil {
		return proj, nil, err
	}
	if err := ValidateExtend(kind, req.Extend); err != nil {
		return proj, nil, err
	}
	if err := ValidateSortKeys(kind, req.Sort); err != nil {
		return proj, nil, err
	}
	return proj, cat, nil
}

// Query runs a list query: select, sort, paginate, shape. The second result
// is the total number of matches before pagination.
func (e *Engine) Query(ctx context.Context, kind store.Kind, req Request) ([]map[string]any, int, error) {
	proj, cat, err := e.validate(kind, req)
	if err != nil {
		return nil, 0, err
	}
	rules, err := e.compileRules(kind, req)
	if err != nil {
		return nil, 0, err
	}

	var matches []store.Object
	switch {
	case req.GrampsID != "":
		if rules != nil {
			return nil, 0, kinerr.New(kinerr.CodeQueryParamsConflict, "gramps_id excludes rules and filter")
		}
		obj, err := e.findByGrampsID(ctx, kind, req.GrampsID)
		if err != nil {
			return nil, 0, err
		}
		matches = []store.Object{obj}
	case rules != nil:
		matches, err = rules.Select(ctx, e.st, kind)
		if err != nil {
			return nil, 0, err
		}
	default:
		matches, err = e.st.List(ctx, kind)
		if err != nil {
			return nil, 0, err
		}
	}

	total := len(matches)
	if err := SortObjects(ctx, e.st, kind, matches, req.Sort, cat); err != nil {
		return nil, 0, err
	}
	page := Paginate(matches, req.Page, req.PageSize)

	ec := newEvalContext(ctx, e.st)
	records := make([]map[string]any, 0, len(page))
	for _, obj := range page {
		record, err := e.shape(ec, cat, kind, obj, req, proj)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, nil
}

// GetOne shapes a single record addressed by handle.
func (e *Engine) GetOne(ctx context.Context, kind store.Kind, handle string, req Request) (map[string]any, error) {
	proj, cat, err := e.validate(kind, req)
	if err != nil {
		return nil, err
	}
	obj, err := e.st.Get(ctx, kind, handle)
	if err != nil {
		if isNotFound(err) {
			return nil, kinerr.New(kinerr.CodeStoreObjectNotFound, "no such object",
				kinerr.FieldHandle(handle), kinerr.FieldKind(string(kind)))
		}
		return nil, err
	}
	return e.shape(newEvalContext(ctx, e.st), cat, kind, obj, req, proj)
}

// isNotFound recognizes both the store's sentinel and coded lookup errors.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || kinerr.IsNotFound(err)
}

func (e *Engine) findByGrampsID(ctx context.Context, kind store.Kind, id string) (store.Object, error) {
	objs, err := e.st.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, obj := range objs {
		if obj.ObjectID() == id {
			return obj, nil
		}
	}
	return nil, kinerr.New(kinerr.CodeStoreObjectNotFound, "no object with gramps_id",
		kinerr.Field("gramps_id", id), kinerr.FieldKind(string(kind)))
}

func (e *Engine) shape(ec *evalContext, cat *Catalog, kind store.Kind, obj store.Object, req Request, proj Projection) (map[string]any, error) {
	record, err := objectToMap(obj)
	if err != nil {
		return nil, err
	}

	if req.Soundex && kind == store.KindPerson {
		record["soundex"] = Soundex(obj.(*store.Person).PrimaryName.PrimarySurname())
	}

	var backlinks map[store.Kind][]string
	if req.Backlinks {
		backlinks, err = e.st.Backlinks(ec.ctx, obj.ObjectHandle())
		if err != nil {
			return nil, err
		}
		record["backlinks"] = backlinks
	}

	if len(req.Profile) > 0 {
		profile, err := applyProfile(ec, cat, kind, obj, req.Profile)
		if err != nil {
			return nil, err
		}
		record["profile"] = profile
	}

	if len(req.Extend) > 0 {
		extended, err := applyExtend(ec, kind, obj, req.Extend, backlinks, req.Backlinks)
		if err != nil {
			return nil, err
		}
		record["extended"] = extended
	}

	proj.Apply(record)
	return record, nil
}
