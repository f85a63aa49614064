// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Rule names one predicate with its positional arguments.
type Rule struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

// RuleSpec is the wire shape of a rules filter: a predicate list, a boolean
// combinator ("and" when absent), and an inversion flag applied after the
// combinator.
type RuleSpec struct {
	Function string `json:"function,omitempty"`
	Invert   bool   `json:"invert,omitempty"`
	Rules    []Rule `json:"rules"`
}

var ruleFunctions = map[string]bool{"and": true, "or": true, "xor": true, "one": true}

// ParseRuleSpec decodes and structurally validates a raw rules parameter.
// Unknown top-level keys and unknown combinator functions are rejected here,
// before any evaluation work.
func ParseRuleSpec(raw string) (*RuleSpec, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var spec RuleSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeQueryRulesInvalid, "malformed rules parameter")
	}
	if spec.Function != "" && !ruleFunctions[strings.ToLower(spec.Function)] {
		return nil, kinerr.Errorf(kinerr.CodeQueryRulesInvalid,
			"rules function must be one of and, or, xor, one; got %q", spec.Function)
	}
	return &spec, nil
}

// RuleSet is a compiled rule spec: every predicate name resolved against the
// kind's registry, ready to test entities for membership.
type RuleSet struct {
	function string
	invert   bool
	preds    []Predicate
}

// CompileRuleSet resolves a rule spec against the predicate registry of an
// entity kind. Unknown predicate names fail here so a bad rule set never
// partially filters.
func CompileRuleSet(kind store.Kind, spec *RuleSpec) (*RuleSet, error) {
	registry := predicateRegistry[kind]

	rs := &RuleSet{
		function: strings.ToLower(spec.Function),
		invert:   spec.Invert,
	}
	if rs.function == "" {
		rs.function = "and"
	}

	for _, rule := range spec.Rules {
		factory, ok := registry[rule.Name]
		if !ok {
			return nil, kinerr.New(kinerr.CodeQueryRuleNotFound, "unknown filter rule",
				kinerr.FieldRule(rule.Name), kinerr.FieldKind(string(kind)))
		}
		pred, err := factory(rule.Values)
		if err != nil {
			return nil, err
		}
		rs.preds = append(rs.preds, pred)
	}
	return rs, nil
}

// Match tests one entity for membership. An empty rule list matches
// everything under every combinator (vacuous truth), before inversion.
func (rs *RuleSet) Match(ec *evalContext, obj store.Object) (bool, error) {
	matched := true
	if len(rs.preds) > 0 {
		hits := 0
		for _, pred := range rs.preds {
			ok, err := pred(ec, obj)
			if err != nil {
				return false, err
			}
			if ok {
				hits++
			}
		}
		switch rs.function {
		case "and":
			matched = hits == len(rs.preds)
		case "or":
			matched = hits > 0
		case "xor":
			matched = hits%2 == 1
		case "one":
			matched = hits == 1
		}
	}
	if rs.invert {
		matched = !matched
	}
	return matched, nil
}

// Select returns the members of a kind's full candidate set.
func (rs *RuleSet) Select(ctx context.Context, st store.EntityStore, kind store.Kind) ([]store.Object, error) {
	objs, err := st.List(ctx, kind)
	if err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeStoreDatabaseFailure, "listing candidates",
			kinerr.FieldKind(string(kind)))
	}

	ec := newEvalContext(ctx, st)
	var selected []store.Object
	for _, obj := range objs {
		ok, err := rs.Match(ec, obj)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, obj)
		}
	}
	return selected, nil
}
