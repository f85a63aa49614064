// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package server

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kinship-dev/kinship/internal/query"
	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// kindRoutes maps each entity kind to its plural path segment.
var kindRoutes = []struct {
	kind   store.Kind
	plural string
}{
	{store.KindPerson, "people"},
	{store.KindFamily, "families"},
	{store.KindEvent, "events"},
	{store.KindPlace, "places"},
	{store.KindCitation, "citations"},
	{store.KindSource, "sources"},
	{store.KindMedia, "media"},
	{store.KindRepository, "repositories"},
	{store.KindNote, "notes"},
	{store.KindTag, "tags"},
}

func (s *Server) registerRoutes() {
	for _, route := range kindRoutes {
		s.registerKindRoutes(route.kind, route.plural)
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-tree",
		Method:      http.MethodGet,
		Path:        "/api/tree/",
		Summary:     "Tree summary",
		Tags:        []string{"tree"},
	}, s.handleGetTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-surnames",
		Method:      http.MethodGet,
		Path:        "/api/surnames/",
		Summary:     "List distinct surnames",
		Tags:        []string{"tree"},
	}, s.handleListSurnames)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-bookmark-kinds",
		Method:      http.MethodGet,
		Path:        "/api/bookmarks/",
		Summary:     "List bookmark kinds",
		Tags:        []string{"tree"},
	}, s.handleListBookmarkKinds)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-bookmarks",
		Method:      http.MethodGet,
		Path:        "/api/bookmarks/{kind}",
		Summary:     "Get the bookmarked handles of a kind",
		Tags:        []string{"tree"},
	}, s.handleGetBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-type-categories",
		Method:      http.MethodGet,
		Path:        "/api/types/",
		Summary:     "List type categories",
		Tags:        []string{"tree"},
	}, s.handleListTypeCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-types",
		Method:      http.MethodGet,
		Path:        "/api/types/{category}",
		Summary:     "List the distinct values of a type category",
		Tags:        []string{"tree"},
	}, s.handleGetTypes)
}

func (s *Server) registerKindRoutes(kind store.Kind, plural string) {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-" + plural,
		Method:      http.MethodGet,
		Path:        "/api/" + plural + "/",
		Summary:     "List " + plural,
		Tags:        []string{plural},
	}, func(ctx context.Context, input *listObjectsInput) (*listObjectsOutput, error) {
		req, err := s.buildRequest(input.ObjectParams, input.ListParams)
		if err != nil {
			return nil, humaError(err)
		}
		records, total, err := s.engine.Query(ctx, kind, req)
		if err != nil {
			return nil, humaError(err)
		}
		return &listObjectsOutput{TotalCount: total, Body: records}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-" + string(kind),
		Method:      http.MethodGet,
		Path:        "/api/" + plural + "/{handle}",
		Summary:     "Get one " + string(kind) + " record",
		Tags:        []string{plural},
	}, func(ctx context.Context, input *getObjectInput) (*getObjectOutput, error) {
		req, err := s.buildRequest(input.ObjectParams, ListParams{})
		if err != nil {
			return nil, humaError(err)
		}
		record, err := s.engine.GetOne(ctx, kind, input.Handle, req)
		if err != nil {
			return nil, humaError(err)
		}
		return &getObjectOutput{Body: record}, nil
	})
}

// ObjectParams are the shaping parameters shared by list and detail routes.
type ObjectParams struct {
	Locale    string `query:"locale" doc:"Locale for labels, spans, and collation (default en)"`
	Keys      string `query:"keys" doc:"Comma-separated top-level keys to keep"`
	SkipKeys  string `query:"skipkeys" doc:"Comma-separated top-level keys to drop"`
	Strip     bool   `query:"strip" doc:"Drop empty top-level values"`
	Extend    string `query:"extend" doc:"Reference fields to expand, or all"`
	Profile   string `query:"profile" doc:"Profile blocks: self, age, events, families, span, all"`
	Backlinks bool   `query:"backlinks" doc:"Attach referencing handles per kind"`
	Soundex   bool   `query:"soundex" doc:"Attach the surname soundex code (people only)"`
}

// ListParams are the selection parameters of list routes.
type ListParams struct {
	Page     int    `query:"page" minimum:"0" doc:"Page number starting at 1; 0 disables pagination"`
	PageSize int    `query:"pagesize" default:"20" minimum:"1" doc:"Records per page"`
	Sort     string `query:"sort" doc:"Comma-separated sort keys, each with optional +/- prefix"`
	GrampsID string `query:"gramps_id" doc:"Select the single record with this Gramps ID"`
	Rules    string `query:"rules" doc:"JSON rules filter"`
	Filter   string `query:"filter" doc:"Named filter to apply"`
}

type listObjectsInput struct {
	ObjectParams
	ListParams
}

type listObjectsOutput struct {
	TotalCount int `header:"X-Total-Count"`
	Body       []map[string]any
}

type getObjectInput struct {
	Handle string `path:"handle" doc:"Object handle"`
	ObjectParams
}

type getObjectOutput struct {
	Body map[string]any
}

// buildRequest translates wire parameters into a query request. A request
// without an explicit locale falls back to the server's configured one.
func (s *Server) buildRequest(obj ObjectParams, list ListParams) (query.Request, error) {
	locale := obj.Locale
	if locale == "" {
		locale = s.cfg.Locale
	}
	req := query.Request{
		Page:      list.Page,
		PageSize:  list.PageSize,
		Sort:      query.ParseSortSpec(list.Sort),
		Locale:    locale,
		Keys:      splitParam(obj.Keys),
		SkipKeys:  splitParam(obj.SkipKeys),
		Strip:     obj.Strip,
		Extend:    splitParam(obj.Extend),
		Profile:   splitParam(obj.Profile),
		Backlinks: obj.Backlinks,
		Soundex:   obj.Soundex,
		GrampsID:  list.GrampsID,
		Filter:    list.Filter,
	}
	if list.Rules != "" {
		spec, err := query.ParseRuleSpec(list.Rules)
		if err != nil {
			return query.Request{}, err
		}
		req.Rules = spec
	}
	return req, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// humaError maps an error taxonomy code to the matching HTTP status.
func humaError(err error) error {
	return huma.NewError(kinerr.HTTPStatus(err), err.Error())
}

type treeOutput struct {
	Body struct {
		DefaultPerson string         `json:"default_person" doc:"Handle of the tree's home person"`
		ObjectCounts  map[string]int `json:"object_counts" doc:"Entity counts per kind"`
	}
}

func (s *Server) handleGetTree(ctx context.Context, _ *struct{}) (*treeOutput, error) {
	summary, err := s.st.Summary(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	out := &treeOutput{}
	out.Body.DefaultPerson = summary.DefaultPerson
	out.Body.ObjectCounts = make(map[string]int, len(summary.Counts))
	for kind, n := range summary.Counts {
		out.Body.ObjectCounts[string(kind)] = n
	}
	return out, nil
}

type surnamesOutput struct {
	Body struct {
		Surnames []string `json:"surnames" doc:"Distinct primary surnames, sorted"`
	}
}

func (s *Server) handleListSurnames(ctx context.Context, _ *struct{}) (*surnamesOutput, error) {
	surnames, err := s.st.Surnames(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	out := &surnamesOutput{}
	out.Body.Surnames = surnames
	return out, nil
}

type kindListOutput struct {
	Body []string
}

func (s *Server) handleListBookmarkKinds(context.Context, *struct{}) (*kindListOutput, error) {
	names := make([]string, 0, len(kindRoutes))
	for _, route := range kindRoutes {
		names = append(names, string(route.kind))
	}
	return &kindListOutput{Body: names}, nil
}

type bookmarksInput struct {
	Kind string `path:"kind" doc:"Entity kind holding the bookmarks"`
}

func (s *Server) handleGetBookmarks(ctx context.Context, input *bookmarksInput) (*kindListOutput, error) {
	kind, err := store.ParseKind(input.Kind)
	if err != nil {
		return nil, huma.NewError(http.StatusNotFound, "unknown bookmark kind: "+input.Kind)
	}
	handles, err := s.st.Bookmarks(ctx, kind)
	if err != nil {
		return nil, humaError(err)
	}
	if handles == nil {
		handles = []string{}
	}
	return &kindListOutput{Body: handles}, nil
}

// typeCategories maps a type-category name to the extraction of its values
// from one entity of the carrying kind.
var typeCategories = []struct {
	name    string
	kind    store.Kind
	extract func(store.Object) string
}{
	{"event_types", store.KindEvent, func(o store.Object) string { return o.(*store.Event).Type }},
	{"family_relation_types", store.KindFamily, func(o store.Object) string { return o.(*store.Family).Type }},
	{"note_types", store.KindNote, func(o store.Object) string { return o.(*store.Note).Type }},
	{"repository_types", store.KindRepository, func(o store.Object) string { return o.(*store.Repository).Type }},
}

func (s *Server) handleListTypeCategories(context.Context, *struct{}) (*kindListOutput, error) {
	names := make([]string, 0, len(typeCategories))
	for _, cat := range typeCategories {
		names = append(names, cat.name)
	}
	return &kindListOutput{Body: names}, nil
}

type typesInput struct {
	Category string `path:"category" doc:"Type category, e.g. event_types"`
}

func (s *Server) handleGetTypes(ctx context.Context, input *typesInput) (*kindListOutput, error) {
	for _, cat := range typeCategories {
		if cat.name != input.Category {
			continue
		}
		objs, err := s.st.List(ctx, cat.kind)
		if err != nil {
			return nil, humaError(err)
		}
		seen := map[string]bool{}
		values := []string{}
		for _, obj := range objs {
			if v := cat.extract(obj); v != "" && !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		sort.Strings(values)
		return &kindListOutput{Body: values}, nil
	}
	return nil, huma.NewError(http.StatusNotFound, "unknown type category: "+input.Category)
}
