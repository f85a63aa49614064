// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinship-dev/kinship/internal/query"
	"github.com/kinship-dev/kinship/internal/server"
	"github.com/kinship-dev/kinship/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	put := func(obj store.Object) {
		require.NoError(t, st.Put(ctx, obj))
	}

	put(&store.Place{Handle: "place-1", GrampsID: "P0001", Title: "Boston"})
	put(&store.Event{
		Handle: "ev-1", GrampsID: "E0001", Type: "Birth",
		Date: store.Date{Year: 1906, Month: 9, Day: 5}, Place: "place-1",
	})
	put(&store.Person{
		Handle: "person-1", GrampsID: "I0001", Gender: 0,
		PrimaryName: store.Name{
			FirstName:   "Abigail",
			SurnameList: []store.Surname{{Surname: "Adams", Primary: true}},
		},
		BirthRefIndex: 0, DeathRefIndex: -1,
		EventRefList: []store.EventRef{{Ref: "ev-1", Role: "Primary"}},
	})
	put(&store.Person{
		Handle: "person-2", GrampsID: "I0002", Gender: 1,
		PrimaryName: store.Name{
			FirstName:   "John",
			SurnameList: []store.Surname{{Surname: "Adams", Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
	})
	put(&store.Person{
		Handle: "person-3", GrampsID: "I0003", Gender: 2,
		PrimaryName: store.Name{
			FirstName:   "Mary",
			SurnameList: []store.Surname{{Surname: "Baker", Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
	})
	require.NoError(t, st.SetDefaultPerson(ctx, "person-1"))
	require.NoError(t, st.SetBookmarks(ctx, store.KindPerson, []string{"person-2", "person-1"}))
	return st
}

func newTestServer(t *testing.T, cfg server.Config) *server.Server {
	t.Helper()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	st := newTestStore(t)
	srv, err := server.New(cfg, st, query.NewEngine(st))
	require.NoError(t, err)
	return srv
}

func doGet(t *testing.T, srv *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeRecords(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	return records
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestRoutes_ListPeople(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/people/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	records := decodeRecords(t, w)
	require.Len(t, records, 3)
	assert.Equal(t, "person-1", records[0]["handle"])
}

func TestRoutes_ListPeoplePagination(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/people/?page=2&pagesize=2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"), "total counts all matches")
	records := decodeRecords(t, w)
	assert.Len(t, records, 1)
}

func TestRoutes_ListPeopleRules(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, `/api/people/?rules={"rules":[{"name":"IsFemale"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	records := decodeRecords(t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "person-1", records[0]["handle"])
}

func TestRoutes_ListPeopleRuleErrors(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, `/api/people/?rules={"rules":[}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doGet(t, srv, `/api/people/?rules={"rules":[{"name":"HasNoSuchRule"}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_ListPeopleGrampsID(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, "/api/people/?gramps_id=I0002")
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeRecords(t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "person-2", records[0]["handle"])

	w = doGet(t, srv, "/api/people/?gramps_id=I9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_ListPeopleSort(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, "/api/people/?sort=-surname")
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeRecords(t, w)
	require.Len(t, records, 3)
	assert.Equal(t, "person-3", records[0]["handle"], "Baker sorts after Adams, descending")

	w = doGet(t, srv, "/api/people/?sort=shoesize")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_GetPerson(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, "/api/people/person-1?profile=self&locale=de&soundex=true")
	require.Equal(t, http.StatusOK, w.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "A352", record["soundex"])
	profile := record["profile"].(map[string]any)
	birth := profile["birth"].(map[string]any)
	assert.Equal(t, "Geburt", birth["type"])
	assert.Equal(t, "Boston", birth["place"])
}

func TestRoutes_ConfiguredDefaultLocale(t *testing.T) {
	srv := newTestServer(t, server.Config{Locale: "de"})

	w := doGet(t, srv, "/api/people/person-1?profile=self")
	require.Equal(t, http.StatusOK, w.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	profile := record["profile"].(map[string]any)
	birth := profile["birth"].(map[string]any)
	assert.Equal(t, "Geburt", birth["type"])
}

func TestRoutes_GetPersonNotFound(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/people/person-999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_ProjectionConflict(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/people/?keys=handle&skipkeys=gramps_id")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_OtherKinds(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	for _, path := range []string{
		"/api/families/", "/api/events/", "/api/places/", "/api/citations/",
		"/api/sources/", "/api/media/", "/api/repositories/", "/api/notes/", "/api/tags/",
	} {
		w := doGet(t, srv, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := doGet(t, srv, "/api/events/ev-1?extend=place")
	require.Equal(t, http.StatusOK, w.Code)
	var record map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	extended := record["extended"].(map[string]any)
	place := extended["place"].(map[string]any)
	assert.Equal(t, "Boston", place["title"])
}

func TestRoutes_Tree(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/tree/")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		DefaultPerson string         `json:"default_person"`
		ObjectCounts  map[string]int `json:"object_counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "person-1", body.DefaultPerson)
	assert.Equal(t, 3, body.ObjectCounts["person"])
	assert.Equal(t, 1, body.ObjectCounts["place"])
}

func TestRoutes_Bookmarks(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, "/api/bookmarks/")
	require.Equal(t, http.StatusOK, w.Code)
	var kinds []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kinds))
	assert.Contains(t, kinds, "person")
	assert.Len(t, kinds, 10)

	w = doGet(t, srv, "/api/bookmarks/person")
	require.Equal(t, http.StatusOK, w.Code)
	var handles []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &handles))
	assert.Equal(t, []string{"person-2", "person-1"}, handles)

	// Kinds without bookmarks list empty, unknown kinds are 404.
	w = doGet(t, srv, "/api/bookmarks/event")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &handles))
	assert.Empty(t, handles)

	w = doGet(t, srv, "/api/bookmarks/people")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_Types(t *testing.T) {
	srv := newTestServer(t, server.Config{})

	w := doGet(t, srv, "/api/types/")
	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Contains(t, categories, "event_types")

	w = doGet(t, srv, "/api/types/event_types")
	require.Equal(t, http.StatusOK, w.Code)
	var values []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &values))
	assert.Equal(t, []string{"Birth"}, values)

	w = doGet(t, srv, "/api/types/shoe_sizes")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_Surnames(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	w := doGet(t, srv, "/api/surnames/")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Surnames []string `json:"surnames"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Adams", "Baker"}, body.Surnames)
}
