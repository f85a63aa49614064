// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinship-dev/kinship/internal/query"
	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

func TestQueryDefaultOrderAndTotal(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))

	records, total, err := e.Query(context.Background(), store.KindPerson, query.Request{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, records, 4)
	assert.Equal(t, "person-abigail", records[0]["handle"])
}

func TestQueryPagination(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	ctx := context.Background()

	records, total, err := e.Query(ctx, store.KindPerson, query.Request{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total, "total reflects all matches, not the page")
	assert.Len(t, records, 1)

	records, total, err = e.Query(ctx, store.KindPerson, query.Request{Page: 9, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, records)
}

func TestQuerySorting(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))

	t.Run("by birth date", func(t *testing.T) {
		got := queryHandles(t, e, store.KindPerson, query.Request{
			Sort: query.ParseSortSpec("-birth"),
		})
		// Unknown birth dates sort as zero, so they trail in descending order.
		assert.Equal(t, []string{"person-abigail", "person-john", "person-charles", "person-zhang"}, got)
	})

	t.Run("multi key with handle tiebreak", func(t *testing.T) {
		got := queryHandles(t, e, store.KindPerson, query.Request{
			Sort: query.ParseSortSpec("surname,-gramps_id"),
		})
		assert.Equal(t, []string{"person-charles", "person-john", "person-abigail", "person-zhang"}, got)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		_, _, err := e.Query(context.Background(), store.KindPerson, query.Request{
			Sort: query.ParseSortSpec("shoesize"),
		})
		require.Error(t, err)
		assert.Equal(t, kinerr.CodeQuerySortKeyInvalid, kinerr.CodeOf(err))
	})

	t.Run("events by date", func(t *testing.T) {
		got := queryHandles(t, e, store.KindEvent, query.Request{
			Sort: query.ParseSortSpec("date"),
		})
		assert.Equal(t, []string{"ev-census", "ev-birth-john", "ev-birth-abigail", "ev-marriage", "ev-death-abigail"}, got)
	})
}

func TestQuerySortingLocaleCollation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	put := func(handle, surname string) {
		require.NoError(t, st.Put(ctx, &store.Person{
			Handle: handle,
			PrimaryName: store.Name{
				SurnameList: []store.Surname{{Surname: surname, Primary: true}},
			},
			BirthRefIndex: -1, DeathRefIndex: -1,
		}))
	}
	put("person-1", "Zhang")
	put("person-2", "Äcker")
	put("person-3", "Adams")

	e := query.NewEngine(st)
	got := queryHandles(t, e, store.KindPerson, query.Request{
		Sort:   query.ParseSortSpec("surname"),
		Locale: "de",
	})
	// Collation files Äcker under A; byte order would put it after Zhang.
	assert.Equal(t, []string{"person-2", "person-3", "person-1"}, got)
}

func TestQueryByGrampsID(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	ctx := context.Background()

	records, total, err := e.Query(ctx, store.KindPerson, query.Request{GrampsID: "I0002"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "person-john", records[0]["handle"])

	_, _, err = e.Query(ctx, store.KindPerson, query.Request{GrampsID: "I9999"})
	require.Error(t, err)
	assert.True(t, kinerr.IsNotFound(err))

	_, _, err = e.Query(ctx, store.KindPerson, query.Request{
		GrampsID: "I0002",
		Rules:    rulesOf(t, `{"rules": []}`),
	})
	require.Error(t, err)
	assert.Equal(t, kinerr.CodeQueryParamsConflict, kinerr.CodeOf(err))
}

func TestQueryProjection(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	ctx := context.Background()

	t.Run("keys", func(t *testing.T) {
		records, _, err := e.Query(ctx, store.KindPerson, query.Request{
			Keys:     []string{"handle", "gramps_id"},
			GrampsID: "I0001",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, map[string]any{"handle": "person-abigail", "gramps_id": "I0001"}, records[0])
	})

	t.Run("skipkeys", func(t *testing.T) {
		records, _, err := e.Query(ctx, store.KindPerson, query.Request{
			SkipKeys: []string{"event_ref_list", "primary_name"},
			GrampsID: "I0001",
		})
		require.NoError(t, err)
		assert.NotContains(t, records[0], "event_ref_list")
		assert.NotContains(t, records[0], "primary_name")
		assert.Contains(t, records[0], "handle")
	})

	t.Run("strip removes empty top-level values", func(t *testing.T) {
		records, _, err := e.Query(ctx, store.KindPerson, query.Request{
			Strip:    true,
			GrampsID: "I0003",
		})
		require.NoError(t, err)
		rec := records[0]
		assert.NotContains(t, rec, "family_list")
		assert.Contains(t, rec, "handle")
		// Nested empties survive: strip is top-level only.
		assert.Contains(t, rec, "parent_family_list")
	})

	t.Run("strip keeps zero numbers and false", func(t *testing.T) {
		records, _, err := e.Query(ctx, store.KindPerson, query.Request{
			Strip:    true,
			GrampsID: "I0001",
		})
		require.NoError(t, err)
		rec := records[0]
		assert.Contains(t, rec, "gender")
		assert.Contains(t, rec, "private")
		assert.Contains(t, rec, "birth_ref_index")
	})

	t.Run("keys and skipkeys conflict", func(t *testing.T) {
		_, _, err := e.Query(ctx, store.KindPerson, query.Request{
			Keys:     []string{"handle"},
			SkipKeys: []string{"gramps_id"},
		})
		require.Error(t, err)
		assert.Equal(t, kinerr.CodeQueryParamsConflict, kinerr.CodeOf(err))
	})
}

func TestQuerySoundexAndBacklinks(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	ctx := context.Background()

	records, _, err := e.Query(ctx, store.KindPerson, query.Request{
		GrampsID: "I0001",
		Soundex:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "A352", records[0]["soundex"])

	record, err := e.GetOne(ctx, store.KindPlace, "place-boston", query.Request{Backlinks: true})
	require.NoError(t, err)
	backlinks, ok := record["backlinks"].(map[store.Kind][]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"ev-birth-abigail", "ev-marriage"}, backlinks[store.KindEvent])
}

func TestGetOneUnknownHandle(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	_, err := e.GetOne(context.Background(), store.KindPerson, "person-nobody", query.Request{})
	require.Error(t, err)
	assert.True(t, kinerr.IsNotFound(err))
}

func TestQueryUnknownLocale(t *testing.T) {
	e := query.NewEngine(newFixtureStore(t))
	_, _, err := e.Query(context.Background(), store.KindPerson, query.Request{Locale: "no_such!"})
	require.Error(t, err)
	assert.Equal(t, kinerr.CodeQueryLocaleInvalid, kinerr.CodeOf(err))
}

func TestCompileNamedFiltersRejectsBadSpecs(t *testing.T) {
	_, err := query.CompileNamedFilters(map[string]map[string]json.RawMessage{
		"person": {"broken": json.RawMessage(`{"rules": [{"name": "HasNoSuchRule"}]}`)},
	})
	require.Error(t, err)
	assert.Equal(t, kinerr.CodeQueryRuleNotFound, kinerr.CodeOf(err))
}
