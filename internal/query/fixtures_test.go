// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kinship-dev/kinship/internal/store"
)

// newFixtureStore seeds an in-memory store with a small three-generation
// tree used across the query tests:
//
//	adams-f2, adams-f3   parent families of Abigail
//	adams-f1             John x Abigail, child Charles
func newFixtureStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	put := func(obj store.Object) {
		require.NoError(t, st.Put(ctx, obj))
	}

	put(&store.Place{Handle: "place-boston", GrampsID: "P0001", Title: "Boston"})
	put(&store.Tag{Handle: "tag-todo", Name: "ToDo", Priority: 1})
	put(&store.Tag{Handle: "tag-complete", Name: "Complete", Priority: 2})

	put(&store.Event{
		Handle: "ev-birth-abigail", GrampsID: "E0001", Type: "Birth",
		Date: store.Date{Year: 1906, Month: 9, Day: 5}, Place: "place-boston",
	})
	put(&store.Event{
		Handle: "ev-death-abigail", GrampsID: "E0002", Type: "Death",
		Date: store.Date{Year: 1968, Month: 10, Day: 24},
	})
	put(&store.Event{
		Handle: "ev-birth-john", GrampsID: "E0003", Type: "Birth",
		Date: store.Date{Year: 1900, Month: 1, Day: 2},
	})
	put(&store.Event{
		Handle: "ev-marriage", GrampsID: "E0004", Type: "Marriage",
		Date: store.Date{Year: 1930, Month: 5, Day: 1}, Place: "place-boston",
	})
	put(&store.Event{Handle: "ev-census", GrampsID: "E0005", Type: "Census"})

	put(&store.Person{
		Handle: "person-abigail", GrampsID: "I0001", Gender: 0,
		PrimaryName: store.Name{
			FirstName:   "Abigail",
			SurnameList: []store.Surname{{Surname: "Adams", Primary: true}},
		},
		BirthRefIndex: 0, DeathRefIndex: 1,
		EventRefList: []store.EventRef{
			{Ref: "ev-birth-abigail", Role: "Primary"},
			{Ref: "ev-death-abigail", Role: "Primary"},
		},
		FamilyList:       []string{"adams-f1"},
		ParentFamilyList: []string{"adams-f2", "adams-f3"},
		TagList:          []string{"tag-todo"},
	})
	put(&store.Person{
		Handle: "person-john", GrampsID: "I0002", Gender: 1,
		PrimaryName: store.Name{
			FirstName:   "John",
			SurnameList: []store.Surname{{Surname: "Adams", Primary: true}},
		},
		BirthRefIndex: 0, DeathRefIndex: -1,
		EventRefList:  []store.EventRef{{Ref: "ev-birth-john", Role: "Primary"}},
		FamilyList:    []string{"adams-f1"},
	})
	put(&store.Person{
		Handle: "person-charles", GrampsID: "I0003", Gender: 2,
		PrimaryName: store.Name{
			FirstName:   "Charles",
			Nick:        "Chuck",
			SurnameList: []store.Surname{{Surname: "Adams", Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
		ParentFamilyList: []string{"adams-f1"},
	})
	put(&store.Person{
		Handle: "person-zhang", GrampsID: "I0004", Gender: 1, Private: true,
		PrimaryName: store.Name{
			FirstName:   "Wei",
			SurnameList: []store.Surname{{Surname: "Zhang", Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
	})

	put(&store.Family{
		Handle: "adams-f1", GrampsID: "F0001", Type: "Married",
		FatherHandle: "person-john", MotherHandle: "person-abigail",
		ChildRefList: []store.ChildRef{{Ref: "person-charles", FatherRel: "Birth", MotherRel: "Birth"}},
		EventRefList: []store.EventRef{{Ref: "ev-marriage", Role: "Family"}},
	})
	put(&store.Family{Handle: "adams-f2", GrampsID: "F0002", Type: "Married"})
	put(&store.Family{Handle: "adams-f3", GrampsID: "F0003", Type: "Unknown"})

	require.NoError(t, st.SetDefaultPerson(ctx, "person-abigail"))
	return st
}
