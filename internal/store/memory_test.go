// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinship-dev/kinship/internal/store"
)

func person(handle, grampsID, surname string) *store.Person {
	return &store.Person{
		Handle: handle, GrampsID: grampsID,
		PrimaryName: store.Name{
			SurnameList: []store.Surname{{Surname: surname, Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
	}
}

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	want := person("person-1", "I0001", "Adams")
	require.NoError(t, st.Put(ctx, want))

	got, err := st.Get(ctx, store.KindPerson, "person-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = st.Get(ctx, store.KindPerson, "person-2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Same handle under a different kind is a different slot.
	_, err = st.Get(ctx, store.KindEvent, "person-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryPutRejectsEmptyHandle(t *testing.T) {
	st := store.NewMemory()
	err := st.Put(context.Background(), &store.Tag{Name: "ToDo"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestMemoryPutReplaces(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, st.Put(ctx, person("person-1", "I0001", "Adams")))
	require.NoError(t, st.Put(ctx, person("person-1", "I0001", "Quincy")))

	objs, err := st.List(ctx, store.KindPerson)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "Quincy", objs[0].(*store.Person).PrimaryName.PrimarySurname())
}

func TestMemoryListSortsByHandle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	for _, h := range []string{"person-c", "person-a", "person-b"} {
		require.NoError(t, st.Put(ctx, person(h, "", "")))
	}

	objs, err := st.List(ctx, store.KindPerson)
	require.NoError(t, err)
	handles := make([]string, len(objs))
	for i, obj := range objs {
		handles[i] = obj.ObjectHandle()
	}
	assert.Equal(t, []string{"person-a", "person-b", "person-c"}, handles)

	empty, err := st.List(ctx, store.KindNote)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryBacklinks(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, st.Put(ctx, &store.Place{Handle: "place-1", Title: "Boston"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-2", Type: "Death", Place: "place-1"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-1", Type: "Birth", Place: "place-1"}))

	abigail := person("person-1", "I0001", "Adams")
	abigail.EventRefList = []store.EventRef{{Ref: "ev-1", Role: "Primary"}}
	require.NoError(t, st.Put(ctx, abigail))

	links, err := st.Backlinks(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{
		store.KindEvent: {"ev-1", "ev-2"},
	}, links)

	links, err = st.Backlinks(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{
		store.KindPerson: {"person-1"},
	}, links)

	links, err = st.Backlinks(ctx, "person-1")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestMemoryBacklinksAfterReimport(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, st.Put(ctx, &store.Place{Handle: "place-1", Title: "Boston"}))
	require.NoError(t, st.Put(ctx, &store.Place{Handle: "place-2", Title: "Quincy"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-1", Type: "Birth", Place: "place-1"}))

	// Re-importing the event with a different place must move the backlink.
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-1", Type: "Birth", Place: "place-2"}))

	links, err := st.Backlinks(ctx, "place-1")
	require.NoError(t, err)
	assert.Empty(t, links)

	links, err = st.Backlinks(ctx, "place-2")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{store.KindEvent: {"ev-1"}}, links)
}

func TestMemorySummary(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, st.Put(ctx, person("person-1", "I0001", "Adams")))
	require.NoError(t, st.Put(ctx, person("person-2", "I0002", "Baker")))
	require.NoError(t, st.Put(ctx, &store.Tag{Handle: "tag-1", Name: "ToDo"}))
	require.NoError(t, st.SetDefaultPerson(ctx, "person-1"))

	sum, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "person-1", sum.DefaultPerson)
	assert.Equal(t, 2, sum.Counts[store.KindPerson])
	assert.Equal(t, 1, sum.Counts[store.KindTag])
	assert.Equal(t, 0, sum.Counts[store.KindFamily])
}

func TestMemorySetDefaultPerson(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	err := st.SetDefaultPerson(ctx, "person-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Put(ctx, person("person-1", "I0001", "Adams")))
	require.NoError(t, st.SetDefaultPerson(ctx, "person-1"))

	// Clearing the default is always allowed.
	require.NoError(t, st.SetDefaultPerson(ctx, ""))
	sum, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, sum.DefaultPerson)
}

func TestMemoryBookmarks(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	handles, err := st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	assert.Empty(t, handles)

	require.NoError(t, st.SetBookmarks(ctx, store.KindPerson, []string{"person-2", "person-1"}))
	require.NoError(t, st.SetBookmarks(ctx, store.KindEvent, []string{"ev-1"}))

	handles, err = st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	// Stored order is preserved, not sorted.
	assert.Equal(t, []string{"person-2", "person-1"}, handles)

	// A new list replaces the old one.
	require.NoError(t, st.SetBookmarks(ctx, store.KindPerson, []string{"person-3"}))
	handles, err = st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, []string{"person-3"}, handles)
}

func TestMemorySurnames(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, st.Put(ctx, person("person-1", "I0001", "Adams")))
	require.NoError(t, st.Put(ctx, person("person-2", "I0002", "Baker")))
	require.NoError(t, st.Put(ctx, person("person-3", "I0003", "Adams")))
	require.NoError(t, st.Put(ctx, person("person-4", "I0004", "")))

	names, err := st.Surnames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adams", "Baker"}, names)
}

func TestReferencesCoverHandleFields(t *testing.T) {
	fam := &store.Family{
		Handle:       "fam-1",
		FatherHandle: "person-1",
		MotherHandle: "person-2",
		ChildRefList: []store.ChildRef{{Ref: "person-3"}},
		EventRefList: []store.EventRef{{Ref: "ev-1"}},
		CitationList: []string{"cit-1"},
		NoteList:     []string{"note-1"},
		TagList:      []string{"tag-1"},
	}

	refs := store.References(fam)
	assert.ElementsMatch(t, []string{"person-1", "person-2", "person-3"}, refs[store.KindPerson])
	assert.Equal(t, []string{"ev-1"}, refs[store.KindEvent])
	assert.Equal(t, []string{"cit-1"}, refs[store.KindCitation])
	assert.Equal(t, []string{"note-1"}, refs[store.KindNote])
	assert.Equal(t, []string{"tag-1"}, refs[store.KindTag])

	// Empty handles never make it into the index.
	refs = store.References(&store.Family{Handle: "fam-2"})
	assert.Empty(t, refs)
}
