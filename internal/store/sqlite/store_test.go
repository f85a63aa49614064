// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinship-dev/kinship/internal/store"
	"github.com/kinship-dev/kinship/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "kinship.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testPerson(handle, grampsID, surname string) *store.Person {
	return &store.Person{
		Handle: handle, GrampsID: grampsID,
		PrimaryName: store.Name{
			FirstName:   "Test",
			SurnameList: []store.Surname{{Surname: surname, Primary: true}},
		},
		BirthRefIndex: -1, DeathRefIndex: -1,
	}
}

func TestSqliteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	want := testPerson("person-1", "I0001", "Adams")
	want.EventRefList = []store.EventRef{{Ref: "ev-1", Role: "Primary"}}
	want.BirthRefIndex = 0
	require.NoError(t, st.Put(ctx, want))

	got, err := st.Get(ctx, store.KindPerson, "person-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = st.Get(ctx, store.KindPerson, "person-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSqlitePutRejectsEmptyHandle(t *testing.T) {
	st := newTestStore(t)
	err := st.Put(context.Background(), &store.Tag{Name: "ToDo"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestSqliteListSortsByHandle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for _, h := range []string{"person-c", "person-a", "person-b"} {
		require.NoError(t, st.Put(ctx, testPerson(h, "", "")))
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

func TestSqliteUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Put(ctx, testPerson("person-1", "I0001", "Adams")))
	require.NoError(t, st.Put(ctx, testPerson("person-1", "I0001", "Quincy")))

	objs, err := st.List(ctx, store.KindPerson)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "Quincy", objs[0].(*store.Person).PrimaryName.PrimarySurname())

	names, err := st.Surnames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quincy"}, names)
}

func TestSqliteBacklinks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Put(ctx, &store.Place{Handle: "place-1", Title: "Boston"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-2", Type: "Death", Place: "place-1"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-1", Type: "Birth", Place: "place-1"}))

	links, err := st.Backlinks(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{
		store.KindEvent: {"ev-1", "ev-2"},
	}, links)

	// Re-pointing the event must move the backlink, not duplicate it.
	require.NoError(t, st.Put(ctx, &store.Place{Handle: "place-2", Title: "Quincy"}))
	require.NoError(t, st.Put(ctx, &store.Event{Handle: "ev-1", Type: "Birth", Place: "place-2"}))

	links, err = st.Backlinks(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{store.KindEvent: {"ev-2"}}, links)

	links, err = st.Backlinks(ctx, "place-2")
	require.NoError(t, err)
	assert.Equal(t, map[store.Kind][]string{store.KindEvent: {"ev-1"}}, links)
}

func TestSqliteSummaryAndDefaultPerson(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sum, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, sum.DefaultPerson)
	assert.Equal(t, 0, sum.Counts[store.KindPerson])

	require.NoError(t, st.Put(ctx, testPerson("person-1", "I0001", "Adams")))
	require.NoError(t, st.Put(ctx, &store.Tag{Handle: "tag-1", Name: "ToDo"}))

	err = st.SetDefaultPerson(ctx, "person-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, st.SetDefaultPerson(ctx, "person-1"))

	sum, err = st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "person-1", sum.DefaultPerson)
	assert.Equal(t, 1, sum.Counts[store.KindPerson])
	assert.Equal(t, 1, sum.Counts[store.KindTag])
	assert.Equal(t, 0, sum.Counts[store.KindFamily])
}

func TestSqliteSurnames(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Put(ctx, testPerson("person-1", "I0001", "Baker")))
	require.NoError(t, st.Put(ctx, testPerson("person-2", "I0002", "Adams")))
	require.NoError(t, st.Put(ctx, testPerson("person-3", "I0003", "Adams")))
	require.NoError(t, st.Put(ctx, testPerson("person-4", "I0004", "")))

	names, err := st.Surnames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adams", "Baker"}, names)
}

func TestSqliteBookmarks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	handles, err := st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	assert.Empty(t, handles)

	require.NoError(t, st.SetBookmarks(ctx, store.KindPerson, []string{"person-2", "person-1"}))
	handles, err = st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, []string{"person-2", "person-1"}, handles)

	require.NoError(t, st.SetBookmarks(ctx, store.KindPerson, []string{"person-3"}))
	handles, err = st.Bookmarks(ctx, store.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, []string{"person-3"}, handles)

	handles, err = st.Bookmarks(ctx, store.KindEvent)
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestSqlitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kinship.db")

	st, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, testPerson("person-1", "I0001", "Adams")))
	require.NoError(t, st.SetDefaultPerson(ctx, "person-1"))
	require.NoError(t, st.Close())

	st, err = sqlite.New(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Get(ctx, store.KindPerson, "person-1")
	require.NoError(t, err)
	assert.Equal(t, "I0001", got.ObjectID())

	sum, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "person-1", sum.DefaultPerson)
}
