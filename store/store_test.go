package store

import (
	"testing"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) lib.StoreI {
	db, err := NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGetDelete(t *testing.T) {
	db := newTestStore(t)
	// unseen keys read as nil without error
	val, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, val)
	// staged writes are visible before commit
	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	val, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
	// deletes remove staged state
	require.NoError(t, db.Delete([]byte("k")))
	val, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestCommitAndDiscard(t *testing.T) {
	db := newTestStore(t)
	require.NoError(t, db.Set([]byte("a"), []byte("1")))
	require.NoError(t, db.Commit())
	// discarded writes vanish, committed writes stay
	require.NoError(t, db.Set([]byte("b"), []byte("2")))
	db.Discard()
	val, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)
	val, err = db.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestIterators(t *testing.T) {
	db := newTestStore(t)
	expected := [][]byte{[]byte("p/a"), []byte("p/b"), []byte("p/c")}
	for _, key := range expected {
		require.NoError(t, db.Set(key, key))
	}
	// a key outside the prefix is not yielded
	require.NoError(t, db.Set([]byte("q/z"), []byte("z")))
	require.NoError(t, db.Commit())
	// forward iteration is lexicographical
	it, err := db.Iterator([]byte("p/"))
	require.NoError(t, err)
	var got [][]byte
	for ; it.Valid(); it.Next() {
		got = append(got, it.Key())
	}
	it.Close()
	require.Equal(t, expected, got)
	// reverse iteration mirrors it
	rit, err := db.RevIterator([]byte("p/"))
	require.NoError(t, err)
	got = nil
	for ; rit.Valid(); rit.Next() {
		got = append(got, rit.Key())
	}
	rit.Close()
	require.Equal(t, [][]byte{expected[2], expected[1], expected[0]}, got)
}

func TestReadOnlySnapshot(t *testing.T) {
	db := newTestStore(t)
	require.NoError(t, db.Set([]byte("k"), []byte("old")))
	require.NoError(t, db.Commit())
	// a snapshot taken now does not observe later staged writes
	snapshot, err := db.NewReadOnly()
	require.NoError(t, err)
	defer snapshot.Discard()
	require.NoError(t, db.Set([]byte("k"), []byte("new")))
	val, err := snapshot.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("old"), val)
}
