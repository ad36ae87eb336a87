package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	mockstore "github.com/scigolib/filestore/internal/testing"
)

func newTestIndex(t *testing.T, slots int) (*Index, *mockstore.MockReadWriterAt) {
	t.Helper()
	store := mockstore.NewMockReadWriterAt(slots * EntrySize)
	idx, err := New(store, int64(slots*EntrySize))
	require.NoError(t, err)
	return idx, store
}

func TestNew_RejectsSizeNotMultipleOfEntrySize(t *testing.T) {
	store := mockstore.NewMockReadWriterAt(EntrySize + 1)
	_, err := New(store, EntrySize+1)
	require.Error(t, err)
}

func TestIndex_WriteEntryThenLocate(t *testing.T) {
	idx, _ := newTestIndex(t, 4)

	require.NoError(t, idx.WriteEntry(1, "report.bin", 512, 128))

	e, found, err := idx.Locate("report.bin")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, Entry{Slot: 1, Name: "report.bin", Offset: 512, Length: 128}, e)
}

func TestIndex_LocateMissingReturnsNotFoundNoError(t *testing.T) {
	idx, _ := newTestIndex(t, 4)

	_, found, err := idx.Locate("ghost.bin")
	require.NoError(t, err)
	require.False(t, found)
}

func TestIndex_NameMatchStopsAtNUL(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	require.NoError(t, idx.WriteEntry(0, "a.bin", 0, 10))

	// The stored name ends at its first NUL, but the query is compared
	// whole: a query sharing the live name's prefix and carrying bytes
	// past an embedded NUL does not match.
	_, found, err := idx.Locate("a.bin\x00trailing")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = idx.Locate("a.bin")
	require.NoError(t, err)
	require.True(t, found)
}

func TestIndex_EnumerateLive(t *testing.T) {
	idx, _ := newTestIndex(t, 4)
	require.NoError(t, idx.WriteEntry(0, "a.bin", 0, 10))
	require.NoError(t, idx.WriteEntry(2, "b.bin", 10, 20))

	entries, err := idx.EnumerateLive()
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestIndex_FindFreeSlot(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	require.NoError(t, idx.WriteEntry(0, "a.bin", 0, 10))

	slot, found, err := idx.FindFreeSlot()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, slot)

	require.NoError(t, idx.WriteEntry(1, "b.bin", 10, 10))

	_, found, err = idx.FindFreeSlot()
	require.NoError(t, err)
	require.False(t, found)
}

func TestIndex_ClearEntryRemovesFromEnumeration(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	require.NoError(t, idx.WriteEntry(0, "a.bin", 0, 10))

	require.NoError(t, idx.ClearEntry(0))

	entries, err := idx.EnumerateLive()
	require.NoError(t, err)
	require.Empty(t, entries)

	_, found, err := idx.Locate("a.bin")
	require.NoError(t, err)
	require.False(t, found)
}

func TestIndex_WriteNameLeavesOffsetLengthUntouched(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	require.NoError(t, idx.WriteEntry(0, "old.bin", 64, 128))

	require.NoError(t, idx.WriteName(0, "new.bin"))

	e, found, err := idx.Locate("new.bin")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(64), e.Offset)
	require.Equal(t, uint32(128), e.Length)
}

func TestIndex_WriteLengthLeavesNameAndOffsetUntouched(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	require.NoError(t, idx.WriteEntry(0, "a.bin", 64, 128))

	require.NoError(t, idx.WriteLength(0, 256))

	e, found, err := idx.Locate("a.bin")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(64), e.Offset)
	require.Equal(t, uint32(256), e.Length)
}

func TestIndex_WriteEntryRejectsOversizedName(t *testing.T) {
	idx, _ := newTestIndex(t, 1)
	long := make([]byte, NameSize+1)
	err := idx.WriteEntry(0, string(long), 0, 1)
	require.Error(t, err)
}
