package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodb/moodb/pkg/codec"
)

func openTestClient(t *testing.T, name string) (*Client[string], string) {
	t.Helper()
	dir := t.TempDir()
	client, err := Open[string](name, dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, dir
}

// requireFileMatchesTable checks the on-disk/in-memory agreement invariant:
// the file's bytes decode to exactly the current sequence, and the file is
// truncated to exactly the encoded length.
func requireFileMatchesTable(t *testing.T, table *Table[string]) {
	t.Helper()

	data, err := os.ReadFile(table.Path())
	require.NoError(t, err)

	c := codec.NewJSON[string]()
	decoded, err := c.Decode(data)
	require.NoError(t, err)

	table.mu.RLock()
	records := append([]codec.Record[string]{}, table.records...)
	table.mu.RUnlock()

	require.Equal(t, records, decoded)

	encoded, err := c.Encode(records)
	require.NoError(t, err)

	info, err := os.Stat(table.Path())
	require.NoError(t, err)
	require.Equal(t, int64(len(encoded)), info.Size())
}

func TestTable_InsertGetRoundTrip(t *testing.T) {
	client, _ := openTestClient(t, "t1")
	require.NoError(t, client.ResetTable())
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "A"))
	require.NoError(t, table.Insert("b", "B"))

	va, err := table.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "A", va)

	vb, err := table.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "B", vb)

	_, err = table.Get("c")
	assert.True(t, IsNotFound(err))

	data, err := os.ReadFile(table.Path())
	require.NoError(t, err)
	assert.Equal(t, `[{"key":"a","value":"A"},{"key":"b","value":"B"}]`, string(data))

	requireFileMatchesTable(t, table)
}

func TestTable_UpdateSwapsValues(t *testing.T) {
	client, _ := openTestClient(t, "t1")
	require.NoError(t, client.ResetTable())
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "A"))
	require.NoError(t, table.Insert("b", "B"))

	require.NoError(t, table.Update("a", "B"))
	require.NoError(t, table.Update("b", "A"))

	va, err := table.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "B", va)

	vb, err := table.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "A", vb)

	// Updates do not change storage order.
	all, err := table.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []codec.Record[string]{{Key: "a", Value: "B"}, {Key: "b", Value: "A"}}, all)

	requireFileMatchesTable(t, table)
}

func TestTable_DeleteCompacts(t *testing.T) {
	client, dir := openTestClient(t, "t1")
	require.NoError(t, client.ResetTable())
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "A"))
	require.NoError(t, table.Insert("b", "B"))

	require.NoError(t, table.Delete("a"))

	all, err := table.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []codec.Record[string]{{Key: "b", Value: "B"}}, all)

	data, err := os.ReadFile(table.Path())
	require.NoError(t, err)
	assert.Equal(t, `[{"key":"b","value":"B"}]`, string(data))

	require.NoError(t, client.Close())

	// Reopening yields the same sequence.
	reopened, err := Open[string]("t1", dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	all, err = reopened.GetTable().GetAll()
	require.NoError(t, err)
	assert.Equal(t, []codec.Record[string]{{Key: "b", Value: "B"}}, all)
}

func TestTable_InsertManyRejectsOnCollision(t *testing.T) {
	client, _ := openTestClient(t, "bulk")
	table := client.GetTable()

	require.NoError(t, table.Insert("x", "1"))

	err := table.InsertMany([]codec.Record[string]{
		{Key: "y", Value: "2"},
		{Key: "x", Value: "3"},
	})
	assert.True(t, IsAlreadyExists(err))

	// Nothing was partially applied.
	all, err := table.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []codec.Record[string]{{Key: "x", Value: "1"}}, all)

	requireFileMatchesTable(t, table)
}

func TestTable_InsertManyRejectsDuplicateInInput(t *testing.T) {
	client, _ := openTestClient(t, "bulk")
	table := client.GetTable()

	err := table.InsertMany([]codec.Record[string]{
		{Key: "a", Value: "1"},
		{Key: "a", Value: "2"},
	})
	assert.True(t, IsAlreadyExists(err))
	assert.Equal(t, 0, table.Count())
}

func TestTable_PersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	client, err := Open[int]("t2", dir, nil)
	require.NoError(t, err)
	require.NoError(t, client.ResetTable())

	table := client.GetTable()
	records := make([]codec.Record[int], 0, 100)
	for i := 0; i < 100; i++ {
		records = append(records, codec.Record[int]{Key: fmt.Sprintf("user%d", i), Value: i})
	}
	require.NoError(t, table.InsertMany(records))
	require.NoError(t, client.Close())

	reopened, err := Open[int]("t2", dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.GetTable().GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 100)

	v, err := reopened.GetTable().Get("user50")
	require.NoError(t, err)
	assert.Equal(t, 50, v)
}

func TestTable_DeleteManyAndUpdateMany(t *testing.T) {
	client, _ := openTestClient(t, "t3")
	require.NoError(t, client.ResetTable())
	table := client.GetTable()

	for i := 0; i < 50; i++ {
		require.NoError(t, table.Insert(fmt.Sprintf("%d", i), fmt.Sprintf("P%d", i)))
	}

	require.NoError(t, table.DeleteMany([]string{"1", "2", "3"}))
	assert.Equal(t, 47, table.Count())

	require.NoError(t, table.UpdateMany([]codec.Record[string]{
		{Key: "4", Value: "P4u"},
		{Key: "5", Value: "P5u"},
		{Key: "6", Value: "P6u"},
	}))

	v, err := table.Get("4")
	require.NoError(t, err)
	assert.Equal(t, "P4u", v)

	_, err = table.Get("1")
	assert.True(t, IsNotFound(err))

	requireFileMatchesTable(t, table)
}

func TestTable_InsertDuplicateLeavesTableUnchanged(t *testing.T) {
	client, _ := openTestClient(t, "dup")
	table := client.GetTable()

	require.NoError(t, table.Insert("k", "v"))

	err := table.Insert("k", "v2")
	assert.True(t, IsAlreadyExists(err))

	v, err := table.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, table.Count())
	requireFileMatchesTable(t, table)
}

func TestTable_UpdateAbsentKey(t *testing.T) {
	client, _ := openTestClient(t, "absent")
	table := client.GetTable()

	require.NoError(t, table.Insert("k", "v"))

	err := table.Update("nope", "x")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, table.Count())
	requireFileMatchesTable(t, table)
}

func TestTable_DeleteAbsentKey(t *testing.T) {
	client, _ := openTestClient(t, "absent")
	table := client.GetTable()

	require.NoError(t, table.Insert("k", "v"))

	err := table.Delete("nope")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, table.Count())
}

func TestTable_UpdateManySkipsAbsentKeys(t *testing.T) {
	client, _ := openTestClient(t, "um")
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "1"))

	require.NoError(t, table.UpdateMany([]codec.Record[string]{
		{Key: "a", Value: "updated"},
		{Key: "ghost", Value: "ignored"},
	}))

	v, err := table.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "updated", v)
	assert.False(t, table.Exists("ghost"))
}

func TestTable_DeleteManyAbsentKeysIsNoError(t *testing.T) {
	client, _ := openTestClient(t, "dm")
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "1"))
	require.NoError(t, table.DeleteMany([]string{"ghost", "phantom"}))
	assert.Equal(t, 1, table.Count())
}

func TestTable_BulkEmptyInput(t *testing.T) {
	client, _ := openTestClient(t, "empty")
	table := client.GetTable()

	err := table.InsertMany(nil)
	assert.True(t, IsEmptyInput(err))

	err = table.UpdateMany(nil)
	assert.True(t, IsEmptyInput(err))
}

func TestTable_GetManyStorageOrder(t *testing.T) {
	client, _ := openTestClient(t, "gm")
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "1"))
	require.NoError(t, table.Insert("b", "2"))
	require.NoError(t, table.Insert("c", "3"))

	// Query order does not matter; results come back in storage order.
	records, err := table.GetMany([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []codec.Record[string]{{Key: "a", Value: "1"}, {Key: "c", Value: "3"}}, records)

	_, err = table.GetMany([]string{"x", "y"})
	assert.True(t, IsNotFound(err))
}

func TestTable_GetAllEmptyTable(t *testing.T) {
	client, _ := openTestClient(t, "empty")
	table := client.GetTable()

	_, err := table.GetAll()
	assert.True(t, IsNotFound(err))
}

func TestTable_DeleteAllRewritesToZeroBytes(t *testing.T) {
	client, _ := openTestClient(t, "da")
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "1"))
	require.NoError(t, table.Insert("b", "2"))
	require.NoError(t, table.DeleteAll())

	assert.Equal(t, 0, table.Count())

	info, err := os.Stat(table.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestTable_ResetLeavesZeroByteFile(t *testing.T) {
	client, _ := openTestClient(t, "rs")
	table := client.GetTable()

	require.NoError(t, table.Insert("a", "1"))
	require.NoError(t, client.ResetTable())

	_, err := table.GetAll()
	assert.True(t, IsNotFound(err))

	info, err := os.Stat(table.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestTable_InsertOrderPreserved(t *testing.T) {
	client, _ := openTestClient(t, "order")
	table := client.GetTable()

	keys := []string{"z", "m", "a", "q"}
	for i, k := range keys {
		require.NoError(t, table.Insert(k, fmt.Sprintf("%d", i)))
	}

	all, err := table.GetAll()
	require.NoError(t, err)
	for i, k := range keys {
		assert.Equal(t, k, all[i].Key)
	}
}

func TestTable_GetReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	client, err := Open[map[string]int]("copy", dir, nil)
	require.NoError(t, err)
	defer client.Close()

	table := client.GetTable()
	require.NoError(t, table.Insert("a", map[string]int{"n": 1}))

	got, err := table.Get("a")
	require.NoError(t, err)
	got["n"] = 99

	again, err := table.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, again["n"])
}

func TestTable_CorruptFileOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0600))

	_, err := Open[string]("broken", dir, nil)
	assert.True(t, IsCorruptTable(err))
}

func TestTable_EmptyFileIsEmptySequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	client, err := Open[string]("blank", dir, nil)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 0, client.GetTable().Count())
}

func TestTable_MutationAfterCloseIsIOFatal(t *testing.T) {
	client, _ := openTestClient(t, "closed")
	table := client.GetTable()
	require.NoError(t, table.Insert("a", "1"))
	require.NoError(t, client.Close())

	err := table.Insert("b", "2")
	assert.True(t, IsIOFatal(err))

	// The failed mutation was rolled back in memory.
	assert.Equal(t, 1, table.Count())
}

func TestTable_ConcurrentMutations(t *testing.T) {
	client, _ := openTestClient(t, "conc")
	table := client.GetTable()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				assert.NoError(t, table.Insert(key, key))
				// Interleave reads with writes.
				_, _ = table.Get(key)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, table.Count())
	requireFileMatchesTable(t, table)
}
