package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/moodb/moodb/pkg/codec"
	"github.com/moodb/moodb/pkg/debug"
)

// FileExtension is the suffix of every table file.
const FileExtension = "json"

// Table is a named, persistent, ordered sequence of key-value records.
//
// The whole working set lives in memory; the file is the authoritative copy
// and is rewritten in full after every mutation. Records keep the order in
// which surviving records were last inserted: updates happen in place and
// deletes compact the tail.
//
// A Table is safe for concurrent use. Reads take a shared lock over the
// in-memory sequence; mutations hold the exclusive lock for the whole
// persistence protocol. Handles obtained from Client.GetTable share the same
// lock and the same sequence, so an effect observed through one handle is
// observed through all of them.
type Table[T any] struct {
	name    string
	path    string
	codec   codec.Codec[T]
	sink    *debug.Sink
	metrics *Metrics

	mu      sync.RWMutex
	file    *os.File
	records []codec.Record[T]
}

// newTable opens or creates the table file under dir and loads it into
// memory. Zero bytes on disk mean an empty sequence; anything else must
// decode, otherwise the table is reported corrupt.
func newTable[T any](name, dir string, c codec.Codec[T], sink *debug.Sink) (*Table[T], error) {
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", name, FileExtension))

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, wrapIO(err, "open table file %s", path)
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, wrapIO(err, "read table file %s", path)
	}

	var records []codec.Record[T]
	if len(contents) == 0 {
		records = []codec.Record[T]{}
	} else {
		records, err = c.Decode(contents)
		if err != nil {
			file.Close()
			return nil, &Error{Kind: KindCorruptTable, Message: fmt.Sprintf("parse table file %s", path), Err: err}
		}
	}

	t := &Table[T]{
		name:    name,
		path:    path,
		codec:   c,
		sink:    sink,
		metrics: sharedMetrics(),
		file:    file,
		records: records,
	}
	t.metrics.setKeys(name, len(records))
	return t, nil
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// Path returns the table file path.
func (t *Table[T]) Path() string {
	return t.path
}

// indexOf returns the position of key in the sequence, or -1. Key
// uniqueness makes the first match the only match. Caller holds the lock.
func (t *Table[T]) indexOf(key string) int {
	for i := range t.records {
		if t.records[i].Key == key {
			return i
		}
	}
	return -1
}

// save runs the persistence protocol: encode the sequence, seek to zero,
// write everything, truncate to the encoded length, flush. Caller holds the
// write lock. Any failure leaves the table poisoned for the caller.
func (t *Table[T]) save() error {
	data, err := t.codec.Encode(t.records)
	if err != nil {
		return &Error{Kind: KindIOFatal, Message: fmt.Sprintf("encode records of table %s", t.name), Err: err}
	}

	if t.file == nil {
		return newError(KindIOFatal, "table %s is closed", t.name)
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return wrapIO(err, "seek table file %s", t.path)
	}
	if _, err := t.file.Write(data); err != nil {
		return wrapIO(err, "write table file %s", t.path)
	}
	if err := t.file.Truncate(int64(len(data))); err != nil {
		return wrapIO(err, "truncate table file %s", t.path)
	}
	if err := t.file.Sync(); err != nil {
		return wrapIO(err, "flush table file %s", t.path)
	}
	return nil
}

// mutate applies fn to the sequence and persists the result. When save
// fails the previous sequence is restored in memory so the handle does not
// silently drift further from disk; the caller still gets IOFatal and must
// reopen, because the file contents are unknown after a failed rewrite.
// Caller holds the write lock.
func (t *Table[T]) mutate(fn func()) error {
	snapshot := slices.Clone(t.records)
	fn()
	if err := t.save(); err != nil {
		t.records = snapshot
		return err
	}
	t.metrics.setKeys(t.name, len(t.records))
	return nil
}

// cloneRecords deep-copies records through the codec so the caller never
// shares memory with the table's own sequence.
func (t *Table[T]) cloneRecords(records []codec.Record[T]) ([]codec.Record[T], error) {
	cloned, err := codec.Clone(t.codec, records)
	if err != nil {
		return nil, &Error{Kind: KindIOFatal, Message: fmt.Sprintf("clone records of table %s", t.name), Err: err}
	}
	return cloned, nil
}

// Insert appends a record. The key must not already be present; use Update
// to change an existing record's value.
func (t *Table[T]) Insert(key string, value T) (err error) {
	defer t.metrics.track(t.name, "insert", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.indexOf(key) >= 0 {
		return newError(KindAlreadyExists, "record with key %q already exists, use update to change its value", key)
	}

	err = t.mutate(func() {
		t.records = append(t.records, codec.Record[T]{Key: key, Value: value})
	})
	if err != nil {
		return err
	}

	t.sink.Infof("inserted record with key %q into table %s", key, t.name)
	return nil
}

// InsertMany appends all records in list order with a single file rewrite.
// The precondition phase is all-or-nothing: if any key is already present,
// or collides with another entry in the list, nothing is inserted.
func (t *Table[T]) InsertMany(records []codec.Record[T]) (err error) {
	defer t.metrics.track(t.name, "insert_many", time.Now(), &err)

	if len(records) == 0 {
		return newError(KindEmptyInput, "no records to insert into table %s", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if t.indexOf(record.Key) >= 0 {
			return newError(KindAlreadyExists, "record with key %q already exists, use update to change its value", record.Key)
		}
		if _, dup := seen[record.Key]; dup {
			return newError(KindAlreadyExists, "record with key %q appears more than once in the input", record.Key)
		}
		seen[record.Key] = struct{}{}
	}

	err = t.mutate(func() {
		t.records = append(t.records, records...)
	})
	if err != nil {
		return err
	}

	t.sink.Infof("inserted %d records into table %s", len(records), t.name)
	return nil
}

// Get returns a copy of the value stored under key.
func (t *Table[T]) Get(key string) (value T, err error) {
	defer t.metrics.track(t.name, "get", time.Now(), &err)

	t.mu.RLock()
	defer t.mu.RUnlock()

	i := t.indexOf(key)
	if i < 0 {
		return value, newError(KindNotFound, "no record found with key %q in table %s", key, t.name)
	}

	cloned, err := t.cloneRecords(t.records[i : i+1])
	if err != nil {
		return value, err
	}

	t.sink.Infof("found record with key %q in table %s", key, t.name)
	return cloned[0].Value, nil
}

// GetMany returns copies of the records whose key is in keys, in storage
// order. An empty result is NotFound.
func (t *Table[T]) GetMany(keys []string) (records []codec.Record[T], err error) {
	defer t.metrics.track(t.name, "get_many", time.Now(), &err)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var matched []codec.Record[T]
	for _, record := range t.records {
		if slices.Contains(keys, record.Key) {
			matched = append(matched, record)
		}
	}

	if len(matched) == 0 {
		return nil, newError(KindNotFound, "no records found with keys %v in table %s", keys, t.name)
	}

	cloned, err := t.cloneRecords(matched)
	if err != nil {
		return nil, err
	}

	t.sink.Infof("found %d records in table %s", len(cloned), t.name)
	return cloned, nil
}

// GetAll returns a copy of the whole sequence in storage order. An empty
// table is NotFound.
func (t *Table[T]) GetAll() (records []codec.Record[T], err error) {
	defer t.metrics.track(t.name, "get_all", time.Now(), &err)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.records) == 0 {
		return nil, newError(KindNotFound, "no records found in table %s", t.name)
	}

	cloned, err := t.cloneRecords(t.records)
	if err != nil {
		return nil, err
	}

	t.sink.Infof("found %d records in table %s", len(cloned), t.name)
	return cloned, nil
}

// Update replaces the value of an existing record in place; the record
// keeps its position in the sequence.
func (t *Table[T]) Update(key string, value T) (err error) {
	defer t.metrics.track(t.name, "update", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(key)
	if i < 0 {
		return newError(KindNotFound, "no record found with key %q in table %s", key, t.name)
	}

	err = t.mutate(func() {
		t.records[i].Value = value
	})
	if err != nil {
		return err
	}

	t.sink.Infof("updated record with key %q in table %s", key, t.name)
	return nil
}

// UpdateMany updates every record whose key matches an entry in records,
// with a single file rewrite. Keys absent from the table are silently
// ignored.
func (t *Table[T]) UpdateMany(records []codec.Record[T]) (err error) {
	defer t.metrics.track(t.name, "update_many", time.Now(), &err)

	if len(records) == 0 {
		return newError(KindEmptyInput, "no records to update in table %s", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	updates := make(map[string]T, len(records))
	for _, record := range records {
		updates[record.Key] = record.Value
	}

	updated := 0
	err = t.mutate(func() {
		for i := range t.records {
			if value, ok := updates[t.records[i].Key]; ok {
				t.records[i].Value = value
				updated++
			}
		}
	})
	if err != nil {
		return err
	}

	if updated < len(updates) {
		t.sink.Warningf("update skipped %d absent keys in table %s", len(updates)-updated, t.name)
	}
	t.sink.Infof("updated %d records in table %s", updated, t.name)
	return nil
}

// Delete removes the record with the given key; the tail compacts in place.
func (t *Table[T]) Delete(key string) (err error) {
	defer t.metrics.track(t.name, "delete", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(key)
	if i < 0 {
		return newError(KindNotFound, "no record found with key %q in table %s", key, t.name)
	}

	err = t.mutate(func() {
		t.records = slices.Delete(t.records, i, i+1)
	})
	if err != nil {
		return err
	}

	t.sink.Infof("deleted record with key %q from table %s", key, t.name)
	return nil
}

// DeleteMany removes every record whose key is in keys, with a single file
// rewrite. Keys absent from the table are not an error.
func (t *Table[T]) DeleteMany(keys []string) (err error) {
	defer t.metrics.track(t.name, "delete_many", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.records)
	err = t.mutate(func() {
		t.records = slices.DeleteFunc(t.records, func(record codec.Record[T]) bool {
			return slices.Contains(keys, record.Key)
		})
	})
	if err != nil {
		return err
	}

	t.sink.Infof("deleted %d records from table %s", before-len(t.records), t.name)
	return nil
}

// DeleteAll clears the sequence and rewrites the file to zero bytes.
func (t *Table[T]) DeleteAll() (err error) {
	defer t.metrics.track(t.name, "delete_all", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	err = t.mutate(func() {
		t.records = t.records[:0]
	})
	if err != nil {
		return err
	}

	t.sink.Infof("deleted all records from table %s", t.name)
	return nil
}

// Count returns the number of records in the table.
func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Exists reports whether a record with the given key is present.
func (t *Table[T]) Exists(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.indexOf(key) >= 0
}

// reset clears the sequence and truncates the file to zero bytes using the
// same protocol as a mutation. The file keeps existing, unlike deleteSelf.
func (t *Table[T]) reset() (err error) {
	defer t.metrics.track(t.name, "reset", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.mutate(func() {
		t.records = t.records[:0]
	})
}

// deleteSelf clears the sequence, then closes and removes the table file.
// The in-memory sequence stays cleared even when the remove fails.
func (t *Table[T]) deleteSelf() (err error) {
	defer t.metrics.track(t.name, "delete_self", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = t.records[:0]
	t.metrics.setKeys(t.name, 0)

	if t.file != nil {
		if cerr := t.file.Close(); cerr != nil {
			t.file = nil
			return wrapIO(cerr, "close table file %s", t.path)
		}
		t.file = nil
	}

	if err := os.Remove(t.path); err != nil {
		return wrapIO(err, "delete table file %s", t.path)
	}
	return nil
}

// close releases the file handle. Further mutations fail with IOFatal.
func (t *Table[T]) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	if err != nil {
		return wrapIO(err, "close table file %s", t.path)
	}
	return nil
}
