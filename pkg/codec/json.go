package codec

import (
	"encoding/json"
	"fmt"
)

// JSON is the default codec: a JSON array of {"key","value"} objects in
// storage order, with no trailing bytes. An empty sequence is represented
// by an empty buffer so a freshly reset table file stays at zero bytes.
type JSON[T any] struct{}

// NewJSON creates a JSON codec.
func NewJSON[T any]() *JSON[T] {
	return &JSON[T]{}
}

// Encode serializes records as a JSON array. An empty sequence encodes to
// zero bytes.
func (c *JSON[T]) Encode(records []Record[T]) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of records. Zero bytes decode to the empty
// sequence.
func (c *JSON[T]) Decode(data []byte) ([]Record[T], error) {
	if len(data) == 0 {
		return []Record[T]{}, nil
	}
	var records []Record[T]
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
