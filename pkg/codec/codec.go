// Package codec converts between record sequences and their on-disk bytes.
//
// A codec must be a total inverse: Decode(Encode(s)) equals s for every
// valid sequence. The empty sequence encodes to zero bytes and zero bytes
// decode to the empty sequence; this is the only special case. Any other
// decode failure is an error.
package codec

// Record is a single key-value pair, the unit of storage and addressing.
// The key is opaque to the store; equality is byte-wise string equality.
type Record[T any] struct {
	Key   string `json:"key"`
	Value T      `json:"value"`
}

// Codec serializes a record sequence to bytes and back.
//
// Implementations must be stateless and deterministic so that two encodes
// of the same sequence produce identical bytes.
type Codec[T any] interface {
	Encode(records []Record[T]) ([]byte, error)
	Decode(data []byte) ([]Record[T], error)
}

// Clone deep-copies a record sequence by round-tripping it through the
// codec. The result shares no memory with the input, so values handed out
// of a table cannot be used to mutate the table's own sequence.
func Clone[T any](c Codec[T], records []Record[T]) ([]Record[T], error) {
	data, err := c.Encode(records)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}
