package store

import (
	"os"

	"github.com/segmentio/ksuid"

	"github.com/moodb/moodb/pkg/codec"
	"github.com/moodb/moodb/pkg/config"
	"github.com/moodb/moodb/pkg/debug"
)

// Client is the user-facing entry point. It resolves the storage directory,
// owns the debug sink and exactly one table, and exposes the table-level
// lifecycle operations.
type Client[T any] struct {
	id     string
	dir    string
	config *config.Config
	sink   *debug.Sink
	table  *Table[T]
}

// Open creates or opens the named table with the default JSON codec.
//
// dir may be empty, in which case the configuration's db_dir is used, and
// the built-in default ("db/moo") after that. cfg may be nil for defaults.
// The directory is created if absent.
func Open[T any](name, dir string, cfg *config.Config) (*Client[T], error) {
	return OpenWithCodec[T](name, dir, cfg, codec.NewJSON[T]())
}

// OpenWithCodec is Open with a caller-chosen codec. The codec must satisfy
// the round-trip property Decode(Encode(s)) == s and treat zero bytes as the
// empty sequence.
func OpenWithCodec[T any](name, dir string, cfg *config.Config, c codec.Codec[T]) (*Client[T], error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	resolved := dir
	if resolved == "" {
		resolved = cfg.DBDir
	}
	if resolved == "" {
		resolved = config.DefaultDir
	}

	if err := os.MkdirAll(resolved, 0750); err != nil {
		return nil, wrapIO(err, "create database directory %s", resolved)
	}

	// The sink comes up before the table so construction events are logged.
	sink := debug.NewSink(cfg.DebugMode, debug.ParseLevel(cfg.DebugLevel), resolved)

	id := ksuid.New().String()
	sink.Infof("client %s opening table %s under %s", id, name, resolved)

	table, err := newTable(name, resolved, c, sink)
	if err != nil {
		sink.Errorf("client %s failed to open table %s: %v", id, name, err)
		_ = sink.Close()
		return nil, err
	}

	sink.Infof("client %s opened table %s with %d records", id, name, len(table.records))

	return &Client[T]{
		id:     id,
		dir:    resolved,
		config: cfg,
		sink:   sink,
		table:  table,
	}, nil
}

// GetTable returns the table handle. Every handle shares the same lock and
// the same in-memory sequence as the client's own table: mutations through
// one handle are visible through all of them and through the file.
func (c *Client[T]) GetTable() *Table[T] {
	c.sink.Infof("client %s getting table %s", c.id, c.table.name)
	return c.table
}

// ResetTable clears all records and truncates the table file to zero bytes.
// The file keeps existing.
func (c *Client[T]) ResetTable() error {
	c.sink.Infof("client %s resetting table %s", c.id, c.table.name)
	return c.table.reset()
}

// DeleteTable removes the table file itself. The table is empty and closed
// afterwards; the client must be reopened to use the table again.
func (c *Client[T]) DeleteTable() error {
	c.sink.Infof("client %s deleting table %s", c.id, c.table.name)
	return c.table.deleteSelf()
}

// Dir returns the resolved storage directory.
func (c *Client[T]) Dir() string {
	return c.dir
}

// Config returns the configuration the client was opened with.
func (c *Client[T]) Config() *config.Config {
	return c.config
}

// Close releases the table file and the debug sink.
func (c *Client[T]) Close() error {
	c.sink.Infof("client %s closing table %s", c.id, c.table.name)
	err := c.table.close()
	// The sink is a write-only observer; its close failure is not actionable.
	_ = c.sink.Close()
	return err
}
