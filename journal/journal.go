// Package journal persists changesets (lists of deltas) per document in a
// bbolt database, so a document's history can be listed & replayed
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/qri-io/jsondelta"
	bolt "go.etcd.io/bbolt"
)

var (
	// ErrNotFound means the document or changeset doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyChangeset means Append was called without any deltas
	ErrEmptyChangeset = errors.New("empty changeset")
	// ErrCorrupt means a stored changeset can't be decoded or carries a delta
	// whose hash no longer matches its contents
	ErrCorrupt = errors.New("corrupt changeset")
)

// Options configure Open
type Options struct {
	// Timeout bounds the wait for the database file lock. zero waits forever
	Timeout time.Duration
	// ReadOnly opens the database with a shared lock, Append will fail
	ReadOnly bool
	// Logger for journal activity. If nil, slog.Default() is used
	Logger *slog.Logger
}

// Journal is an append-only store of changesets. Each document gets its own
// bucket, changesets within it are keyed by a big-endian sequence number so
// they iterate in the order they were appended
type Journal struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Entry is a single stored changeset
type Entry struct {
	Seq    uint64           `json:"seq"`
	Deltas jsondelta.Deltas `json:"deltas"`
}

// Open opens or creates the journal database at path
func Open(path string, opts Options) (*Journal, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: opts.Timeout, ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	return &Journal{db: db, logger: logger}, nil
}

// Close releases the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores deltas as the next changeset of doc, returning its sequence
// number. sequence numbers start at 1
func (j *Journal) Append(doc string, deltas jsondelta.Deltas) (seq uint64, err error) {
	if len(deltas) == 0 {
		return 0, ErrEmptyChangeset
	}
	data, err := json.Marshal(deltas)
	if err != nil {
		return 0, fmt.Errorf("encoding changeset: %w", err)
	}

	err = j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(doc))
		if err != nil {
			return err
		}
		if seq, err = b.NextSequence(); err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("appending to %q: %w", doc, err)
	}

	j.logger.Debug("appended changeset", "doc", doc, "seq", seq, "deltas", len(deltas))
	return seq, nil
}

// Changeset returns the changeset stored at seq
func (j *Journal) Changeset(doc string, seq uint64) (deltas jsondelta.Deltas, err error) {
	err = j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(doc))
		if b == nil {
			return fmt.Errorf("%w: document %q", ErrNotFound, doc)
		}
		data := b.Get(itob(seq))
		if data == nil {
			return fmt.Errorf("%w: changeset %d of %q", ErrNotFound, seq, doc)
		}
		deltas, err = decode(data)
		return err
	})
	return deltas, err
}

// Changesets returns every changeset of doc in sequence order
func (j *Journal) Changesets(doc string) ([]Entry, error) {
	return j.entries(doc, math.MaxUint64)
}

func (j *Journal) entries(doc string, upTo uint64) (entries []Entry, err error) {
	err = j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(doc))
		if b == nil {
			return fmt.Errorf("%w: document %q", ErrNotFound, doc)
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			seq := btoi(k)
			if seq > upTo {
				break
			}
			deltas, err := decode(v)
			if err != nil {
				return fmt.Errorf("changeset %d: %w", seq, err)
			}
			entries = append(entries, Entry{Seq: seq, Deltas: deltas})
		}
		return nil
	})
	return entries, err
}

// Documents lists every document with at least one changeset, sorted by name
func (j *Journal) Documents() (docs []string, err error) {
	err = j.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			docs = append(docs, string(name))
			return nil
		})
	})
	return docs, err
}

// Replay applies every changeset of doc to base in sequence order, returning
// the resulting document. base is not modified
func (j *Journal) Replay(doc string, base interface{}, opts jsondelta.PatchOptions) (interface{}, error) {
	return j.ReplayTo(doc, base, math.MaxUint64, opts)
}

// ReplayTo is Replay stopping after changeset seq, reconstructing the
// document as it was at that point in its history. Every delta is verified
// against its hash before anything is applied
func (j *Journal) ReplayTo(doc string, base interface{}, seq uint64, opts jsondelta.PatchOptions) (interface{}, error) {
	entries, err := j.entries(doc, seq)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		for i, d := range e.Deltas {
			if d == nil || !d.Verify() {
				return nil, fmt.Errorf("%w: changeset %d delta %d fails verification", ErrCorrupt, e.Seq, i)
			}
		}
	}

	cur := base
	for _, e := range entries {
		if cur, err = jsondelta.Patch(cur, e.Deltas, opts); err != nil {
			return nil, fmt.Errorf("replaying changeset %d of %q: %w", e.Seq, doc, err)
		}
		j.logger.Debug("replayed changeset", "doc", doc, "seq", e.Seq, "deltas", len(e.Deltas))
	}
	return cur, nil
}

func decode(data []byte) (deltas jsondelta.Deltas, err error) {
	if err := json.Unmarshal(data, &deltas); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return deltas, nil
}

// itob returns an 8-byte big endian representation of v
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
