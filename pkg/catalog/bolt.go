package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var tripsBucket = []byte("trips")

// boltRecord keeps the insertion sequence next to the trip so List can
// return trips in the order they were first stored, not in key order.
type boltRecord struct {
	Seq  uint64 `msgpack:"seq"`
	Trip Trip   `msgpack:"trip"`
}

// BoltStore is a Store backed by a bbolt file. Values are msgpack encoded.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open trip db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tripsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trips bucket: %w", err)
	}
	log.Debugf("Opened trip db at %s", path)
	return &BoltStore{db: db, path: path}, nil
}

func (s *BoltStore) List() ([]Trip, error) {
	var records []boltRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tripsBucket).ForEach(func(k, v []byte) error {
			var rec boltRecord
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding trip %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, closedErr(err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	trips := make([]Trip, len(records))
	for i, rec := range records {
		trips[i] = rec.Trip
	}
	return trips, nil
}

func (s *BoltStore) Get(code string) (Trip, error) {
	var rec boltRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(tripsBucket).Get([]byte(code))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrTripNotFound, code)
		}
		return msgpack.Unmarshal(v, &rec)
	})
	if err != nil {
		return Trip{}, closedErr(err)
	}
	return rec.Trip, nil
}

func (s *BoltStore) Put(trip Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tripsBucket)
		key := []byte(trip.Code)

		rec := boltRecord{Trip: trip}
		if old := b.Get(key); old != nil {
			var prev boltRecord
			if err := msgpack.Unmarshal(old, &prev); err != nil {
				return fmt.Errorf("decoding trip %s: %w", trip.Code, err)
			}
			rec.Seq = prev.Seq
		} else {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			rec.Seq = seq
		}

		data, err := msgpack.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("encoding trip %s: %w", trip.Code, err)
		}
		return b.Put(key, data)
	})
	return closedErr(err)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying database so other buckets can share the file.
func (s *BoltStore) DB() *bolt.DB {
	return s.db
}

// closedErr reports a closed database as ErrStoreClosed, like MemoryStore.
func closedErr(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrStoreClosed
	}
	return err
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.path
}
