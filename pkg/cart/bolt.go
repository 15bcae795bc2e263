package cart

import (
	"errors"
	"fmt"

	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var cartsBucket = []byte("carts")

// BoltStore keeps carts in the "carts" bucket of a database owned by
// someone else, usually the catalog.BoltStore. Values are msgpack encoded.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates the carts bucket in db if needed.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create carts bucket: %w", closedErr(err))
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(userID string) (Cart, error) {
	var c Cart
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cartsBucket).Get([]byte(userID))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrCartNotFound, userID)
		}
		return msgpack.Unmarshal(v, &c)
	})
	if err != nil {
		return Cart{}, closedErr(err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (s *BoltStore) Put(c Cart) error {
	data, err := msgpack.Marshal(&c)
	if err != nil {
		return fmt.Errorf("encoding cart %s: %w", c.UserID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Put([]byte(c.UserID), data)
	})
	return closedErr(err)
}

func closedErr(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return catalog.ErrStoreClosed
	}
	return err
}
