package store

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "scanner"

// BoltDB wraps a bbolt database holding every scanner document in one
// bucket, one key per document.
type BoltDB struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Store returns the document store for key.
func (b *BoltDB) Store(key string) Store {
	return &boltStore{db: b.db, key: []byte(key)}
}

func (b *BoltDB) Close() error {
	return b.db.Close()
}

type boltStore struct {
	db  *bbolt.DB
	key []byte
}

func (s *boltStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get(s.key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.key, err)
	}
	return data, nil
}

func (s *boltStore) Save(ctx context.Context, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(s.key, data)
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", s.key, err)
	}
	return nil
}
