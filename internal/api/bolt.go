package api

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	containersBucketName = []byte("containers") // <id>=<container bytes>
	metaBucketName       = []byte("meta")       // <id>=<Container as JSON>
)

// BoltStore persists containers in a bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	s := &BoltStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize %s: %w", path, err)
	}
	return s, nil
}

func (s *BoltStore) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(containersBucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucketName)
		return err
	})
}

func (s *BoltStore) Put(_ context.Context, c Container) error {
	meta, err := json.Marshal(c)
	if err != nil {
		return err
	}
	key := []byte(c.ID)
	return s.db.Update(func(tx *bolt.Tx) error {
		metas := tx.Bucket(metaBucketName)
		if metas.Get(key) != nil {
			return ErrAlreadyExists
		}
		if err := metas.Put(key, meta); err != nil {
			return err
		}
		return tx.Bucket(containersBucketName).Put(key, c.Data)
	})
}

func (s *BoltStore) Get(_ context.Context, id string) (Container, error) {
	var c Container
	key := []byte(id)
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucketName).Get(key)
		if meta == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(meta, &c); err != nil {
			return fmt.Errorf("decode %s: %w", id, err)
		}
		// Values are only valid for the life of the transaction.
		c.Data = bytes.Clone(tx.Bucket(containersBucketName).Get(key))
		return nil
	})
	if err != nil {
		return Container{}, err
	}
	return c, nil
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	key := []byte(id)
	return s.db.Update(func(tx *bolt.Tx) error {
		metas := tx.Bucket(metaBucketName)
		if metas.Get(key) == nil {
			return ErrNotFound
		}
		if err := metas.Delete(key); err != nil {
			return err
		}
		return tx.Bucket(containersBucketName).Delete(key)
	})
}

func (s *BoltStore) Len(context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(metaBucketName).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
