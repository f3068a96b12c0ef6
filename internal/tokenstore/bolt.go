package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var tokensBucket = []byte("tokens")

// Bolt stores tokens in a single bolt file, one key per server host.
// Used where no OS keyring is available (servers, CI).
type Bolt struct {
	path       string
	serverHost string
}

// OpenBolt returns a file-backed store. The file and its directory are
// created on first save.
func OpenBolt(path, serverHost string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token file directory: %w", err)
	}
	return &Bolt{path: path, serverHost: serverHost}, nil
}

// open acquires the file per operation so that short-lived CLI commands
// never hold the bolt lock longer than necessary.
func (b *Bolt) open() (*bolt.DB, error) {
	db, err := bolt.Open(b.path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	return db, nil
}

func (b *Bolt) Save(token string) error {
	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(tokensBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(b.serverHost), []byte(token))
	})
}

func (b *Bolt) Load() (string, error) {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return "", ErrNotFound
	}

	db, err := b.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	var token string
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(tokensBucket)
		if bucket == nil {
			return ErrNotFound
		}
		value := bucket.Get([]byte(b.serverHost))
		if value == nil {
			return ErrNotFound
		}
		token = string(value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (b *Bolt) Delete() error {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return nil
	}

	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(tokensBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(b.serverHost))
	})
}
