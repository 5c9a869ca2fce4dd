/*
Package boltstore provides a docstore.Store kept in a bolt database file.
*/
package boltstore

import (
	"context"
	"fmt"
	"time"

	"github.com/antoniomachine/bigml/docstore"
	"go.etcd.io/bbolt"
)

// Bucket is the name of the bucket holding the documents
const Bucket = "resources"

type boltStore struct {
	db *bbolt.DB
}

/*
Open takes the path to a bolt database file, opening or creating it, and
returns a docstore.Store on it or an error if the file cannot be opened.
*/
func Open(path string) (docstore.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %q: %v", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(Bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket %q: %v", Bucket, err)
	}
	return &boltStore{db}, nil
}

func (bs *boltStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc []byte
	err := bs.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(Bucket)).Get([]byte(id))
		if v == nil {
			return docstore.NotFound(id)
		}
		// v is only valid during the transaction
		doc = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (bs *boltStore) Put(ctx context.Context, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(Bucket)).Put([]byte(id), doc)
	})
	if err != nil {
		return fmt.Errorf("storing document %q: %v", id, err)
	}
	return nil
}

func (bs *boltStore) Close(ctx context.Context) error {
	return bs.db.Close()
}
