// Package boltdb provides a songgraph.Deduper which keeps seen rows in a
// single bolt database file, one bucket per collection.
package boltdb

import (
	"os"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// Deduper is a disk backed songgraph.Deduper.
type Deduper struct {
	Db *bolt.DB

	filename string

	cmu         sync.RWMutex
	collections map[string]struct{}
}

// NewDeduper creates a fresh database file inside dir, or inside the system
// temp directory if dir is empty. Only that file is removed on Close.
func NewDeduper(dir string) (*Deduper, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.Wrap(err, "making dedup directory")
		}
	}
	f, err := os.CreateTemp(dir, "songgraph-dedup-*.bolt")
	if err != nil {
		return nil, errors.Wrap(err, "creating db file")
	}
	filename := f.Name()
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "closing new db file")
	}
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, InitialMmapSize: 50000000, NoGrowSync: true})
	if err != nil {
		os.Remove(filename)
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	db.MaxBatchDelay = 400 * time.Microsecond
	return &Deduper{
		Db:          db,
		filename:    filename,
		collections: make(map[string]struct{}),
	}, nil
}

func (d *Deduper) ensureCollection(name string) error {
	d.cmu.RLock()
	_, ok := d.collections[name]
	d.cmu.RUnlock()
	if ok {
		return nil
	}
	err := d.Db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "creating bucket for %s", name)
	}
	d.cmu.Lock()
	d.collections[name] = struct{}{}
	d.cmu.Unlock()
	return nil
}

// Add implements songgraph.Deduper. Concurrent calls are coalesced into
// batched transactions.
func (d *Deduper) Add(collection string, key []byte) (fresh bool, err error) {
	// bolt does not allow empty keys, and an empty row is a valid row.
	key = append([]byte{'k'}, key...)
	if err := d.ensureCollection(collection); err != nil {
		return false, err
	}
	err = d.Db.Batch(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b.Get(key) != nil {
			fresh = false
			return nil
		}
		fresh = true
		return b.Put(key, []byte{1})
	})
	if err != nil {
		return false, errors.Wrapf(err, "adding key to %s", collection)
	}
	return fresh, nil
}

// Close closes and removes the database.
func (d *Deduper) Close() error {
	err := d.Db.Close()
	if err != nil {
		return errors.Wrap(err, "closing db")
	}
	return errors.Wrap(os.Remove(d.filename), "removing db file")
}
