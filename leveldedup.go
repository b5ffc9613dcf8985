// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package songgraph

import (
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDeduper is a Deduper which keeps one leveldb per collection under a
// directory, so the distinct set of a collection can grow beyond memory.
type LevelDeduper struct {
	dirname string

	dbmu sync.RWMutex
	dbs  map[string]*leveldb.DB

	lock ValueLocker
}

// Errors collects the errors from closing several resources.
type Errors []error

func (errs Errors) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}

// NewLevelDeduper creates a LevelDeduper in a fresh scratch directory inside
// parent, or inside the system temp directory if parent is empty. Only the
// scratch directory is ever removed; nothing else under parent is touched.
func NewLevelDeduper(parent string) (*LevelDeduper, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0700); err != nil {
			return nil, errors.Wrap(err, "making dedup directory")
		}
	}
	dirname, err := os.MkdirTemp(parent, "songgraph-dedup-")
	if err != nil {
		return nil, errors.Wrap(err, "making scratch directory")
	}
	return &LevelDeduper{
		dirname: dirname,
		dbs:     make(map[string]*leveldb.DB),
		lock:    NewBucketVLock(),
	}, nil
}

func (ld *LevelDeduper) getDB(collection string) (*leveldb.DB, error) {
	ld.dbmu.RLock()
	db, ok := ld.dbs[collection]
	ld.dbmu.RUnlock()
	if ok {
		return db, nil
	}
	ld.dbmu.Lock()
	defer ld.dbmu.Unlock()
	if db, ok = ld.dbs[collection]; ok {
		return db, nil
	}
	name := filepath.Join(ld.dirname, collection)
	db, err := leveldb.OpenFile(name, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", name)
	}
	ld.dbs[collection] = db
	return db, nil
}

// Add implements Deduper.
func (ld *LevelDeduper) Add(collection string, key []byte) (bool, error) {
	db, err := ld.getDB(collection)
	if err != nil {
		return false, err
	}
	// Has and Put must not interleave for the same key.
	ld.lock.Lock(key)
	defer ld.lock.Unlock(key)
	seen, err := db.Has(key, &opt.ReadOptions{})
	if err != nil {
		return false, errors.Wrapf(err, "checking key in %s", collection)
	}
	if seen {
		return false, nil
	}
	err = db.Put(key, nil, &opt.WriteOptions{})
	if err != nil {
		return false, errors.Wrapf(err, "putting key in %s", collection)
	}
	return true, nil
}

// Close closes every database and removes the scratch directory.
func (ld *LevelDeduper) Close() error {
	ld.dbmu.Lock()
	defer ld.dbmu.Unlock()
	errs := make(Errors, 0)
	for c, db := range ld.dbs {
		err := db.Close()
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "closing leveldb for collection: %v", c))
		}
	}
	ld.dbs = make(map[string]*leveldb.DB)
	if err := os.RemoveAll(ld.dirname); err != nil {
		errs = append(errs, errors.Wrap(err, "removing scratch directory"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValueLocker locks on a value rather than on a whole structure.
type ValueLocker interface {
	Lock(val []byte)
	Unlock(val []byte)
}

// BucketVLock is a ValueLocker which hashes values onto a fixed set of
// mutexes.
type BucketVLock struct {
	ms []sync.Mutex
}

// NewBucketVLock gets a BucketVLock with 1000 buckets.
func NewBucketVLock() BucketVLock {
	return BucketVLock{
		ms: make([]sync.Mutex, 1000),
	}
}

// Lock implements ValueLocker.
func (b BucketVLock) Lock(val []byte) {
	b.ms[bucket(val, len(b.ms))].Lock()
}

// Unlock implements ValueLocker.
func (b BucketVLock) Unlock(val []byte) {
	b.ms[bucket(val, len(b.ms))].Unlock()
}

func bucket(val []byte, n int) uint32 {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	return hsh.Sum32() % uint32(n)
}
