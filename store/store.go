package store

import (
	"path/filepath"
	"sync"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/dgraph-io/badger/v4"
)

/*
	This file wraps badgerDB behind the lib.StoreI interface.

	The Store stages all writes in a single badger transaction; Commit()
	persists the staged writes atomically and Discard() drops them. The
	settlement state machine uses this boundary to guarantee that a failed
	operation leaves zero partial state behind: locked balances, processed
	proofs, reserves, and share balances are only durable after Commit().
*/

var _ lib.StoreI = &Store{}

type Store struct {
	db  *badger.DB  // the underlying database
	txn *badger.Txn // the staged write transaction
	log lib.LoggerI // logger
	mu  sync.Mutex  // mutex for commit / discard
}

// New() creates a new instance of a StoreI either in memory or an actual disk DB
func New(config lib.Config, log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	if config.StoreConfig.InMemory {
		return NewStoreInMemory(log)
	}
	return NewStore(filepath.Join(config.DataDirPath, config.DBName), log)
}

// NewStore() creates a new instance of a disk DB
func NewStore(path string, log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, log), nil
}

// NewStoreInMemory() creates a new instance of a mem DB
func NewStoreInMemory(log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, log), nil
}

// NewStoreWithDB() returns a Store object given a DB and a logger
func NewStoreWithDB(db *badger.DB, log lib.LoggerI) *Store {
	return &Store{
		db:  db,
		txn: db.NewTransaction(true),
		log: log,
	}
}

// Get() returns the value bytes referenced by the key from the staged transaction
func (s *Store) Get(key []byte) ([]byte, lib.ErrorI) {
	item, err := s.txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, ErrStoreGet(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, ErrStoreGet(err)
	}
	return val, nil
}

// Set() stages the key-value pair in the current transaction
func (s *Store) Set(key, value []byte) lib.ErrorI {
	if err := s.txn.Set(key, value); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

// Delete() stages removal of the key-value pair in the current transaction
func (s *Store) Delete(key []byte) lib.ErrorI {
	if err := s.txn.Delete(key); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

// Iterator() creates a new iterator for the given prefix over the staged transaction
func (s *Store) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := s.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	parent.Rewind()
	return &Iterator{parent: parent}, nil
}

// RevIterator() creates a new reverse iterator for the given prefix over the staged transaction
func (s *Store) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := s.txn.NewIterator(badger.IteratorOptions{Prefix: prefix, Reverse: true})
	// position past the final key of the prefix range
	parent.Seek(prefixEnd(prefix))
	return &Iterator{parent: parent}, nil
}

// Commit() atomically persists the staged writes and begins a fresh transaction
func (s *Store) Commit() lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.txn.Commit(); err != nil {
		return ErrCommitDB(err)
	}
	s.txn = s.db.NewTransaction(true)
	return nil
}

// Discard() drops the staged writes and begins a fresh transaction
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Discard()
	s.txn = s.db.NewTransaction(true)
}

// NewReadOnly() returns a snapshot view of the committed state for concurrent queries
func (s *Store) NewReadOnly() (lib.ReadOnlyStoreI, lib.ErrorI) {
	return &readOnlyStore{txn: s.db.NewTransaction(false)}, nil
}

// Close() discards the staged transaction and closes the database connection
func (s *Store) Close() lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Discard()
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// DB() returns the underlying badger instance
func (s *Store) DB() *badger.DB { return s.db }

// readOnlyStore is a snapshot view over the committed state
type readOnlyStore struct {
	txn *badger.Txn
}

func (r *readOnlyStore) Get(key []byte) ([]byte, lib.ErrorI) {
	item, err := r.txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, ErrStoreGet(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, ErrStoreGet(err)
	}
	return val, nil
}

func (r *readOnlyStore) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := r.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	parent.Rewind()
	return &Iterator{parent: parent}, nil
}

func (r *readOnlyStore) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := r.txn.NewIterator(badger.IteratorOptions{Prefix: prefix, Reverse: true})
	parent.Seek(prefixEnd(prefix))
	return &Iterator{parent: parent}, nil
}

func (r *readOnlyStore) Discard() { r.txn.Discard() }

// IteratorI interface enforcement
var _ lib.IteratorI = &Iterator{}

// Iterator implements a wrapper around badgerDB's iterator but satisfies the IteratorI interface
type Iterator struct {
	parent *badger.Iterator
}

func (i *Iterator) Valid() bool   { return i.parent.Valid() }
func (i *Iterator) Next()         { i.parent.Next() }
func (i *Iterator) Close()        { i.parent.Close() }
func (i *Iterator) Key() []byte   { return i.parent.Item().KeyCopy(nil) }
func (i *Iterator) Value() []byte {
	value, err := i.parent.Item().ValueCopy(nil)
	if err != nil {
		return nil
	}
	return value
}

// prefixEnd() returns the first key lexicographically after every key with the prefix
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	// all 0xFF: no upper bound exists, return max key
	return append(end, 0xFF)
}
