package lib

/* This file contains the persistence interfaces used throughout the app */

// StoreI defines the interface for interacting with durable settlement storage
type StoreI interface {
	RWStoreI                           // reading and writing
	Commit() ErrorI                    // atomically persist all staged writes
	Discard()                          // drop all staged writes
	Close() ErrorI                     // gracefully stop the database
	NewReadOnly() (ReadOnlyStoreI, ErrorI) // a snapshot view for concurrent queries
}

// ReadOnlyStoreI defines a read-only view over the settlement storage
type ReadOnlyStoreI interface {
	RStoreI
	Discard()
}

// RWStoreI defines the Read/Write interface for basic db CRUD operations
type RWStoreI interface {
	RStoreI
	WStoreI
}

// WStoreI defines an interface for basic write operations
type WStoreI interface {
	Set(key, value []byte) ErrorI // set value bytes referenced by key bytes
	Delete(key []byte) ErrorI     // remove the key and its value
}

// RStoreI defines an interface for basic read operations
type RStoreI interface {
	Get(key []byte) ([]byte, ErrorI)               // access value bytes using key bytes
	Iterator(prefix []byte) (IteratorI, ErrorI)    // iterate through the data one KV pair at a time in lexicographical order
	RevIterator(prefix []byte) (IteratorI, ErrorI) // iterate through the data one KV pair at a time in reverse lexicographical order
}

// IteratorI defines an interface for iterating over key-value pairs in a data store
type IteratorI interface {
	Valid() bool           // if the item the iterator is pointing at is valid
	Next()                 // move to next item
	Key() (key []byte)     // retrieve key
	Value() (value []byte) // retrieve value
	Close()                // close the iterator when done, ensuring proper resource management
}
