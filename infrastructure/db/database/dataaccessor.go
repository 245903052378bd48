package database

// DataAccessor is implemented by both Database and Transaction, so the
// header stores can read and write through either.
type DataAccessor interface {
	// Put sets the value of key, replacing any previous value.
	Put(key *Key, value []byte) error

	// Get returns the value of key, or an error wrapping ErrNotFound.
	Get(key *Key) ([]byte, error)

	// Has returns whether key is present.
	Has(key *Key) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key *Key) error

	// Cursor opens a cursor over the keys of bucket, in key order.
	Cursor(bucket *Bucket) (Cursor, error)
}
