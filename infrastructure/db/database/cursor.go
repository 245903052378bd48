package database

// Cursor walks the entries of a single bucket in key order.
type Cursor interface {
	// Next advances to the next entry and returns false once the bucket
	// is exhausted. It panics on a closed cursor.
	Next() bool

	// First rewinds to the first entry and returns false if the bucket is
	// empty. It panics on a closed cursor.
	First() bool

	// Seek positions the cursor on key. It returns an error wrapping
	// ErrNotFound when key is not present.
	Seek(key *Key) error

	// Key returns the current key, relative to the cursor's bucket. The
	// returned suffix is only valid until the cursor moves.
	Key() (*Key, error)

	// Value returns the current value. It is only valid until the cursor
	// moves.
	Value() ([]byte, error)

	Close() error
}
