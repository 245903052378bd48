package database

// Database is a key/value store that can open transactions.
//
// Begin and Close are kept out of DataAccessor so that a Transaction can be
// used wherever a DataAccessor is expected.
type Database interface {
	DataAccessor

	Begin() (Transaction, error)
	Close() error
}
