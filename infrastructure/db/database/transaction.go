package database

// Transaction groups writes that are applied atomically on Commit.
//
// Reads inside a transaction see the database as it was when the
// transaction began. Writes made through the transaction itself are not
// visible to its own reads.
type Transaction interface {
	DataAccessor

	// Rollback discards the pending writes and closes the transaction.
	Rollback() error

	// Commit applies the pending writes and closes the transaction.
	Commit() error

	// RollbackUnlessClosed is Rollback for a transaction that may already
	// have been committed. Meant for use with defer.
	RollbackUnlessClosed() error
}
