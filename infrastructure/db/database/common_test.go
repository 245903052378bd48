package database_test

import (
	"fmt"
	"testing"

	"github.com/cashlabs/cashspv/infrastructure/db/database"
	"github.com/cashlabs/cashspv/infrastructure/db/database/ldb"
)

// testHeaderCount is the number of entries populateDatabaseForTest writes.
const testHeaderCount = 10

var testBucket = database.MakeBucket([]byte("unittest")).Bucket([]byte("block-headers"))

func testKey(i int) *database.Key {
	return testBucket.Key([]byte(fmt.Sprintf("header%02d", i)))
}

func testValue(i int) []byte {
	return []byte(fmt.Sprintf("value%02d", i))
}

// populateDatabaseForTest opens a LevelDB in a temporary directory and
// writes testHeaderCount entries to testBucket, plus one entry outside of
// it.
func populateDatabaseForTest(t *testing.T) *ldb.LevelDB {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB unexpectedly failed: %s", err)
	}
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Errorf("Close unexpectedly failed: %s", err)
		}
	})

	for i := 0; i < testHeaderCount; i++ {
		err := db.Put(testKey(i), testValue(i))
		if err != nil {
			t.Fatalf("Put unexpectedly failed: %s", err)
		}
	}
	err = db.Put(database.MakeBucket([]byte("unittest")).Key([]byte("block-headers-count")), []byte{testHeaderCount})
	if err != nil {
		t.Fatalf("Put unexpectedly failed: %s", err)
	}
	return db
}

// testForAllDataAccessors runs testFunc against a populated database and
// against a transaction opened over the same data.
func testForAllDataAccessors(t *testing.T, testName string,
	testFunc func(t *testing.T, accessor database.DataAccessor, testName string)) {

	db := populateDatabaseForTest(t)
	testFunc(t, db, fmt.Sprintf("%s: database", testName))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin unexpectedly failed: %s", testName, err)
	}
	defer func() {
		err := tx.RollbackUnlessClosed()
		if err != nil {
			t.Errorf("%s: RollbackUnlessClosed unexpectedly failed: %s", testName, err)
		}
	}()
	testFunc(t, tx, fmt.Sprintf("%s: transaction", testName))
}
