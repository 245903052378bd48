package database_test

import (
	"bytes"
	"testing"

	"github.com/cashlabs/cashspv/infrastructure/db/database"
)

func TestCursorStaysInBucket(t *testing.T) {
	testForAllDataAccessors(t, "TestCursorStaysInBucket", testCursorStaysInBucket)
}

func testCursorStaysInBucket(t *testing.T, accessor database.DataAccessor, testName string) {
	cursor, err := accessor.Cursor(testBucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %s", testName, err)
	}
	defer cursor.Close()

	count := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key unexpectedly failed: %s", testName, err)
		}
		if !bytes.Equal(key.Bytes(), testKey(count).Bytes()) {
			t.Fatalf("%s: got key %s at position %d, want %s", testName, key, count, testKey(count))
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("%s: Value unexpectedly failed: %s", testName, err)
		}
		if !bytes.Equal(value, testValue(count)) {
			t.Fatalf("%s: got value %s for key %s", testName, value, key)
		}
		count++
	}
	if count != testHeaderCount {
		t.Fatalf("%s: cursor visited %d entries, want %d", testName, count, testHeaderCount)
	}
}

func TestCursorSeek(t *testing.T) {
	testForAllDataAccessors(t, "TestCursorSeek", testCursorSeek)
}

func testCursorSeek(t *testing.T, accessor database.DataAccessor, testName string) {
	cursor, err := accessor.Cursor(testBucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %s", testName, err)
	}
	defer cursor.Close()

	err = cursor.Seek(testKey(7))
	if err != nil {
		t.Fatalf("%s: Seek unexpectedly failed: %s", testName, err)
	}
	value, err := cursor.Value()
	if err != nil {
		t.Fatalf("%s: Value unexpectedly failed: %s", testName, err)
	}
	if !bytes.Equal(value, testValue(7)) {
		t.Fatalf("%s: Seek landed on value %s", testName, value)
	}

	err = cursor.Seek(testBucket.Key([]byte("header07a")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Seek to a missing key returned %v", testName, err)
	}
}

func TestHasAndGetMissing(t *testing.T) {
	testForAllDataAccessors(t, "TestHasAndGetMissing", testHasAndGetMissing)
}

func testHasAndGetMissing(t *testing.T, accessor database.DataAccessor, testName string) {
	key := testBucket.Key([]byte("missing"))
	exists, err := accessor.Has(key)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %s", testName, err)
	}
	if exists {
		t.Fatalf("%s: Has unexpectedly returned true", testName)
	}
	_, err = accessor.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Get returned wrong error: %v", testName, err)
	}

	exists, err = accessor.Has(testKey(3))
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %s", testName, err)
	}
	if !exists {
		t.Fatalf("%s: Has unexpectedly returned false", testName)
	}
}

func TestBucketKeyBytes(t *testing.T) {
	bucket := database.MakeBucket([]byte("headers")).Bucket([]byte("mainnet"))
	key := bucket.Key([]byte("tip"))
	if !bytes.Equal(key.Bytes(), []byte("headers/mainnet/tip")) {
		t.Fatalf("TestBucketKeyBytes: unexpected key bytes %q", key.Bytes())
	}
	if !bytes.Equal(key.Suffix(), []byte("tip")) {
		t.Fatalf("TestBucketKeyBytes: unexpected suffix %q", key.Suffix())
	}
	if key.Bucket() != bucket {
		t.Fatalf("TestBucketKeyBytes: key lost its bucket")
	}
}
