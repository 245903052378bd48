package headerstore_test

import (
	"math/big"
	"os"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/datastructures/headerstore"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/testutils"
	"github.com/cashlabs/cashspv/infrastructure/db/database"
	"github.com/cashlabs/cashspv/infrastructure/db/database/ldb"
)

type storePrepareFunc func(t *testing.T) (store model.HeaderStore, name string, teardownFunc func())

var storePrepareFuncs = []storePrepareFunc{
	prepareMemoryStoreForTest,
	prepareLevelDBStoreForTest,
	prepareCachedStoreForTest,
}

func prepareMemoryStoreForTest(t *testing.T) (model.HeaderStore, string, func()) {
	return headerstore.NewMemoryStore(), "memory", func() {}
}

func prepareLevelDBStoreForTest(t *testing.T) (model.HeaderStore, string, func()) {
	path, err := os.MkdirTemp("", "headerstore")
	require.NoError(t, err)
	db, err := ldb.NewLevelDB(path, 8)
	require.NoError(t, err)
	store, err := headerstore.NewLevelDBStore(db, []byte(chaincfg.UnitTestParams.Name))
	require.NoError(t, err)

	return store, "leveldb", func() {
		require.NoError(t, db.Close())
		os.RemoveAll(path)
	}
}

func prepareCachedStoreForTest(t *testing.T) (model.HeaderStore, string, func()) {
	return headerstore.NewCachedStore(headerstore.NewMemoryStore(), 4), "cached", func() {}
}

// testForAllStoreTypes runs testFunc against every HeaderStore
// implementation.
func testForAllStoreTypes(t *testing.T, testFunc func(t *testing.T, store model.HeaderStore)) {
	for _, prepareStore := range storePrepareFuncs {
		store, name, teardownFunc := prepareStore(t)
		t.Run(name, func(t *testing.T) {
			testFunc(t, store)
		})
		teardownFunc()
	}
}

// buildChain returns a chain of count headers on top of the unit test
// genesis.
func buildChain(t *testing.T, count int) []*model.StoredHeader {
	params := &chaincfg.UnitTestParams
	builder := testutils.NewChainBuilder(t, params.GenesisHeader)
	builder.Extend(count, 600, params.PowLimitBits)
	return builder.Chain
}

func putChain(t *testing.T, store model.HeaderStore, chain []*model.StoredHeader) {
	for _, header := range chain {
		require.NoError(t, store.Put(header))
	}
}

func TestStorePutGet(t *testing.T) {
	chain := buildChain(t, 20)

	testForAllStoreTypes(t, func(t *testing.T, store model.HeaderStore) {
		putChain(t, store, chain)

		for _, header := range chain {
			stored, err := store.Get(header.Hash())
			require.NoError(t, err)
			require.Equal(t, header.Header, stored.Header)
			require.Equal(t, header.Height, stored.Height)
			require.Zero(t, header.ChainWork.Cmp(stored.ChainWork))
			require.Equal(t, header.Hash(), stored.Hash())

			exists, err := store.Has(header.Hash())
			require.NoError(t, err)
			require.True(t, exists)
		}

		// Putting a header twice is a no-op.
		require.NoError(t, store.Put(chain[5]))
	})
}

func TestStoreMissingHeader(t *testing.T) {
	missing := chainhash.Hash{0xde, 0xad}

	testForAllStoreTypes(t, func(t *testing.T, store model.HeaderStore) {
		_, err := store.Get(&missing)
		require.True(t, model.IsNotFoundError(err), "unexpected error %v", err)

		var storeErr *model.StoreError
		require.ErrorAs(t, err, &storeErr)
		require.Equal(t, missing, storeErr.Hash)

		exists, err := store.Has(&missing)
		require.NoError(t, err)
		require.False(t, exists)

		_, err = store.Tip()
		require.True(t, model.IsNotFoundError(err), "unexpected error %v", err)

		err = store.SetTip(&missing)
		require.True(t, model.IsNotFoundError(err), "unexpected error %v", err)
	})
}

func TestStoreAncestorAtHeight(t *testing.T) {
	chain := buildChain(t, 30)
	tip := chain[len(chain)-1]

	testForAllStoreTypes(t, func(t *testing.T, store model.HeaderStore) {
		putChain(t, store, chain)

		for _, height := range []uint32{0, 1, 15, 29, 30} {
			ancestor, err := store.AncestorAtHeight(tip, height)
			require.NoError(t, err)
			require.Equal(t, chain[height].Hash(), ancestor.Hash())
		}

		_, err := store.AncestorAtHeight(chain[10], 11)
		require.True(t, model.IsNotFoundError(err), "unexpected error %v", err)
	})
}

func TestStoreTip(t *testing.T) {
	chain := buildChain(t, 5)

	testForAllStoreTypes(t, func(t *testing.T, store model.HeaderStore) {
		putChain(t, store, chain)

		require.NoError(t, store.SetTip(chain[3].Hash()))
		tip, err := store.Tip()
		require.NoError(t, err)
		require.Equal(t, chain[3].Hash(), tip.Hash())

		require.NoError(t, store.SetTip(chain[5].Hash()))
		tip, err = store.Tip()
		require.NoError(t, err)
		require.Equal(t, chain[5].Hash(), tip.Hash())
	})
}

func TestLevelDBStoreReopen(t *testing.T) {
	path, err := os.MkdirTemp("", "TestLevelDBStoreReopen")
	require.NoError(t, err)
	defer os.RemoveAll(path)

	chain := buildChain(t, 10)
	prefix := []byte(chaincfg.UnitTestParams.Name)

	db, err := ldb.NewLevelDB(path, 8)
	require.NoError(t, err)
	store, err := headerstore.NewLevelDBStore(db, prefix)
	require.NoError(t, err)
	putChain(t, store, chain)
	require.NoError(t, store.SetTip(chain[10].Hash()))
	require.EqualValues(t, 11, store.Count())
	require.NoError(t, db.Close())

	db, err = ldb.NewLevelDB(path, 8)
	require.NoError(t, err)
	defer db.Close()

	store, err = headerstore.NewLevelDBStore(db, prefix)
	require.NoError(t, err)
	require.EqualValues(t, 11, store.Count())
	tip, err := store.Tip()
	require.NoError(t, err)
	require.Equal(t, chain[10].Hash(), tip.Hash())
	require.Equal(t, uint32(10), tip.Height)

	// Another network in the same database starts empty.
	otherStore, err := headerstore.NewLevelDBStore(db, []byte(chaincfg.RegtestParams.Name))
	require.NoError(t, err)
	require.Zero(t, otherStore.Count())
	_, err = otherStore.Get(chain[3].Hash())
	require.True(t, model.IsNotFoundError(err))
}

func TestLevelDBStoreRecountsHeaders(t *testing.T) {
	path := t.TempDir()
	chain := buildChain(t, 6)
	prefix := []byte(chaincfg.UnitTestParams.Name)

	db, err := ldb.NewLevelDB(path, 8)
	require.NoError(t, err)
	defer db.Close()

	store, err := headerstore.NewLevelDBStore(db, prefix)
	require.NoError(t, err)
	putChain(t, store, chain)

	// A database without a count has its headers counted on open.
	require.NoError(t, db.Delete(database.MakeBucket(prefix).Key([]byte("block-headers-count"))))
	store, err = headerstore.NewLevelDBStore(db, prefix)
	require.NoError(t, err)
	require.EqualValues(t, 7, store.Count())

	longer := buildChain(t, 8)
	putChain(t, store, longer[7:8])
	require.EqualValues(t, 8, store.Count())
	putChain(t, store, longer[7:])
	require.EqualValues(t, 9, store.Count())
}

func TestLevelDBStoreLargeChainWork(t *testing.T) {
	path, err := os.MkdirTemp("", "TestLevelDBStoreLargeChainWork")
	require.NoError(t, err)
	defer os.RemoveAll(path)

	db, err := ldb.NewLevelDB(path, 8)
	require.NoError(t, err)
	defer db.Close()
	store, err := headerstore.NewLevelDBStore(db, []byte("mainnet"))
	require.NoError(t, err)

	chainWork, ok := new(big.Int).SetString("000000000000000000000000000000000000000001595c6f3fa0ef2b4c6e2b1a", 16)
	require.True(t, ok)
	builder := testutils.NewChainBuilderAt(t, 1605447844, 0x1804dafe, 661647)
	checkpoint := model.NewCheckpointStoredHeader(&builder.Tip().Header, 661647, chainWork)
	require.NoError(t, store.Put(checkpoint))

	stored, err := store.Get(checkpoint.Hash())
	require.NoError(t, err)
	require.Zero(t, chainWork.Cmp(stored.ChainWork))
	require.Equal(t, uint32(661647), stored.Height)
}

func TestCachedStoreReadsThrough(t *testing.T) {
	chain := buildChain(t, 10)
	backing := headerstore.NewMemoryStore()
	putChain(t, backing, chain)

	store := headerstore.NewCachedStore(backing, 3)
	for i := 0; i < 2; i++ {
		for _, header := range chain[:3] {
			stored, err := store.Get(header.Hash())
			require.NoError(t, err)
			require.Same(t, header, stored)
		}
	}
	hits, misses := store.Stats()
	require.EqualValues(t, 3, hits)
	require.EqualValues(t, 3, misses)
	require.Equal(t, 3, store.Len())

	// Walking the whole chain evicts down to the capacity.
	_, err := store.AncestorAtHeight(chain[10], 0)
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())
}
