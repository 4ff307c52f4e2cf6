// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb_test

import (
	"testing"

	"github.com/meterio/meter-auction/lvldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	db, err := lvldb.NewMem()
	require.Nil(t, err)
	defer db.Close()

	_, err = db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))

	batch := db.NewBatch()
	batch.Put([]byte("p-1"), []byte("v1"))
	batch.Put([]byte("p-2"), []byte("v2"))
	batch.Put([]byte("q-1"), []byte("v3"))
	assert.Equal(t, 3, batch.Len())

	has, _ := db.Has([]byte("p-1"))
	assert.False(t, has, "batch should not be visible before write")
	require.Nil(t, batch.Write())

	v, err := db.Get([]byte("p-2"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v2"), v)

	it := db.NewIterator([]byte("p-"))
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.Nil(t, it.Error())
	assert.Equal(t, []string{"p-1", "p-2"}, keys)

	require.Nil(t, db.Delete([]byte("p-1")))
	has, _ = db.Has([]byte("p-1"))
	assert.False(t, has)
}
