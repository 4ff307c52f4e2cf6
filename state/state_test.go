// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addr = meter.BytesToAddress([]byte("contract"))
	key  = meter.StorageKey("counter")
)

func newCreator(t *testing.T) *state.Creator {
	db, err := lvldb.NewMem()
	require.Nil(t, err)
	return state.NewCreator(db)
}

func TestStateCheckpoint(t *testing.T) {
	st := newCreator(t).NewState()

	assert.Nil(t, st.GetRawStorage(addr, key))
	st.SetRawStorage(addr, key, []byte{1})

	rev := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte{2})
	assert.Equal(t, []byte{2}, st.GetRawStorage(addr, key))

	st.RevertTo(rev)
	assert.Equal(t, []byte{1}, st.GetRawStorage(addr, key))
	assert.Nil(t, st.Err())
}

func TestStateCommit(t *testing.T) {
	c := newCreator(t)
	st := c.NewState()
	st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	})
	other := meter.StorageKey("other")
	st.SetRawStorage(addr, other, []byte("x"))
	st.SetRawStorage(addr, other, nil)

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	h1, err := stage.Hash()
	require.Nil(t, err)
	require.Nil(t, c.Commit(stage, nil))

	// fresh state sees committed values
	st2 := c.NewState()
	var v uint64
	st2.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &v)
	})
	assert.Nil(t, st2.Err())
	assert.Equal(t, uint64(42), v)
	assert.Nil(t, st2.GetRawStorage(addr, other))

	// same change set, same digest
	st3 := c.NewState()
	st3.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	})
	st3.SetRawStorage(addr, other, nil)
	h2, _ := st3.Stage().Hash()
	assert.Equal(t, h1, h2)
}

func TestStateAbsorbsError(t *testing.T) {
	st := newCreator(t).NewState()
	boom := errors.New("boom")
	st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, boom })
	st.DecodeStorage(addr, key, func([]byte) error { return errors.New("second") })
	assert.Equal(t, boom, st.Err())

	_, err := st.Stage().Hash()
	assert.Equal(t, boom, err)
}
