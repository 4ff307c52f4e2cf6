// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"testing"

	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/tx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCounterCountsCommittedOnly(t *testing.T) {
	now := uint64(2000000000000)
	n, err := OpenMem(genesis.NewDevnet(), WithClock(func() uint64 { return now }))
	require.Nil(t, err)
	devs := genesis.DevAccounts()

	var nonce uint64
	send := func(entrypoint string, param codec.Serializer) *tx.Receipt {
		nonce++
		trx := new(tx.Builder).
			ChainTag(n.ChainTag()).
			Nonce(nonce).
			Expiration(^uint64(0)).
			Gas(1000000).
			Origin(devs[0].Address).
			Invoke(meter.AuctionModuleAddr, entrypoint, codec.Encode(param)).
			Build()
		sigs, err := accounts.Sign(trx.SigningHash(), devs[0].PrivateKey)
		require.Nil(t, err)
		receipt, err := n.Submit(trx.WithSignature(sigs))
		require.Nil(t, err)
		return receipt
	}
	added := func() float64 {
		return testutil.ToFloat64(eventCounter.WithLabelValues(auction.ModuleName, "AddItem"))
	}
	finalized := func() float64 {
		return testutil.ToFloat64(eventCounter.WithLabelValues(auction.ModuleName, "Finalize"))
	}
	addedBefore, finalizedBefore := added(), finalized()

	add := auction.AddItemParameter{Name: "lamp", Start: meter.Timestamp(now), End: meter.Timestamp(now + 60000), TokenID: 1}
	receipt := send("addItem", add)
	require.False(t, receipt.Reverted)
	assert.Equal(t, addedBefore+1, added())

	// a read-only call emits the event but commits nothing
	out := n.Call(meter.AuctionModuleAddr, "addItem", codec.Encode(add), devs[0].Address, 0)
	require.Nil(t, out.VMErr)
	require.Len(t, out.Events, 1)
	assert.Equal(t, addedBefore+1, added())

	// a reverted finalize is not counted
	receipt = send("finalize", codec.U16(0))
	require.True(t, receipt.Reverted)
	assert.Equal(t, finalizedBefore, finalized())
}
