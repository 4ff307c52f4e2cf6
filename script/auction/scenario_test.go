// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"testing"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRefund(t *testing.T, out *runtime.Output, to meter.Address, amount uint64) {
	// the bid transfer into the auction, then the refund out of it
	require.Len(t, out.Transfers, 2)
	refund := out.Transfers[1]
	assert.Equal(t, auctionAddr, refund.Sender)
	assert.Equal(t, to, refund.Recipient)
	assert.Equal(t, amount, refund.Amount.Uint64())
}

func TestBiddingScenario(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	auctionHolder := codec.ContractAddress(auctionAddr)

	index, out := te.addItem(te.carol, 1000, 5000, 0)
	require.Nil(t, out.VMErr)
	te.ctx.Time = 2000

	// 1. Alice bids 1 CCD
	out = te.bid(te.alice, index, 1*ccd)
	require.Nil(t, out.VMErr)
	item := te.item(index)
	assert.Equal(t, 1*ccd, item.HighestBid)
	assert.Equal(t, te.alice.addr, item.HighestBidder)
	assert.Equal(t, 1*ccd, te.balance(auctionHolder))

	// 2. Alice bids 2 CCD and gets her 1 CCD back
	out = te.bid(te.alice, index, 2*ccd)
	require.Nil(t, out.VMErr)
	assertRefund(t, out, te.alice.addr, 1*ccd)
	assert.Equal(t, 8*ccd, te.balance(te.alice.cis2()))

	// 3. Bob bids 3 CCD, Alice gets her 2 CCD back
	out = te.bid(te.bob, index, 3*ccd)
	require.Nil(t, out.VMErr)
	assertRefund(t, out, te.alice.addr, 2*ccd)
	assert.Equal(t, 10*ccd, te.balance(te.alice.cis2()))
	assert.Equal(t, 7*ccd, te.balance(te.bob.cis2()))
	assert.Equal(t, 3*ccd, te.balance(auctionHolder))

	// 4. Alice matches the highest bid
	out = te.bid(te.alice, index, 3*ccd)
	assert.Equal(t, auction.ErrBidBelowCurrentBid, out.VMErr)

	// 5. Alice raises by less than 1 CCD
	out = te.bid(te.alice, index, 3500000)
	assert.Equal(t, auction.ErrBidBelowMinimumRaise, out.VMErr)
	assert.Equal(t, 10*ccd, te.balance(te.alice.cis2()))

	// 6. finalize before the end
	out = te.finalize(te.dave, index)
	assert.Equal(t, auction.ErrAuctionStillActive, out.VMErr)

	te.ctx.Time = 5001

	// 7. bid after the end, before finalization
	out = te.bid(te.alice, index, 5*ccd)
	assert.Equal(t, auction.ErrBidTooLate, out.VMErr)

	// 8. Dave finalizes, Carol receives 3 CCD
	out = te.finalize(te.dave, index)
	require.Nil(t, out.VMErr)
	require.Len(t, out.Transfers, 1)
	assert.Equal(t, auctionAddr, out.Transfers[0].Sender)
	assert.Equal(t, te.carol.addr, out.Transfers[0].Recipient)
	assert.Equal(t, 3*ccd, out.Transfers[0].Amount.Uint64())
	assert.Equal(t, 3*ccd, te.balance(te.carol.cis2()))
	assert.Equal(t, uint64(0), te.balance(auctionHolder))

	item = te.item(index)
	assert.True(t, item.Sold)
	assert.True(t, item.HasWinner)
	assert.Equal(t, te.bob.addr, item.Winner)

	// 9. everything else fails
	out = te.bid(te.alice, index, 1*ccd)
	assert.Equal(t, auction.ErrAuctionAlreadyFinalized, out.VMErr)
	out = te.finalize(te.alice, index)
	assert.Equal(t, auction.ErrAuctionAlreadyFinalized, out.VMErr)
	assert.Equal(t, 10*ccd, te.balance(te.alice.cis2()))
}
