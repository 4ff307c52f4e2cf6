// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"sort"
	"testing"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)

	for i := 0; i < 3; i++ {
		index, out := te.addItem(te.carol, 5000, 1000, 0)
		require.Nil(t, out.VMErr)
		assert.Equal(t, uint16(i), index)
		require.Len(t, out.Events, 1)
		assert.Equal(t, tx.EventTopic("AddItem"), out.Events[0].Topics[0])
	}

	out := te.call(te.dave, auctionAddr, "view", codec.Empty{})
	require.Nil(t, out.VMErr)
	var view auction.ReturnParamView
	require.Nil(t, codec.Decode(out.Data, &view))
	assert.Equal(t, uint16(3), view.Counter)
	assert.Equal(t, ledgerAddr, view.Cis2Contract)
	require.Len(t, view.ItemStates, 3)

	item := view.ItemStates[0].Item
	assert.Equal(t, auction.ItemState{
		Name:    "MyItem",
		End:     meter.Timestamp(1000),
		Start:   meter.Timestamp(5000),
		TokenID: token,
		Creator: te.carol.addr,
	}, item)

	out = te.call(te.dave, auctionAddr, "viewItemState", codec.U16(3))
	assert.Equal(t, auction.ErrInvalidIndex, out.VMErr)
}

func TestBidChecks(t *testing.T) {
	te := newTestEnv(t, ledgerAddr, vault{})
	index, _ := te.addItem(te.carol, 2000, 5000, 2*ccd)

	out := te.bid(te.alice, 7, 3*ccd)
	assert.Equal(t, auction.ErrInvalidIndex, out.VMErr)

	out = te.bid(te.alice, index, 3*ccd)
	assert.Equal(t, auction.ErrBidTooEarly, out.VMErr)

	te.ctx.Time = 2000
	// first bid must exceed the minimum bid
	out = te.bid(te.alice, index, 2*ccd)
	assert.Equal(t, auction.ErrBidBelowCurrentBid, out.VMErr)
	out = te.bid(te.alice, index, 2*ccd+1)
	require.Nil(t, out.VMErr)
	assert.Equal(t, 10*ccd-2*ccd-1, te.balance(te.alice.cis2()))

	// only the configured ledger may call bid
	hook := ledger.OnReceivingCIS2Params{
		TokenID: token,
		Amount:  codec.TokenAmount(5 * ccd),
		From:    te.bob.cis2(),
		Data:    codec.Encode(auction.AdditionalDataIndex{ItemIndex: index}),
	}
	out = te.call(te.bob, auctionAddr, "bid", hook)
	assert.Equal(t, auction.ErrNotTokenContract, out.VMErr)

	// tokens of another kind
	out = te.call(te.ledgerOwner, ledgerAddr, "mint", ledger.MintParams{Owner: te.bob.cis2(), TokenID: 2, Amount: codec.TokenAmount(10 * ccd)})
	require.Nil(t, out.VMErr)
	wrong := bidTransfer(te.bob, index, 5*ccd)
	wrong[0].TokenID = 2
	out = te.call(te.bob, ledgerAddr, "transfer", wrong)
	assert.Equal(t, auction.ErrWrongTokenID, out.VMErr)

	// malformed additional data
	bad := bidTransfer(te.bob, index, 5*ccd)
	bad[0].Data = []byte{1}
	out = te.call(te.bob, ledgerAddr, "transfer", bad)
	assert.Equal(t, types.ErrParse, out.VMErr)

	// ledger errors come through unchanged
	out = te.bid(te.bob, index, 11*ccd)
	assert.Equal(t, ledger.ErrInsufficientFunds, out.VMErr)

	// tokens held by a contract cannot bid
	out = te.call(te.ledgerOwner, ledgerAddr, "mint", ledger.MintParams{Owner: codec.ContractAddress(vaultAddr), TokenID: token, Amount: codec.TokenAmount(10 * ccd)})
	require.Nil(t, out.VMErr)
	out = te.call(te.bob, vaultAddr, "bid", auction.AdditionalDataIndex{ItemIndex: index})
	assert.Equal(t, auction.ErrOnlyAccount, out.VMErr)
}

var vaultAddr = meter.BytesToAddress([]byte("token-vault"))

// vault is a contract holding tokens. Its bid entrypoint transfers 5 CCD of
// its own into the auction, carrying param as the additional data.
type vault struct{}

func (vault) Name() string           { return "token-vault" }
func (vault) Address() meter.Address { return vaultAddr }
func (vault) Entrypoints() []string  { return []string{"bid"} }

func (vault) Invoke(env *types.ScriptEnv, entrypoint string, param []byte) ([]byte, error) {
	if entrypoint != "bid" {
		return nil, types.ErrEntrypointNotFound
	}
	return env.Call(ledgerAddr, "transfer", codec.Encode(ledger.TransferParams{{
		TokenID: token,
		Amount:  codec.TokenAmount(5 * ccd),
		From:    codec.ContractAddress(vaultAddr),
		To:      codec.ToContract(auctionAddr, "bid"),
		Data:    param,
	}}))
}

func TestFinalizeWithoutBids(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	index, _ := te.addItem(te.carol, 1000, 2000, 0)

	out := te.finalize(te.dave, 9)
	assert.Equal(t, auction.ErrInvalidIndex, out.VMErr)

	te.ctx.Time = 2000
	out = te.finalize(te.dave, index)
	require.Nil(t, out.VMErr)
	assert.Empty(t, out.Transfers)

	item := te.item(index)
	assert.True(t, item.Sold)
	assert.False(t, item.HasWinner)
	assert.False(t, item.HasBidder)

	out = te.finalize(te.dave, index)
	assert.Equal(t, auction.ErrAuctionAlreadyFinalized, out.VMErr)
}

func TestBidOnSoldItem(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	// end precedes start, so the item never takes a bid but can be finalized
	index, _ := te.addItem(te.carol, 5000, 1000, 0)

	te.ctx.Time = 2000
	out := te.bid(te.alice, index, 1*ccd)
	assert.Equal(t, auction.ErrBidTooEarly, out.VMErr)

	out = te.finalize(te.dave, index)
	require.Nil(t, out.VMErr)
	require.True(t, te.item(index).Sold)

	for _, now := range []uint64{2000, 5000, 6000} {
		te.ctx.Time = now
		out = te.bid(te.alice, index, 1*ccd)
		assert.Equal(t, auction.ErrAuctionAlreadyFinalized, out.VMErr, "now=%v", now)
		out = te.finalize(te.dave, index)
		assert.Equal(t, auction.ErrAuctionAlreadyFinalized, out.VMErr, "now=%v", now)
	}
	assert.Equal(t, 10*ccd, te.balance(te.alice.cis2()))
}

func TestSponsoredAddItemAndFinalize(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	addItem := auction.AddItemParameter{Name: "sponsored", Start: 1000, End: 2000, TokenID: token}

	// Carol signs, Dave pays
	param := te.signPermit(te.carol, auctionAddr, 0, "addItem", addItem)
	out := te.call(te.dave, auctionAddr, "permit", param)
	require.Nil(t, out.VMErr)
	assert.Equal(t, te.carol.addr, te.item(0).Creator)

	out = te.call(te.dave, auctionAddr, "permit", param)
	assert.Equal(t, permit.ErrNonceMismatch, out.VMErr)

	// a permit for the ledger is not valid here
	param = te.signPermit(te.carol, ledgerAddr, 1, "addItem", addItem)
	out = te.call(te.dave, auctionAddr, "permit", param)
	assert.Equal(t, permit.ErrWrongContract, out.VMErr)

	// bid is not reachable through the auction permit
	param = te.signPermit(te.carol, auctionAddr, 1, "bid", codec.Empty{})
	out = te.call(te.dave, auctionAddr, "permit", param)
	assert.Equal(t, permit.ErrWrongEntryPoint, out.VMErr)

	te.ctx.Time = 2000
	param = te.signPermit(te.alice, auctionAddr, 0, "finalize", codec.U16(0))
	out = te.call(te.dave, auctionAddr, "permit", param)
	require.Nil(t, out.VMErr)
	assert.True(t, te.item(0).Sold)

	// expired permit
	param = te.signPermit(te.alice, auctionAddr, 1, "finalize", codec.U16(0))
	te.ctx.Time = uint64(param.Message.Timestamp)
	out = te.call(te.dave, auctionAddr, "permit", param)
	assert.Equal(t, permit.ErrExpired, out.VMErr)
}

func TestSponsoredBid(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	index, _ := te.addItem(te.carol, 1000, 5000, 0)

	// Alice signs a ledger transfer into the auction, Dave relays it
	param := te.signPermit(te.alice, ledgerAddr, 0, "transfer", bidTransfer(te.alice, index, 1*ccd))
	out := te.call(te.dave, ledgerAddr, "permit", param)
	require.Nil(t, out.VMErr)

	item := te.item(index)
	assert.Equal(t, te.alice.addr, item.HighestBidder)
	assert.Equal(t, 1*ccd, item.HighestBid)

	// the two contracts keep separate nonces
	out = te.call(te.dave, ledgerAddr, "nonceOf", permit.NonceOfParams{te.alice.addr})
	require.Nil(t, out.VMErr)
	var nonces permit.NonceOfResponse
	require.Nil(t, codec.Decode(out.Data, &nonces))
	assert.Equal(t, permit.NonceOfResponse{1}, nonces)

	out = te.call(te.dave, auctionAddr, "nonceOf", permit.NonceOfParams{te.alice.addr})
	require.Nil(t, out.VMErr)
	require.Nil(t, codec.Decode(out.Data, &nonces))
	assert.Equal(t, permit.NonceOfResponse{0}, nonces)
}

func TestViewMessageHash(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	param := te.signPermit(te.carol, auctionAddr, 0, "addItem", auction.AddItemParameter{Name: "x"})
	// signature and signer validity are ignored
	param.Signature = nil

	out := te.call(te.dave, auctionAddr, "viewMessageHash", param)
	require.Nil(t, out.VMErr)
	var h codec.Hash
	require.Nil(t, codec.Decode(out.Data, &h))
	assert.Equal(t, permit.MessageHash(te.carol.addr, &param.Message), meter.Bytes32(h))

	out = te.call(te.dave, auctionAddr, "supportsPermit", permit.SupportsPermitParams{"addItem", "finalize", "bid", "view"})
	require.Nil(t, out.VMErr)
	var supported permit.SupportsPermitResponse
	require.Nil(t, codec.Decode(out.Data, &supported))
	assert.Equal(t, permit.SupportsPermitResponse{true, true, false, false}, supported)
}

func TestOutOfGasLeavesNoEffect(t *testing.T) {
	te := newTestEnv(t, ledgerAddr)
	index, _ := te.addItem(te.carol, 1000, 5000, 0)

	out := te.rt.ExecuteCall(ledgerAddr, "transfer", codec.Encode(bidTransfer(te.alice, index, 1*ccd)), 3000,
		&xenv.TransactionContext{Origin: te.alice.addr})
	assert.Equal(t, types.ErrOutOfGas, out.VMErr)
	assert.Equal(t, uint64(0), out.LeftOverGas)
	assert.Nil(t, out.Events)

	assert.Equal(t, 10*ccd, te.balance(te.alice.cis2()))
	assert.False(t, te.item(index).HasBidder)
}

func TestEntrypointsSorted(t *testing.T) {
	first := auction.NewAuction(auctionAddr, permit.NewVerifier()).Entrypoints()
	assert.True(t, sort.StringsAreSorted(first), "%v", first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, auction.NewAuction(auctionAddr, permit.NewVerifier()).Entrypoints())
	}
}
