// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/xenv"
	"github.com/stretchr/testify/require"
)

const (
	token = codec.TokenID(1)
	ccd   = meter.MicroCCD
	gas   = uint64(10000000)
)

var (
	ledgerAddr  = meter.LedgerModuleAddr
	auctionAddr = meter.AuctionModuleAddr
)

type account struct {
	key  *ecdsa.PrivateKey
	addr meter.Address
}

func (a account) cis2() codec.Address { return codec.AccountAddress(a.addr) }

type testEnv struct {
	t   *testing.T
	st  *state.State
	rt  *runtime.Runtime
	ctx *xenv.BlockContext

	ledgerOwner, alice, bob, carol, dave account
}

func newAccount(t *testing.T, st *state.State) account {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	addr := meter.Address(crypto.PubkeyToAddress(key.PublicKey))
	require.Nil(t, accounts.Set(st, addr, accounts.SingleKey(&key.PublicKey)))
	return account{key, addr}
}

// newTestEnv deploys the ledger and an auction bound to cis2, plus extra contracts.
// Alice and Bob hold 10 CCD each.
func newTestEnv(t *testing.T, cis2 meter.Address, extra ...types.Contract) *testEnv {
	db, err := lvldb.NewMem()
	require.Nil(t, err)
	st := state.NewCreator(db).NewState()

	contracts := append([]types.Contract{
		ledger.NewLedger(ledgerAddr, permit.NewVerifier()),
		auction.NewAuction(auctionAddr, permit.NewVerifier()),
	}, extra...)
	engine := script.NewScriptEngine(contracts...)
	ctx := &xenv.BlockContext{Number: 1, Time: 1000}

	te := &testEnv{
		t:   t,
		st:  st,
		rt:  runtime.New(engine, st, ctx),
		ctx: ctx,
	}
	te.ledgerOwner = newAccount(t, st)
	te.alice = newAccount(t, st)
	te.bob = newAccount(t, st)
	te.carol = newAccount(t, st)
	te.dave = newAccount(t, st)

	require.Nil(t, te.rt.InitContract(ledgerAddr, te.ledgerOwner.addr, nil))
	require.Nil(t, te.rt.InitContract(auctionAddr, te.carol.addr,
		codec.Encode(auction.InitParameter{Cis2Contract: cis2, MinimumRaise: ccd})))

	for _, a := range []account{te.alice, te.bob} {
		out := te.call(te.ledgerOwner, ledgerAddr, "mint", ledger.MintParams{Owner: a.cis2(), TokenID: token, Amount: codec.TokenAmount(10 * ccd)})
		require.Nil(t, out.VMErr)
	}
	return te
}

func (te *testEnv) call(origin account, to meter.Address, entrypoint string, param codec.Serializer) *runtime.Output {
	return te.rt.ExecuteCall(to, entrypoint, codec.Encode(param), gas, &xenv.TransactionContext{Origin: origin.addr})
}

func (te *testEnv) addItem(creator account, start, end uint64, minimumBid uint64) (uint16, *runtime.Output) {
	out := te.call(creator, auctionAddr, "addItem", auction.AddItemParameter{
		Name:       "MyItem",
		End:        meter.Timestamp(end),
		Start:      meter.Timestamp(start),
		TokenID:    token,
		MinimumBid: codec.TokenAmount(minimumBid),
	})
	if out.VMErr != nil {
		return 0, out
	}
	var index codec.U16
	require.Nil(te.t, codec.Decode(out.Data, &index))
	return uint16(index), out
}

func bidTransfer(bidder account, index uint16, amount uint64) ledger.TransferParams {
	return ledger.TransferParams{{
		TokenID: token,
		Amount:  codec.TokenAmount(amount),
		From:    bidder.cis2(),
		To:      codec.ToContract(auctionAddr, "bid"),
		Data:    codec.Encode(auction.AdditionalDataIndex{ItemIndex: index}),
	}}
}

// bid transfers amount of tokens from bidder to the bid entrypoint of the auction.
func (te *testEnv) bid(bidder account, index uint16, amount uint64) *runtime.Output {
	return te.call(bidder, ledgerAddr, "transfer", bidTransfer(bidder, index, amount))
}

func (te *testEnv) finalize(caller account, index uint16) *runtime.Output {
	return te.call(caller, auctionAddr, "finalize", codec.U16(index))
}

func (te *testEnv) item(index uint16) auction.ItemState {
	out := te.call(te.dave, auctionAddr, "viewItemState", codec.U16(index))
	require.Nil(te.t, out.VMErr)
	var item auction.ItemState
	require.Nil(te.t, codec.Decode(out.Data, &item))
	return item
}

func (te *testEnv) balance(of codec.Address) uint64 {
	out := te.call(te.dave, ledgerAddr, "balanceOf", ledger.BalanceOfQueryParams{{TokenID: token, Address: of}})
	require.Nil(te.t, out.VMErr)
	var resp ledger.BalanceOfResponse
	require.Nil(te.t, codec.Decode(out.Data, &resp))
	return uint64(resp[0])
}

func (te *testEnv) signPermit(signer account, contract meter.Address, nonce uint64, entrypoint string, payload codec.Serializer) permit.Param {
	msg := permit.Message{
		ContractAddress: contract,
		Nonce:           nonce,
		Timestamp:       meter.Timestamp(te.ctx.Time + 3600*1000),
		EntryPoint:      entrypoint,
		Payload:         codec.Encode(payload),
	}
	sigs, err := accounts.Sign(permit.MessageHash(signer.addr, &msg), signer.key)
	require.Nil(te.t, err)
	return permit.Param{Signature: sigs, Signer: signer.addr, Message: msg}
}
