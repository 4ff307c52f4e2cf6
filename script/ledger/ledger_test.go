// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger_test

import (
	"crypto/ecdsa"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = codec.TokenID(1)

var (
	ledgerAddr = meter.LedgerModuleAddr
	sinkAddr   = meter.BytesToAddress([]byte("sink"))
	errRefused = types.NewReject(-77, "Refused")
)

// sink is a receiving contract which accepts or refuses incoming tokens.
type sink struct {
	refuse   bool
	received []ledger.OnReceivingCIS2Params
}

func (s *sink) Name() string           { return "sink" }
func (s *sink) Address() meter.Address { return sinkAddr }
func (s *sink) Entrypoints() []string  { return []string{"deposit"} }
func (s *sink) Invoke(env *types.ScriptEnv, entrypoint string, param []byte) ([]byte, error) {
	if entrypoint != "deposit" {
		return nil, types.ErrEntrypointNotFound
	}
	if s.refuse {
		return nil, errRefused
	}
	var p ledger.OnReceivingCIS2Params
	if err := codec.Decode(param, &p); err != nil {
		return nil, types.ErrParse
	}
	s.received = append(s.received, p)
	return nil, nil
}

type account struct {
	key  *ecdsa.PrivateKey
	addr meter.Address
}

type testEnv struct {
	t     *testing.T
	st    *state.State
	rt    *runtime.Runtime
	ctx   *xenv.BlockContext
	sink  *sink
	owner account
	alice account
	bob   account
}

func newAccount(t *testing.T, st *state.State) account {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	addr := meter.Address(crypto.PubkeyToAddress(key.PublicKey))
	require.Nil(t, accounts.Set(st, addr, accounts.SingleKey(&key.PublicKey)))
	return account{key, addr}
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.Nil(t, err)
	st := state.NewCreator(db).NewState()

	s := &sink{}
	engine := script.NewScriptEngine(ledger.NewLedger(ledgerAddr, permit.NewVerifier()), s)
	ctx := &xenv.BlockContext{Number: 1, Time: 1000}
	te := &testEnv{
		t:     t,
		st:    st,
		rt:    runtime.New(engine, st, ctx),
		ctx:   ctx,
		sink:  s,
		owner: newAccount(t, st),
		alice: newAccount(t, st),
		bob:   newAccount(t, st),
	}
	require.Nil(t, te.rt.InitContract(ledgerAddr, te.owner.addr, nil))
	return te
}

func (te *testEnv) call(origin meter.Address, entrypoint string, param codec.Serializer) *runtime.Output {
	return te.rt.ExecuteCall(ledgerAddr, entrypoint, codec.Encode(param), 10000000,
		&xenv.TransactionContext{Origin: origin})
}

func (te *testEnv) mint(to codec.Address, amount uint64) {
	out := te.call(te.owner.addr, "mint", ledger.MintParams{Owner: to, TokenID: token, Amount: codec.TokenAmount(amount)})
	require.Nil(te.t, out.VMErr)
}

func (te *testEnv) balance(of codec.Address) uint64 {
	out := te.call(of.Address, "balanceOf", ledger.BalanceOfQueryParams{{TokenID: token, Address: of}})
	require.Nil(te.t, out.VMErr)
	var resp ledger.BalanceOfResponse
	require.Nil(te.t, codec.Decode(out.Data, &resp))
	require.Len(te.t, resp, 1)
	return uint64(resp[0])
}

func transferOf(from codec.Address, to codec.Receiver, amount uint64) ledger.TransferParams {
	return ledger.TransferParams{{TokenID: token, Amount: codec.TokenAmount(amount), From: from, To: to, Data: []byte{}}}
}

func TestMint(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)

	out := te.call(te.alice.addr, "mint", ledger.MintParams{Owner: alice, TokenID: token, Amount: 5})
	assert.Equal(t, ledger.ErrUnauthorized, out.VMErr)

	te.mint(alice, 5)
	te.mint(alice, 7)
	assert.Equal(t, uint64(12), te.balance(alice))

	out = te.call(te.owner.addr, "balanceOf", ledger.BalanceOfQueryParams{{TokenID: 9, Address: alice}})
	assert.Equal(t, ledger.ErrInvalidTokenId, out.VMErr)
}

func TestTransfer(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)
	bob := codec.AccountAddress(te.bob.addr)
	te.mint(alice, 10)

	out := te.call(te.alice.addr, "transfer", transferOf(alice, codec.ToAccount(te.bob.addr), 4))
	require.Nil(t, out.VMErr)
	assert.Equal(t, uint64(6), te.balance(alice))
	assert.Equal(t, uint64(4), te.balance(bob))
	require.Len(t, out.Transfers, 1)
	assert.Equal(t, te.alice.addr, out.Transfers[0].Sender)
	assert.Equal(t, te.bob.addr, out.Transfers[0].Recipient)
	assert.Equal(t, uint64(4), out.Transfers[0].Amount.Uint64())
	require.Len(t, out.Events, 1)
	assert.Equal(t, tx.EventTopic("Transfer"), out.Events[0].Topics[0])

	// self transfer keeps the balance
	out = te.call(te.alice.addr, "transfer", transferOf(alice, codec.ToAccount(te.alice.addr), 6))
	require.Nil(t, out.VMErr)
	assert.Equal(t, uint64(6), te.balance(alice))

	out = te.call(te.alice.addr, "transfer", transferOf(alice, codec.ToAccount(te.bob.addr), 7))
	assert.Equal(t, ledger.ErrInsufficientFunds, out.VMErr)

	out = te.call(te.bob.addr, "transfer", transferOf(alice, codec.ToAccount(te.bob.addr), 1))
	assert.Equal(t, ledger.ErrUnauthorized, out.VMErr)

	bad := transferOf(alice, codec.ToAccount(te.bob.addr), 1)
	bad[0].TokenID = 42
	out = te.call(te.alice.addr, "transfer", bad)
	assert.Equal(t, ledger.ErrInvalidTokenId, out.VMErr)
}

func TestBatchIsAtomic(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)
	bob := codec.AccountAddress(te.bob.addr)
	te.mint(alice, 10)

	batch := append(transferOf(alice, codec.ToAccount(te.bob.addr), 3), transferOf(alice, codec.ToAccount(te.bob.addr), 8)...)
	out := te.call(te.alice.addr, "transfer", batch)
	assert.Equal(t, ledger.ErrInsufficientFunds, out.VMErr)
	assert.Equal(t, uint64(10), te.balance(alice))
	assert.Equal(t, uint64(0), te.balance(bob))
	assert.Nil(t, out.Events)
}

func TestOperator(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)
	bob := codec.AccountAddress(te.bob.addr)
	te.mint(alice, 10)

	out := te.call(te.alice.addr, "updateOperator", ledger.UpdateOperatorParams{{Update: ledger.Add, Operator: bob}})
	require.Nil(t, out.VMErr)

	out = te.call(te.bob.addr, "operatorOf", ledger.OperatorOfQueryParams{{Owner: alice, Address: bob}, {Owner: bob, Address: alice}})
	require.Nil(t, out.VMErr)
	var resp ledger.OperatorOfResponse
	require.Nil(t, codec.Decode(out.Data, &resp))
	assert.Equal(t, ledger.OperatorOfResponse{true, false}, resp)

	out = te.call(te.bob.addr, "transfer", transferOf(alice, codec.ToAccount(te.bob.addr), 2))
	require.Nil(t, out.VMErr)
	assert.Equal(t, uint64(2), te.balance(bob))

	out = te.call(te.alice.addr, "updateOperator", ledger.UpdateOperatorParams{{Update: ledger.Remove, Operator: bob}})
	require.Nil(t, out.VMErr)
	out = te.call(te.bob.addr, "transfer", transferOf(alice, codec.ToAccount(te.bob.addr), 2))
	assert.Equal(t, ledger.ErrUnauthorized, out.VMErr)
}

func TestTransferToContract(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)
	sinkReceiver := codec.ToContract(sinkAddr, "deposit")
	te.mint(alice, 10)

	params := transferOf(alice, sinkReceiver, 3)
	params[0].Data = []byte{5, 0}
	out := te.call(te.alice.addr, "transfer", params)
	require.Nil(t, out.VMErr)
	require.Len(t, te.sink.received, 1)
	assert.Equal(t, alice, te.sink.received[0].From)
	assert.Equal(t, []byte{5, 0}, te.sink.received[0].Data)
	assert.Equal(t, uint64(3), te.balance(codec.ContractAddress(sinkAddr)))

	// a refusing hook reverts the transfer
	te.sink.refuse = true
	out = te.call(te.alice.addr, "transfer", transferOf(alice, sinkReceiver, 3))
	assert.Equal(t, errRefused, out.VMErr)
	assert.Equal(t, uint64(7), te.balance(alice))
	assert.Equal(t, uint64(3), te.balance(codec.ContractAddress(sinkAddr)))
}

func TestSponsoredTransfer(t *testing.T) {
	te := newTestEnv(t)
	alice := codec.AccountAddress(te.alice.addr)
	bob := codec.AccountAddress(te.bob.addr)
	te.mint(alice, 10)

	msg := permit.Message{
		ContractAddress: ledgerAddr,
		Nonce:           0,
		Timestamp:       meter.Timestamp(te.ctx.Time + 60000),
		EntryPoint:      "transfer",
		Payload:         codec.Encode(transferOf(alice, codec.ToAccount(te.bob.addr), 4)),
	}
	sigs, err := accounts.Sign(permit.MessageHash(te.alice.addr, &msg), te.alice.key)
	require.Nil(t, err)
	param := permit.Param{Signature: sigs, Signer: te.alice.addr, Message: msg}

	// bob relays alice's permit
	out := te.call(te.bob.addr, "permit", param)
	require.Nil(t, out.VMErr)
	assert.Equal(t, uint64(6), te.balance(alice))
	assert.Equal(t, uint64(4), te.balance(bob))

	// replay
	out = te.call(te.bob.addr, "permit", param)
	assert.Equal(t, permit.ErrNonceMismatch, out.VMErr)

	out = te.call(te.bob.addr, "nonceOf", permit.NonceOfParams{te.alice.addr})
	require.Nil(t, out.VMErr)
	var nonces permit.NonceOfResponse
	require.Nil(t, codec.Decode(out.Data, &nonces))
	assert.Equal(t, permit.NonceOfResponse{1}, nonces)

	// mint is not reachable through a permit
	msg.Nonce = 1
	msg.EntryPoint = "mint"
	msg.Payload = codec.Encode(ledger.MintParams{Owner: alice, TokenID: token, Amount: 1})
	sigs, _ = accounts.Sign(permit.MessageHash(te.alice.addr, &msg), te.alice.key)
	out = te.call(te.bob.addr, "permit", permit.Param{Signature: sigs, Signer: te.alice.addr, Message: msg})
	assert.Equal(t, permit.ErrWrongEntryPoint, out.VMErr)
}

func TestUnknownEntrypoint(t *testing.T) {
	te := newTestEnv(t)
	out := te.call(te.alice.addr, "burn", codec.Empty{})
	assert.Equal(t, types.ErrEntrypointNotFound, out.VMErr)
}

func TestEntrypointsSorted(t *testing.T) {
	names := ledger.NewLedger(ledgerAddr, permit.NewVerifier()).Entrypoints()
	assert.True(t, sort.StringsAreSorted(names), "%v", names)
	assert.Contains(t, names, "transfer")
	assert.Contains(t, names, "permit")
}
