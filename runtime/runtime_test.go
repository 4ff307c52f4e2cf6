// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

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
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) (*runtime.Runtime, *ecdsa.PrivateKey, meter.Address) {
	db, err := lvldb.NewMem()
	require.Nil(t, err)
	st := state.NewCreator(db).NewState()

	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	owner := meter.Address(crypto.PubkeyToAddress(key.PublicKey))
	require.Nil(t, accounts.Set(st, owner, accounts.SingleKey(&key.PublicKey)))

	engine := script.NewScriptEngine(ledger.NewLedger(meter.LedgerModuleAddr, permit.NewVerifier()))
	rt := runtime.New(engine, st, &xenv.BlockContext{Number: 1, Time: 1000})
	require.Nil(t, rt.InitContract(meter.LedgerModuleAddr, owner, nil))
	return rt, key, owner
}

func mintTx(owner meter.Address, amount uint64, gas uint64) *tx.Transaction {
	param := ledger.MintParams{Owner: codec.AccountAddress(owner), TokenID: 1, Amount: codec.TokenAmount(amount)}
	return new(tx.Builder).
		Nonce(1).
		Expiration(5000).
		Gas(gas).
		Origin(owner).
		Invoke(meter.LedgerModuleAddr, "mint", codec.Encode(param)).
		Build()
}

func sign(t *testing.T, trx *tx.Transaction, key *ecdsa.PrivateKey) *tx.Transaction {
	sigs, err := accounts.Sign(trx.SigningHash(), key)
	require.Nil(t, err)
	return trx.WithSignature(sigs)
}

func TestExecuteTransaction(t *testing.T) {
	rt, key, owner := newRuntime(t)

	trx := sign(t, mintTx(owner, 100, 100000), key)
	receipt, err := rt.ExecuteTransaction(trx)
	require.Nil(t, err)
	assert.False(t, receipt.Reverted)
	assert.Equal(t, trx.ID(), receipt.TxID)
	assert.Equal(t, owner, receipt.Origin)
	assert.True(t, receipt.GasUsed > meter.TxGas+meter.SigVerifyGas)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, owner, receipt.Transfers[0].Recipient)
	require.Len(t, receipt.Events, 1)
}

func TestExecuteTransactionRejected(t *testing.T) {
	rt, key, owner := newRuntime(t)

	// unsigned
	_, err := rt.ExecuteTransaction(mintTx(owner, 100, 100000))
	assert.Equal(t, tx.ErrNotSigned, err)

	// signed by a stranger
	other, _ := crypto.GenerateKey()
	_, err = rt.ExecuteTransaction(sign(t, mintTx(owner, 100, 100000), other))
	assert.Equal(t, tx.ErrBadSignature, err)

	// unknown origin
	stranger := meter.Address(crypto.PubkeyToAddress(other.PublicKey))
	_, err = rt.ExecuteTransaction(sign(t, mintTx(stranger, 100, 100000), other))
	assert.Equal(t, runtime.ErrOriginNotRegistered, err)

	// not enough gas to pay the intrinsic gas
	_, err = rt.ExecuteTransaction(sign(t, mintTx(owner, 100, meter.TxGas), key))
	assert.Equal(t, runtime.ErrIntrinsicGas, err)

	// expired
	rt.Context().Time = 5000
	_, err = rt.ExecuteTransaction(sign(t, mintTx(owner, 100, 100000), key))
	assert.Equal(t, runtime.ErrExpired, err)
}

func TestExecuteTransactionReverted(t *testing.T) {
	rt, key, owner := newRuntime(t)

	// amount overflows the supply on the second mint
	receipt, err := rt.ExecuteTransaction(sign(t, mintTx(owner, ^uint64(0), 100000), key))
	require.Nil(t, err)
	require.False(t, receipt.Reverted)

	receipt, err = rt.ExecuteTransaction(sign(t, mintTx(owner, 1, 100000), key))
	require.Nil(t, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, ledger.ErrAmountOverflow.Code, receipt.RejectCode)
	assert.Equal(t, ledger.ErrAmountOverflow.Name, receipt.RejectName)
	assert.Empty(t, receipt.Events)
	assert.Empty(t, receipt.Transfers)
	assert.True(t, receipt.GasUsed > meter.TxGas)
}

func TestExecuteTransactionOutOfGas(t *testing.T) {
	rt, key, owner := newRuntime(t)

	gas := meter.TxGas + meter.SigVerifyGas + 100
	receipt, err := rt.ExecuteTransaction(sign(t, mintTx(owner, 100, gas), key))
	require.Nil(t, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, gas, receipt.GasUsed)
	assert.Equal(t, "out of gas", receipt.RejectName)
}
