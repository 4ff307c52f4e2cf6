// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math/big"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
)

type output struct {
	transfers tx.Transfers
	events    tx.Events
}

// ScriptEnv is the environment of one contract invocation.
type ScriptEnv struct {
	state    *state.State
	blockCtx *xenv.BlockContext
	txCtx    *xenv.TransactionContext
	gas      *xenv.GasMeter
	invoker  Invoker

	self   meter.Address
	sender codec.Address
	depth  int

	out *output
}

// NewScriptEnv creates the top level env of a transaction sent by the tx origin to contract self.
func NewScriptEnv(st *state.State, blockCtx *xenv.BlockContext, txCtx *xenv.TransactionContext, gas *xenv.GasMeter, invoker Invoker, self meter.Address) *ScriptEnv {
	return &ScriptEnv{
		state:    st,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		gas:      gas,
		invoker:  invoker,
		self:     self,
		sender:   codec.AccountAddress(txCtx.Origin),
		out:      &output{},
	}
}

func (env *ScriptEnv) GetState() *state.State             { return env.state }
func (env *ScriptEnv) GetTxCtx() *xenv.TransactionContext { return env.txCtx }
func (env *ScriptEnv) GetBlockCtx() *xenv.BlockContext    { return env.blockCtx }
func (env *ScriptEnv) GetGas() *xenv.GasMeter             { return env.gas }
func (env *ScriptEnv) Self() meter.Address                { return env.self }
func (env *ScriptEnv) Sender() codec.Address              { return env.sender }
func (env *ScriptEnv) Origin() meter.Address              { return env.txCtx.Origin }
func (env *ScriptEnv) Now() meter.Timestamp               { return env.blockCtx.Now() }
func (env *ScriptEnv) Depth() int                         { return env.depth }
func (env *ScriptEnv) UseGas(gas uint64)                  { env.gas.UseGas(gas) }
func (env *ScriptEnv) GetTransfers() tx.Transfers         { return env.out.transfers }
func (env *ScriptEnv) GetEvents() tx.Events               { return env.out.events }

// As returns an env of the same invocation with sender replaced.
// Effects recorded through it belong to this invocation.
func (env *ScriptEnv) As(sender codec.Address) *ScriptEnv {
	cpy := *env
	cpy.sender = sender
	return &cpy
}

// GetStorage loads a storage slot of the current contract.
func (env *ScriptEnv) GetStorage(key meter.Bytes32, dec func([]byte) error) {
	raw := env.state.GetRawStorage(env.self, key)
	env.UseGas(meter.StorageReadGas + meter.StorageByteGas*uint64(len(raw)))
	env.state.DecodeStorage(env.self, key, dec)
}

// SetStorage writes a storage slot of the current contract.
func (env *ScriptEnv) SetStorage(key meter.Bytes32, enc func() ([]byte, error)) {
	env.state.EncodeStorage(env.self, key, func() ([]byte, error) {
		raw, err := enc()
		if err != nil {
			return nil, err
		}
		env.UseGas(meter.StorageWriteGas + meter.StorageByteGas*uint64(len(raw)))
		return raw, nil
	})
}

// AddTransfer records a token movement.
func (env *ScriptEnv) AddTransfer(sender, recipient meter.Address, amount uint64, token uint32) {
	env.out.transfers = append(env.out.transfers, &tx.Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).SetUint64(amount),
		Token:     token,
	})
}

// AddEvent logs an event of the current contract. The first topic is derived from name.
func (env *ScriptEnv) AddEvent(name string, topics []meter.Bytes32, data []byte) {
	env.UseGas(meter.EventGas + meter.StorageByteGas*uint64(len(data)))
	env.out.events = append(env.out.events, &tx.Event{
		Address: env.self,
		Topics:  append([]meter.Bytes32{tx.EventTopic(name)}, topics...),
		Data:    data,
	})
}

// Call synchronously invokes another contract with the current contract as sender.
// The callee may call back into the caller. Its effects are reverted when it fails.
func (env *ScriptEnv) Call(to meter.Address, entrypoint string, param []byte) ([]byte, error) {
	if env.depth+1 >= meter.MaxCallDepth {
		return nil, ErrCallDepth
	}
	child := &ScriptEnv{
		state:    env.state,
		blockCtx: env.blockCtx,
		txCtx:    env.txCtx,
		gas:      env.gas,
		invoker:  env.invoker,
		self:     to,
		sender:   codec.ContractAddress(env.self),
		depth:    env.depth + 1,
		out:      &output{},
	}

	checkpoint := env.state.NewCheckpoint()
	ret, err := env.invoker.Invoke(child, to, entrypoint, param)
	if err != nil {
		env.state.RevertTo(checkpoint)
		return nil, err
	}
	env.out.transfers = append(env.out.transfers, child.out.transfers...)
	env.out.events = append(env.out.events, child.out.events...)
	return ret, nil
}
