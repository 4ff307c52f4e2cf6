// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"log/slog"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

// Output output of a contract call.
type Output struct {
	Data        []byte
	Events      tx.Events
	Transfers   tx.Transfers
	LeftOverGas uint64
	// VMErr identify the execution result of the contract call: a reject or out of gas.
	VMErr error
}

// Reject returns the typed reject of a failed call, if any.
func (o *Output) Reject() (*types.Reject, bool) {
	return types.AsReject(o.VMErr)
}

// Runtime executes calls against the builtin contracts.
type Runtime struct {
	engine *script.ScriptEngine
	state  *state.State
	ctx    *xenv.BlockContext
	logger *slog.Logger
}

// New create a Runtime object.
func New(
	engine *script.ScriptEngine,
	state *state.State,
	ctx *xenv.BlockContext,
) *Runtime {
	return &Runtime{
		engine: engine,
		state:  state,
		ctx:    ctx,
		logger: slog.Default().With("pkg", "rt"),
	}
}

func (rt *Runtime) State() *state.State         { return rt.state }
func (rt *Runtime) Context() *xenv.BlockContext { return rt.ctx }

// ExecuteCall runs one call atomically: any failure, including out of gas,
// reverts every effect of the call.
func (rt *Runtime) ExecuteCall(
	to meter.Address,
	entrypoint string,
	param []byte,
	gas uint64,
	txCtx *xenv.TransactionContext,
) *Output {
	checkpoint := rt.state.NewCheckpoint()
	gasMeter := xenv.NewGasMeter(gas)
	env := types.NewScriptEnv(rt.state, rt.ctx, txCtx, gasMeter, rt.engine, to)

	data, vmErr := gasMeter.Run(func() ([]byte, error) {
		return rt.engine.Invoke(env, to, entrypoint, param)
	})

	output := &Output{
		LeftOverGas: gasMeter.Left(),
		VMErr:       vmErr,
	}
	if vmErr != nil {
		rt.state.RevertTo(checkpoint)
		return output
	}
	output.Data = data
	output.Events = env.GetEvents()
	output.Transfers = env.GetTransfers()
	return output
}

// InitContract runs the init of a contract on behalf of origin.
func (rt *Runtime) InitContract(addr meter.Address, origin meter.Address, param []byte) error {
	mod, found := rt.engine.Find(addr)
	if !found {
		return types.ErrContractNotFound
	}
	initializer, ok := mod.Contract().(types.Initializer)
	if !ok {
		return errors.Errorf("%v takes no init", mod.Name())
	}
	txCtx := &xenv.TransactionContext{Origin: origin}
	gasMeter := xenv.NewGasMeter(^uint64(0))
	env := types.NewScriptEnv(rt.state, rt.ctx, txCtx, gasMeter, rt.engine, addr)
	return initializer.Init(env, param)
}

// ExecuteTransaction executes a transaction.
// A tx failing validation returns an error and has no effect. A tx whose call
// fails yields a reverted receipt, with its gas still charged.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	if trx.IsExpired(rt.ctx.Time) {
		return nil, ErrExpired
	}
	resolvedTx, err := ResolveTransaction(rt.state, trx)
	if err != nil {
		return nil, err
	}
	txCtx := resolvedTx.ToContext()

	output := rt.ExecuteCall(trx.To(), trx.Entrypoint(), trx.Param(), trx.Gas()-resolvedTx.IntrinsicGas, txCtx)
	if err := rt.state.Err(); err != nil {
		return nil, errors.WithMessage(err, "state")
	}

	receipt := &tx.Receipt{
		TxID:        txCtx.ID,
		Origin:      txCtx.Origin,
		GasUsed:     trx.Gas() - output.LeftOverGas,
		Reverted:    output.VMErr != nil,
		ReturnValue: output.Data,
		Events:      output.Events,
		Transfers:   output.Transfers,
	}
	if output.VMErr != nil {
		if reject, ok := output.Reject(); ok {
			receipt.RejectCode = reject.Code
			receipt.RejectName = reject.Name
		} else {
			receipt.RejectName = output.VMErr.Error()
		}
		rt.logger.Debug("tx reverted", "id", txCtx.ID, "entrypoint", trx.Entrypoint(), "err", output.VMErr)
	}
	return receipt, nil
}
