// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// HandleTransfer executes a batch of transfers in order. Any failure aborts the batch.
func (l *Ledger) HandleTransfer(env *types.ScriptEnv, param []byte) error {
	var transfers TransferParams
	if err := codec.Decode(param, &transfers); err != nil {
		return types.ErrParse
	}
	for i := range transfers {
		if err := l.transfer(env, &transfers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) transfer(env *types.ScriptEnv, t *Transfer) error {
	sender := env.Sender()
	if t.From != sender && !isOperator(env, t.From, sender) {
		return ErrUnauthorized
	}
	if _, exists := totalSupply(env, t.TokenID); !exists {
		return ErrInvalidTokenId
	}

	amount := uint64(t.Amount)
	if amount > 0 {
		fromBalance := balanceOf(env, t.TokenID, t.From)
		if fromBalance < amount {
			return ErrInsufficientFunds
		}
		setBalance(env, t.TokenID, t.From, fromBalance-amount)
		// reading after the write keeps self transfers consistent
		setBalance(env, t.TokenID, t.To.Address, balanceOf(env, t.TokenID, t.To.Address)+amount)
	}

	env.AddTransfer(t.From.Address, t.To.Address.Address, amount, uint32(t.TokenID))
	env.AddEvent("Transfer", []meter.Bytes32{meter.BytesToBytes32(tokenBytes(t.TokenID))}, codec.Encode(TransferEvent{
		TokenID: t.TokenID,
		Amount:  t.Amount,
		From:    t.From,
		To:      t.To.Address,
	}))
	l.logger.Debug("transferred", "token", t.TokenID, "amount", amount, "from", t.From, "to", t.To.Address)

	if t.To.Address.IsContract() {
		hook := OnReceivingCIS2Params{
			TokenID: t.TokenID,
			Amount:  t.Amount,
			From:    t.From,
			Data:    t.Data,
		}
		if _, err := env.Call(t.To.Address.Address, t.To.Entrypoint, codec.Encode(hook)); err != nil {
			return err
		}
	}
	return nil
}
