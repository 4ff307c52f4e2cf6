// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// HandleUpdateOperator adds or removes operators of the sender.
func (l *Ledger) HandleUpdateOperator(env *types.ScriptEnv, param []byte) error {
	var updates UpdateOperatorParams
	if err := codec.Decode(param, &updates); err != nil {
		return types.ErrParse
	}
	owner := env.Sender()
	for _, u := range updates {
		setOperator(env, owner, u.Operator, u.Update == Add)
		env.AddEvent("UpdateOperator", []meter.Bytes32{meter.BytesToBytes32(owner.Address[:])}, codec.Encode(UpdateOperatorEvent{
			Update:   u.Update,
			Owner:    owner,
			Operator: u.Operator,
		}))
	}
	return nil
}

// HandleOperatorOf answers operator queries.
func (l *Ledger) HandleOperatorOf(env *types.ScriptEnv, param []byte) ([]byte, error) {
	var queries OperatorOfQueryParams
	if err := codec.Decode(param, &queries); err != nil {
		return nil, types.ErrParse
	}
	resp := make(OperatorOfResponse, 0, len(queries))
	for _, q := range queries {
		resp = append(resp, isOperator(env, q.Owner, q.Address))
	}
	return codec.Encode(resp), nil
}

// HandleBalanceOf answers balance queries. Unknown tokens fail the whole query.
func (l *Ledger) HandleBalanceOf(env *types.ScriptEnv, param []byte) ([]byte, error) {
	var queries BalanceOfQueryParams
	if err := codec.Decode(param, &queries); err != nil {
		return nil, types.ErrParse
	}
	resp := make(BalanceOfResponse, 0, len(queries))
	for _, q := range queries {
		if _, exists := totalSupply(env, q.TokenID); !exists {
			return nil, ErrInvalidTokenId
		}
		resp = append(resp, codec.TokenAmount(balanceOf(env, q.TokenID, q.Address)))
	}
	return codec.Encode(resp), nil
}
