// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// HandleMint mints new tokens. Only the owner may mint.
func (l *Ledger) HandleMint(env *types.ScriptEnv, param []byte) error {
	var p MintParams
	if err := codec.Decode(param, &p); err != nil {
		return types.ErrParse
	}
	if env.Sender() != codec.AccountAddress(getOwner(env)) {
		return ErrUnauthorized
	}

	supply, _ := totalSupply(env, p.TokenID)
	if math.MaxUint64-supply < uint64(p.Amount) {
		return ErrAmountOverflow
	}
	setUint64(env, tokenKey(p.TokenID), supply+uint64(p.Amount))
	setBalance(env, p.TokenID, p.Owner, balanceOf(env, p.TokenID, p.Owner)+uint64(p.Amount))

	env.AddTransfer(meter.Address{}, p.Owner.Address, uint64(p.Amount), uint32(p.TokenID))
	env.AddEvent("Mint", []meter.Bytes32{meter.BytesToBytes32(tokenBytes(p.TokenID))}, codec.Encode(MintEvent{
		TokenID: p.TokenID,
		Amount:  p.Amount,
		Owner:   p.Owner,
	}))
	l.logger.Debug("minted", "token", p.TokenID, "amount", p.Amount, "owner", p.Owner)
	return nil
}
