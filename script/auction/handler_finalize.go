// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// HandleFinalize closes the auction of an item after its end. Anyone may finalize.
func (a *Auction) HandleFinalize(env *types.ScriptEnv, param []byte) error {
	var index codec.U16
	if err := codec.Decode(param, &index); err != nil {
		return types.ErrParse
	}
	item := a.getItem(env, uint16(index))
	if item == nil {
		return ErrInvalidIndex
	}
	if env.Now() < item.End {
		return ErrAuctionStillActive
	}
	if item.Sold {
		return ErrAuctionAlreadyFinalized
	}

	item.Sold = true
	item.HasWinner = item.HasBidder
	item.Winner = item.HighestBidder
	a.setItem(env, uint16(index), item)

	var amount uint64
	if item.HasBidder {
		amount = item.HighestBid
	}
	env.AddEvent("Finalize", []meter.Bytes32{indexTopic(uint16(index))}, codec.Encode(FinalizeEvent{
		ItemIndex: uint16(index),
		HasWinner: item.HasWinner,
		Winner:    item.Winner,
		Amount:    codec.TokenAmount(amount),
	}))
	a.logger.Debug("item finalized", "index", uint16(index), "item", item.String())

	if !item.HasBidder {
		return nil
	}
	cfg := a.getConfig(env)
	return a.pay(env, cfg.Cis2Contract, item.TokenID, item.HighestBid, item.Creator)
}
