// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/types"
)

// HandleBid is the receive hook of the ledger. A transfer to it is a bid on
// the item named by the transfer data.
func (a *Auction) HandleBid(env *types.ScriptEnv, param []byte) error {
	var p ledger.OnReceivingCIS2Params
	if err := codec.Decode(param, &p); err != nil {
		return types.ErrParse
	}
	cfg := a.getConfig(env)
	if env.Sender() != codec.ContractAddress(cfg.Cis2Contract) {
		return ErrNotTokenContract
	}
	if p.From.IsContract() {
		return ErrOnlyAccount
	}
	var data AdditionalDataIndex
	if err := codec.Decode(p.Data, &data); err != nil {
		return types.ErrParse
	}

	index := data.ItemIndex
	item := a.getItem(env, index)
	if item == nil {
		return ErrInvalidIndex
	}
	// sold is terminal whatever the clock says, even for an item whose end precedes its start
	if item.Sold {
		return ErrAuctionAlreadyFinalized
	}
	now := env.Now()
	if now < item.Start {
		return ErrBidTooEarly
	}
	if now >= item.End {
		return ErrBidTooLate
	}
	if p.TokenID != item.TokenID {
		return ErrWrongTokenID
	}
	amount := uint64(p.Amount)
	if amount <= item.HighestBid {
		return ErrBidBelowCurrentBid
	}
	if item.HasBidder && amount-item.HighestBid < cfg.MinimumRaise {
		return ErrBidBelowMinimumRaise
	}

	prevBidder, prevBid, hadBidder := item.HighestBidder, item.HighestBid, item.HasBidder
	bidder := p.From.Address

	// commit the new highest bid before the refund transfer, which may re-enter
	item.HighestBid = amount
	item.HighestBidder = bidder
	item.HasBidder = true
	a.setItem(env, index, item)

	env.AddEvent("Bid", []meter.Bytes32{indexTopic(index)}, codec.Encode(BidEvent{
		ItemIndex: index,
		Bidder:    bidder,
		Amount:    p.Amount,
	}))
	a.logger.Debug("bid accepted", "index", index, "bidder", bidder, "amount", amount)

	if hadBidder {
		if err := a.pay(env, cfg.Cis2Contract, item.TokenID, prevBid, prevBidder); err != nil {
			return err
		}
		a.logger.Debug("refunded", "index", index, "bidder", prevBidder, "amount", prevBid)
	}
	return nil
}

// pay transfers amount of token held by the auction to an account through the ledger.
func (a *Auction) pay(env *types.ScriptEnv, ledgerAddr meter.Address, token codec.TokenID, amount uint64, to meter.Address) error {
	transfer := ledger.TransferParams{{
		TokenID: token,
		Amount:  codec.TokenAmount(amount),
		From:    codec.ContractAddress(env.Self()),
		To:      codec.ToAccount(to),
		Data:    []byte{},
	}}
	_, err := env.Call(ledgerAddr, "transfer", codec.Encode(transfer))
	return err
}
