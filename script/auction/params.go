// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
)

// InitParameter configures the auction at deployment.
type InitParameter struct {
	// ledger whose tokens are bid
	Cis2Contract meter.Address
	// smallest accepted raise over a previous bid
	MinimumRaise uint64
}

func (p InitParameter) Serialize(w *codec.Writer) {
	w.Address(p.Cis2Contract)
	w.U64(p.MinimumRaise)
}

func (p *InitParameter) Deserialize(r *codec.Reader) {
	p.Cis2Contract = r.Address()
	p.MinimumRaise = r.U64()
}

// AddItemParameter is the parameter of addItem.
type AddItemParameter struct {
	Name       string
	End        meter.Timestamp
	Start      meter.Timestamp
	TokenID    codec.TokenID
	MinimumBid codec.TokenAmount
}

func (p AddItemParameter) Serialize(w *codec.Writer) {
	w.String(p.Name)
	w.Timestamp(p.End)
	w.Timestamp(p.Start)
	p.TokenID.Serialize(w)
	p.MinimumBid.Serialize(w)
}

func (p *AddItemParameter) Deserialize(r *codec.Reader) {
	p.Name = r.String()
	p.End = r.Timestamp()
	p.Start = r.Timestamp()
	p.TokenID.Deserialize(r)
	p.MinimumBid.Deserialize(r)
}

// AdditionalDataIndex is the additional data of a bid transfer.
type AdditionalDataIndex struct {
	ItemIndex uint16
}

func (p AdditionalDataIndex) Serialize(w *codec.Writer)     { w.U16(p.ItemIndex) }
func (p *AdditionalDataIndex) Deserialize(r *codec.Reader) { p.ItemIndex = r.U16() }

// ItemState is the state of one auctioned item.
type ItemState struct {
	Sold          bool
	HasWinner     bool
	Winner        meter.Address
	HasBidder     bool
	HighestBidder meter.Address
	Name          string
	End           meter.Timestamp
	Start         meter.Timestamp
	HighestBid    uint64
	MinimumBid    uint64
	TokenID       codec.TokenID
	Creator       meter.Address
}

func (s *ItemState) String() string {
	state := "NotSoldYet"
	if s.Sold {
		state = "Sold(None)"
		if s.HasWinner {
			state = fmt.Sprintf("Sold(%v)", s.Winner)
		}
	}
	return fmt.Sprintf("Item(%v): state=%v, highestBid=%v, start=%v, end=%v, token=%v, creator=%v",
		s.Name, state, s.HighestBid, s.Start, s.End, s.TokenID, s.Creator)
}

func writeOption(w *codec.Writer, some bool, addr meter.Address) {
	if !some {
		w.U8(0)
		return
	}
	w.U8(1)
	w.Address(addr)
}

func readOption(r *codec.Reader) (bool, meter.Address) {
	if r.Tag(2) == 0 {
		return false, meter.Address{}
	}
	return true, r.Address()
}

// Serialize writes auction_state (NotSoldYet | Sold(Option<winner>)) first.
func (s ItemState) Serialize(w *codec.Writer) {
	if s.Sold {
		w.U8(1)
		writeOption(w, s.HasWinner, s.Winner)
	} else {
		w.U8(0)
	}
	writeOption(w, s.HasBidder, s.HighestBidder)
	w.String(s.Name)
	w.Timestamp(s.End)
	w.Timestamp(s.Start)
	codec.TokenAmount(s.HighestBid).Serialize(w)
	codec.TokenAmount(s.MinimumBid).Serialize(w)
	s.TokenID.Serialize(w)
	w.Address(s.Creator)
}

func (s *ItemState) Deserialize(r *codec.Reader) {
	*s = ItemState{}
	if r.Tag(2) == 1 {
		s.Sold = true
		s.HasWinner, s.Winner = readOption(r)
	}
	s.HasBidder, s.HighestBidder = readOption(r)
	s.Name = r.String()
	s.End = r.Timestamp()
	s.Start = r.Timestamp()
	s.HighestBid = r.LEB128()
	s.MinimumBid = r.LEB128()
	s.TokenID.Deserialize(r)
	s.Creator = r.Address()
}

// IndexedItem pairs an item with its index.
type IndexedItem struct {
	Index uint16
	Item  ItemState
}

// ReturnParamView is the result of view.
type ReturnParamView struct {
	ItemStates   []IndexedItem
	Cis2Contract meter.Address
	Counter      uint16
}

func (v ReturnParamView) Serialize(w *codec.Writer) {
	w.Len32(len(v.ItemStates))
	for _, it := range v.ItemStates {
		w.U16(it.Index)
		it.Item.Serialize(w)
	}
	w.Address(v.Cis2Contract)
	w.U16(v.Counter)
}

func (v *ReturnParamView) Deserialize(r *codec.Reader) {
	n := r.Len32()
	v.ItemStates = make([]IndexedItem, 0)
	for i := 0; i < n && r.Err() == nil; i++ {
		var it IndexedItem
		it.Index = r.U16()
		it.Item.Deserialize(r)
		v.ItemStates = append(v.ItemStates, it)
	}
	v.Cis2Contract = r.Address()
	v.Counter = r.U16()
}

// AddItemEvent is logged when an item is added.
type AddItemEvent struct {
	ItemIndex uint16
	Creator   meter.Address
}

func (e AddItemEvent) Serialize(w *codec.Writer) {
	w.U16(e.ItemIndex)
	w.Address(e.Creator)
}

func (e *AddItemEvent) Deserialize(r *codec.Reader) {
	e.ItemIndex = r.U16()
	e.Creator = r.Address()
}

// BidEvent is logged for every accepted bid.
type BidEvent struct {
	ItemIndex uint16
	Bidder    meter.Address
	Amount    codec.TokenAmount
}

func (e BidEvent) Serialize(w *codec.Writer) {
	w.U16(e.ItemIndex)
	w.Address(e.Bidder)
	e.Amount.Serialize(w)
}

func (e *BidEvent) Deserialize(r *codec.Reader) {
	e.ItemIndex = r.U16()
	e.Bidder = r.Address()
	e.Amount.Deserialize(r)
}

// FinalizeEvent is logged when an item is sold.
type FinalizeEvent struct {
	ItemIndex uint16
	HasWinner bool
	Winner    meter.Address
	Amount    codec.TokenAmount
}

func (e FinalizeEvent) Serialize(w *codec.Writer) {
	w.U16(e.ItemIndex)
	writeOption(w, e.HasWinner, e.Winner)
	e.Amount.Serialize(w)
}

func (e *FinalizeEvent) Deserialize(r *codec.Reader) {
	e.ItemIndex = r.U16()
	e.HasWinner, e.Winner = readOption(r)
	e.Amount.Deserialize(r)
}
