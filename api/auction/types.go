// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
)

type Item struct {
	Index         uint16         `json:"index"`
	Name          string         `json:"name"`
	State         string         `json:"state"`
	Winner        *meter.Address `json:"winner"`
	HighestBidder *meter.Address `json:"highestBidder"`
	HighestBid    uint64         `json:"highestBid"`
	MinimumBid    uint64         `json:"minimumBid"`
	Start         uint64         `json:"start"`
	End           uint64         `json:"end"`
	TokenID       uint32         `json:"tokenID"`
	Creator       meter.Address  `json:"creator"`
}

type Summary struct {
	Cis2Contract meter.Address `json:"cis2Contract"`
	Counter      uint16        `json:"counter"`
	Items        []*Item       `json:"items"`
}

func addrOf(some bool, addr meter.Address) *meter.Address {
	if !some {
		return nil
	}
	return &addr
}

func convertItem(index uint16, s *auction.ItemState) *Item {
	state := "NotSoldYet"
	if s.Sold {
		state = "Sold"
	}
	return &Item{
		Index:         index,
		Name:          s.Name,
		State:         state,
		Winner:        addrOf(s.HasWinner, s.Winner),
		HighestBidder: addrOf(s.HasBidder, s.HighestBidder),
		HighestBid:    s.HighestBid,
		MinimumBid:    s.MinimumBid,
		Start:         uint64(s.Start),
		End:           uint64(s.End),
		TokenID:       uint32(s.TokenID),
		Creator:       s.Creator,
	}
}

func convertSummary(v *auction.ReturnParamView) *Summary {
	summary := &Summary{
		Cis2Contract: v.Cis2Contract,
		Counter:      v.Counter,
		Items:        make([]*Item, 0, len(v.ItemStates)),
	}
	for i := range v.ItemStates {
		summary.Items = append(summary.Items, convertItem(v.ItemStates[i].Index, &v.ItemStates[i].Item))
	}
	return summary
}
