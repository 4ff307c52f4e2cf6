// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"encoding/binary"
	"math"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

func indexTopic(index uint16) meter.Bytes32 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], index)
	return meter.BytesToBytes32(b[:])
}

// HandleAddItem appends a new item created by the sender and returns its index.
func (a *Auction) HandleAddItem(env *types.ScriptEnv, param []byte) ([]byte, error) {
	var p AddItemParameter
	if err := codec.Decode(param, &p); err != nil {
		return nil, types.ErrParse
	}
	sender := env.Sender()
	if sender.IsContract() {
		return nil, ErrOnlyAccount
	}

	index := a.getCounter(env)
	if index == math.MaxUint16 {
		return nil, ErrItemsExhausted
	}
	item := &ItemState{
		Name:       p.Name,
		End:        p.End,
		Start:      p.Start,
		HighestBid: uint64(p.MinimumBid),
		MinimumBid: uint64(p.MinimumBid),
		TokenID:    p.TokenID,
		Creator:    sender.Address,
	}
	a.setItem(env, index, item)
	a.setCounter(env, index+1)

	env.AddEvent("AddItem", []meter.Bytes32{indexTopic(index)}, codec.Encode(AddItemEvent{
		ItemIndex: index,
		Creator:   sender.Address,
	}))
	a.logger.Debug("item added", "index", index, "item", item.String())
	return codec.Encode(codec.U16(index)), nil
}
