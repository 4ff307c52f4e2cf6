// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/script/types"
)

// HandleView returns all items, the ledger address and the next index.
func (a *Auction) HandleView(env *types.ScriptEnv, param []byte) ([]byte, error) {
	if len(param) != 0 {
		return nil, types.ErrParse
	}
	counter := a.getCounter(env)
	view := ReturnParamView{
		ItemStates:   make([]IndexedItem, 0, counter),
		Cis2Contract: a.getConfig(env).Cis2Contract,
		Counter:      counter,
	}
	for i := uint16(0); i < counter; i++ {
		if item := a.getItem(env, i); item != nil {
			view.ItemStates = append(view.ItemStates, IndexedItem{Index: i, Item: *item})
		}
	}
	return codec.Encode(view), nil
}

// HandleViewItemState returns one item.
func (a *Auction) HandleViewItemState(env *types.ScriptEnv, param []byte) ([]byte, error) {
	var index codec.U16
	if err := codec.Decode(param, &index); err != nil {
		return nil, types.ErrParse
	}
	item := a.getItem(env, uint16(index))
	if item == nil {
		return nil, ErrInvalidIndex
	}
	return codec.Encode(item), nil
}
