// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// the storage keys of the auction
var (
	ConfigKey  = meter.StorageKey("auction-config")
	CounterKey = meter.StorageKey("item-counter")
)

func itemKey(index uint16) meter.Bytes32 {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], index)
	return meter.StorageKey("item", b[:])
}

func (a *Auction) getConfig(env *types.ScriptEnv) (cfg InitParameter) {
	env.GetStorage(ConfigKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &cfg)
	})
	return
}

func (a *Auction) setConfig(env *types.ScriptEnv, cfg *InitParameter) {
	env.SetStorage(ConfigKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(cfg)
	})
}

func (a *Auction) getCounter(env *types.ScriptEnv) (counter uint16) {
	env.GetStorage(CounterKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &counter)
	})
	return
}

func (a *Auction) setCounter(env *types.ScriptEnv, counter uint16) {
	env.SetStorage(CounterKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(counter)
	})
}

// getItem returns the item at index, or nil if there is none.
func (a *Auction) getItem(env *types.ScriptEnv, index uint16) (item *ItemState) {
	env.GetStorage(itemKey(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		item = &ItemState{}
		return rlp.DecodeBytes(raw, item)
	})
	return
}

func (a *Auction) setItem(env *types.ScriptEnv, index uint16, item *ItemState) {
	env.SetStorage(itemKey(index), func() ([]byte, error) {
		return rlp.EncodeToBytes(item)
	})
}
