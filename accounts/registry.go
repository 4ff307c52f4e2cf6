// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
)

func keysKey(addr meter.Address) meter.Bytes32 {
	return meter.StorageKey("account-keys", addr[:])
}

// Get returns the registered keys of addr, or nil if addr is not a registered account.
func Get(st *state.State, addr meter.Address) *AccountKeys {
	var keys *AccountKeys
	st.DecodeStorage(meter.AccountRegistryAddr, keysKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		keys = &AccountKeys{}
		return rlp.DecodeBytes(raw, keys)
	})
	return keys
}

// Exists reports whether addr is a registered account.
func Exists(st *state.State, addr meter.Address) bool {
	return len(st.GetRawStorage(meter.AccountRegistryAddr, keysKey(addr))) > 0
}

// Set registers keys for addr.
func Set(st *state.State, addr meter.Address, keys *AccountKeys) error {
	if err := keys.Validate(); err != nil {
		return err
	}
	st.EncodeStorage(meter.AccountRegistryAddr, keysKey(addr), func() ([]byte, error) {
		return rlp.EncodeToBytes(keys)
	})
	return st.Err()
}
