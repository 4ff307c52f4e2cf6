// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

var ownerKey = meter.StorageKey("owner")

func tokenBytes(id codec.TokenID) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

func addrBytes(a codec.Address) []byte {
	return append([]byte{a.Kind}, a.Address[:]...)
}

func tokenKey(id codec.TokenID) meter.Bytes32 {
	return meter.StorageKey("token", tokenBytes(id))
}

func balanceKey(id codec.TokenID, a codec.Address) meter.Bytes32 {
	return meter.StorageKey("balance", tokenBytes(id), addrBytes(a))
}

func operatorKey(owner, operator codec.Address) meter.Bytes32 {
	return meter.StorageKey("operator", addrBytes(owner), addrBytes(operator))
}

func getUint64(env *types.ScriptEnv, key meter.Bytes32) (v uint64, exists bool) {
	env.GetStorage(key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		exists = true
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func setUint64(env *types.ScriptEnv, key meter.Bytes32, v uint64) {
	env.SetStorage(key, func() ([]byte, error) {
		return rlp.EncodeToBytes(v)
	})
}

func getOwner(env *types.ScriptEnv) (owner meter.Address) {
	env.GetStorage(ownerKey, func(raw []byte) error {
		owner = meter.BytesToAddress(raw)
		return nil
	})
	return
}

func setOwner(env *types.ScriptEnv, owner meter.Address) {
	env.SetStorage(ownerKey, func() ([]byte, error) {
		return owner.Bytes(), nil
	})
}

// totalSupply returns the minted amount of token, and whether the token exists.
func totalSupply(env *types.ScriptEnv, id codec.TokenID) (uint64, bool) {
	return getUint64(env, tokenKey(id))
}

func balanceOf(env *types.ScriptEnv, id codec.TokenID, a codec.Address) uint64 {
	v, _ := getUint64(env, balanceKey(id, a))
	return v
}

func setBalance(env *types.ScriptEnv, id codec.TokenID, a codec.Address, v uint64) {
	if v == 0 {
		// empty value deletes the slot
		env.SetStorage(balanceKey(id, a), func() ([]byte, error) { return nil, nil })
		return
	}
	setUint64(env, balanceKey(id, a), v)
}

func isOperator(env *types.ScriptEnv, owner, operator codec.Address) (yes bool) {
	env.GetStorage(operatorKey(owner, operator), func(raw []byte) error {
		yes = len(raw) > 0
		return nil
	})
	return
}

func setOperator(env *types.ScriptEnv, owner, operator codec.Address, yes bool) {
	env.SetStorage(operatorKey(owner, operator), func() ([]byte, error) {
		if yes {
			return []byte{1}, nil
		}
		return nil, nil
	})
}
