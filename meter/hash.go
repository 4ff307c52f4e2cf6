// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	hash, err := blake2b.New256(nil)
	if err != nil {
		// only fails on oversized keys
		panic(err)
	}
	return hash
}

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) (b32 Bytes32) {
	hash := NewBlake2b()
	for _, b := range data {
		hash.Write(b)
	}
	hash.Sum(b32[:0])
	return
}

// StorageKey derives the storage slot key for a named value of a contract.
func StorageKey(name string, parts ...[]byte) Bytes32 {
	return Blake2b(append([][]byte{[]byte(name)}, parts...)...)
}
