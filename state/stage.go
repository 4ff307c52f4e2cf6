// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/meter"
)

// Stage abstracts changes on the contract storage.
type Stage struct {
	err     error
	changes map[storageKey][]byte
	order   []storageKey
}

// Len returns count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of the change set, independent of write order.
func (s *Stage) Hash() (meter.Bytes32, error) {
	if s.err != nil {
		return meter.Bytes32{}, s.err
	}
	keys := make([][]byte, 0, len(s.order))
	values := make(map[string][]byte, len(s.order))
	for _, k := range s.order {
		dk := k.dbKey()
		keys = append(keys, dk)
		values[string(dk)] = s.changes[k]
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })

	hw := meter.NewBlake2b()
	for _, k := range keys {
		hw.Write(k)
		hw.Write(values[string(k)])
	}
	var h meter.Bytes32
	hw.Sum(h[:0])
	return h, nil
}

// writeTo puts all changes into w.
func (s *Stage) writeTo(w kv.Putter) error {
	if s.err != nil {
		return s.err
	}
	for _, k := range s.order {
		v := s.changes[k]
		if len(v) == 0 {
			if err := w.Delete(k.dbKey()); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(k.dbKey(), v); err != nil {
			return err
		}
	}
	return nil
}
