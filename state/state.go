// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/stackedmap"
)

type storageKey struct {
	addr meter.Address
	key  meter.Bytes32
}

// dbKey is the persisted key of a storage slot: prefix | address | key
func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, 1+meter.AddressLength+32)
	b = append(b, storagePrefix)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

const storagePrefix = byte('s')

// StoragePrefix returns the persisted key prefix of all storage slots of addr.
func StoragePrefix(addr meter.Address) []byte {
	return append([]byte{storagePrefix}, addr[:]...)
}

type loader interface {
	load(key storageKey) ([]byte, error)
}

// State manages the contract storage slots, with journaled changes.
type State struct {
	loader loader
	sm     *stackedmap.StackedMap
	err    error
}

func newState(l loader) *State {
	state := &State{loader: l}
	state.sm = stackedmap.New(state.cacheGetter)
	return state
}

// implements stackedmap.MapGetter
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool) {
	switch k := key.(type) {
	case storageKey:
		raw, err := s.loader.load(k)
		if err != nil {
			s.setError(err)
			return []byte(nil), true
		}
		return raw, true
	}
	panic("unknown cache key type")
}

func (s *State) setError(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns first occurred error.
func (s *State) Err() error {
	return s.err
}

// GetRawStorage returns storage value in raw form.
// The returned slice must not be modified.
func (s *State) GetRawStorage(addr meter.Address, key meter.Bytes32) []byte {
	v, _ := s.sm.Get(storageKey{addr, key})
	return v.([]byte)
}

// SetRawStorage set storage value in raw form. An empty value deletes the slot.
func (s *State) SetRawStorage(addr meter.Address, key meter.Bytes32, raw []byte) {
	cpy := append([]byte(nil), raw...)
	s.sm.Put(storageKey{addr, key}, cpy)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr meter.Address, key meter.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr meter.Address, key meter.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.setError(err)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to compute the change set or commit state changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	s.sm.Journal(func(k, v interface{}) bool {
		key := k.(storageKey)
		if _, seen := changes[key]; !seen {
			order = append(order, key)
		}
		changes[key] = v.([]byte)
		return true
	})
	return &Stage{err: s.err, changes: changes, order: order}
}
