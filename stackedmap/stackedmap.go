// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap is a map with journaled levels, where writes of a level
// can be dropped at once by popping it.
package stackedmap

// MapGetter defines getter method of map.
type MapGetter func(key interface{}) (value interface{}, exist bool)

type journalEntry struct {
	key   interface{}
	value interface{}
}

type level struct {
	kvs     map[interface{}]interface{}
	journal []journalEntry
}

// StackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save-restore/snapshot-revert manner.
type StackedMap struct {
	src    MapGetter
	levels []*level
}

// New create an instance of StackedMap.
// src acts as source of data.
func New(src MapGetter) *StackedMap {
	sm := &StackedMap{src: src}
	sm.Push()
	return sm
}

// Depth returns depth of stack.
func (sm *StackedMap) Depth() int {
	return len(sm.levels)
}

// Push pushes a new map onto stack.
// It returns the depth before push, which can be passed to PopTo.
func (sm *StackedMap) Push() int {
	sm.levels = append(sm.levels, &level{kvs: make(map[interface{}]interface{})})
	return len(sm.levels) - 1
}

// Pop pops the map at top of stack.
// It will revert all Put operations since last Push.
func (sm *StackedMap) Pop() {
	sm.PopTo(len(sm.levels) - 1)
}

// PopTo pops maps until stack depth reaches depth.
func (sm *StackedMap) PopTo(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(sm.levels) {
		return
	}
	for i := depth; i < len(sm.levels); i++ {
		sm.levels[i] = nil
	}
	sm.levels = sm.levels[:depth]
	if len(sm.levels) == 0 {
		sm.Push()
	}
}

// Get gets value for given key.
// The second return value indicates whether the given key is found.
func (sm *StackedMap) Get(key interface{}) (interface{}, bool) {
	for i := len(sm.levels) - 1; i >= 0; i-- {
		if v, ok := sm.levels[i].kvs[key]; ok {
			return v, true
		}
	}
	if sm.src == nil {
		return nil, false
	}
	return sm.src(key)
}

// Put puts key value into map at stack top.
func (sm *StackedMap) Put(key, value interface{}) {
	top := sm.levels[len(sm.levels)-1]
	top.kvs[key] = value
	top.journal = append(top.journal, journalEntry{key, value})
}

// Journal traverses journal entries of all Put operations, from bottom level to top.
// Traversal stops when cb returns false.
func (sm *StackedMap) Journal(cb func(key, value interface{}) bool) {
	for _, l := range sm.levels {
		for _, entry := range l.journal {
			if !cb(entry.key, entry.value) {
				return
			}
		}
	}
}
