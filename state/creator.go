// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/meter-auction/kv"
)

const storageCacheSize = 16 * 1024

// Creator state creator to cut-off kv dependency.
// All states created share one read cache, kept coherent by Commit.
type Creator struct {
	db    kv.Store
	cache *lru.Cache
	lock  sync.RWMutex
}

// NewCreator create a new state creator.
func NewCreator(db kv.Store) *Creator {
	cache, _ := lru.New(storageCacheSize)
	return &Creator{db: db, cache: cache}
}

// NewState create a new state object on top of committed storage.
func (c *Creator) NewState() *State {
	return newState(c)
}

func (c *Creator) load(key storageKey) ([]byte, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if v, ok := c.cache.Get(key); ok {
		return v.([]byte), nil
	}
	raw, err := c.db.Get(key.dbKey())
	if err != nil {
		if !c.db.IsNotFound(err) {
			return nil, err
		}
		raw = nil
	}
	c.cache.Add(key, raw)
	return raw, nil
}

// Commit writes the stage together with anything extra puts into the same batch.
func (c *Creator) Commit(stage *Stage, extra func(kv.Putter) error) error {
	batch := c.db.NewBatch()
	if err := stage.writeTo(batch); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return err
		}
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if err := batch.Write(); err != nil {
		return err
	}
	for k, v := range stage.changes {
		if len(v) == 0 {
			c.cache.Add(k, []byte(nil))
		} else {
			c.cache.Add(k, v)
		}
	}
	return nil
}
