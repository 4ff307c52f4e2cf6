// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"fmt"
	"sort"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// Module is a contract hosted at an address.
type Module struct {
	modName  string
	modAddr  meter.Address
	contract types.Contract
}

func (m *Module) Name() string             { return m.modName }
func (m *Module) Address() meter.Address   { return m.modAddr }
func (m *Module) Contract() types.Contract { return m.contract }
func (m *Module) ToString() string {
	return fmt.Sprintf("Module::: Name: %v, Address: %v", m.modName, m.modAddr)
}

// Registry is the hub of all modules on the chain
type Registry struct {
	Modules sync.Map
}

func (r *Registry) Register(addr meter.Address, p *Module) error {
	_, loaded := r.Modules.LoadOrStore(addr, *p)
	if loaded {
		return fmt.Errorf("module at %v is already registered", addr)
	}
	return nil
}

// ForceRegister registers at addr and replaces the previous module if it exists
func (r *Registry) ForceRegister(addr meter.Address, p *Module) error {
	r.Modules.Store(addr, *p)
	return nil
}

// Find by address
func (r *Registry) Find(addr meter.Address) (*Module, bool) {
	value, ok := r.Modules.Load(addr)
	if !ok {
		return nil, false
	}
	p, ok := value.(Module)
	if !ok {
		panic("Registry stores the item which is not a Module")
	}
	return &p, true
}

// All returns modules ordered by name.
func (r *Registry) All() []Module {
	all := make([]Module, 0)
	r.Modules.Range(func(_, value interface{}) bool {
		p, ok := value.(Module)
		if !ok {
			panic("Registry stores the item which is not a module")
		}
		all = append(all, p)
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].modName < all[j].modName })
	return all
}
