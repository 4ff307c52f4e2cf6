// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/meterio/meter-auction/meter"
)

// Contract is a builtin contract hosted by the script engine.
type Contract interface {
	Name() string
	Address() meter.Address
	// Entrypoints lists the entrypoint names the contract accepts.
	Entrypoints() []string
	// Invoke runs the named entrypoint with the serialized param.
	Invoke(env *ScriptEnv, entrypoint string, param []byte) ([]byte, error)
}

// Invoker dispatches calls between contracts.
type Invoker interface {
	Invoke(env *ScriptEnv, to meter.Address, entrypoint string, param []byte) ([]byte, error)
}

// Initializer is implemented by contracts taking an init parameter at deployment.
type Initializer interface {
	Init(env *ScriptEnv, param []byte) error
}
