// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"log/slog"
	"time"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// ScriptEngine hosts the builtin contracts and dispatches calls to them.
type ScriptEngine struct {
	logger *slog.Logger
	modReg Registry
}

func NewScriptEngine(contracts ...setypes.Contract) *ScriptEngine {
	se := &ScriptEngine{
		logger: slog.Default().With("pkg", "se"),
	}
	for _, c := range contracts {
		if err := se.Register(c); err != nil {
			panic(err)
		}
	}
	return se
}

// Register hosts contract c at its address.
func (se *ScriptEngine) Register(c setypes.Contract) error {
	mod := &Module{
		modName:  c.Name(),
		modAddr:  c.Address(),
		contract: c,
	}
	if err := se.modReg.Register(mod.modAddr, mod); err != nil {
		return errors.WithMessage(err, "register "+mod.modName)
	}
	se.logger.Debug("registered module", "name", mod.modName, "address", mod.modAddr)
	return nil
}

// Find returns the module hosted at addr.
func (se *ScriptEngine) Find(addr meter.Address) (*Module, bool) {
	return se.modReg.Find(addr)
}

// Modules returns all hosted modules.
func (se *ScriptEngine) Modules() []Module {
	return se.modReg.All()
}

// Invoke implements types.Invoker. It charges the invocation gas, then runs the
// entrypoint of the contract at to within env.
func (se *ScriptEngine) Invoke(env *setypes.ScriptEnv, to meter.Address, entrypoint string, param []byte) (ret []byte, err error) {
	env.UseGas(meter.InvokeGas + meter.ParamByteGas*uint64(len(param)))

	mod, found := se.modReg.Find(to)
	if !found {
		return nil, setypes.ErrContractNotFound
	}

	start := time.Now()
	completed := false
	defer func() {
		result := "ok"
		if !completed {
			// unwinding on out of gas
			result = "aborted"
		} else if r, ok := setypes.AsReject(err); ok {
			result = r.Name
		} else if err != nil {
			result = "error"
		}
		invokeCounter.WithLabelValues(mod.modName, entrypoint, result).Inc()
		se.logger.Debug("invoked", "module", mod.modName, "entrypoint", entrypoint,
			"depth", env.Depth(), "result", result, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()
	ret, err = mod.contract.Invoke(env, entrypoint, param)
	completed = true
	return
}
