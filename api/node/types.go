// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"sort"

	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
)

type BlockSummary struct {
	Number    uint32        `json:"number"`
	ID        meter.Bytes32 `json:"id"`
	Timestamp uint64        `json:"timestamp"`
}

func convertBlockSummary(h *block.Header) BlockSummary {
	return BlockSummary{
		Number:    h.Number(),
		ID:        h.ID(),
		Timestamp: h.Timestamp(),
	}
}

type Contract struct {
	Name        string        `json:"name"`
	Address     meter.Address `json:"address"`
	Entrypoints []string      `json:"entrypoints"`
}

func convertContracts(modules []script.Module) []*Contract {
	contracts := make([]*Contract, 0, len(modules))
	for _, m := range modules {
		eps := m.Contract().Entrypoints()
		sort.Strings(eps)
		contracts = append(contracts, &Contract{
			Name:        m.Name(),
			Address:     m.Address(),
			Entrypoints: eps,
		})
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].Name < contracts[j].Name })
	return contracts
}

type Status struct {
	ChainTag     uint8        `json:"chainTag"`
	Genesis      BlockSummary `json:"genesis"`
	Best         BlockSummary `json:"best"`
	CallGasLimit uint64       `json:"callGasLimit"`
	Publishing   bool         `json:"publishing"`
	Contracts    []*Contract  `json:"contracts"`
}
