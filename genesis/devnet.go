// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/meter"
)

// DevAccount account for development.
type DevAccount struct {
	Address    meter.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the devnet.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{meter.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet returns the genesis config of a local devnet. Every dev account
// holds 1000 CCD of token 1; the first one owns the ledger and the auction.
func NewDevnet() *Config {
	launchTime := uint64(1526400000000) // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'

	accs := DevAccounts()
	owner := accs[0].Address.String()
	cfg := &Config{
		Name:      "devnet",
		ChainTag:  0x4a,
		Timestamp: launchTime,
		Ledger:    Ledger{Owner: owner},
		Auction:   Auction{Creator: owner, MinimumRaise: meter.MicroCCD},
	}
	for _, a := range accs {
		cfg.Accounts = append(cfg.Accounts, Account{
			Address:    a.Address.String(),
			PublicKeys: []string{hexutil.Encode(crypto.CompressPubkey(&a.PrivateKey.PublicKey))},
		})
		cfg.Ledger.Mints = append(cfg.Ledger.Mints, Mint{Owner: a.Address.String(), TokenID: 1, Amount: 1000 * meter.MicroCCD})
	}
	return cfg
}
