// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

func masterKeyAction(ctx *cli.Context) error {
	hasImportFlag := ctx.Bool(importMasterKeyFlag.Name)
	hasExportFlag := ctx.Bool(exportMasterKeyFlag.Name)
	if hasImportFlag && hasExportFlag {
		return fmt.Errorf("flag %s and %s are exclusive", importMasterKeyFlag.Name, exportMasterKeyFlag.Name)
	}

	if !hasImportFlag && !hasExportFlag {
		return fmt.Errorf("missing flag, either %s or %s", importMasterKeyFlag.Name, exportMasterKeyFlag.Name)
	}
	makeDataDir(ctx)

	if hasImportFlag {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Println("Input JSON keystore (end with ^d):")
		}
		keyjson, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}

		if err := json.Unmarshal(keyjson, &map[string]interface{}{}); err != nil {
			return errors.WithMessage(err, "unmarshal")
		}
		password, err := readPasswordFromNewTTY("Enter passphrase: ")
		if err != nil {
			return err
		}

		key, err := keystore.DecryptKey(keyjson, password)
		if err != nil {
			return errors.WithMessage(err, "decrypt")
		}

		if err := crypto.SaveECDSA(masterKeyPath(ctx), key.PrivateKey); err != nil {
			return err
		}
		fmt.Println("Master key imported:", meter.Address(key.Address))
		return nil
	}

	masterKey, err := loadOrGeneratePrivateKey(masterKeyPath(ctx))
	if err != nil {
		return err
	}

	password, err := readPasswordFromNewTTY("Enter passphrase: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("non-empty passphrase required")
	}
	confirm, err := readPasswordFromNewTTY("Confirm passphrase: ")
	if err != nil {
		return err
	}

	if password != confirm {
		return errors.New("passphrase confirmation mismatch")
	}

	keyjson, err := keystore.EncryptKey(&keystore.Key{
		PrivateKey: masterKey,
		Address:    crypto.PubkeyToAddress(masterKey.PublicKey),
		Id:         uuid.New()},
		password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return err
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("=== JSON keystore ===")
	}
	_, err = fmt.Println(string(keyjson))
	return err
}

func addressAction(ctx *cli.Context) error {
	makeDataDir(ctx)
	key, err := loadOrGeneratePrivateKey(masterKeyPath(ctx))
	if err != nil {
		fatal("load or generate master key:", err)
	}
	fmt.Println(meter.Address(crypto.PubkeyToAddress(key.PublicKey)).String())
	fmt.Println(hexutil.Encode(crypto.CompressPubkey(&key.PublicKey)))
	return nil
}

// permitSignAction prints the parameter of the 'permit' entrypoint that lets a
// sponsor submit the call on behalf of the master key.
func permitSignAction(ctx *cli.Context) error {
	contract, err := meter.ParseAddress(ctx.String(contractFlag.Name))
	if err != nil {
		return errors.WithMessage(err, contractFlag.Name)
	}
	entrypoint := ctx.String(entrypointFlag.Name)
	if entrypoint == "" {
		return fmt.Errorf("missing flag %s", entrypointFlag.Name)
	}
	var payload []byte
	if s := ctx.String(payloadFlag.Name); s != "" {
		if payload, err = hexutil.Decode(s); err != nil {
			return errors.WithMessage(err, payloadFlag.Name)
		}
	}

	key, err := crypto.LoadECDSA(masterKeyPath(ctx))
	if err != nil {
		return errors.WithMessage(err, "load master key")
	}
	signer := meter.Address(crypto.PubkeyToAddress(key.PublicKey))

	msg := permit.Message{
		ContractAddress: contract,
		Nonce:           ctx.Uint64(nonceFlag.Name),
		Timestamp:       meter.NewTimestamp(time.Now()).Add(ctx.Duration(validForFlag.Name)),
		EntryPoint:      entrypoint,
		Payload:         payload,
	}
	hash := permit.MessageHash(signer, &msg)
	sigs, err := accounts.Sign(hash, key)
	if err != nil {
		return err
	}

	fmt.Printf(`Signer      %v
Hash        %v
Expires     %v
Param       %v
`, signer, hash, msg.Timestamp, hexutil.Encode(codec.Encode(permit.Param{
		Signature: sigs,
		Signer:    signer,
		Message:   msg,
	})))
	return nil
}
