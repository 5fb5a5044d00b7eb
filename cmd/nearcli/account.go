// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"github.com/spf13/cobra"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/login"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/verify"
	"github.com/near-go/nearcli/internal/view"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newViewCmd(a))
	return cmd
}

func (a *app) verifier() *verify.Verifier {
	return verify.New(func(n near.NetworkConfig) verify.Querier {
		return a.dial(n.RPCURL())
	})
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		showQR    bool
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a wallet in the browser",
		Long: `Generate a new key pair, open the wallet so you can add the public key to
your account, then check that the key is on the account and save it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := a.networkConfig()
			if err != nil {
				return err
			}

			p := a.newPrompter()
			defer func() { _ = p.Close() }()

			openBrowser := a.openBrowser
			if noBrowser {
				openBrowser = func(string) error { return nil }
			}

			legacy := keystore.NewFileStore(a.config.CredentialsHome)
			flow, err := login.New(login.Config{
				Network:  network,
				Prompter: p,
				Verifier: a.verifier(),
				Store: func(p prompt.Prompter) (keystore.Backend, error) {
					return keystore.Select(p, a.keychain(), legacy)
				},
				Generate:    a.generate,
				OpenBrowser: openBrowser,
				ShowQR:      showQR,
			})
			if err != nil {
				return err
			}
			return flow.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&showQR, "qr", false, "Also show the wallet URL as a QR code")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not try to open a browser")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		seedPhrase string
		hdPath     string
		account    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an existing access key from its seed phrase",
		Long: `Recover a key pair from a seed phrase, check that the key is registered on
the account and save it. Anything not given as a flag is asked for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := a.networkConfig()
			if err != nil {
				return err
			}
			in := login.ImportInput{SeedPhrase: seedPhrase, HDPath: hdPath}
			if cmd.Flags().Changed("account") {
				if in.AccountID, err = near.ParseAccountID(account); err != nil {
					return err
				}
			}

			p := a.newPrompter()
			defer func() { _ = p.Close() }()

			legacy := keystore.NewFileStore(a.config.CredentialsHome)
			_, err = login.Import(cmd.Context(), login.ImportConfig{
				Network:  network,
				Prompter: p,
				Lookup:   a.verifier(),
				Store: func(p prompt.Prompter) (keystore.Backend, error) {
					return keystore.Select(p, a.keychain(), legacy)
				},
			}, in)
			return err
		},
	}

	cmd.Flags().StringVar(&seedPhrase, "seed-phrase", "", "Seed phrase of the key (asked for when omitted)")
	cmd.Flags().StringVar(&hdPath, "hd-path", keys.DefaultHDPath, "Hardened derivation path")
	cmd.Flags().StringVar(&account, "account", "", "Account the key is registered on")
	return cmd
}

func newViewCmd(a *app) *cobra.Command {
	var (
		blockHeight uint64
		finality    string
	)

	cmd := &cobra.Command{
		Use:   "view <account-id>",
		Short: "Show an account's balance, storage, contract and access keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := near.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			network, err := a.networkConfig()
			if err != nil {
				return err
			}

			block := rpc.Finality(finality)
			if cmd.Flags().Changed("block-height") {
				block = rpc.BlockHeight(blockHeight)
			}

			summary, err := view.AccountSummary(cmd.Context(), a.dial(network.ArchivalRPCURL()), accountID, block)
			if err != nil {
				return err
			}
			return summary.Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().Uint64Var(&blockHeight, "block-height", 0, "View the account as of this block height")
	cmd.Flags().StringVar(&finality, "finality", "final", "Finality when no block height is given (final or optimistic)")
	cmd.MarkFlagsMutuallyExclusive("block-height", "finality")
	return cmd
}
