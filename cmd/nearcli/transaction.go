// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"github.com/spf13/cobra"

	"github.com/near-go/nearcli/internal/action"
	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
)

// SignerLabel asks for the account the key is added to.
const SignerLabel = "Enter the account ID that will sign the transaction"

func newTransactionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transaction",
		Short: "Build transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newAddKeyCmd(a))
	return cmd
}

// addKeyFlags are the values shared by add-key and its permission
// subcommands. Unset flags are prompted for.
type addKeyFlags struct {
	account   string
	publicKey string
	nonce     uint64
}

func (f *addKeyFlags) input(cmd *cobra.Command) (near.AccountID, *action.AddAccessKeyInput, error) {
	var (
		signer near.AccountID
		in     action.AddAccessKeyInput
		err    error
	)
	if cmd.Flags().Changed("account") {
		if signer, err = near.ParseAccountID(f.account); err != nil {
			return "", nil, err
		}
	}
	if cmd.Flags().Changed("public-key") {
		pk, err := keys.ParsePublicKey(f.publicKey)
		if err != nil {
			return "", nil, err
		}
		in.PublicKey = action.Some(pk)
	}
	if cmd.Flags().Changed("nonce") {
		in.Nonce = action.Some(f.nonce)
	}
	return signer, &in, nil
}

// runAddKey completes the input, prompting for whatever is missing, and
// prints the unsigned transaction.
func (a *app) runAddKey(cmd *cobra.Command, signer near.AccountID, in *action.AddAccessKeyInput) error {
	p := a.newPrompter()
	defer func() { _ = p.Close() }()

	if signer == "" {
		var err error
		signer, err = prompt.InputValid(p, SignerLabel, near.ParseAccountID)
		if err != nil {
			return err
		}
	}

	act, err := action.ResolveAddAccessKey(p, in)
	if err != nil {
		return err
	}
	draft := &action.Draft{Network: a.config.Network, SignerID: signer}
	return action.Process(cmd.Context(), act, draft, cmd.OutOrStdout())
}

func newAddKeyCmd(a *app) *cobra.Command {
	var flags addKeyFlags

	cmd := &cobra.Command{
		Use:   "add-key",
		Short: "Add an access key to an account",
		Long: `Build an unsigned transaction that adds an access key to the signer's
account. Run a permission subcommand to choose the permission up front, or
run add-key on its own to pick it from a menu.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			return a.runAddKey(cmd, signer, in)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.account, "account", "", "Signer account ID")
	cmd.PersistentFlags().StringVar(&flags.publicKey, "public-key", "", "Public key to add (ed25519:...)")
	cmd.PersistentFlags().Uint64Var(&flags.nonce, "nonce", 0, "Nonce for the new access key")

	cmd.AddCommand(newFullAccessCmd(a, &flags))
	cmd.AddCommand(newFunctionCallCmd(a, &flags))
	return cmd
}

func newFullAccessCmd(a *app, flags *addKeyFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "full-access",
		Short: "Grant the key full access to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			in.Permission = &action.PermissionInput{Kind: action.KindFullAccess}
			return a.runAddKey(cmd, signer, in)
		},
	}
}

func newFunctionCallCmd(a *app, flags *addKeyFlags) *cobra.Command {
	var (
		receiver    string
		methodNames string
		allowance   string
		noAllowance bool
	)

	cmd := &cobra.Command{
		Use:   "function-call",
		Short: "Limit the key to function calls on one contract",
		Long: `Limit the key to calling methods of one receiver contract. An empty
--method-names allows any method; --no-allowance lets the key spend
without limit on fees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, in, err := flags.input(cmd)
			if err != nil {
				return err
			}

			var fc action.FunctionCallInput
			if cmd.Flags().Changed("receiver") {
				id, err := near.ParseAccountID(receiver)
				if err != nil {
					return err
				}
				fc.ReceiverID = action.Some(id)
			}
			if cmd.Flags().Changed("method-names") {
				names, err := action.ParseMethodNames(methodNames)
				if err != nil {
					return err
				}
				fc.MethodNames = action.Some(names)
			}
			switch {
			case noAllowance:
				fc.Allowance = action.Some[*near.Balance](nil)
			case cmd.Flags().Changed("allowance"):
				b, err := action.ParseAllowance(allowance)
				if err != nil {
					return err
				}
				fc.Allowance = action.Some(b)
			}

			in.Permission = &action.PermissionInput{Kind: action.KindFunctionCall, FunctionCall: fc}
			return a.runAddKey(cmd, signer, in)
		},
	}

	cmd.Flags().StringVar(&receiver, "receiver", "", "Contract account the key may call")
	cmd.Flags().StringVar(&methodNames, "method-names", "", "Comma-separated method names (empty allows any)")
	cmd.Flags().StringVar(&allowance, "allowance", "", "Fee allowance, e.g. 0.25 NEAR")
	cmd.Flags().BoolVar(&noAllowance, "no-allowance", false, "Allow unlimited fee spending")
	cmd.MarkFlagsMutuallyExclusive("allowance", "no-allowance")
	return cmd
}
