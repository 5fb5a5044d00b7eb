// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// nearcli is a command-line client for NEAR accounts: browser login,
// account inspection and access key transactions.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/util"
	"github.com/near-go/nearcli/internal/version"
)

func main() {
	// pkg/browser echoes the launcher's output; keep it off the terminal.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// promptSession is a prompter that holds terminal resources.
type promptSession interface {
	prompt.Prompter
	Close() error
}

// app carries the resolved configuration and the collaborators commands
// use. Tests replace the collaborators.
type app struct {
	dataDir string
	network string

	config util.Config
	out    io.Writer

	newPrompter func() promptSession
	dial        func(endpoint string) *rpc.Client
	openBrowser func(url string) error
	generate    func() (*keys.KeyPair, error)
	keychain    func() keystore.NativeBackend
}

func newApp() *app {
	return &app{
		out:         os.Stdout,
		newPrompter: func() promptSession { return prompt.NewTerminal() },
		dial: func(endpoint string) *rpc.Client {
			return rpc.NewClient(endpoint, rpc.WithUserAgent(version.UserAgent()))
		},
		openBrowser: browser.OpenURL,
		generate:    keys.Generate,
		keychain:    func() keystore.NativeBackend { return keystore.NewKeychainStore() },
	}
}

// load reads config.yaml from the data directory and applies --network.
func (a *app) load() error {
	util.InitLogger()

	dataDir := util.GetClientDataDir(a.dataDir)
	config, err := util.LoadConfig(dataDir)
	if err != nil {
		return err
	}
	if a.network != "" {
		config.Network = a.network
		if err := config.Validate(); err != nil {
			return err
		}
	}
	a.dataDir = dataDir
	a.config = config
	return nil
}

func (a *app) networkConfig() (near.NetworkConfig, error) {
	return a.config.GetNetworkConfig(a.config.Network)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "nearcli",
		Short:         "Command-line client for NEAR accounts",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVarP(&a.dataDir, "data-dir", "d", "", "Data directory (or set "+util.DataDirEnv+")")
	root.PersistentFlags().StringVar(&a.network, "network", "", "Network to use (overrides config.yaml)")

	root.AddCommand(newAccountCmd(a))
	root.AddCommand(newTransactionCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}
