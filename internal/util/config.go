// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/near-go/nearcli/internal/near"
)

// EnvPrefix is the prefix for environment overrides (NEARCLI_NETWORK, ...).
const EnvPrefix = "NEARCLI"

// DataDirEnv overrides the default data directory.
const DataDirEnv = "NEARCLI_DATA"

// NetworkSettings holds the endpoints for one network
type NetworkSettings struct {
	WalletURL      string `yaml:"wallet_url" description:"Wallet base URL used for browser login"`
	RPCURL         string `yaml:"rpc_url" description:"JSON-RPC endpoint"`
	ArchivalRPCURL string `yaml:"archival_rpc_url" description:"Archival JSON-RPC endpoint (historical queries)"`
	ExplorerURL    string `yaml:"explorer_url" description:"Block explorer base URL"`
}

// Config holds nearcli configuration settings
type Config struct {
	Network         string                     `yaml:"network" description:"Default network" default:"testnet"`
	CredentialsHome string                     `yaml:"credentials_home" description:"Root directory of the legacy credential files" default:"~/.near-credentials"`
	Networks        map[string]NetworkSettings `yaml:"networks" description:"Per-network endpoint overrides"`
}

// envOverrides are applied after config.yaml. Empty values leave the file value alone.
type envOverrides struct {
	Network         string `envconfig:"NETWORK"`
	CredentialsHome string `envconfig:"CREDENTIALS_HOME"`
}

// DefaultNetworks returns the built-in endpoint table.
func DefaultNetworks() map[string]NetworkSettings {
	return map[string]NetworkSettings{
		"mainnet": {
			WalletURL:      "https://app.mynearwallet.com/",
			RPCURL:         "https://rpc.mainnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.mainnet.near.org",
			ExplorerURL:    "https://explorer.near.org/",
		},
		"testnet": {
			WalletURL:      "https://testnet.mynearwallet.com/",
			RPCURL:         "https://rpc.testnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.testnet.near.org",
			ExplorerURL:    "https://explorer.testnet.near.org/",
		},
	}
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		Network:         "testnet",
		CredentialsHome: defaultCredentialsHome(),
		Networks:        DefaultNetworks(),
	}
}

func defaultCredentialsHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".near-credentials")
}

// GetClientDataDir returns the data directory.
// Resolution order: --data-dir flag > NEARCLI_DATA env var > ~/.near-cli
func GetClientDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv(DataDirEnv); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".near-cli")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads config.yaml from the data directory and applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.Network != "" {
		config.Network = env.Network
	}
	if env.CredentialsHome != "" {
		config.CredentialsHome = env.CredentialsHome
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if file.Network != "" {
		config.Network = file.Network
	}
	if file.CredentialsHome != "" {
		config.CredentialsHome = ExpandHome(file.CredentialsHome)
	}
	for name, override := range file.Networks {
		config.Networks[name] = mergeNetwork(config.Networks[name], override)
	}

	return config, nil
}

func mergeNetwork(base, override NetworkSettings) NetworkSettings {
	if override.WalletURL != "" {
		base.WalletURL = override.WalletURL
	}
	if override.RPCURL != "" {
		base.RPCURL = override.RPCURL
	}
	if override.ArchivalRPCURL != "" {
		base.ArchivalRPCURL = override.ArchivalRPCURL
	}
	if override.ExplorerURL != "" {
		base.ExplorerURL = override.ExplorerURL
	}
	return base
}

// Validate checks that the selected network exists and every network
// parses into a usable NetworkConfig.
func (c *Config) Validate() error {
	if _, ok := c.Networks[c.Network]; !ok {
		return fmt.Errorf("invalid network '%s' in config (known: %v)", c.Network, c.NetworkNames())
	}
	for _, name := range c.NetworkNames() {
		if _, err := c.GetNetworkConfig(name); err != nil {
			return err
		}
	}
	if c.CredentialsHome == "" {
		return fmt.Errorf("credentials_home is not set and the home directory cannot be determined")
	}
	return nil
}

// NetworkNames returns the configured network names, sorted.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetNetworkConfig returns the resolved endpoints for the named network.
func (c *Config) GetNetworkConfig(name string) (near.NetworkConfig, error) {
	settings, ok := c.Networks[name]
	if !ok {
		return near.NetworkConfig{}, fmt.Errorf("invalid network: %s", name)
	}
	archival := settings.ArchivalRPCURL
	if archival == "" {
		archival = settings.RPCURL
	}
	nc, err := near.NewNetworkConfig(name, settings.WalletURL, settings.RPCURL, archival, settings.ExplorerURL)
	if err != nil {
		return near.NetworkConfig{}, fmt.Errorf("network %s: %w", name, err)
	}
	return nc, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// DisplayConfig writes the resolved configuration to w.
func DisplayConfig(w io.Writer, dataDir string, config Config) {
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Data dir:     %s\n", dataDir)
	fmt.Fprintf(w, "Config file:  %s\n", GetConfigPath(dataDir))
	fmt.Fprintf(w, "Network:      %s\n", config.Network)
	fmt.Fprintf(w, "Credentials:  %s\n", config.CredentialsHome)
	for _, name := range config.NetworkNames() {
		n := config.Networks[name]
		fmt.Fprintf(w, "\n[%s]\n", name)
		fmt.Fprintf(w, "  wallet:       %s\n", n.WalletURL)
		fmt.Fprintf(w, "  rpc:          %s\n", n.RPCURL)
		fmt.Fprintf(w, "  archival rpc: %s\n", n.ArchivalRPCURL)
		fmt.Fprintf(w, "  explorer:     %s\n", n.ExplorerURL)
	}
	fmt.Fprintln(w)
}
