package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config describes a single reward-distribution deployment.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	Env           string `toml:"Env"`

	// Admin is the hex-encoded initial capability holder.
	Admin string `toml:"Admin"`
	// VaultURL is the base URL of the external value-transfer service.
	VaultURL string `toml:"VaultURL"`

	Claims ClaimsConfig `toml:"Claims"`
	Ember  EmberConfig  `toml:"Ember"`
}

// ClaimsConfig parametrises the claim engine.
type ClaimsConfig struct {
	// MintSupply is the hard disbursement ceiling in units; "0" means
	// unlimited.
	MintSupply string `toml:"MintSupply"`
	// BitPayout is the units per bitmap category claimed.
	BitPayout string `toml:"BitPayout"`
}

// EmberConfig parametrises the multiplier and accrual engine.
type EmberConfig struct {
	NumeratorPrecision uint64 `toml:"NumeratorPrecision"`
	QuantityMultiplier string `toml:"QuantityMultiplier"`
	CredentialToken    string `toml:"CredentialToken"`
	CredentialID       string `toml:"CredentialID"`
	AshSource          string `toml:"AshSource"`
	InitialTime        uint64 `toml:"InitialTime"`
	CycleDuration      uint64 `toml:"CycleDuration"`
	MaxCycle           uint64 `toml:"MaxCycle"`
}

// Load reads the configuration from the given path, filling defaults for
// optional fields.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8650"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./data"
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "dev"
	}
	if strings.TrimSpace(c.Claims.MintSupply) == "" {
		c.Claims.MintSupply = "0"
	}
	if strings.TrimSpace(c.Claims.BitPayout) == "" {
		c.Claims.BitPayout = "1"
	}
	if c.Ember.NumeratorPrecision == 0 {
		c.Ember.NumeratorPrecision = 10000
	}
	if strings.TrimSpace(c.Ember.QuantityMultiplier) == "" {
		c.Ember.QuantityMultiplier = "1"
	}
	if strings.TrimSpace(c.Ember.CredentialID) == "" {
		c.Ember.CredentialID = "0"
	}
	if c.Ember.CycleDuration == 0 {
		c.Ember.CycleDuration = 86400
	}
}

// Validate ensures the configuration is self-consistent.
func (c *Config) Validate() error {
	if _, err := ParseAddress(c.Admin); err != nil {
		return fmt.Errorf("invalid Admin: %w", err)
	}
	if strings.TrimSpace(c.VaultURL) == "" {
		return fmt.Errorf("VaultURL must be set")
	}
	if _, err := ParseAmount(c.Claims.MintSupply); err != nil {
		return fmt.Errorf("invalid Claims.MintSupply: %w", err)
	}
	if _, err := ParseAmount(c.Claims.BitPayout); err != nil {
		return fmt.Errorf("invalid Claims.BitPayout: %w", err)
	}
	if _, err := ParseAmount(c.Ember.QuantityMultiplier); err != nil {
		return fmt.Errorf("invalid Ember.QuantityMultiplier: %w", err)
	}
	if _, err := ParseAmount(c.Ember.CredentialID); err != nil {
		return fmt.Errorf("invalid Ember.CredentialID: %w", err)
	}
	if c.Ember.CredentialToken != "" {
		if _, err := ParseAddress(c.Ember.CredentialToken); err != nil {
			return fmt.Errorf("invalid Ember.CredentialToken: %w", err)
		}
	}
	if c.Ember.AshSource != "" {
		if _, err := ParseAddress(c.Ember.AshSource); err != nil {
			return fmt.Errorf("invalid Ember.AshSource: %w", err)
		}
	}
	return nil
}

// ParseAddress decodes a 20-byte hex address, with or without 0x prefix.
func ParseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, err
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("address must be 20 bytes, got %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// ParseAmount decodes a non-negative base-10 integer.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("must not be negative: %q", s)
	}
	return v, nil
}
