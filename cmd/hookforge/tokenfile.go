package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hookforge/internal/safeio"
	"hookforge/internal/token"
)

// tokenFile is the on-disk shape of a token config. Absent keys keep the
// wizard defaults.
type tokenFile struct {
	Name              *string  `yaml:"name"`
	Symbol            *string  `yaml:"symbol"`
	Decimals          *int     `yaml:"decimals"`
	Supply            *uint64  `yaml:"supply"`
	Icon              string   `yaml:"icon"`
	HookEnabled       *bool    `yaml:"hook_enabled"`
	RoyaltyPercentage *float64 `yaml:"royalty_percentage"`
	TimeLock          *struct {
		Value *int64  `yaml:"value"`
		Unit  *string `yaml:"unit"`
	} `yaml:"time_lock"`
	AuthorityWallet *string `yaml:"authority_wallet"`
}

func (f tokenFile) patch() token.Patch {
	p := token.Patch{
		Name:              f.Name,
		Symbol:            f.Symbol,
		Decimals:          f.Decimals,
		Supply:            f.Supply,
		HookEnabled:       f.HookEnabled,
		RoyaltyPercentage: f.RoyaltyPercentage,
		AuthorityWallet:   f.AuthorityWallet,
	}
	if f.TimeLock != nil {
		p.TimeLockValue = f.TimeLock.Value
		p.TimeLockUnit = f.TimeLock.Unit
	}
	return p
}

// loadTokenConfig reads path, overlays it on token.Default and loads the
// icon, which must live under the config file's directory.
func loadTokenConfig(path string) (token.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return token.Config{}, fmt.Errorf("read config: %w", err)
	}
	var f tokenFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return token.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := token.Default().Apply(f.patch())
	if f.Icon != "" {
		dir, err := safeio.NewSafeFS(filepath.Dir(path))
		if err != nil {
			return token.Config{}, err
		}
		raw, err := dir.ReadFile(f.Icon)
		if err != nil {
			return token.Config{}, fmt.Errorf("read icon: %w", err)
		}
		cfg, err = cfg.WithIcon(raw)
		if err != nil {
			return token.Config{}, fmt.Errorf("icon %s: %w", f.Icon, err)
		}
	}
	return cfg, nil
}
