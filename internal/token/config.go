// Package token holds the wizard's configuration model: the token being
// minted and the transfer-hook policy attached to it.
package token

import (
	"strings"
)

// TimeUnit is the unit of the resale time-lock.
type TimeUnit string

const (
	Minutes TimeUnit = "minutes"
	Hours   TimeUnit = "hours"
	Days    TimeUnit = "days"
)

// ParseTimeUnit normalizes s into a known unit. ok is false for anything else.
func ParseTimeUnit(s string) (TimeUnit, bool) {
	switch TimeUnit(strings.ToLower(strings.TrimSpace(s))) {
	case Minutes:
		return Minutes, true
	case Hours:
		return Hours, true
	case Days:
		return Days, true
	}
	return TimeUnit(s), false
}

func (u TimeUnit) Known() bool {
	_, ok := ParseTimeUnit(string(u))
	return ok
}

// UnitSeconds returns the number of seconds in one unit. Unknown units fall
// back to the minutes multiplier.
func UnitSeconds(u TimeUnit) int64 {
	switch u {
	case Days:
		return 86400
	case Hours:
		return 3600
	default:
		return 60
	}
}

// Config is the token + hook policy collected by the wizard.
//
// RoyaltyPercentage and TimeLock* are only meaningful when HookEnabled is
// set, but they are kept (and accepted downstream) either way.
type Config struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Supply   uint64 `json:"supply"`

	Icon        []byte `json:"-"`
	IconPreview string `json:"iconPreview,omitempty"`

	HookEnabled       bool     `json:"hookEnabled"`
	RoyaltyPercentage float64  `json:"royaltyPercentage"`
	TimeLockValue     int64    `json:"timeLockValue"`
	TimeLockUnit      TimeUnit `json:"timeLockUnit"`

	// AuthorityWallet receives royalties. Optional; base58 encoded.
	AuthorityWallet string `json:"authorityWallet,omitempty"`
}

// Default returns the state a new wizard starts from.
func Default() Config {
	return Config{
		Name:              "My Solana Token",
		Symbol:            "MST",
		Decimals:          9,
		Supply:            1_000_000,
		HookEnabled:       true,
		RoyaltyPercentage: 5,
		TimeLockValue:     24,
		TimeLockUnit:      Hours,
	}
}

// TimeLockSeconds is TimeLockValue expressed in seconds.
func (c Config) TimeLockSeconds() int64 {
	return c.TimeLockValue * UnitSeconds(c.TimeLockUnit)
}

// Clone returns a deep copy so a snapshot can outlive later edits.
func (c Config) Clone() Config {
	out := c
	if c.Icon != nil {
		out.Icon = append([]byte(nil), c.Icon...)
	}
	return out
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name              *string  `json:"name,omitempty"`
	Symbol            *string  `json:"symbol,omitempty"`
	Decimals          *int     `json:"decimals,omitempty"`
	Supply            *uint64  `json:"supply,omitempty"`
	HookEnabled       *bool    `json:"hookEnabled,omitempty"`
	RoyaltyPercentage *float64 `json:"royaltyPercentage,omitempty"`
	TimeLockValue     *int64   `json:"timeLockValue,omitempty"`
	TimeLockUnit      *string  `json:"timeLockUnit,omitempty"`
	AuthorityWallet   *string  `json:"authorityWallet,omitempty"`
}

// Apply returns c with every non-nil field of p applied.
func (c Config) Apply(p Patch) Config {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Symbol != nil {
		c.Symbol = *p.Symbol
	}
	if p.Decimals != nil {
		c.Decimals = *p.Decimals
	}
	if p.Supply != nil {
		c.Supply = *p.Supply
	}
	if p.HookEnabled != nil {
		c.HookEnabled = *p.HookEnabled
	}
	if p.RoyaltyPercentage != nil {
		c.RoyaltyPercentage = *p.RoyaltyPercentage
	}
	if p.TimeLockValue != nil {
		c.TimeLockValue = *p.TimeLockValue
	}
	if p.TimeLockUnit != nil {
		unit, _ := ParseTimeUnit(*p.TimeLockUnit)
		c.TimeLockUnit = unit
	}
	if p.AuthorityWallet != nil {
		c.AuthorityWallet = strings.TrimSpace(*p.AuthorityWallet)
	}
	return c
}
