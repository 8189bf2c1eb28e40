package token

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	MaxSymbolLen = 10
	MaxDecimals  = 18
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a Config.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid token config: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the conventional ranges the wizard enforces before
// generation. Hook fields are only checked when the hook is enabled.
func (c Config) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(c.Name) == "" {
		verr.add("name", "is required")
	}
	symbol := strings.TrimSpace(c.Symbol)
	switch n := utf8.RuneCountInString(symbol); {
	case n == 0:
		verr.add("symbol", "is required")
	case n > MaxSymbolLen:
		verr.add("symbol", "must be at most %d characters", MaxSymbolLen)
	}
	if c.Decimals < 0 || c.Decimals > MaxDecimals {
		verr.add("decimals", "must be between 0 and %d", MaxDecimals)
	}
	if c.Supply == 0 {
		verr.add("supply", "must be positive")
	}
	if (c.Icon == nil) != (c.IconPreview == "") {
		verr.add("icon", "preview does not match icon")
	}

	// The prompt renders these even with the hook off, so values that
	// cannot be rendered are rejected regardless of HookEnabled.
	if math.IsNaN(c.RoyaltyPercentage) || math.IsInf(c.RoyaltyPercentage, 0) {
		verr.add("royaltyPercentage", "must be a finite number")
	} else if c.HookEnabled && !(c.RoyaltyPercentage >= 0 && c.RoyaltyPercentage <= 100) {
		verr.add("royaltyPercentage", "must be between 0 and 100")
	}
	if limit := math.MaxInt64 / UnitSeconds(c.TimeLockUnit); c.TimeLockValue > limit {
		verr.add("timeLockValue", "must be at most %d %s", limit, c.TimeLockUnit)
	}

	if c.HookEnabled {
		if c.TimeLockValue <= 0 {
			verr.add("timeLockValue", "must be positive")
		}
		if !c.TimeLockUnit.Known() {
			verr.add("timeLockUnit", "must be one of minutes, hours, days")
		}
	}

	if w := strings.TrimSpace(c.AuthorityWallet); w != "" {
		if err := ValidateWallet(w); err != nil {
			verr.add("authorityWallet", "%v", err)
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// ValidateWallet checks that addr is a base58 encoded ed25519 public key.
// Program derived addresses are off-curve and therefore rejected: they
// cannot sign to withdraw royalties.
func ValidateWallet(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("not base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("decodes to %d bytes, want 32", len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("not an ed25519 public key")
	}
	return nil
}
