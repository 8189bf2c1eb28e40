// Package prompt turns a token configuration into the instruction text sent
// to the completion service.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"hookforge/internal/token"
)

// Section markers the completion must reproduce verbatim. The response
// parser searches for exactly these strings.
const (
	ProgramFence     = "```rust"
	ProgramMarker    = "// lib.rs"
	ManifestFence    = "```toml"
	ManifestMarker   = "# Cargo.toml"
	DeploymentHeader = "### Deployment and Usage Instructions"
	ClosingFence     = "```"
)

// HookMode controls how the HookEnabled flag affects the prompt.
type HookMode string

const (
	// HookAlways embeds the royalty and time-lock requirements regardless of
	// HookEnabled.
	HookAlways HookMode = "always"
	// HookRespectFlag drops the hook requirements when HookEnabled is false.
	HookRespectFlag HookMode = "respect_flag"
)

// ParseHookMode maps a config string to a mode, defaulting to HookAlways.
func ParseHookMode(s string) HookMode {
	switch HookMode(strings.ToLower(strings.TrimSpace(s))) {
	case HookRespectFlag:
		return HookRespectFlag
	default:
		return HookAlways
	}
}

// Builder renders prompts. The zero value uses HookAlways.
type Builder struct {
	Mode HookMode
}

// Build renders cfg with the default HookAlways mode.
func Build(cfg token.Config) string {
	return Builder{}.Build(cfg)
}

// Build renders the prompt for cfg. It is deterministic and never fails:
// values are embedded as given, unknown time units count as minutes.
func (b Builder) Build(cfg token.Config) string {
	hook := b.Mode != HookRespectFlag || cfg.HookEnabled

	var buf strings.Builder
	buf.WriteString("You are an expert Solana smart contract developer specializing in the Anchor framework.\n")
	if hook {
		buf.WriteString("Your task is to generate a complete Anchor program for a Solana 'Transfer Hook' and provide deployment instructions.\n")
	} else {
		buf.WriteString("Your task is to generate a complete Anchor program for a Solana SPL token without a transfer hook and provide deployment instructions.\n")
	}

	buf.WriteString("\n**User Requirements:**\n\n")
	fmt.Fprintf(&buf, "*   **Token Name:** %s\n", cfg.Name)
	fmt.Fprintf(&buf, "*   **Token Symbol:** %s\n", cfg.Symbol)
	fmt.Fprintf(&buf, "*   **Decimals:** %d\n", cfg.Decimals)
	fmt.Fprintf(&buf, "*   **Initial Supply:** %d\n", cfg.Supply)
	if hook {
		recipient := "a predefined authority wallet"
		if w := strings.TrimSpace(cfg.AuthorityWallet); w != "" {
			recipient = "the authority wallet " + w
		}
		fmt.Fprintf(&buf, "*   **Royalty Fee:** A %s%% royalty fee on every transfer, sent to %s.\n",
			formatPercent(cfg.RoyaltyPercentage), recipient)
		fmt.Fprintf(&buf, "*   **Resale Time-Lock:** A transfer is blocked if it occurs within %d %s (%d seconds) of the previous transfer for the token account.\n",
			cfg.TimeLockValue, cfg.TimeLockUnit, cfg.TimeLockSeconds())
	}

	buf.WriteString("\n**Instructions:**\n\n")
	buf.WriteString("1.  **Generate 'lib.rs':** Write the complete Rust code for the 'lib.rs' file of an Anchor program.\n")
	if hook {
		buf.WriteString("    *   The program must implement a 'transfer_hook' instruction.\n")
		buf.WriteString("    *   The hook logic should enforce both the royalty and the time-lock.\n")
		buf.WriteString("    *   Use 'Clock::get()?.unix_timestamp' to check the time. Store the timestamp of the last transfer in an associated account.\n")
		buf.WriteString("    *   The royalty calculation should be robust.\n")
	} else {
		buf.WriteString("    *   The program must initialize the mint with the requested decimals and mint the initial supply.\n")
	}
	buf.WriteString("    *   The code must be well-commented.\n")
	buf.WriteString("2.  **Generate 'Cargo.toml':** Provide the necessary 'Cargo.toml' configuration for this Anchor program.\n")
	buf.WriteString("3.  **Provide Deployment Instructions:** Write clear, step-by-step markdown instructions for a user to:\n")
	buf.WriteString("    *   Build the Anchor program.\n")
	buf.WriteString("    *   Deploy the program to Solana devnet.\n")
	if hook {
		buf.WriteString("    *   Initialize a new token mint using the SPL-Token CLI that uses the deployed program as its transfer hook. Include placeholder program IDs and account addresses where necessary.\n")
	} else {
		buf.WriteString("    *   Initialize the token mint using the SPL-Token CLI. Include placeholder program IDs and account addresses where necessary.\n")
	}

	buf.WriteString("\n**Output Format:**\n\n")
	buf.WriteString("Strictly follow this markdown format. Do not add any extra explanations before or after this structure.\n\n")
	buf.WriteString(ProgramFence + "\n" + ProgramMarker + "\n// Rust code for lib.rs here\n" + ClosingFence + "\n\n")
	buf.WriteString(ManifestFence + "\n" + ManifestMarker + "\n# TOML content for Cargo.toml here\n" + ClosingFence + "\n\n")
	buf.WriteString(DeploymentHeader + "\n- Step 1: ...\n- Step 2: ...\n- etc.\n")
	return buf.String()
}

// formatPercent prints 5 as "5" and 2.5 as "2.5".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
