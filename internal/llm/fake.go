package llm

import (
	"context"
	"regexp"
	"strings"
)

var reFakeName = regexp.MustCompile(`\*\*Token Name:\*\* (.*)`)

// FakeClient answers every prompt with a fixed, well-formed response for
// offline development and tests.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := "token"
	if m := reFakeName.FindStringSubmatch(prompt); m != nil {
		name = strings.TrimSpace(m[1])
	}
	return FakeResponse(name), nil
}

// FakeResponse renders a response in the expected three-section format.
func FakeResponse(name string) string {
	var b strings.Builder
	b.WriteString("```rust\n// lib.rs\n")
	b.WriteString("// Transfer hook for " + name + "\n")
	b.WriteString("use anchor_lang::prelude::*;\n\n")
	b.WriteString("declare_id!(\"Hook111111111111111111111111111111111111111\");\n\n")
	b.WriteString("#[program]\npub mod transfer_hook {\n    use super::*;\n\n")
	b.WriteString("    pub fn transfer_hook(_ctx: Context<TransferHook>, _amount: u64) -> Result<()> {\n        Ok(())\n    }\n}\n\n")
	b.WriteString("#[derive(Accounts)]\npub struct TransferHook {}\n")
	b.WriteString("```\n\n")
	b.WriteString("```toml\n# Cargo.toml\n")
	b.WriteString("[package]\nname = \"transfer-hook\"\nversion = \"0.1.0\"\nedition = \"2021\"\n\n")
	b.WriteString("[lib]\ncrate-type = [\"cdylib\", \"lib\"]\n\n")
	b.WriteString("[dependencies]\nanchor-lang = \"0.30.1\"\n")
	b.WriteString("```\n\n")
	b.WriteString("### Deployment and Usage Instructions\n")
	b.WriteString("- Step 1: `anchor build`\n")
	b.WriteString("- Step 2: `anchor deploy --provider.cluster devnet`\n")
	b.WriteString("- Step 3: `spl-token create-token --program-id TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb --transfer-hook <PROGRAM_ID>`\n")
	return b.String()
}
