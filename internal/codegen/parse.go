// Package codegen splits a raw completion into the generated artifacts.
package codegen

import (
	"regexp"
	"strings"

	"hookforge/internal/prompt"
)

// Placeholders stored when a section cannot be found.
const (
	ProgramUnparsed    = "Could not parse lib.rs"
	ManifestUnparsed   = "Could not parse Cargo.toml"
	DeploymentUnparsed = "Could not parse deployment steps."
)

// Copy-out paths used by Files.
const (
	ProgramPath    = "programs/hook/src/lib.rs"
	ManifestPath   = "programs/hook/Cargo.toml"
	DeploymentPath = "DEPLOY.md"
)

var (
	// reProgram matches the rust fence that starts with the lib.rs marker.
	reProgram = fencedSection(prompt.ProgramFence, prompt.ProgramMarker)
	// reManifest matches the toml fence that starts with the Cargo.toml marker.
	reManifest = fencedSection(prompt.ManifestFence, prompt.ManifestMarker)
	// reDeployment captures everything after the deployment heading.
	reDeployment = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(prompt.DeploymentHeader) + `(.*)`)
)

func fencedSection(fence, marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(fence+"\n"+marker) + `(.*?)` + regexp.QuoteMeta(prompt.ClosingFence))
}

// Artifacts are the three generated text blobs. Every field is always
// populated, with a placeholder if its section was missing.
type Artifacts struct {
	ProgramSource   string `json:"programSource"`
	Manifest        string `json:"manifest"`
	DeploymentSteps string `json:"deploymentSteps"`
}

// Parse extracts the artifacts from raw. It never fails; each section is
// searched independently.
func Parse(raw string) Artifacts {
	return Artifacts{
		ProgramSource:   extract(reProgram, raw, ProgramUnparsed),
		Manifest:        extract(reManifest, raw, ManifestUnparsed),
		DeploymentSteps: extract(reDeployment, raw, DeploymentUnparsed),
	}
}

func extract(re *regexp.Regexp, raw, placeholder string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return placeholder
	}
	return strings.TrimSpace(m[1])
}

// Parsed reports which sections were found.
type Parsed struct {
	Program    bool `json:"program"`
	Manifest   bool `json:"manifest"`
	Deployment bool `json:"deployment"`
}

func (p Parsed) All() bool { return p.Program && p.Manifest && p.Deployment }

func (a Artifacts) Parsed() Parsed {
	return Parsed{
		Program:    a.ProgramSource != ProgramUnparsed,
		Manifest:   a.Manifest != ManifestUnparsed,
		Deployment: a.DeploymentSteps != DeploymentUnparsed,
	}
}

// Files maps copy-out paths to contents.
func (a Artifacts) Files() map[string]string {
	return map[string]string{
		ProgramPath:    a.ProgramSource,
		ManifestPath:   a.Manifest,
		DeploymentPath: a.DeploymentSteps,
	}
}
