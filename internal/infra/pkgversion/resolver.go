// Where: internal/infra/pkgversion/resolver.go
// What: Installed package version lookup.
// Why: Resolve PACKAGE_VERSION: auto without hard-coding the release in the manifest.
package pkgversion

import (
	"context"
	"os"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/infra/toolchain"
)

// EnvVersion overrides the detected package version.
const EnvVersion = "CARGO_PACKAGE_VERSION"

const metadataScript = "import sys\nfrom importlib import metadata\nprint(metadata.version(sys.argv[1]))"

// Resolver finds the installed version of a Python distribution.
type Resolver struct {
	LookupEnv func(string) (string, bool)
	Runner    toolchain.CommandRunner
	Python    string
}

// Resolve returns CARGO_PACKAGE_VERSION when set, otherwise the version
// reported by importlib.metadata for pkg.
func (r Resolver) Resolve(ctx context.Context, pkg string) (string, error) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvVersion); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if r.Runner == nil {
		return "", failure.Configuration("cannot detect version of %s: set %s", pkg, EnvVersion)
	}

	python := r.Python
	if python == "" {
		python = "python3"
	}
	out, err := r.Runner.RunOutput(ctx, "", python, "-c", metadataScript, pkg)
	if err != nil {
		return "", failure.Configuration("detect version of %s: %v: %s", pkg, err, strings.TrimSpace(string(out)))
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return "", failure.Configuration("detect version of %s: empty output", pkg)
	}
	return version, nil
}
