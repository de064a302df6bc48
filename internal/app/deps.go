// Where: internal/app/deps.go
// What: Injectable collaborators for CLI commands.
// Why: Let tests swap registries, docker and the filesystem without touching the CLI flow.
package app

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/infra/config"
	"github.com/poruru-code/cargo-builder/internal/infra/report"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// ManifestLoader loads a resolved manifest.
type ManifestLoader interface {
	Load(ctx context.Context, path string) (manifest.Manifest, error)
}

// OracleFactory builds the image existence oracle for a backend name.
type OracleFactory func(ctx context.Context, backend string, insecure []string) (ports.ImageOracle, error)

// Dependencies holds all injected dependencies required for CLI command execution.
// Nil fields fall back to the production implementations where one exists.
type Dependencies struct {
	Out io.Writer
	// Log receives debug traces; defaults to stderr.
	Log        io.Writer
	LookupEnv  func(string) (string, bool)
	ConfigPath func() (string, error)

	// Manifests overrides the manifest loader built from LookupEnv.
	Manifests func(logger *log.Logger) ManifestLoader
	Releases  func(token string) ports.ReleaseRegistry
	Oracle    OracleFactory
	Toolchain func(logger *log.Logger) (ports.Toolchain, error)
	Files     ports.FileSystem
	S3        func(ctx context.Context, endpoint string) (report.S3PutAPI, error)
}

func (d Dependencies) configPath() (string, error) {
	if d.ConfigPath != nil {
		return d.ConfigPath()
	}
	return config.GlobalConfigPath()
}
