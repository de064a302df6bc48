// Where: cmd/build-cargo/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	dockerregistry "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/poruru-code/cargo-builder/internal/app"
	"github.com/poruru-code/cargo-builder/internal/infra/config"
	"github.com/poruru-code/cargo-builder/internal/infra/fileops"
	"github.com/poruru-code/cargo-builder/internal/infra/registry"
	"github.com/poruru-code/cargo-builder/internal/infra/releases"
	"github.com/poruru-code/cargo-builder/internal/infra/report"
	"github.com/poruru-code/cargo-builder/internal/infra/toolchain"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// DockerClient is the subset of the docker SDK used by the CLI.
type DockerClient interface {
	DistributionInspect(ctx context.Context, image, encodedRegistryAuth string) (dockerregistry.DistributionInspect, error)
	ImageTag(ctx context.Context, source, target string) error
}

var newDockerClient = func() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// lazyDocker creates the daemon client on first use; list runs against the
// registry backend never need one.
type lazyDocker struct {
	once   sync.Once
	client DockerClient
	err    error
}

func (l *lazyDocker) get() (DockerClient, error) {
	l.once.Do(func() {
		l.client, l.err = newDockerClient()
		if l.err != nil {
			l.client = nil
			l.err = fmt.Errorf("create docker client: %w", l.err)
		}
	})
	return l.client, l.err
}

func (l *lazyDocker) Close() error {
	if closer, ok := l.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// buildDependencies constructs all runtime dependencies required by the CLI.
// The returned closer releases the docker client if one was created.
func buildDependencies() (app.Dependencies, *lazyDocker) {
	docker := &lazyDocker{}
	deps := app.Dependencies{
		Out:       os.Stdout,
		Log:       os.Stderr,
		LookupEnv: os.LookupEnv,
		Releases: func(token string) ports.ReleaseRegistry {
			return releases.NewClient(token)
		},
		Oracle: func(_ context.Context, backend string, insecure []string) (ports.ImageOracle, error) {
			if backend != config.OracleDocker {
				return registry.NewRemote(insecure...), nil
			}
			c, err := docker.get()
			if err != nil {
				return nil, err
			}
			return registry.Docker{Client: c}, nil
		},
		Toolchain: func(logger *log.Logger) (ports.Toolchain, error) {
			runner := toolchain.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
			c, err := docker.get()
			if err != nil {
				logger.Warn("docker SDK unavailable, tagging through the CLI", "err", err)
				return toolchain.NewDocker(runner, nil, logger), nil
			}
			return toolchain.NewDocker(runner, c, logger), nil
		},
		Files: fileops.OS{},
		S3: func(ctx context.Context, endpoint string) (report.S3PutAPI, error) {
			return report.NewS3Client(ctx, endpoint)
		},
	}
	return deps, docker
}
