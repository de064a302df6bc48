// Where: internal/ports/registry.go
// What: Release list and image existence contracts.
// Why: Keep the orchestrator independent of GitHub and registry transports.
package ports

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
)

// ReleaseRegistry lists the published release tags of an upstream repository.
type ReleaseRegistry interface {
	ListReleases(ctx context.Context, repository string) (mapset.Set[string], error)
}

// ImageOracle answers whether a tag is already published. A nil error with
// false means "not found"; any error means the remote state is unknown.
type ImageOracle interface {
	Exists(ctx context.Context, ref plan.ImageRef) (bool, error)
}
