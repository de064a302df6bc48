// Where: internal/infra/registry/docker.go
// What: Docker daemon image existence oracle.
// Why: Reuse the daemon's registry credentials when the registry API cannot be reached directly.
package registry

import (
	"context"
	"strings"

	dockerregistry "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/errdefs"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// DistributionClient is the subset of the docker SDK client used by Docker.
type DistributionClient interface {
	DistributionInspect(ctx context.Context, image, encodedRegistryAuth string) (dockerregistry.DistributionInspect, error)
}

// Docker checks tags through the daemon's distribution endpoint.
type Docker struct {
	Client DistributionClient
}

var _ ports.ImageOracle = Docker{}

func (d Docker) Exists(ctx context.Context, ref plan.ImageRef) (bool, error) {
	_, err := d.Client.DistributionInspect(ctx, ref.String(), "")
	if err == nil {
		return true, nil
	}
	if errdefs.IsNotFound(err) || manifestMissing(err.Error()) {
		return false, nil
	}
	return false, err
}

func manifestMissing(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "manifest unknown") ||
		strings.Contains(msg, "no such manifest") ||
		strings.Contains(msg, "was deleted")
}
