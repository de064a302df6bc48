// Where: internal/infra/registry/remote.go
// What: Registry API image existence oracle.
// Why: Ask the registry directly whether a tag is published, without a docker daemon.
package registry

import (
	"context"
	"errors"
	"net/http"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// Remote checks tags with a manifest HEAD request against the registry.
type Remote struct {
	Keychain authn.Keychain
	// Insecure lists registry hosts reached over plain HTTP.
	Insecure mapset.Set[string]
}

var _ ports.ImageOracle = Remote{}

// NewRemote returns an oracle using the default docker keychain.
func NewRemote(insecure ...string) Remote {
	return Remote{Keychain: authn.DefaultKeychain, Insecure: mapset.NewSet(insecure...)}
}

func (r Remote) Exists(ctx context.Context, ref plan.ImageRef) (bool, error) {
	parsed, err := r.reference(ref)
	if err != nil {
		return false, err
	}

	keychain := r.Keychain
	if keychain == nil {
		keychain = authn.DefaultKeychain
	}
	_, err = remote.Head(parsed, remote.WithContext(ctx), remote.WithAuthFromKeychain(keychain))
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// reference parses ref, switching to plain HTTP when its registry host (the
// REGISTRY value up to the first "/") is listed as insecure.
func (r Remote) reference(ref plan.ImageRef) (name.Reference, error) {
	parsed, err := name.ParseReference(ref.String())
	if err != nil {
		return nil, err
	}
	if r.Insecure == nil || !r.Insecure.Contains(parsed.Context().RegistryStr()) {
		return parsed, nil
	}
	return name.ParseReference(ref.String(), name.Insecure)
}

func isNotFound(err error) bool {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		return false
	}
	if terr.StatusCode == http.StatusNotFound {
		return true
	}
	for _, diag := range terr.Errors {
		if diag.Code == transport.ManifestUnknownErrorCode || diag.Code == transport.NameUnknownErrorCode {
			return true
		}
	}
	return false
}
