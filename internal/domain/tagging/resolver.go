// Where: internal/domain/tagging/resolver.go
// What: Per-image "latest" alias resolution.
// Why: Exactly one version per image owns the bare bundle tag; decide which before building.
package tagging

import (
	"fmt"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
)

// Policy says how an image's bare bundle tag is produced.
type Policy int

const (
	// PolicySuppressed means no alias is computed or applied.
	PolicySuppressed Policy = iota
	// PolicySelfNamed means a version called "latest" is tagged with the bare bundle version itself.
	PolicySelfNamed
	// PolicyExplicit means the image's latest field names the alias target.
	PolicyExplicit
	// PolicyLastDeclared means the last version in manifest order is the alias target.
	PolicyLastDeclared
)

func (p Policy) String() string {
	switch p {
	case PolicySelfNamed:
		return "self-named"
	case PolicyExplicit:
		return "explicit"
	case PolicyLastDeclared:
		return "last-declared"
	default:
		return "suppressed"
	}
}

// Resolution is the alias decision for one image.
type Resolution struct {
	Image   string
	Policy  Policy
	Version string
}

// AliasTarget returns the version that must additionally be tagged and pushed
// under the bare bundle version, or "" when no extra alias is needed.
func (r Resolution) AliasTarget() string {
	switch r.Policy {
	case PolicyExplicit, PolicyLastDeclared:
		return r.Version
	default:
		return ""
	}
}

// Owner returns the version that ends up behind the bare bundle tag.
func (r Resolution) Owner() string {
	if r.Policy == PolicySuppressed {
		return ""
	}
	return r.Version
}

// UnknownVersionError reports a latest field naming a version the image lacks.
type UnknownVersionError struct {
	Image   string
	Version string
	Known   []string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("image %s: latest tag refers to unknown version '%s' (known versions are: %s)",
		e.Image, e.Version, strings.Join(e.Known, ", "))
}

func (e *UnknownVersionError) Unwrap() error { return failure.ErrConfiguration }

// ResolveImage applies the decision table to a single image.
func ResolveImage(img manifest.ImageSpec, ignoreLatest bool) (Resolution, error) {
	res := Resolution{Image: img.Name}
	switch {
	case ignoreLatest:
		res.Policy = PolicySuppressed
	case len(img.Versions) == 0:
		return res, failure.Configuration("no versions defined for %s", img.Name)
	case img.Latest != "" && img.HasLatestVersion():
		return res, &manifest.LatestConflictError{Image: img.Name}
	case img.HasLatestVersion():
		res.Policy = PolicySelfNamed
		res.Version = manifest.LatestVersionName
	case img.Latest != "":
		if _, ok := img.Version(img.Latest); !ok {
			return res, &UnknownVersionError{Image: img.Name, Version: img.Latest, Known: img.VersionNames()}
		}
		res.Policy = PolicyExplicit
		res.Version = img.Latest
	default:
		res.Policy = PolicyLastDeclared
		res.Version = img.Versions[len(img.Versions)-1].Name
	}
	return res, nil
}

// Resolve computes the alias decision for every image in manifest order.
func Resolve(m manifest.Manifest, ignoreLatest bool) (map[string]Resolution, error) {
	out := make(map[string]Resolution, len(m.Images))
	for _, img := range m.Images {
		res, err := ResolveImage(img, ignoreLatest)
		if err != nil {
			return nil, err
		}
		out[img.Name] = res
	}
	return out, nil
}
