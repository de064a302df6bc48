// Where: internal/domain/manifest/validate.go
// What: Manifest invariant checks.
// Why: Reject inconsistent manifests before any registry or toolchain call.
package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/poruru-code/cargo-builder/internal/domain/failure"
)

// PrefixError reports a bundle version that does not start with its prefix.
type PrefixError struct {
	BundleVersion string
	Prefix        string
}

func (e *PrefixError) Error() string {
	return fmt.Sprintf(
		"inconsistent manifest metadata: BUNDLE_VERSION %q must start with BUNDLE_VERSION_PREFIX %q",
		e.BundleVersion, e.Prefix,
	)
}

func (e *PrefixError) Unwrap() error { return failure.ErrConfiguration }

// LatestConflictError reports an image with both a "latest" version and a latest field.
type LatestConflictError struct {
	Image string
}

func (e *LatestConflictError) Error() string {
	return fmt.Sprintf("image %s: both 'latest' version and a latest tag defined, can't have both", e.Image)
}

func (e *LatestConflictError) Unwrap() error { return failure.ErrConfiguration }

// Validate checks every manifest invariant and reports all violations at once.
func (m Manifest) Validate() error {
	var result *multierror.Error

	if !strings.HasPrefix(m.Metadata.BundleVersion, m.Metadata.BundleVersionPrefix) {
		result = multierror.Append(result, &PrefixError{
			BundleVersion: m.Metadata.BundleVersion,
			Prefix:        m.Metadata.BundleVersionPrefix,
		})
	}
	if strings.TrimSpace(m.Metadata.BundleVersion) == "" {
		result = multierror.Append(result, failure.Configuration("BUNDLE_VERSION is required"))
	}

	seen := map[string]struct{}{}
	for _, img := range m.Images {
		if _, dup := seen[img.Name]; dup {
			result = multierror.Append(result, failure.Configuration("image %s defined more than once", img.Name))
		}
		seen[img.Name] = struct{}{}

		if len(img.Versions) == 0 {
			result = multierror.Append(result, failure.Configuration("no versions defined for %s", img.Name))
			continue
		}
		if img.Latest != "" && img.HasLatestVersion() {
			result = multierror.Append(result, &LatestConflictError{Image: img.Name})
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = formatErrors
	return result
}

func formatErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, "  * "+err.Error())
	}
	return fmt.Sprintf("%d manifest errors:\n%s", len(errs), strings.Join(lines, "\n"))
}
