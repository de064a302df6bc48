// Where: internal/domain/manifest/manifest.go
// What: Typed cargo manifest model.
// Why: Give the core an ordered, read-only view of images, versions and assignments.
package manifest

import "strings"

const (
	// LatestVersionName is the version name that supplies the bare bundle tag directly.
	LatestVersionName = "latest"
	// DefaultDockerfile is used when neither the version nor the image names one.
	DefaultDockerfile = "Dockerfile"
	// DefaultBaseImagePath is the image directory root when the manifest omits one.
	DefaultBaseImagePath = "images"
	// AutoPackageVersion asks the loader to resolve the installed package version.
	AutoPackageVersion = "auto"
)

// Var is a single string assignment.
type Var struct {
	Key   string
	Value string
}

// Vars is an ordered list of assignments. Later duplicates win on lookup.
type Vars []Var

// Map flattens the assignments into a map.
func (v Vars) Map() map[string]string {
	out := make(map[string]string, len(v))
	for _, item := range v {
		out[item.Key] = item.Value
	}
	return out
}

// Lookup returns the last value assigned to key.
func (v Vars) Lookup(key string) (string, bool) {
	for i := len(v) - 1; i >= 0; i-- {
		if v[i].Key == key {
			return v[i].Value, true
		}
	}
	return "", false
}

// Metadata is the manifest's metadata block.
type Metadata struct {
	Package             string
	Registry            string
	BundleVersion       string
	BundleVersionPrefix string
	BaseImagePath       string
	PackageVersion      string
	GitHubRepository    string
}

// Vars exposes the metadata fields under their manifest key names.
func (m Metadata) Vars() Vars {
	return Vars{
		{Key: "PACKAGE", Value: m.Package},
		{Key: "REGISTRY", Value: m.Registry},
		{Key: "BUNDLE_VERSION", Value: m.BundleVersion},
		{Key: "BUNDLE_VERSION_PREFIX", Value: m.BundleVersionPrefix},
		{Key: "BASE_IMAGE_PATH", Value: m.BaseImagePath},
		{Key: "PACKAGE_VERSION", Value: m.PackageVersion},
		{Key: "GITHUB_REPOSITORY", Value: m.GitHubRepository},
	}
}

// UnprefixedBundleVersion strips the bundle prefix, e.g. "cc0.2.0" -> "0.2.0".
func (m Metadata) UnprefixedBundleVersion() string {
	return strings.TrimPrefix(m.BundleVersion, m.BundleVersionPrefix)
}

// VersionSpec describes one version of an image.
type VersionSpec struct {
	Name                     string
	Assign                   Vars
	Dockerfile               string
	Experimental             bool
	ExperimentalDependencies []string
}

// IsExperimental reports whether the version is gated behind experimental mode.
func (v VersionSpec) IsExperimental() bool {
	return v.Experimental || len(v.ExperimentalDependencies) > 0
}

// ImageSpec describes one image family. Versions keep manifest order.
type ImageSpec struct {
	Name       string
	Versions   []VersionSpec
	Assign     Vars
	Latest     string
	Dockerfile string
}

// Version returns the named version.
func (i ImageSpec) Version(name string) (VersionSpec, bool) {
	for _, v := range i.Versions {
		if v.Name == name {
			return v, true
		}
	}
	return VersionSpec{}, false
}

// VersionNames returns the version names in manifest order.
func (i ImageSpec) VersionNames() []string {
	names := make([]string, 0, len(i.Versions))
	for _, v := range i.Versions {
		names = append(names, v.Name)
	}
	return names
}

// HasLatestVersion reports whether a version is literally named "latest".
func (i ImageSpec) HasLatestVersion() bool {
	_, ok := i.Version(LatestVersionName)
	return ok
}

// Manifest is the whole cargo manifest.
type Manifest struct {
	Metadata Metadata
	Assign   Vars
	Images   []ImageSpec
}

// Image returns the named image.
func (m Manifest) Image(name string) (ImageSpec, bool) {
	for _, img := range m.Images {
		if img.Name == name {
			return img, true
		}
	}
	return ImageSpec{}, false
}

// ImageNames returns the image names in manifest order.
func (m Manifest) ImageNames() []string {
	names := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		names = append(names, img.Name)
	}
	return names
}

// ImageTag returns the tag a version is published under: the bare bundle
// version for a version named "latest", otherwise "<version>-<bundle>".
func (m Manifest) ImageTag(version string) string {
	if version == LatestVersionName {
		return m.Metadata.BundleVersion
	}
	return version + "-" + m.Metadata.BundleVersion
}
