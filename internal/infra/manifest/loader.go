// Where: internal/infra/manifest/loader.go
// What: Cargo manifest loader.
// Why: Turn a manifest file into a fully resolved, typed manifest before any build work starts.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/domain/scope"
	"gopkg.in/yaml.v3"
)

const referenceSeparator = "::"

// resolvedContent renders the substituted document back to YAML so schema
// validation sees environment values in place of their references.
func resolvedContent(doc *yaml.Node, raw []byte) ([]byte, error) {
	if doc.Kind == 0 {
		return raw, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, failure.Configuration("render manifest: %v", err)
	}
	return out, nil
}

// VersionResolver resolves the installed version of a package for
// PACKAGE_VERSION: auto.
type VersionResolver interface {
	Resolve(ctx context.Context, pkg string) (string, error)
}

// Loader reads and resolves cargo manifests.
type Loader struct {
	// LookupEnv resolves ENV:: references. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	Versions  VersionResolver
}

// Load reads the manifest at path, validates it against the schema and
// resolves environment references, config references, the base image path,
// the package version and version-name placeholders.
func (l Loader) Load(ctx context.Context, path string) (manifest.Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return manifest.Manifest{}, failure.Configuration("read manifest %s: %v", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return manifest.Manifest{}, failure.Configuration("parse manifest %s: %v", path, err)
	}
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := substituteEnv(&doc, lookup); err != nil {
		return manifest.Manifest{}, err
	}
	if content, err = resolvedContent(&doc, content); err != nil {
		return manifest.Manifest{}, err
	}
	if err := validateSchema(content); err != nil {
		return manifest.Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	m, err := decodeDocument(&doc)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("resolve manifest dir: %w", err)
	}
	if m.Metadata.Registry, err = resolveReference(dir, m.Metadata.Registry); err != nil {
		return manifest.Manifest{}, err
	}
	if m.Metadata.BundleVersion, err = resolveReference(dir, m.Metadata.BundleVersion); err != nil {
		return manifest.Manifest{}, err
	}
	m.Metadata.BaseImagePath = resolveBasePath(dir, m.Metadata.BaseImagePath)

	if m.Metadata.PackageVersion == manifest.AutoPackageVersion {
		if l.Versions == nil {
			return manifest.Manifest{}, failure.Configuration("PACKAGE_VERSION is auto but no version resolver is configured")
		}
		version, err := l.Versions.Resolve(ctx, m.Metadata.Package)
		if err != nil {
			return manifest.Manifest{}, fmt.Errorf("resolve version of %s: %w", m.Metadata.Package, err)
		}
		m.Metadata.PackageVersion = version
	}

	if err := resolveVersionNames(&m); err != nil {
		return manifest.Manifest{}, err
	}
	return m, nil
}

// resolveReference expands "dir::file.yml::a.b" to the value stored under
// key path a.b of dir/file.yml. Other values are returned unchanged.
func resolveReference(manifestDir, value string) (string, error) {
	parts := strings.Split(value, referenceSeparator)
	if len(parts) != 3 {
		return value, nil
	}
	file := filepath.Join(anchor(manifestDir, parts[0]), parts[1])
	content, err := os.ReadFile(file)
	if err != nil {
		return "", failure.Configuration("resolve %s: %v", value, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return "", failure.Configuration("resolve %s: parse %s: %v", value, file, err)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, key := range strings.Split(parts[2], ".") {
		var next *yaml.Node
		for _, p := range pairs(node) {
			if p.key.Value == key {
				next = p.value
				break
			}
		}
		if next == nil {
			return "", failure.Configuration("%s not found in %s", parts[2], file)
		}
		node = next
	}
	return scalar(node, parts[2])
}

// resolveBasePath anchors BASE_IMAGE_PATH: "dir::sub" joins the two parts and
// relative paths resolve against the manifest directory.
func resolveBasePath(manifestDir, value string) string {
	if base, rest, ok := strings.Cut(value, referenceSeparator); ok {
		return filepath.Join(anchor(manifestDir, base), rest)
	}
	return anchor(manifestDir, value)
}

func anchor(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// resolveVersionNames formats version names with the metadata, global and
// image assignments.
func resolveVersionNames(m *manifest.Manifest) error {
	global := scope.New(
		scope.Layer{Name: scope.LayerGlobal, Vars: m.Metadata.Vars()},
		scope.Layer{Name: scope.LayerGlobal, Vars: m.Assign},
	)
	for i := range m.Images {
		img := &m.Images[i]
		lookup := scope.Merge(global, scope.Layer{Name: scope.LayerImage, Vars: img.Assign})
		seen := map[string]string{}
		for j := range img.Versions {
			raw := img.Versions[j].Name
			name, err := lookup.Format(raw)
			if err != nil {
				return fmt.Errorf("unable to resolve substitution %q in versions of image %s: %w", raw, img.Name, err)
			}
			if prev, dup := seen[name]; dup {
				return failure.Configuration("image %s: versions %q and %q both resolve to %q", img.Name, prev, raw, name)
			}
			seen[name] = raw
			img.Versions[j].Name = name
		}
	}
	return nil
}
