// Where: internal/infra/manifest/decode.go
// What: Order-preserving decoding of cargo manifest YAML nodes.
// Why: Image and version order drives selection and the latest alias, so maps are not enough.
package manifest

import (
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ENV::"

type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

func pairs(node *yaml.Node) []pair {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, pair{key: node.Content[i], value: node.Content[i+1]})
	}
	return out
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	node = resolveAlias(node)
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

func scalar(node *yaml.Node, where string) (string, error) {
	node = resolveAlias(node)
	if isNull(node) {
		return "", nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", failure.Configuration("%s (line %d) must be a scalar value", where, node.Line)
	}
	return node.Value, nil
}

// substituteEnv replaces "ENV::NAME" mapping values with the named
// environment variable. Sequences are left untouched.
func substituteEnv(node *yaml.Node, lookup func(string) (string, bool)) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := substituteEnv(child, lookup); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for _, p := range pairs(node) {
			v := p.value
			if v.Kind == yaml.MappingNode {
				if err := substituteEnv(v, lookup); err != nil {
					return err
				}
				continue
			}
			if v.Kind != yaml.ScalarNode || !strings.HasPrefix(v.Value, envPrefix) {
				continue
			}
			name := strings.TrimPrefix(v.Value, envPrefix)
			value, ok := lookup(name)
			if !ok {
				return failure.Configuration("environment variable %s is not set (%s, line %d)", name, p.key.Value, v.Line)
			}
			// Typed as if the value had been written inline.
			v.Value = value
			v.Tag = ""
			v.Style = 0
		}
	}
	return nil
}

func decodeDocument(doc *yaml.Node) (manifest.Manifest, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	m := manifest.Manifest{Metadata: manifest.Metadata{
		BaseImagePath:  manifest.DefaultBaseImagePath,
		PackageVersion: manifest.AutoPackageVersion,
	}}
	for _, p := range pairs(root) {
		var err error
		switch p.key.Value {
		case "metadata":
			err = decodeMetadata(p.value, &m.Metadata)
		case "assign":
			m.Assign, err = decodeVars(p.value, "assign")
		case "images":
			m.Images, err = decodeImages(p.value)
		default:
			err = failure.Configuration("unknown manifest section %q", p.key.Value)
		}
		if err != nil {
			return manifest.Manifest{}, err
		}
	}
	return m, nil
}

func decodeMetadata(node *yaml.Node, md *manifest.Metadata) error {
	fields := map[string]*string{
		"PACKAGE":               &md.Package,
		"REGISTRY":              &md.Registry,
		"BUNDLE_VERSION":        &md.BundleVersion,
		"BUNDLE_VERSION_PREFIX": &md.BundleVersionPrefix,
		"BASE_IMAGE_PATH":       &md.BaseImagePath,
		"PACKAGE_VERSION":       &md.PackageVersion,
		"GITHUB_REPOSITORY":     &md.GitHubRepository,
	}
	for _, p := range pairs(node) {
		target, ok := fields[p.key.Value]
		if !ok {
			return failure.Configuration("unknown metadata field %s", p.key.Value)
		}
		value, err := scalar(p.value, "metadata."+p.key.Value)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}

func decodeVars(node *yaml.Node, where string) (manifest.Vars, error) {
	var vars manifest.Vars
	for _, p := range pairs(node) {
		value, err := scalar(p.value, where+"."+p.key.Value)
		if err != nil {
			return nil, err
		}
		vars = append(vars, manifest.Var{Key: p.key.Value, Value: value})
	}
	return vars, nil
}

func decodeImages(node *yaml.Node) ([]manifest.ImageSpec, error) {
	var images []manifest.ImageSpec
	for _, p := range pairs(node) {
		img := manifest.ImageSpec{Name: p.key.Value}
		where := "images." + img.Name
		for _, field := range pairs(p.value) {
			var err error
			switch field.key.Value {
			case "versions":
				img.Versions, err = decodeVersions(field.value, where)
			case "assign":
				img.Assign, err = decodeVars(field.value, where+".assign")
			case "latest":
				img.Latest, err = scalar(field.value, where+".latest")
			case "dockerfile":
				img.Dockerfile, err = scalar(field.value, where+".dockerfile")
			default:
				err = failure.Configuration("unknown field %s.%s", where, field.key.Value)
			}
			if err != nil {
				return nil, err
			}
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeVersions(node *yaml.Node, where string) ([]manifest.VersionSpec, error) {
	var versions []manifest.VersionSpec
	for _, p := range pairs(node) {
		v, err := decodeVersion(p.key.Value, p.value, where+".versions."+p.key.Value)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func decodeVersion(name string, node *yaml.Node, where string) (manifest.VersionSpec, error) {
	v := manifest.VersionSpec{Name: name}
	for _, p := range pairs(node) {
		var err error
		switch p.key.Value {
		case "dockerfile":
			v.Dockerfile, err = scalar(p.value, where+".dockerfile")
		case "experimental":
			if !isNull(p.value) {
				err = decodeField(p.value, &v.Experimental, where)
			}
		case "experimental_dependencies":
			if !isNull(p.value) {
				err = decodeField(p.value, &v.ExperimentalDependencies, where)
			}
		default:
			var value string
			value, err = scalar(p.value, where+"."+p.key.Value)
			v.Assign = append(v.Assign, manifest.Var{Key: p.key.Value, Value: value})
		}
		if err != nil {
			return manifest.VersionSpec{}, err
		}
	}
	return v, nil
}

func decodeField(node *yaml.Node, out any, where string) error {
	if err := node.Decode(out); err != nil {
		return failure.Configuration("%s: %v", where, err)
	}
	return nil
}
