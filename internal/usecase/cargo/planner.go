// Where: internal/usecase/cargo/planner.go
// What: Work item planning for a cargo run.
// Why: Detect every configuration error before the first registry or toolchain call.
package cargo

import (
	"fmt"
	"path/filepath"

	"github.com/poruru-code/cargo-builder/internal/domain/dockerfile"
	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/domain/scope"
	"github.com/poruru-code/cargo-builder/internal/domain/tagging"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// MissingDependencyError reports an experimental dependency path that does not exist.
type MissingDependencyError struct {
	Item string
	Path string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s: experimental dependency %s doesn't exist", e.Item, e.Path)
}

func (e *MissingDependencyError) Unwrap() error { return failure.ErrConfiguration }

// Planner expands selections into work items.
type Planner struct {
	Files ports.FileSystem
}

// Plan builds the ordered work items for the selections. Experimental items
// are returned skipped unless experimental mode is on.
func (p Planner) Plan(
	m manifest.Manifest,
	selections []plan.Selection,
	aliases map[string]tagging.Resolution,
	req Request,
) ([]plan.WorkItem, error) {
	if p.Files == nil {
		return nil, errFilesNotConfigured
	}

	global := scope.New(
		scope.Layer{Name: scope.LayerGlobal, Vars: m.Metadata.Vars()},
		scope.Layer{Name: scope.LayerGlobal, Vars: m.Assign},
	)
	actions := req.Actions()

	var items []plan.WorkItem
	for imageIndex, sel := range selections {
		img, ok := m.Image(sel.Image)
		if !ok {
			return nil, &plan.UnknownSelectorError{Selector: sel.Image, Image: sel.Image}
		}

		imageScope := scope.Merge(global,
			scope.Layer{Name: scope.LayerImage, Vars: manifest.Vars{{Key: "IMAGE", Value: img.Name}}},
			scope.Layer{Name: scope.LayerImage, Vars: img.Assign},
		).WithDefault(scope.LayerImage, "CMD", img.Name+" --help")

		imagePath, err := imageScope.Format(filepath.Join(m.Metadata.BaseImagePath, img.Name))
		if err != nil {
			return nil, fmt.Errorf("image %s path: %w", img.Name, err)
		}

		for versionIndex, versionName := range sel.Versions {
			spec, ok := img.Version(versionName)
			if !ok {
				return nil, &plan.UnknownSelectorError{Selector: sel.Image, Image: sel.Image, Version: versionName}
			}
			item, err := p.planVersion(m, img, spec, imageScope, imagePath, aliases[img.Name], actions, req)
			if err != nil {
				return nil, err
			}
			item.ImageIndex = imageIndex
			item.ImageCount = len(selections)
			item.VersionIndex = versionIndex
			item.VersionCount = len(sel.Versions)
			items = append(items, item)
		}
	}
	return items, nil
}

func (p Planner) planVersion(
	m manifest.Manifest,
	img manifest.ImageSpec,
	spec manifest.VersionSpec,
	imageScope scope.Scope,
	imagePath string,
	alias tagging.Resolution,
	actions plan.Action,
	req Request,
) (plan.WorkItem, error) {
	tag := m.ImageTag(spec.Name)
	item := plan.WorkItem{
		Image:        img.Name,
		Version:      spec.Name,
		Tag:          tag,
		Reference:    plan.ImageRef{Registry: m.Metadata.Registry, Image: img.Name, Tag: tag},
		Experimental: spec.IsExperimental(),
		Actions:      actions,
	}
	if alias.AliasTarget() == spec.Name {
		item.Alias = plan.ImageRef{Registry: m.Metadata.Registry, Image: img.Name, Tag: m.Metadata.BundleVersion}
	}

	if item.Experimental {
		if !req.Experimental {
			item.SkipReason = plan.SkipExperimental
			item.Actions = 0
			return item, nil
		}
		for _, dep := range spec.ExperimentalDependencies {
			if !p.Files.Exists(dep) {
				return plan.WorkItem{}, &MissingDependencyError{Item: item.Label(), Path: dep}
			}
		}
	}

	versionScope := scope.Merge(imageScope,
		scope.Layer{Name: scope.LayerVersion, Vars: spec.Assign},
		scope.Layer{Name: scope.LayerVersion, Vars: manifest.Vars{
			{Key: "VERSION", Value: spec.Name},
			{Key: "IMAGE_VERSION", Value: tag},
		}},
	)

	name := firstNonEmpty(spec.Dockerfile, img.Dockerfile, manifest.DefaultDockerfile)
	name, err := versionScope.Format(name)
	if err != nil {
		return plan.WorkItem{}, fmt.Errorf("%s dockerfile name: %w", item.Label(), err)
	}
	item.DockerfilePath = filepath.Join(imagePath, name)
	item.ContextDir = filepath.Dir(item.DockerfilePath)
	if !p.Files.Exists(item.DockerfilePath) {
		return plan.WorkItem{}, failure.Configuration("%s: %s doesn't exist", item.Label(), item.DockerfilePath)
	}

	if actions.Has(plan.ActionBuild) {
		raw, err := p.Files.ReadFile(item.DockerfilePath)
		if err != nil {
			return plan.WorkItem{}, failure.Configuration("read %s: %v", item.DockerfilePath, err)
		}
		content, err := dockerfile.Render(name, string(raw), versionScope)
		if err != nil {
			return plan.WorkItem{}, fmt.Errorf("%s: %w", item.Label(), err)
		}
		item.Dockerfile = content
	}
	return item, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
