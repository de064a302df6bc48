// Where: internal/domain/plan/selector.go
// What: Image selector parsing and validation.
// Why: Turn "image" / "image:version" arguments into a validated, ordered selection.
package plan

import (
	"fmt"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
)

// Selection is one requested image with the versions to process, in order.
type Selection struct {
	Image    string
	Versions []string
	Pinned   bool
}

// UnknownSelectorError reports a selector naming an unknown image or version.
type UnknownSelectorError struct {
	Selector string
	Image    string
	Version  string
}

func (e *UnknownSelectorError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("unknown image '%s:%s'", e.Image, e.Version)
	}
	return fmt.Sprintf("unknown image '%s'", e.Image)
}

func (e *UnknownSelectorError) Unwrap() error { return failure.ErrConfiguration }

// ParseSelector splits "image:version" at the first colon.
func ParseSelector(selector string) (image, version string, pinned bool) {
	image, version, pinned = strings.Cut(strings.TrimSpace(selector), ":")
	return image, version, pinned
}

// Select resolves selectors against the manifest. With all set, every image is
// selected in manifest order and selectors are ignored. Any unknown name fails
// the whole selection.
func Select(m manifest.Manifest, selectors []string, all bool) ([]Selection, error) {
	if all {
		selectors = m.ImageNames()
	}

	out := make([]Selection, 0, len(selectors))
	for _, selector := range selectors {
		image, version, pinned := ParseSelector(selector)
		spec, ok := m.Image(image)
		if !ok {
			return nil, &UnknownSelectorError{Selector: selector, Image: image}
		}
		if pinned {
			if _, ok := spec.Version(version); !ok {
				return nil, &UnknownSelectorError{Selector: selector, Image: image, Version: version}
			}
			out = append(out, Selection{Image: image, Versions: []string{version}, Pinned: true})
			continue
		}
		out = append(out, Selection{Image: image, Versions: spec.VersionNames()})
	}
	return out, nil
}
