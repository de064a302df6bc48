// Where: internal/domain/plan/item.go
// What: Work item and action types.
// Why: Describe one planned (image, version) unit handed to the executor.
package plan

import "strings"

// Action is a bit set of toolchain steps permitted for an item.
type Action uint8

const (
	ActionBuild Action = 1 << iota
	ActionTest
	ActionPush
)

// Has reports whether every bit of other is set.
func (a Action) Has(other Action) bool {
	return a&other == other && other != 0
}

// Without clears the bits of other.
func (a Action) Without(other Action) Action {
	return a &^ other
}

func (a Action) String() string {
	var parts []string
	if a.Has(ActionBuild) {
		parts = append(parts, "build")
	}
	if a.Has(ActionTest) {
		parts = append(parts, "test")
	}
	if a.Has(ActionPush) {
		parts = append(parts, "push")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ImageRef is a registry/image:tag coordinate.
type ImageRef struct {
	Registry string
	Image    string
	Tag      string
}

// IsZero reports whether the reference is unset.
func (r ImageRef) IsZero() bool {
	return r.Image == ""
}

func (r ImageRef) String() string {
	if r.IsZero() {
		return ""
	}
	registry := strings.TrimSuffix(r.Registry, "/")
	if registry == "" {
		return r.Image + ":" + r.Tag
	}
	return registry + "/" + r.Image + ":" + r.Tag
}

// SkipReason explains why an item or one of its steps did not run.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipExperimental    SkipReason = "Experimental"
	SkipVersionMismatch SkipReason = "VersionMismatch"
	SkipAlreadyReleased SkipReason = "AlreadyReleased"
)

// WorkItem is one planned (image, version) unit.
type WorkItem struct {
	Image   string
	Version string
	// Tag is "<version>-<bundle>" or the bare bundle version for a "latest" version.
	Tag       string
	Reference ImageRef
	// Alias is set when this version must also be tagged and pushed under the
	// bare bundle version.
	Alias ImageRef

	DockerfilePath string
	ContextDir     string
	Dockerfile     string

	Experimental bool
	Actions      Action
	SkipReason   SkipReason

	ImageIndex   int
	ImageCount   int
	VersionIndex int
	VersionCount int
}

// Skipped reports whether the whole item is skipped.
func (w WorkItem) Skipped() bool {
	return w.SkipReason != SkipNone
}

// Label is the short "image:tag" form used in traces.
func (w WorkItem) Label() string {
	return w.Image + ":" + w.Tag
}
