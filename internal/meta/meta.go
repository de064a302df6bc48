// Where: internal/meta/meta.go
// What: CLI identity constants.
// Why: Keep names shared by the CLI, config paths and env bindings in one place.
package meta

const (
	AppName   = "build-cargo"
	EnvPrefix = "CARGO"

	// Config layout, relative to the user config directory.
	ConfigDir  = "build-cargo"
	ConfigFile = "config.yaml"

	DefaultManifest = "cargo-manifest.yml"
)
