// Where: internal/infra/fileops/file_ops.go
// What: Local filesystem access for planning.
// Why: Back ports.FileSystem with the host filesystem.
package fileops

import (
	"os"

	"github.com/poruru-code/cargo-builder/internal/ports"
)

// OS reads from the host filesystem.
type OS struct{}

var _ ports.FileSystem = OS{}

// Exists reports whether path exists, following symlinks.
func (OS) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
