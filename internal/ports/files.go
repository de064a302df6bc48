// Where: internal/ports/files.go
// What: Filesystem contract used during planning.
// Why: Let planning tests run against in-memory trees.
package ports

// FileSystem exposes the read-only file access the planner needs.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}
