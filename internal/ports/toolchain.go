// Where: internal/ports/toolchain.go
// What: Container toolchain contract.
// Why: Allow the orchestrator to drive docker (or a fake) through one interface.
package ports

import "context"

// BuildRequest describes one image build fed from stdin.
type BuildRequest struct {
	Reference  string
	Dockerfile string
	ContextDir string
	NoCache    bool
}

// Toolchain executes container operations. Every method blocks until the
// underlying command finishes; a non-nil error means the command failed.
type Toolchain interface {
	Build(ctx context.Context, req BuildRequest) error
	Pull(ctx context.Context, reference string) error
	Tag(ctx context.Context, source, target string) error
	Push(ctx context.Context, reference string) error
	RunSanity(ctx context.Context, reference string) error
}
