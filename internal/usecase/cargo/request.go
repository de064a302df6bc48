// Where: internal/usecase/cargo/request.go
// What: Inputs and outputs of a cargo run.
// Why: Keep CLI flag parsing separate from orchestration.
package cargo

import (
	"errors"

	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/domain/release"
)

var (
	errOracleNotConfigured    = errors.New("image oracle is not configured")
	errToolchainNotConfigured = errors.New("container toolchain is not configured")
	errFilesNotConfigured     = errors.New("filesystem is not configured")
	errReleasesNotConfigured  = errors.New("release registry is not configured")
)

// Request captures the inputs of one run.
type Request struct {
	Selectors    []string
	All          bool
	Experimental bool
	IgnoreLatest bool
	Build        bool
	Push         bool
	List         bool
	Rebuild      bool
	NoTests      bool
}

// Actions returns the steps every non-skipped item performs. List mode is
// exclusive and performs existence checks only. With neither build nor push
// requested, both run.
func (r Request) Actions() plan.Action {
	if r.List {
		return 0
	}
	actions := plan.ActionBuild | plan.ActionTest | plan.ActionPush
	switch {
	case r.Build && !r.Push:
		actions = actions.Without(plan.ActionPush)
	case r.Push && !r.Build:
		actions = actions.Without(plan.ActionBuild)
	}
	if r.NoTests {
		actions = actions.Without(plan.ActionTest)
	}
	return actions
}

// Skipped records a non-fatal skip.
type Skipped struct {
	Label  string
	Reason plan.SkipReason
}

// Result summarizes a completed run.
type Result struct {
	Items   []plan.WorkItem
	Release release.State
	Report  plan.ListReport
	Built   []string
	Pushed  []string
	Skipped []Skipped
	ListRun bool
}

// Failed reports whether the run must exit non-zero despite no fatal error:
// in list mode, any requested version missing remotely.
func (r Result) Failed() bool {
	return r.ListRun && r.Report.AnyMissing()
}
