// Where: internal/domain/plan/policy.go
// What: Release-safety gate for pushes.
// Why: Never silently overwrite a tag that belongs to a stale bundle or a finalized release.
package plan

import "github.com/poruru-code/cargo-builder/internal/domain/release"

// PushDecision is the outcome of the release-safety gate.
type PushDecision struct {
	Allowed bool
	Reason  SkipReason
	Detail  string
}

// DecidePush applies the release-safety policy. Only pushes over an existing
// remote tag are restricted; build and test are never gated here.
func DecidePush(state release.State, unprefixedBundle string, remoteExists bool) PushDecision {
	if !remoteExists {
		return PushDecision{Allowed: true, Detail: "image not in registry, ok to push"}
	}

	if unprefixedBundle != state.PackageVersion {
		if state.IsReleaseCandidate && unprefixedBundle == state.CandidateBase {
			return PushDecision{
				Allowed: true,
				Detail:  "image exists but package is a release candidate for image version, ok to push",
			}
		}
		return PushDecision{
			Reason: SkipVersionMismatch,
			Detail: "image exists and package version doesn't match image version, won't push",
		}
	}

	switch state.Classification() {
	case release.FinalRelease:
		return PushDecision{
			Reason: SkipAlreadyReleased,
			Detail: "image exists and package released, won't push",
		}
	case release.ReleaseCandidate:
		return PushDecision{Allowed: true, Detail: "image exists, but package is a release candidate, ok to push"}
	default:
		return PushDecision{Allowed: true, Detail: "image exists, but package unreleased, ok to push"}
	}
}
