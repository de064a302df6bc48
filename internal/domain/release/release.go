// Where: internal/domain/release/release.go
// What: Package release classification.
// Why: Decide once per run whether published images may be overwritten.
package release

import (
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
	mapset "github.com/deckarep/golang-set/v2"
)

// Classification is the release state of the current package version.
type Classification int

const (
	Unreleased Classification = iota
	ReleaseCandidate
	FinalRelease
)

func (c Classification) String() string {
	switch c {
	case ReleaseCandidate:
		return "release-candidate"
	case FinalRelease:
		return "final-release"
	default:
		return "unreleased"
	}
}

var candidatePattern = regexp.MustCompile(`^(.*)rc(\d+)$`)

// State is immutable once computed.
type State struct {
	PackageVersion      string
	IsReleaseCandidate  bool
	CandidateBase       string
	MatchesKnownRelease bool
	Checked             bool
	Known               []string
}

// Classification maps the state onto exactly one release class. With release
// checks disabled every version is Unreleased; CandidateBase still feeds the
// push gate.
func (s State) Classification() Classification {
	switch {
	case !s.Checked:
		return Unreleased
	case s.IsReleaseCandidate:
		return ReleaseCandidate
	case s.MatchesKnownRelease:
		return FinalRelease
	default:
		return Unreleased
	}
}

// Classify combines the package version with the known upstream release tags.
// checked is false when release checking is disabled; the state is then Unreleased
// apart from the candidate base, which still comes from the version string.
func Classify(packageVersion string, known mapset.Set[string], checked bool) State {
	state := State{PackageVersion: packageVersion, Checked: checked}
	if m := candidatePattern.FindStringSubmatch(packageVersion); m != nil {
		state.IsReleaseCandidate = true
		state.CandidateBase = m[1]
	}
	if checked && known != nil {
		state.MatchesKnownRelease = known.Contains(packageVersion)
		state.Known = SortedTags(known)
	}
	return state
}

// SortedTags orders release tags by semantic version, falling back to
// lexical order for tags that do not parse.
func SortedTags(tags mapset.Set[string]) []string {
	out := tags.ToSlice()
	sort.SliceStable(out, func(i, j int) bool {
		vi, erri := parseTag(out[i])
		vj, errj := parseTag(out[j])
		switch {
		case erri == nil && errj == nil:
			if vi.Equal(vj) {
				return out[i] < out[j]
			}
			return vi.LessThan(vj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// parseTag accepts PEP 440 style candidates ("1.2.0rc1") as semver pre-releases.
func parseTag(tag string) (*semver.Version, error) {
	if m := candidatePattern.FindStringSubmatch(tag); m != nil {
		return semver.NewVersion(m[1] + "-rc." + m[2])
	}
	return semver.NewVersion(tag)
}
