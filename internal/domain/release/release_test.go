package release

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	mapset "github.com/deckarep/golang-set/v2"
)

func TestClassify(t *testing.T) {
	known := mapset.NewSet("1.1.0", "1.2.0", "1.3.0rc1")

	cases := []struct {
		name    string
		version string
		checked bool
		want    Classification
		base    string
	}{
		{name: "final", version: "1.2.0", checked: true, want: FinalRelease},
		{name: "unreleased", version: "1.4.0", checked: true, want: Unreleased},
		{name: "published candidate", version: "1.3.0rc1", checked: true, want: ReleaseCandidate, base: "1.3.0"},
		{name: "unpublished candidate", version: "1.4.0rc2", checked: true, want: ReleaseCandidate, base: "1.4.0"},
		{name: "checks disabled", version: "1.2.0", checked: false, want: Unreleased},
		{name: "candidate with checks disabled", version: "1.4.0rc2", checked: false, want: Unreleased, base: "1.4.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := Classify(tc.version, known, tc.checked)
			if got := state.Classification(); got != tc.want {
				t.Fatalf("classification = %s, want %s", got, tc.want)
			}
			if state.CandidateBase != tc.base {
				t.Fatalf("candidate base = %q, want %q", state.CandidateBase, tc.base)
			}
		})
	}
}

func TestClassifyDisabledKeepsNoKnownTags(t *testing.T) {
	state := Classify("1.2.0", mapset.NewSet("1.2.0"), false)
	if state.MatchesKnownRelease || len(state.Known) != 0 {
		t.Fatalf("disabled checks must not consult releases: %+v", state)
	}
}

func TestSortedTags(t *testing.T) {
	got := SortedTags(mapset.NewSet("1.10.0", "1.2.0", "v1.9.0", "nightly", "1.2.0rc1"))
	want := []string{"1.2.0rc1", "1.2.0", "v1.9.0", "1.10.0", "nightly"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SortedTags mismatch (-want +got):\n%s", diff)
	}
}
