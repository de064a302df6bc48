package tagging

import (
	"errors"
	"testing"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
)

func versions(names ...string) []manifest.VersionSpec {
	out := make([]manifest.VersionSpec, 0, len(names))
	for _, name := range names {
		out = append(out, manifest.VersionSpec{Name: name})
	}
	return out
}

func TestResolveImageDecisionTable(t *testing.T) {
	cases := []struct {
		name        string
		image       manifest.ImageSpec
		ignore      bool
		policy      Policy
		aliasTarget string
		owner       string
	}{
		{
			name:   "self named latest",
			image:  manifest.ImageSpec{Name: "foo", Versions: versions("1.0", "latest")},
			policy: PolicySelfNamed,
			owner:  "latest",
		},
		{
			name:        "explicit field",
			image:       manifest.ImageSpec{Name: "bar", Versions: versions("1.0", "2.0", "3.0"), Latest: "2.0"},
			policy:      PolicyExplicit,
			aliasTarget: "2.0",
			owner:       "2.0",
		},
		{
			name:        "last declared",
			image:       manifest.ImageSpec{Name: "bar", Versions: versions("1.0", "2.0")},
			policy:      PolicyLastDeclared,
			aliasTarget: "2.0",
			owner:       "2.0",
		},
		{
			name:   "suppressed",
			image:  manifest.ImageSpec{Name: "bar", Versions: versions("1.0", "2.0"), Latest: "missing"},
			ignore: true,
			policy: PolicySuppressed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ResolveImage(tc.image, tc.ignore)
			if err != nil {
				t.Fatalf("ResolveImage: %v", err)
			}
			if res.Policy != tc.policy {
				t.Fatalf("policy = %s, want %s", res.Policy, tc.policy)
			}
			if res.AliasTarget() != tc.aliasTarget {
				t.Fatalf("alias target = %q, want %q", res.AliasTarget(), tc.aliasTarget)
			}
			if res.Owner() != tc.owner {
				t.Fatalf("owner = %q, want %q", res.Owner(), tc.owner)
			}
		})
	}
}

func TestResolveImageUnknownExplicitVersion(t *testing.T) {
	_, err := ResolveImage(manifest.ImageSpec{Name: "bar", Versions: versions("1.0"), Latest: "9.9"}, false)
	var unknown *UnknownVersionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVersionError, got %v", err)
	}
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("expected configuration error")
	}
}

func TestResolveImageConflictingMarkers(t *testing.T) {
	_, err := ResolveImage(manifest.ImageSpec{Name: "foo", Versions: versions("1.0", "latest"), Latest: "1.0"}, false)
	var conflict *manifest.LatestConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected LatestConflictError, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	m := manifest.Manifest{Images: []manifest.ImageSpec{
		{Name: "foo", Versions: versions("1.0", "latest")},
		{Name: "bar", Versions: versions("1.0", "2.0")},
		{Name: "baz", Versions: versions("a", "b"), Latest: "a"},
	}}
	first, err := Resolve(m, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Resolve(m, false)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		for image, res := range first {
			if again[image] != res {
				t.Fatalf("resolution changed for %s: %+v vs %+v", image, res, again[image])
			}
		}
	}
	if first["baz"].AliasTarget() != "a" || first["bar"].AliasTarget() != "2.0" || first["foo"].AliasTarget() != "" {
		t.Fatalf("unexpected resolutions: %+v", first)
	}
}
