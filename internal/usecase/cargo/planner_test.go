package cargo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/domain/tagging"
)

func planAll(t *testing.T, m manifest.Manifest, files memFS, req Request) []plan.WorkItem {
	t.Helper()
	aliases, err := tagging.Resolve(m, req.IgnoreLatest)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	selections, err := plan.Select(m, req.Selectors, req.All)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	items, err := Planner{Files: files}.Plan(m, selections, aliases, req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return items
}

func TestPlanOrdersItemsAndCountsProgress(t *testing.T) {
	items := planAll(t, testManifest(), testFiles(), Request{All: true, NoTests: true})

	type row struct {
		Label                    string
		Image, Version           int
		ImageCount, VersionCount int
		Alias                    string
	}
	var got []row
	for _, item := range items {
		alias := ""
		if !item.Alias.IsZero() {
			alias = item.Alias.String()
		}
		got = append(got, row{
			Label:        item.Label(),
			Image:        item.ImageIndex,
			Version:      item.VersionIndex,
			ImageCount:   item.ImageCount,
			VersionCount: item.VersionCount,
			Alias:        alias,
		})
	}
	want := []row{
		{Label: "foo:1.0-cc1.0", Image: 0, Version: 0, ImageCount: 2, VersionCount: 2},
		{Label: "foo:cc1.0", Image: 0, Version: 1, ImageCount: 2, VersionCount: 2},
		{Label: "bar:1.0-cc1.0", Image: 1, Version: 0, ImageCount: 2, VersionCount: 2},
		{Label: "bar:2.0-cc1.0", Image: 1, Version: 1, ImageCount: 2, VersionCount: 2, Alias: ref("bar", "cc1.0")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanResolvesDockerfileLayers(t *testing.T) {
	m := testManifest()
	m.Images[1].Dockerfile = "Dockerfile.{IMAGE}"
	m.Images[1].Versions[1].Dockerfile = "{VERSION}/Dockerfile"
	files := memFS{
		"/images/bar/Dockerfile.bar": "FROM {BASE}\n",
		"/images/bar/2.0/Dockerfile": "FROM {BASE}\nRUN echo {VERSION}\n",
		"/images/foo/Dockerfile":     "FROM scratch\n",
	}

	items := planAll(t, m, files, Request{Selectors: []string{"bar"}, Build: true})
	if items[0].DockerfilePath != "/images/bar/Dockerfile.bar" || items[0].ContextDir != "/images/bar" {
		t.Fatalf("unexpected image-level dockerfile: %+v", items[0])
	}
	if items[1].DockerfilePath != "/images/bar/2.0/Dockerfile" || items[1].ContextDir != "/images/bar/2.0" {
		t.Fatalf("unexpected version-level dockerfile: %+v", items[1])
	}
	if items[1].Dockerfile != "FROM ubuntu:22.04\nRUN echo 2.0\n" {
		t.Fatalf("unexpected rendered content:\n%s", items[1].Dockerfile)
	}
}

func TestPlanVersionAssignmentsOverrideImageAndGlobal(t *testing.T) {
	m := testManifest()
	m.Images[1].Assign = manifest.Vars{{Key: "BASE", Value: "debian:12"}, {Key: "CMD", Value: "bar-run"}}
	m.Images[1].Versions[0].Assign = manifest.Vars{{Key: "BASE", Value: "alpine:3.20"}}

	items := planAll(t, m, testFiles(), Request{Selectors: []string{"bar"}, Build: true})
	want := []string{
		"FROM alpine:3.20\nLABEL tag=1.0-cc1.0 cmd=\"bar-run\"\n",
		"FROM debian:12\nLABEL tag=2.0-cc1.0 cmd=\"bar-run\"\n",
	}
	got := []string{items[0].Dockerfile, items[1].Dockerfile}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rendered mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRendersGoTemplates(t *testing.T) {
	m := testManifest()
	m.Images[1].Dockerfile = "Dockerfile.tmpl"
	files := memFS{
		"/images/bar/Dockerfile.tmpl": "FROM {{ .BASE }}\nLABEL image={{ .IMAGE | upper }}\n",
	}

	items := planAll(t, m, files, Request{Selectors: []string{"bar:1.0"}, Build: true})
	if items[0].Dockerfile != "FROM ubuntu:22.04\nLABEL image=BAR\n" {
		t.Fatalf("unexpected template output:\n%s", items[0].Dockerfile)
	}
}

func TestPlanSkipsReadingWithoutBuild(t *testing.T) {
	items := planAll(t, testManifest(), testFiles(), Request{Selectors: []string{"bar"}, Push: true})
	for _, item := range items {
		if item.Dockerfile != "" {
			t.Fatalf("push-only plan must not render %s", item.Label())
		}
	}
}

func TestPlanSubstitutesBaseImagePath(t *testing.T) {
	m := testManifest()
	m.Metadata.BaseImagePath = "/srv/{PACKAGE}"
	files := memFS{"/srv/cult-cargo/bar/Dockerfile": "FROM scratch\n"}

	items := planAll(t, m, files, Request{Selectors: []string{"bar:1.0"}, Push: true})
	if items[0].DockerfilePath != "/srv/cult-cargo/bar/Dockerfile" {
		t.Fatalf("unexpected path: %s", items[0].DockerfilePath)
	}
}

func TestPlanExperimentalItemsSkippedInPlace(t *testing.T) {
	m := testManifest()
	m.Images[1].Versions[0].Experimental = true

	items := planAll(t, m, testFiles(), Request{Selectors: []string{"bar"}})
	want := []plan.WorkItem{
		{Image: "bar", Version: "1.0", Experimental: true, SkipReason: plan.SkipExperimental},
		{Image: "bar", Version: "2.0", Actions: plan.ActionBuild | plan.ActionTest | plan.ActionPush},
	}
	opts := cmpopts.IgnoreFields(plan.WorkItem{},
		"Tag", "Reference", "Alias", "DockerfilePath", "ContextDir", "Dockerfile",
		"ImageIndex", "ImageCount", "VersionIndex", "VersionCount")
	if diff := cmp.Diff(want, items, opts); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestratorExplainsDecisions(t *testing.T) {
	h := newHarness()
	if _, err := h.run(testManifest(), Request{Selectors: []string{"bar:1.0"}, List: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.reporter.hasDecision("defined by /images/bar/Dockerfile") {
		t.Fatalf("missing dockerfile decision: %v", h.reporter.decisions)
	}
	if !h.reporter.hasDecision("no manifest returned for " + ref("bar", "1.0-cc1.0")) {
		t.Fatalf("missing existence decision: %v", h.reporter.decisions)
	}
}

func TestResultSummary(t *testing.T) {
	h := newHarness()
	result, err := h.run(testManifest(), Request{Selectors: []string{"bar"}, NoTests: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := result.Summary(); got != "3 built, 3 pushed, 0 skipped" {
		t.Fatalf("Summary() = %q", got)
	}
}
