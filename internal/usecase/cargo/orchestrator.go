// Where: internal/usecase/cargo/orchestrator.go
// What: Sequential build/test/push driver for cargo images.
// Why: Apply tagging and release-safety decisions while delegating execution to ports.
package cargo

import (
	"context"
	"fmt"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/domain/release"
	"github.com/poruru-code/cargo-builder/internal/domain/tagging"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// Orchestrator runs one cargo invocation. It holds no state between runs.
type Orchestrator struct {
	Releases  ports.ReleaseRegistry
	Oracle    ports.ImageOracle
	Toolchain ports.Toolchain
	Files     ports.FileSystem
	Reporter  ports.Reporter
}

// Run validates, plans and executes the request. Configuration, oracle and
// toolchain errors abort immediately; steps already completed are not undone.
func (o Orchestrator) Run(ctx context.Context, m manifest.Manifest, req Request) (Result, error) {
	reporter := o.Reporter
	if reporter == nil {
		reporter = ports.NopReporter{}
	}
	if o.Oracle == nil {
		return Result{}, errOracleNotConfigured
	}
	if o.Toolchain == nil && !req.List {
		return Result{}, errToolchainNotConfigured
	}

	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	aliases, err := tagging.Resolve(m, req.IgnoreLatest)
	if err != nil {
		return Result{}, err
	}
	selections, err := plan.Select(m, req.Selectors, req.All)
	if err != nil {
		return Result{}, err
	}
	if len(selections) == 0 {
		reporter.Info("Nothing to be done. Please specify some image names, or run with -a/--all.")
		return Result{}, nil
	}

	items, err := Planner{Files: o.Files}.Plan(m, selections, aliases, req)
	if err != nil {
		return Result{}, err
	}

	state, err := o.releaseState(ctx, m.Metadata, reporter)
	if err != nil {
		return Result{}, err
	}

	result := Result{Items: items, Release: state, ListRun: req.List}
	run := itemRunner{
		orchestrator: o,
		reporter:     reporter,
		state:        state,
		bundle:       m.Metadata.UnprefixedBundleVersion(),
		req:          req,
		result:       &result,
	}

	current := ""
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if item.Image != current {
			current = item.Image
			reporter.Section("Processing image " + item.Image)
			if owner := aliases[item.Image].Owner(); owner != "" {
				reporter.Info(fmt.Sprintf("%s:%s follows version %s", item.Image, m.Metadata.BundleVersion, owner))
			}
			if req.List {
				result.Report.Touch(item.Image)
			}
		}
		if err := run.execute(ctx, item); err != nil {
			return result, err
		}
	}

	if req.List {
		reporter.ListReport(result.Report)
	}
	return result, nil
}

func (o Orchestrator) releaseState(
	ctx context.Context,
	md manifest.Metadata,
	reporter ports.Reporter,
) (release.State, error) {
	rows := []ports.KeyValue{{Key: "Package", Value: md.Package + "==" + md.PackageVersion}}

	if strings.TrimSpace(md.GitHubRepository) == "" {
		state := release.Classify(md.PackageVersion, nil, false)
		reporter.Block("📦", "Release state", append(rows, ports.KeyValue{Key: "State", Value: state.Classification()}))
		reporter.Warn("GITHUB_REPOSITORY not set in manifest, disabling release version checks")
		return state, nil
	}
	if o.Releases == nil {
		return release.State{}, errReleasesNotConfigured
	}

	known, err := o.Releases.ListReleases(ctx, md.GitHubRepository)
	if err != nil {
		return release.State{}, failure.Oracle(err, "fetch releases for %s", md.GitHubRepository)
	}
	state := release.Classify(md.PackageVersion, known, true)
	rows = append(rows,
		ports.KeyValue{Key: "Repository", Value: md.GitHubRepository},
		ports.KeyValue{Key: "Available releases", Value: strings.Join(state.Known, " ")},
		ports.KeyValue{Key: "State", Value: state.Classification()},
	)
	reporter.Block("📦", "Release state", rows)
	reporter.Info(describeRelease(state))
	return state, nil
}

func describeRelease(state release.State) string {
	switch {
	case state.MatchesKnownRelease && state.IsReleaseCandidate:
		return "Working with a public release candidate, push allowed."
	case state.MatchesKnownRelease:
		return "Working with a public release. Push restricted to new images only."
	case state.IsReleaseCandidate:
		return "Working with an unreleased release candidate, push allowed."
	default:
		return "Working with an unreleased version, push allowed."
	}
}

type itemRunner struct {
	orchestrator Orchestrator
	reporter     ports.Reporter
	state        release.State
	bundle       string
	req          Request
	result       *Result
}

func (r itemRunner) execute(ctx context.Context, item plan.WorkItem) error {
	r.reporter.Progress(ports.Progress{
		Image:        item.Image,
		ImageIndex:   item.ImageIndex,
		ImageCount:   item.ImageCount,
		Version:      item.Version,
		VersionIndex: item.VersionIndex,
		VersionCount: item.VersionCount,
	})

	if item.Skipped() {
		r.skip(item, item.SkipReason, "experimental and experimental mode not enabled, skipping")
		return nil
	}
	if item.Experimental {
		r.reporter.Decision(item, "experimental, dependencies present")
	}
	r.reporter.Decision(item, "defined by "+item.DockerfilePath)

	ref := item.Reference.String()
	exists, err := r.orchestrator.Oracle.Exists(ctx, item.Reference)
	if err != nil {
		return failure.Oracle(err, "inspect %s", ref)
	}
	r.result.Report.Record(item.Image, item.Tag, exists)
	if exists {
		r.reporter.Decision(item, "manifest returned for "+ref)
	} else {
		r.reporter.Decision(item, "no manifest returned for "+ref)
	}
	if r.req.List {
		return nil
	}

	tools := r.orchestrator.Toolchain
	if item.Actions.Has(plan.ActionBuild) {
		if err := r.build(ctx, item, exists); err != nil {
			return err
		}
	}

	if item.Actions.Has(plan.ActionTest) {
		r.reporter.Decision(item, "running sanity check of "+ref)
		if err := tools.RunSanity(ctx, ref); err != nil {
			return failure.Toolchain(err, "sanity check %s", ref)
		}
	}

	if item.Actions.Has(plan.ActionPush) {
		return r.push(ctx, item, exists)
	}
	return nil
}

func (r itemRunner) build(ctx context.Context, item plan.WorkItem, exists bool) error {
	tools := r.orchestrator.Toolchain
	ref := item.Reference.String()
	if exists && !r.req.Rebuild {
		r.reporter.Decision(item, "pulling "+ref+" from registry")
		if err := tools.Pull(ctx, ref); err != nil {
			return failure.Toolchain(err, "pull %s", ref)
		}
	}
	err := tools.Build(ctx, ports.BuildRequest{
		Reference:  ref,
		Dockerfile: item.Dockerfile,
		ContextDir: item.ContextDir,
		NoCache:    r.req.Rebuild,
	})
	if err != nil {
		return failure.Toolchain(err, "build %s", ref)
	}
	r.result.Built = append(r.result.Built, ref)

	if !item.Alias.IsZero() {
		alias := item.Alias.String()
		if err := tools.Tag(ctx, ref, alias); err != nil {
			return failure.Toolchain(err, "tag %s as %s", ref, alias)
		}
		r.result.Built = append(r.result.Built, alias)
	}
	return nil
}

func (r itemRunner) push(ctx context.Context, item plan.WorkItem, exists bool) error {
	tools := r.orchestrator.Toolchain
	ref := item.Reference.String()

	decision := plan.DecidePush(r.state, r.bundle, exists)
	if !decision.Allowed {
		r.skip(item, decision.Reason, decision.Detail)
		return nil
	}
	r.reporter.Decision(item, decision.Detail)

	if err := tools.Push(ctx, ref); err != nil {
		return failure.Toolchain(err, "push %s", ref)
	}
	r.result.Pushed = append(r.result.Pushed, ref)

	if item.Alias.IsZero() {
		return nil
	}
	alias := item.Alias.String()
	if !item.Actions.Has(plan.ActionBuild) {
		if err := tools.Tag(ctx, ref, alias); err != nil {
			return failure.Toolchain(err, "tag %s as %s", ref, alias)
		}
	}
	if err := tools.Push(ctx, alias); err != nil {
		return failure.Toolchain(err, "push %s", alias)
	}
	r.result.Pushed = append(r.result.Pushed, alias)
	return nil
}

func (r itemRunner) skip(item plan.WorkItem, reason plan.SkipReason, detail string) {
	r.reporter.Skip(item, reason, detail)
	r.result.Skipped = append(r.result.Skipped, Skipped{Label: item.Label(), Reason: reason})
}

// Summary renders a one-line outcome for the CLI.
func (r Result) Summary() string {
	return fmt.Sprintf("%d built, %d pushed, %d skipped", len(r.Built), len(r.Pushed), len(r.Skipped))
}
