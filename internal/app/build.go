// Where: internal/app/build.go
// What: Build command handler.
// Why: Resolve settings, wire adapters and run the cargo orchestrator.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/poruru-code/cargo-builder/internal/domain/manifest"
	"github.com/poruru-code/cargo-builder/internal/infra/config"
	manifestinfra "github.com/poruru-code/cargo-builder/internal/infra/manifest"
	"github.com/poruru-code/cargo-builder/internal/infra/pkgversion"
	"github.com/poruru-code/cargo-builder/internal/infra/report"
	"github.com/poruru-code/cargo-builder/internal/infra/toolchain"
	"github.com/poruru-code/cargo-builder/internal/infra/ui"
	"github.com/poruru-code/cargo-builder/internal/meta"
	"github.com/poruru-code/cargo-builder/internal/ports"
	"github.com/poruru-code/cargo-builder/internal/usecase/cargo"
)

var errNoOracle = errors.New("no image oracle factory configured")

// settings is the merged view of flags and global config.
type settings struct {
	Manifest   string
	Oracle     string
	Insecure   []string
	ReportJSON string
	ReportS3   string
	S3Endpoint string
}

func resolveSettings(cmd BuildCmd, cfg config.GlobalConfig) settings {
	s := settings{
		Manifest:   firstNonEmpty(cmd.Manifest, cfg.Manifest, meta.DefaultManifest),
		Oracle:     firstNonEmpty(cmd.Oracle, cfg.Oracle, config.OracleRegistry),
		ReportJSON: firstNonEmpty(cmd.ReportJSON, cfg.Report.JSON),
		ReportS3:   firstNonEmpty(cmd.ReportS3, cfg.Report.S3),
		S3Endpoint: firstNonEmpty(cmd.S3Endpoint, cfg.Report.S3Endpoint),
	}
	s.Insecure = append(append(s.Insecure, cmd.Insecure...), cfg.InsecureRegistries...)
	return s
}

func runBuild(cmd BuildCmd, deps Dependencies, out io.Writer) int {
	logOut := deps.Log
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := log.NewWithOptions(logOut, log.Options{Prefix: meta.AppName})
	if cmd.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	lookup := deps.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfgPath, err := deps.configPath()
	if err != nil {
		return exitWithError(out, err)
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return exitWithError(out, err)
	}
	s := resolveSettings(cmd, cfg)
	if err := (config.GlobalConfig{Oracle: s.Oracle}).Validate(); err != nil {
		return exitWithError(out, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := ui.NewReporter(out, !cmd.Boring)
	reporter.Section("Loading manifest " + s.Manifest)
	m, err := manifestLoader(deps, lookup, logger).Load(ctx, s.Manifest)
	if err != nil {
		return exitWithError(out, err)
	}
	reporter.Block("🗂️", "Manifest", manifestRows(m))

	req := cargo.Request{
		Selectors:    cmd.Images,
		All:          cmd.All,
		Experimental: cmd.Experimental,
		IgnoreLatest: cmd.IgnoreLatest,
		Build:        cmd.Build,
		Push:         cmd.Push,
		List:         cmd.List,
		Rebuild:      cmd.Rebuild,
		NoTests:      cmd.NoTests,
	}
	orch, err := buildOrchestrator(ctx, deps, s, req, lookup, logger, reporter)
	if err != nil {
		return exitWithError(out, err)
	}

	result, err := orch.Run(ctx, m, req)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := writeReports(ctx, deps, s, m, result); err != nil {
		return exitWithError(out, err)
	}
	if result.Failed() {
		reporter.Warn("One or more image versions not found")
		return 1
	}
	if len(result.Items) > 0 {
		reporter.Success("Success! " + result.Summary())
	}
	return 0
}

func manifestLoader(deps Dependencies, lookup func(string) (string, bool), logger *log.Logger) ManifestLoader {
	if deps.Manifests != nil {
		return deps.Manifests(logger)
	}
	return manifestinfra.Loader{
		LookupEnv: lookup,
		Versions: pkgversion.Resolver{
			LookupEnv: lookup,
			Runner:    toolchain.ExecRunner{Logger: logger},
		},
	}
}

func manifestRows(m manifest.Manifest) []ports.KeyValue {
	return []ports.KeyValue{
		{Key: "Registry", Value: m.Metadata.Registry},
		{Key: "Bundle", Value: fmt.Sprintf("%s (prefix %q)", m.Metadata.BundleVersion, m.Metadata.BundleVersionPrefix)},
		{Key: "Base image path", Value: m.Metadata.BaseImagePath},
		{Key: "Images", Value: len(m.Images)},
	}
}

func buildOrchestrator(
	ctx context.Context,
	deps Dependencies,
	s settings,
	req cargo.Request,
	lookup func(string) (string, bool),
	logger *log.Logger,
	reporter ports.Reporter,
) (cargo.Orchestrator, error) {
	if deps.Oracle == nil {
		return cargo.Orchestrator{}, errNoOracle
	}
	oracle, err := deps.Oracle(ctx, s.Oracle, s.Insecure)
	if err != nil {
		return cargo.Orchestrator{}, fmt.Errorf("create %s oracle: %w", s.Oracle, err)
	}
	orch := cargo.Orchestrator{
		Oracle:   oracle,
		Files:    deps.Files,
		Reporter: reporter,
	}
	if deps.Releases != nil {
		token, _ := lookup("GITHUB_TOKEN")
		orch.Releases = deps.Releases(token)
	}
	if !req.List && deps.Toolchain != nil {
		tools, err := deps.Toolchain(logger)
		if err != nil {
			return cargo.Orchestrator{}, fmt.Errorf("create toolchain: %w", err)
		}
		orch.Toolchain = tools
	}
	return orch, nil
}

func writeReports(ctx context.Context, deps Dependencies, s settings, m manifest.Manifest, result cargo.Result) error {
	var sinks report.Multi
	if s.ReportJSON != "" {
		sinks = append(sinks, report.FileSink{Path: s.ReportJSON})
	}
	if s.ReportS3 != "" {
		bucket, key, err := report.ParseS3URL(s.ReportS3)
		if err != nil {
			return err
		}
		if deps.S3 == nil {
			return errors.New("no s3 client factory configured")
		}
		client, err := deps.S3(ctx, s.S3Endpoint)
		if err != nil {
			return err
		}
		sinks = append(sinks, report.S3Sink{Client: client, Bucket: bucket, Key: key})
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks.Write(ctx, newDocument(m, result))
}

func newDocument(m manifest.Manifest, result cargo.Result) report.Document {
	doc := report.Document{
		Package:        m.Metadata.Package,
		PackageVersion: m.Metadata.PackageVersion,
		BundleVersion:  m.Metadata.BundleVersion,
		ReleaseState:   result.Release.Classification().String(),
		Images:         result.Report.Images,
		Built:          result.Built,
		Pushed:         result.Pushed,
		Failed:         result.Failed(),
	}
	for _, skipped := range result.Skipped {
		doc.Skipped = append(doc.Skipped, report.SkippedEntry{Item: skipped.Label, Reason: string(skipped.Reason)})
	}
	return doc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
