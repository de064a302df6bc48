// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/poruru-code/cargo-builder/internal/meta"
	"github.com/poruru-code/cargo-builder/internal/version"
)

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Build   BuildCmd   `cmd:"" default:"withargs" help:"Build, test and push cargo images (default command)"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// BuildCmd carries the flags of a cargo run. Flags left empty fall back to
// the global config.
type BuildCmd struct {
	Manifest     string   `short:"m" env:"CARGO_MANIFEST" help:"Cargo manifest (default: global config, then ./cargo-manifest.yml)"`
	EnvFile      string   `name:"env-file" help:"Load environment variables from a dotenv file"`
	List         bool     `short:"l" help:"List only, do not push or build. Fails if images are missing."`
	Build        bool     `short:"b" help:"Build only, do not push."`
	Push         bool     `short:"p" help:"Push only, do not build."`
	Rebuild      bool     `short:"r" help:"Ignore docker image caches (i.e. rebuild)."`
	All          bool     `short:"a" help:"Build and/or push all images in the manifest."`
	Experimental bool     `short:"E" help:"Enable experimental versions."`
	Verbose      bool     `short:"v" help:"Be verbose."`
	NoTests      bool     `name:"no-tests" help:"Skip image sanity checks."`
	IgnoreLatest bool     `name:"ignore-latest-tag" help:"Neither require nor apply the latest tag."`
	Boring       bool     `help:"Plain output without emoji."`
	Oracle       string   `env:"CARGO_ORACLE" help:"Image existence backend: registry or docker."`
	Insecure     []string `name:"insecure-registry" env:"CARGO_INSECURE_REGISTRIES" help:"Registry hosts reached over plain HTTP."`
	ReportJSON   string   `name:"report-json" env:"CARGO_REPORT_JSON" help:"Write a JSON run report to this path."`
	ReportS3     string   `name:"report-s3" env:"CARGO_REPORT_S3" help:"Upload the JSON run report to s3://bucket/key."`
	S3Endpoint   string   `name:"s3-endpoint" env:"CARGO_S3_ENDPOINT" help:"Endpoint of an S3-compatible store."`
	Images       []string `arg:"" optional:"" name:"image" help:"Images to process, as name or name:version."`
}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments and dispatches to the matching handler.
// Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Build, test and publish the container images described by a cargo manifest."),
		kong.Writers(out, out),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	switch ctx.Command() {
	case "version":
		return runVersion(out)
	default:
		loadEnvFile(cli.Build.EnvFile, out)
		return runBuild(cli.Build, deps, out)
	}
}

// loadEnvFile loads the given dotenv file, or ./.env when present.
// Existing variables are never overridden.
func loadEnvFile(path string, out io.Writer) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", path, err)
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}
}

func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, "Error:", err)
	return 1
}
