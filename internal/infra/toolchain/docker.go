// Where: internal/infra/toolchain/docker.go
// What: Docker-backed container toolchain.
// Why: Build, test, tag and push cargo images with the docker CLI and SDK.
package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// ImageTagger is the subset of the docker SDK client used for alias tagging.
type ImageTagger interface {
	ImageTag(ctx context.Context, source, target string) error
}

// Docker implements ports.Toolchain. Tagging goes through the SDK when a
// client is configured and falls back to the CLI otherwise.
type Docker struct {
	Runner CommandRunner
	Client ImageTagger
	Binary string
	Logger *log.Logger
}

var _ ports.Toolchain = Docker{}

// NewDocker returns a toolchain driving the docker CLI through runner.
func NewDocker(runner CommandRunner, client ImageTagger, logger *log.Logger) Docker {
	return Docker{Runner: runner, Client: client, Binary: "docker", Logger: logger}
}

func (d Docker) Build(ctx context.Context, req ports.BuildRequest) error {
	args := []string{"build"}
	if req.NoCache {
		args = append(args, "--no-cache")
	}
	args = append(args, "-t", req.Reference, "-f-", req.ContextDir)
	if d.Logger != nil {
		d.Logger.Debug("Dockerfile for "+req.Reference, "content", req.Dockerfile)
	}
	return d.Runner.Run(ctx, req.ContextDir, strings.NewReader(req.Dockerfile), d.binary(), args...)
}

func (d Docker) Pull(ctx context.Context, reference string) error {
	return d.Runner.Run(ctx, "", nil, d.binary(), "pull", reference)
}

func (d Docker) Tag(ctx context.Context, source, target string) error {
	if d.Client != nil {
		if err := d.Client.ImageTag(ctx, source, target); err != nil {
			return fmt.Errorf("docker tag %s %s: %w", source, target, err)
		}
		return nil
	}
	return d.Runner.Run(ctx, "", nil, d.binary(), "tag", source, target)
}

func (d Docker) Push(ctx context.Context, reference string) error {
	return d.Runner.Run(ctx, "", nil, d.binary(), "push", reference)
}

// RunSanity runs the image's default command with an empty stdin.
func (d Docker) RunSanity(ctx context.Context, reference string) error {
	return d.Runner.Run(ctx, "", strings.NewReader(""), d.binary(), "run", "--rm", reference)
}

func (d Docker) binary() string {
	if d.Binary == "" {
		return "docker"
	}
	return d.Binary
}
