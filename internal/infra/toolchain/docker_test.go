package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

type fakeTagger struct {
	source, target string
	err            error
}

func (f *fakeTagger) ImageTag(_ context.Context, source, target string) error {
	f.source, f.target = source, target
	return f.err
}

func TestBuildFeedsDockerfileOnStdin(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDocker(runner, nil, nil)

	err := d.Build(context.Background(), ports.BuildRequest{
		Reference:  "quay.io/stimela2/bar:1.0-cc1.0",
		Dockerfile: "FROM scratch\n",
		ContextDir: "/images/bar",
		NoCache:    true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []recordedCall{{
		dir:   "/images/bar",
		stdin: "FROM scratch\n",
		line:  "docker build --no-cache -t quay.io/stimela2/bar:1.0-cc1.0 -f- /images/bar",
	}}
	if diff := cmp.Diff(want, runner.calls, cmp.AllowUnexported(recordedCall{})); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandLines(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDocker(runner, nil, nil)
	ctx := context.Background()

	_ = d.Pull(ctx, "reg/foo:1")
	_ = d.Tag(ctx, "reg/foo:1", "reg/foo:cc1")
	_ = d.Push(ctx, "reg/foo:1")
	_ = d.RunSanity(ctx, "reg/foo:1")

	var lines []string
	for _, c := range runner.calls {
		lines = append(lines, c.line)
	}
	want := []string{
		"docker pull reg/foo:1",
		"docker tag reg/foo:1 reg/foo:cc1",
		"docker push reg/foo:1",
		"docker run --rm reg/foo:1",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestTagUsesClientWhenConfigured(t *testing.T) {
	runner := &fakeRunner{}
	tagger := &fakeTagger{}
	d := NewDocker(runner, tagger, nil)

	if err := d.Tag(context.Background(), "reg/foo:1", "reg/foo:cc1"); err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if tagger.source != "reg/foo:1" || tagger.target != "reg/foo:cc1" {
		t.Fatalf("unexpected tag call: %+v", tagger)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("runner must not be used: %+v", runner.calls)
	}

	tagger.err = errors.New("no such image")
	if err := d.Tag(context.Background(), "a", "b"); err == nil {
		t.Fatalf("expected tag error")
	}
}

func TestRunnerErrorPropagates(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	d := NewDocker(runner, nil, nil)
	if err := d.Push(context.Background(), "reg/foo:1"); err == nil {
		t.Fatalf("expected push error")
	}
}
