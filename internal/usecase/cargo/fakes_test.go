package cargo

import (
	"context"
	"errors"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

type memFS map[string]string

func (m memFS) Exists(path string) bool {
	_, ok := m[path]
	return ok
}

func (m memFS) ReadFile(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

type fakeReleases struct {
	tags  []string
	err   error
	calls int
}

func (f *fakeReleases) ListReleases(_ context.Context, _ string) (mapset.Set[string], error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return mapset.NewSet(f.tags...), nil
}

type fakeOracle struct {
	existing map[string]bool
	errs     map[string]error
	checked  []string
}

func (f *fakeOracle) Exists(_ context.Context, ref plan.ImageRef) (bool, error) {
	key := ref.String()
	f.checked = append(f.checked, key)
	if err := f.errs[key]; err != nil {
		return false, err
	}
	return f.existing[key], nil
}

type recordToolchain struct {
	calls    []string
	builds   []ports.BuildRequest
	failOn   string
	failWith error
}

func (r *recordToolchain) record(call string) error {
	r.calls = append(r.calls, call)
	if r.failOn != "" && call == r.failOn {
		if r.failWith != nil {
			return r.failWith
		}
		return errors.New("exit status 1")
	}
	return nil
}

func (r *recordToolchain) Build(_ context.Context, req ports.BuildRequest) error {
	r.builds = append(r.builds, req)
	return r.record("build " + req.Reference)
}

func (r *recordToolchain) Pull(_ context.Context, reference string) error {
	return r.record("pull " + reference)
}

func (r *recordToolchain) Tag(_ context.Context, source, target string) error {
	return r.record("tag " + source + " " + target)
}

func (r *recordToolchain) Push(_ context.Context, reference string) error {
	return r.record("push " + reference)
}

func (r *recordToolchain) RunSanity(_ context.Context, reference string) error {
	return r.record("test " + reference)
}

type recordReporter struct {
	ports.NopReporter
	skips     []string
	decisions []string
	warnings  []string
	infos     []string
	reports   []plan.ListReport
}

func (r *recordReporter) Skip(item plan.WorkItem, reason plan.SkipReason, _ string) {
	r.skips = append(r.skips, item.Label()+" "+string(reason))
}

func (r *recordReporter) Decision(item plan.WorkItem, detail string) {
	r.decisions = append(r.decisions, item.Label()+": "+detail)
}

func (r *recordReporter) Warn(msg string) {
	r.warnings = append(r.warnings, msg)
}

func (r *recordReporter) Info(msg string) {
	r.infos = append(r.infos, msg)
}

func (r *recordReporter) ListReport(report plan.ListReport) {
	r.reports = append(r.reports, report)
}

func (r *recordReporter) hasDecision(substr string) bool {
	for _, d := range r.decisions {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}
