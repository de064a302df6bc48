// Where: internal/ports/reporter.go
// What: Progress and decision reporting contract.
// Why: Replace implicit printing with an injected output surface.
package ports

import "github.com/poruru-code/cargo-builder/internal/domain/plan"

// Progress locates the current item within the run.
type Progress struct {
	Image        string
	ImageIndex   int
	ImageCount   int
	Version      string
	VersionIndex int
	VersionCount int
}

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// Reporter receives structured progress events from the orchestrator.
type Reporter interface {
	Section(title string)
	Block(emoji, title string, rows []KeyValue)
	Progress(p Progress)
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Decision(item plan.WorkItem, detail string)
	Skip(item plan.WorkItem, reason plan.SkipReason, detail string)
	ListReport(report plan.ListReport)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Section(string) {}
func (NopReporter) Block(string, string, []KeyValue) {}
func (NopReporter) Progress(Progress) {}
func (NopReporter) Info(string) {}
func (NopReporter) Warn(string) {}
func (NopReporter) Success(string) {}
func (NopReporter) Decision(plan.WorkItem, string) {}
func (NopReporter) Skip(plan.WorkItem, plan.SkipReason, string) {}
func (NopReporter) ListReport(plan.ListReport) {}
