// Where: internal/infra/ui/reporter.go
// What: Console-backed reporter for cargo runs.
// Why: Render orchestrator events as the user-facing build trace.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/plan"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

// Reporter renders orchestrator events through a Console.
type Reporter struct {
	console *Console
}

var _ ports.Reporter = Reporter{}

// NewReporter returns a Reporter writing to out.
func NewReporter(out io.Writer, emojiEnabled bool) Reporter {
	return Reporter{console: NewWithEmoji(out, emojiEnabled)}
}

func (r Reporter) Section(title string) {
	r.console.BlockStart("🚢", title)
}

func (r Reporter) Block(emoji, title string, rows []ports.KeyValue) {
	r.console.BlockStart(emoji, title)
	for _, kv := range rows {
		r.console.Item(kv.Key, kv.Value)
	}
	r.console.BlockEnd()
}

func (r Reporter) Progress(p ports.Progress) {
	r.console.Header("📦", fmt.Sprintf("%s:%s (image %d/%d, version %d/%d)",
		p.Image, p.Version,
		p.ImageIndex+1, p.ImageCount,
		p.VersionIndex+1, p.VersionCount,
	))
}

func (r Reporter) Info(msg string) {
	r.console.Info(msg)
}

func (r Reporter) Warn(msg string) {
	r.console.Warn(msg)
}

func (r Reporter) Success(msg string) {
	r.console.Success(msg)
}

func (r Reporter) Decision(item plan.WorkItem, detail string) {
	r.console.ItemPlain(item.Label() + ": " + detail)
}

func (r Reporter) Skip(item plan.WorkItem, reason plan.SkipReason, detail string) {
	msg := fmt.Sprintf("%s: skipped (%s)", item.Label(), reason)
	if detail != "" {
		msg += ": " + detail
	}
	r.console.ItemMarked("⏭️", "[skip]", msg)
}

// ListReport prints the found and missing tags of every listed image.
func (r Reporter) ListReport(report plan.ListReport) {
	r.console.BlockStart("📋", "Image status")
	for _, img := range report.Images {
		found, missing := img.Found(), img.Missing()
		r.console.Item(img.Image, fmt.Sprintf("%d found, %d missing", len(found), len(missing)))
		if len(found) > 0 {
			r.console.ItemMarked("✅", "[ok]", "found: "+strings.Join(found, " "))
		}
		if len(missing) > 0 {
			r.console.ItemMarked("❌", "[missing]", "missing: "+strings.Join(missing, " "))
		}
	}
	r.console.BlockEnd()
}
