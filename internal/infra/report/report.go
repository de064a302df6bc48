// Where: internal/infra/report/report.go
// What: Machine-readable run reports and their sinks.
// Why: Let CI consume list results and build outcomes without scraping console output.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poruru-code/cargo-builder/internal/domain/plan"
)

// SkippedEntry is one skipped item.
type SkippedEntry struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Document is the serialized outcome of one run.
type Document struct {
	Package        string           `json:"package"`
	PackageVersion string           `json:"package_version"`
	BundleVersion  string           `json:"bundle_version"`
	ReleaseState   string           `json:"release_state"`
	Images         []plan.ListImage `json:"images,omitempty"`
	Built          []string         `json:"built,omitempty"`
	Pushed         []string         `json:"pushed,omitempty"`
	Skipped        []SkippedEntry   `json:"skipped,omitempty"`
	Failed         bool             `json:"failed"`
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	payload, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(payload, '\n'), nil
}

// Sink persists a report document.
type Sink interface {
	Write(ctx context.Context, doc Document) error
}

// FileSink writes the report to a local file.
type FileSink struct {
	Path string
}

func (s FileSink) Write(_ context.Context, doc Document) error {
	payload, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(s.Path, payload, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Multi writes to every sink and stops at the first failure.
type Multi []Sink

func (m Multi) Write(ctx context.Context, doc Document) error {
	for _, sink := range m {
		if err := sink.Write(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
