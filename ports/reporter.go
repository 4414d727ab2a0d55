package ports

import (
	"context"

	"panelmap/domain/run"
)

// Reporter persists run-level outputs: the Markdown/HTML report pair and
// the JSON manifest.
type Reporter interface {
	// WriteReport renders the run report and returns the written paths.
	WriteReport(ctx context.Context, manifest *run.Manifest) ([]string, error)

	// WriteManifest persists the manifest as JSON and returns its path.
	WriteManifest(ctx context.Context, manifest *run.Manifest) (string, error)
}
