package run

import (
	"fmt"
	"strings"
	"unicode"

	"panelmap/domain/core"
)

// SheetStatus classifies a sheet's outcome in the manifest.
type SheetStatus string

const (
	// StatusCompleted means the sheet produced renderable artifacts,
	// possibly with recorded notices.
	StatusCompleted SheetStatus = "completed"
	// StatusSkipped means the sheet degenerated before anything could be
	// rendered; the run as a whole continued.
	StatusSkipped SheetStatus = "skipped"
	// StatusFailed means a fatal per-sheet error; other sheets still run.
	StatusFailed SheetStatus = "failed"
)

// NoticeKind distinguishes report notice severities.
type NoticeKind string

const (
	NoticeMissingData NoticeKind = "missing_data"
	NoticeDegenerate  NoticeKind = "degenerate_input"
	NoticeInfo        NoticeKind = "info"
)

// Notice is one human-readable per-sheet report line. Every skip or drop
// must surface as a notice; silent omission is a defect.
type Notice struct {
	Stage   string     `json:"stage"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// NewMissingDataNotice reports rows dropped for missing or non-finite
// values.
func NewMissingDataNotice(dropped int) Notice {
	return Notice{
		Stage:   "filter",
		Kind:    NoticeMissingData,
		Message: fmt.Sprintf("%d rows dropped for missing or non-finite values", dropped),
	}
}

// NewDegenerateNotice reports a skipped stage.
func NewDegenerateNotice(stage, reason string) Notice {
	return Notice{
		Stage:   stage,
		Kind:    NoticeDegenerate,
		Message: fmt.Sprintf("%s skipped: %s", stage, reason),
	}
}

// NewInfoNotice reports an informational line.
func NewInfoNotice(stage, message string) Notice {
	return Notice{Stage: stage, Kind: NoticeInfo, Message: message}
}

// Artifact kinds written per sheet.
const (
	ArtifactColumnsCSV  = "columns_csv"
	ArtifactPCValuesCSV = "pc_values_csv"
	ArtifactHeatmapSVG  = "heatmap_svg"
	ArtifactScatterSVG  = "scatter_svg"
)

// Artifact is one file the run wrote.
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// SafeSheetName returns the sheet name with every non-alphanumeric rune
// replaced by an underscore, the form artifact file names use.
func SafeSheetName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}

// SheetOutcome captures one sheet's results for the manifest and report.
type SheetOutcome struct {
	Sheet             string      `json:"sheet"`
	Status            SheetStatus `json:"status"`
	Error             string      `json:"error,omitempty"`
	RowsKept          int         `json:"rows_kept"`
	DroppedRows       int         `json:"dropped_rows"`
	DroppedColumns    []string    `json:"dropped_columns,omitempty"`
	LiveColumns       int         `json:"live_columns"`
	Components        int         `json:"components"`
	VarianceExplained []float64   `json:"variance_explained,omitempty"`
	Notices           []Notice    `json:"notices,omitempty"`
	Artifacts         []Artifact  `json:"artifacts,omitempty"`
	DurationMS        float64     `json:"duration_ms"`
}

// AddNotice appends a notice to the outcome.
func (o *SheetOutcome) AddNotice(n Notice) {
	o.Notices = append(o.Notices, n)
}

// AddArtifact records a written file.
func (o *SheetOutcome) AddArtifact(kind, path string) {
	o.Artifacts = append(o.Artifacts, Artifact{Kind: kind, Path: path})
}

// Manifest is the truth source for one run: identity, input fingerprint,
// timings and every sheet outcome in workbook order.
type Manifest struct {
	RunID       core.RunID            `json:"run_id"`
	Workbook    string                `json:"workbook"`
	Fingerprint core.InputFingerprint `json:"fingerprint"`
	CodeVersion string                `json:"code_version"`
	StartedAt   core.Timestamp        `json:"started_at"`
	FinishedAt  core.Timestamp        `json:"finished_at"`
	Sheets      []SheetOutcome        `json:"sheets"`
}

// NewManifest creates a manifest for a starting run.
func NewManifest(workbook string, fingerprint core.InputFingerprint, codeVersion string) *Manifest {
	return &Manifest{
		RunID:       core.RunID(core.NewID()),
		Workbook:    workbook,
		Fingerprint: fingerprint,
		CodeVersion: codeVersion,
		StartedAt:   core.Now(),
	}
}

// Finish stamps the completion time.
func (m *Manifest) Finish() {
	m.FinishedAt = core.Now()
}

// AddSheet appends a sheet outcome. Callers append in workbook order.
func (m *Manifest) AddSheet(outcome SheetOutcome) {
	m.Sheets = append(m.Sheets, outcome)
}

// Counts returns how many sheets completed, were skipped and failed.
func (m *Manifest) Counts() (completed, skipped, failed int) {
	for _, s := range m.Sheets {
		switch s.Status {
		case StatusCompleted:
			completed++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return completed, skipped, failed
}

// Validate checks that the manifest is complete.
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if m.Workbook == "" {
		return core.NewValidationError("manifest", "workbook cannot be empty")
	}
	if m.StartedAt.IsZero() {
		return core.NewValidationError("manifest", "started_at cannot be zero")
	}
	return nil
}
