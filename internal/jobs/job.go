package jobs

import (
	"flyer-service/internal/ingest"
	"flyer-service/internal/labels"
)

// JobStatus is the job-level lifecycle.
type JobStatus string

const (
	StatusDrafting   JobStatus = "drafting"
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// ImageStatus is the per-image outcome within a job.
type ImageStatus string

const (
	ImageDone  ImageStatus = "done"
	ImageError ImageStatus = "error"
)

// SourceType selects how a discount source is parsed.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceXLSX SourceType = "xlsx"
)

// DiscountSource is an optional raw discount listing attached to a job.
// For SourceText, Content is the listing itself; for SourceXLSX it is a
// file path.
type DiscountSource struct {
	Type    SourceType `json:"type"`
	Content string     `json:"content"`
}

// ImageTask is one image queued for ingestion.
type ImageTask struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Job is one flyer-department batch.
type Job struct {
	ID       string          `json:"id"`
	Images   []ImageTask     `json:"images"`
	Discount *DiscountSource `json:"discountSource,omitempty"`
}

// ProcessedImage is the per-image result: done with an ingestion result,
// or error with a message. Failures never spread to sibling images.
type ProcessedImage struct {
	ID     string         `json:"id"`
	Path   string         `json:"path"`
	Status ImageStatus    `json:"status"`
	Result *ingest.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Progress is emitted before each pipeline step begins.
type Progress struct {
	CurrentStep     string `json:"currentStep"`
	ProcessedImages int    `json:"processedImages"`
	TotalImages     int    `json:"totalImages"`
}

// Outcome carries everything a finished job produced.
type Outcome struct {
	ProcessedImages []ProcessedImage `json:"processedImages"`
	DiscountLabels  []labels.Label   `json:"discountLabels"`
}

// Listener receives ordered per-job pipeline events. Callbacks run on the
// pipeline goroutine; implementations must not block for long.
type Listener interface {
	Queued(jobID string)
	Progress(jobID string, p Progress)
	Complete(jobID string, o Outcome)
	Error(jobID string, err error)
}
